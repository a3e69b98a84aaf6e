package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var RoomTypes = []string{"1-sharing", "2-sharing", "3-sharing"}

type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PGID        uint      `gorm:"column:pg_id;index;not null" json:"pgId"`
	PG          *PG       `gorm:"foreignKey:PGID;constraint:OnDelete:CASCADE" json:"pg,omitempty"`
	RoomNumber  string    `gorm:"size:20;not null" json:"roomNumber"`
	RoomType    string    `gorm:"size:20;not null" json:"roomType"`
	PricePerBed float64   `gorm:"type:numeric(8,2);not null" json:"pricePerBed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	Beds        []Bed     `gorm:"foreignKey:RoomID" json:"beds,omitempty"`
}

// ShareCapacity đọc sức chứa từ loại phòng "N-sharing", ok=false nếu không xác định
func (r *Room) ShareCapacity() (int, bool) {
	return ParseShareCapacity(r.RoomType)
}

func ParseShareCapacity(roomType string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(roomType), "-")
	n, err := strconv.Atoi(head)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// BedIdentifiers sinh tên giường A, B, C... rồi "Bed N" khi vượt quá Z
func BedIdentifiers(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < 26 {
			ids = append(ids, string(rune('A'+i)))
		} else {
			ids = append(ids, fmt.Sprintf("Bed %d", i+1))
		}
	}
	return ids
}

type Bed struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RoomID      uint   `gorm:"index;not null" json:"roomId"`
	Room        *Room  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
	Identifier  string `gorm:"size:20;not null" json:"identifier"`
	IsAvailable bool   `gorm:"not null" json:"isAvailable"`
}
