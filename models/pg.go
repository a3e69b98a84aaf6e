package models

import (
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

type PGType string

const (
	PGTypeBoys  PGType = "boys"
	PGTypeGirls PGType = "girls"
	PGTypeCoed  PGType = "coed"
)

func (t PGType) Valid() bool {
	switch t {
	case PGTypeBoys, PGTypeGirls, PGTypeCoed:
		return true
	}
	return false
}

type PG struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerID      uint           `gorm:"index;not null" json:"ownerId"`
	Owner        *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Address      string         `gorm:"type:text" json:"address"`
	Area         string         `gorm:"size:100;index" json:"area"`
	Type         PGType         `gorm:"type:varchar(10);not null;default:coed" json:"type"`
	Amenities    pq.StringArray `gorm:"type:text[]" json:"amenities"`
	Deposit      *float64       `gorm:"type:numeric(10,2)" json:"deposit,omitempty"`
	LockInPeriod *int           `json:"lockInPeriod,omitempty"`
	Description  string         `gorm:"type:text" json:"description"`
	CoverImage   string         `json:"coverImage,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	Images       []PGImage      `gorm:"foreignKey:PGID" json:"images,omitempty"`
	Rooms        []Room         `gorm:"foreignKey:PGID" json:"rooms,omitempty"`
}

func (PG) TableName() string { return "pgs" }

// AmenitiesList bỏ khoảng trắng và phần tử rỗng
func (p *PG) AmenitiesList() []string {
	out := make([]string, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// LockInMonths trả về 0 nếu PG không có thời gian ràng buộc
func (p *PG) LockInMonths() int {
	if p == nil || p.LockInPeriod == nil || *p.LockInPeriod < 0 {
		return 0
	}
	return *p.LockInPeriod
}

// PrimaryPhoto ưu tiên ảnh bìa, sau đó tới ảnh phụ cũ nhất
func (p *PG) PrimaryPhoto() string {
	if p.CoverImage != "" {
		return p.CoverImage
	}
	if len(p.Images) == 0 {
		return ""
	}
	images := append([]PGImage(nil), p.Images...)
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].ID < images[j].ID
		}
		return images[i].CreatedAt.Before(images[j].CreatedAt)
	})
	return images[0].Image
}

type PGImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PGID      uint      `gorm:"column:pg_id;index;not null" json:"pgId"`
	Image     string    `gorm:"not null" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PGImage) TableName() string { return "pg_images" }
