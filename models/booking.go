package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingStatuses thứ tự hiển thị các nhóm trạng thái
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusActive,
	BookingStatusUpcoming,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// LiveStatuses các trạng thái đang giữ giường
var LiveStatuses = []BookingStatus{BookingStatusPending, BookingStatusUpcoming, BookingStatusActive}

func (s BookingStatus) IsLive() bool {
	return s == BookingStatusPending || s == BookingStatusUpcoming || s == BookingStatusActive
}

func (s BookingStatus) Label() string {
	switch s {
	case BookingStatusPending:
		return "Pending Owner Approval"
	case BookingStatusUpcoming:
		return "Upcoming"
	case BookingStatusActive:
		return "Active"
	case BookingStatusCompleted:
		return "Completed"
	case BookingStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type BookingType string

const (
	BookingTypeOnline  BookingType = "Online"
	BookingTypeOffline BookingType = "Offline"
)

type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      *uint         `gorm:"index" json:"userId"`
	User        *User         `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	BedID       uint          `gorm:"index;not null" json:"bedId"`
	Bed         *Bed          `gorm:"foreignKey:BedID;constraint:OnDelete:CASCADE" json:"bed,omitempty"`
	Type        BookingType   `gorm:"column:booking_type;type:varchar(10);not null" json:"bookingType"`
	Status      BookingStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	BookingDate time.Time     `gorm:"autoCreateTime" json:"bookingDate"`
	CheckIn     *time.Time    `gorm:"type:date" json:"checkIn,omitempty"`
	CheckOut    *time.Time    `gorm:"type:date" json:"checkOut,omitempty"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
}

// Booking field names dùng cho cập nhật từng phần
const (
	FieldStatus      = "status"
	FieldCheckIn     = "check_in"
	FieldCheckOut    = "check_out"
	FieldCancelledAt = "cancelled_at"
	FieldUserID      = "user_id"
)
