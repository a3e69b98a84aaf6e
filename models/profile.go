package models

import "time"

// StudentProfile thông tin mở rộng của sinh viên, tạo khi truy cập lần đầu
type StudentProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Phone                 string     `gorm:"size:20" json:"phone"`
	DateOfBirth           *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`
	AddressLine           string     `gorm:"size:255" json:"addressLine"`
	City                  string     `gorm:"size:100" json:"city"`
	State                 string     `gorm:"size:100" json:"state"`
	Pincode               string     `gorm:"size:10" json:"pincode"`
	College               string     `gorm:"size:255" json:"college"`
	Course                string     `gorm:"size:255" json:"course"`
	AcademicYear          string     `gorm:"size:100" json:"academicYear"`
	EmergencyContactName  string     `gorm:"size:255" json:"emergencyContactName"`
	EmergencyContactPhone string     `gorm:"size:20" json:"emergencyContactPhone"`
	Bio                   string     `gorm:"type:text" json:"bio"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	User                  *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
