package models

import (
	"strings"
	"time"
)

// Role phân quyền tài khoản: sinh viên hoặc chủ nhà
type Role string

const (
	RoleStudent Role = "student"
	RoleOwner   Role = "owner"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleOwner
}

// ParseRole chuyển chuỗi sang Role, không phân biệt hoa thường
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

const (
	OccupationStudent = "student"
	OccupationWorking = "working"
)

var Genders = []string{"male", "female", "non_binary", "prefer_not_to_say"}

// UnusablePassword đánh dấu tài khoản không đăng nhập được (khách offline)
const UnusablePassword = "!"

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Username      string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email         string    `gorm:"index;size:254" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	FirstName     string    `gorm:"size:150" json:"firstName"`
	LastName      string    `gorm:"size:150" json:"lastName"`
	Role          Role      `gorm:"type:varchar(10);not null;default:student" json:"role"`
	Age           *int      `json:"age,omitempty"`
	Occupation    string    `gorm:"size:20" json:"occupation,omitempty"`
	Gender        string    `gorm:"size:20" json:"gender,omitempty"`
	ContactNumber string    `gorm:"size:15" json:"contactNumber,omitempty"`
	ProfilePhoto  string    `json:"profilePhoto,omitempty"`
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) IsOwner() bool { return u.Role == RoleOwner }

func (u *User) HasUsablePassword() bool {
	return u.Password != "" && u.Password != UnusablePassword
}

// FullName trả về họ tên, rỗng nếu chưa có
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName ưu tiên họ tên, sau đó tới username
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
