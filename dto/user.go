package dto

import "synca/models"

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required"`
	Comment string `json:"comment" validate:"required"`
}

type ReviewEligibility struct {
	CanReview bool           `json:"canReview"`
	Reason    string         `json:"reason,omitempty"`
	Existing  *models.Review `json:"existing,omitempty"`
}

type ProfileInput struct {
	FirstName             string `json:"firstName" validate:"max=150"`
	LastName              string `json:"lastName" validate:"max=150"`
	Age                   *int   `json:"age" validate:"omitempty,min=0"`
	Gender                string `json:"gender" validate:"omitempty,gender"`
	ContactNumber         string `json:"contactNumber" validate:"contact"`
	RemoveProfilePhoto    bool   `json:"removeProfilePhoto"`
	Phone                 string `json:"phone" validate:"max=20"`
	DateOfBirth           string `json:"dateOfBirth" validate:"omitempty,date"`
	AddressLine           string `json:"addressLine" validate:"max=255"`
	City                  string `json:"city" validate:"max=100"`
	State                 string `json:"state" validate:"max=100"`
	Pincode               string `json:"pincode" validate:"omitempty,max=10,digits"`
	College               string `json:"college" validate:"max=255"`
	Course                string `json:"course" validate:"max=255"`
	AcademicYear          string `json:"academicYear" validate:"max=100"`
	EmergencyContactName  string `json:"emergencyContactName" validate:"max=255"`
	EmergencyContactPhone string `json:"emergencyContactPhone" validate:"max=20"`
	Bio                   string `json:"bio"`
}

type PasswordInput struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type StudentProfileView struct {
	User           models.User           `json:"user"`
	Profile        models.StudentProfile `json:"profile"`
	RecentBookings []BookingView         `json:"recentBookings"`
}

type PGStats struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Area          string `json:"area"`
	RoomCount     int    `json:"roomCount"`
	TotalBeds     int    `json:"totalBeds"`
	OccupiedBeds  int    `json:"occupiedBeds"`
	AvailableBeds int    `json:"availableBeds"`
}

type DashboardStats struct {
	TotalPGs      int     `json:"totalPgs"`
	TotalBeds     int     `json:"totalBeds"`
	OccupiedBeds  int     `json:"occupiedBeds"`
	OccupancyRate float64 `json:"occupancyRate"`
}

type Dashboard struct {
	Properties []PGStats      `json:"properties"`
	Stats      DashboardStats `json:"stats"`
	Bookings   []BookingView  `json:"bookings"`
	Students   []UserBrief    `json:"students"`
}
