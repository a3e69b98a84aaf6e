package dto

import "synca/models"

type OnlineBookingInput struct {
	CheckIn string `json:"checkIn" validate:"omitempty,date"`
	Notes   string `json:"notes" validate:"max=1000"`
}

type OfflineBookingInput struct {
	BedID         uint   `json:"bedId" validate:"required"`
	FirstName     string `json:"firstName" validate:"required,max=150"`
	LastName      string `json:"lastName" validate:"required,max=150"`
	Email         string `json:"email" validate:"required,email"`
	Age           *int   `json:"age" validate:"omitempty,min=0"`
	Gender        string `json:"gender" validate:"omitempty,gender"`
	Occupation    string `json:"occupation" validate:"omitempty,occupation"`
	ContactNumber string `json:"contactNumber" validate:"max=15"`
	CheckIn       string `json:"checkIn" validate:"omitempty,date"`
}

type BookingDatesInput struct {
	CheckIn  string `json:"checkIn" validate:"omitempty,date"`
	CheckOut string `json:"checkOut" validate:"omitempty,date"`
}

type OccupantInput struct {
	UserID *uint `json:"userId"`
}

type AvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type Quote struct {
	MonthlyRent       float64 `json:"monthlyRent"`
	SecurityDeposit   float64 `json:"securityDeposit"`
	TotalAmount       float64 `json:"totalAmount"`
	DepositApplicable bool    `json:"depositApplicable"`
	LockInPeriod      int     `json:"lockInPeriod"`
}

// ActionOutcome kết quả duyệt/hủy của owner: "success" hoặc "info"
type ActionOutcome struct {
	Level   string          `json:"level"`
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking,omitempty"`
}

type BookingView struct {
	models.Booking
	PGID          uint    `json:"pgId"`
	PGName        string  `json:"pgName"`
	RoomNumber    string  `json:"roomNumber"`
	BedIdentifier string  `json:"bedIdentifier"`
	StatusLabel   string  `json:"statusLabel"`
	MonthlyRent   float64 `json:"monthlyRent"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	CanApprove    bool    `json:"canApprove"`
	CanCancel     bool    `json:"canCancel"`
}

type BookingSuccess struct {
	Booking       BookingView   `json:"booking"`
	Quote         Quote         `json:"quote"`
	Roommates     []BookingView `json:"roommates"`
	AwaitingOwner bool          `json:"awaitingOwner"`
}

type StudentBookings struct {
	Bookings []BookingView                          `json:"bookings"`
	Grouped  map[models.BookingStatus][]BookingView `json:"grouped"`
	Counts   map[string]int                         `json:"counts"`
}

type AvailableBed struct {
	ID         uint    `json:"id"`
	Label      string  `json:"label"`
	PGID       uint    `json:"pgId"`
	PGName     string  `json:"pgName"`
	RoomNumber string  `json:"roomNumber"`
	Identifier string  `json:"identifier"`
	Price      float64 `json:"price"`
}
