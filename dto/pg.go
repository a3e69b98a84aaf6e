package dto

import "synca/models"

// PGFilters bộ lọc danh sách PG, cũng là giá trị lưu lại theo session
type PGFilters struct {
	Area     string   `json:"area,omitempty" form:"area"`
	PGType   string   `json:"pgType,omitempty" form:"pg_type"`
	RoomType string   `json:"roomType,omitempty" form:"room_type"`
	MaxPrice *float64 `json:"maxPrice,omitempty" form:"-"`
}

func (f PGFilters) IsEmpty() bool {
	return f.Area == "" && f.PGType == "" && f.RoomType == "" && f.MaxPrice == nil
}

type PGSummary struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	Area          string        `json:"area"`
	Address       string        `json:"address"`
	Type          models.PGType `json:"type"`
	Amenities     []string      `json:"amenities"`
	PrimaryPhoto  string        `json:"primaryPhoto,omitempty"`
	MinPrice      *float64      `json:"minPrice"`
	AverageRating *float64      `json:"averageRating"`
}

type CatalogResult struct {
	Filters       PGFilters   `json:"filters"`
	PGs           []PGSummary `json:"pgs"`
	SuggestedArea string      `json:"suggestedArea,omitempty"`
}

type PropertyInput struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Area         string   `json:"area" validate:"required,max=100"`
	Address      string   `json:"address" validate:"required"`
	City         string   `json:"city" validate:"required,max=100"`
	Pincode      string   `json:"pincode" validate:"required,max=10,digits"`
	Type         string   `json:"type" validate:"required,pgtype"`
	Description  string   `json:"description"`
	Amenities    []string `json:"amenities" validate:"omitempty,dive,amenity"`
	Deposit      *float64 `json:"deposit" validate:"omitempty,gte=0"`
	LockInPeriod *int     `json:"lockInPeriod" validate:"omitempty,gte=0"`
	CoverImage   string   `json:"coverImage" validate:"omitempty,url"`
}

type RoomInput struct {
	RoomNumber  string  `json:"roomNumber" validate:"required,max=20"`
	RoomType    string  `json:"roomType" validate:"required,roomtype"`
	PricePerBed float64 `json:"pricePerBed" validate:"gte=0"`
}

type BedInput struct {
	RoomID     uint   `json:"roomId" validate:"required"`
	Identifier string `json:"identifier" validate:"required,max=20"`
}

type BedView struct {
	ID             uint            `json:"id"`
	Identifier     string          `json:"identifier"`
	IsAvailable    bool            `json:"isAvailable"`
	State          string          `json:"state"`
	CurrentBooking *models.Booking `json:"currentBooking,omitempty"`
	Occupant       *UserBrief      `json:"occupant,omitempty"`
	PendingBooking *models.Booking `json:"pendingBooking,omitempty"`
}

type RoomView struct {
	ID            uint      `json:"id"`
	RoomNumber    string    `json:"roomNumber"`
	RoomType      string    `json:"roomType"`
	PricePerBed   float64   `json:"pricePerBed"`
	Capacity      *int      `json:"capacity"`
	TotalBeds     int       `json:"totalBeds"`
	AvailableBeds int       `json:"availableBeds"`
	Beds          []BedView `json:"beds"`
	RoommateBeds  []uint    `json:"roommateBeds"`
}

type ReviewView struct {
	ID        uint   `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

type PGDetail struct {
	PG            models.PG    `json:"pg"`
	Amenities     []string     `json:"amenities"`
	PrimaryPhoto  string       `json:"primaryPhoto,omitempty"`
	LockInPeriod  *int         `json:"lockInPeriod"`
	Deposit       *float64     `json:"deposit"`
	Rooms         []RoomView   `json:"rooms"`
	Reviews       []ReviewView `json:"reviews"`
	AverageRating *float64     `json:"averageRating"`
}

type UserBrief struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

func NewUserBrief(u *models.User) *UserBrief {
	if u == nil {
		return nil
	}
	return &UserBrief{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.DisplayName(),
		Email:         u.Email,
		ContactNumber: u.ContactNumber,
	}
}
