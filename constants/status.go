package constants

import "time"

// Tiện ích owner được phép chọn cho PG
var Amenities = []string{
	"WiFi",
	"AC",
	"Meals",
	"Laundry",
	"Security",
	"Parking",
	"Gym",
	"Power Backup",
	"Refrigerator",
}

const (
	RecentBookingsLimit = 3
	PlaceholderImage    = "https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=800"

	// Ngưỡng tương đồng để gợi ý khu vực khi lọc không ra kết quả
	AreaMatchThreshold = 0.6
)

// Cache
const (
	CatalogCacheTTL     = 10 * time.Minute
	LastFiltersTTL      = 30 * time.Minute
	CatalogVersionKey   = "catalog:version"
	LastFiltersPrefix   = "last_filters:"
	CatalogResultPrefix = "catalog:"
)

// Thông báo
const (
	NotifyBookingRequested = "New booking request"
	NotifyBookingApproved  = "Booking approved"
	NotifyBookingCancelled = "Booking cancelled"
	NotifyOfflineBooking   = "You have been added to a PG"
)
