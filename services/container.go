package services

import (
	"synca/repository"
	"synca/services/logger"
	"synca/services/notification"
)

// Options phụ thuộc dùng chung khi dựng các service
type Options struct {
	Store  repository.Store
	Cache  Cache
	Images ImageStore
	Pusher notification.Pusher
	Tokens *TokenManager
	Logger logger.Logger
	Clock  Clock
}

// Services gom toàn bộ service của ứng dụng
type Services struct {
	Tokens        *TokenManager
	Auth          *AuthService
	Catalog       *CatalogService
	Reviews       *ReviewService
	Bookings      *BookingService
	Inventory     *InventoryService
	Profiles      *ProfileService
	Dashboard     *DashboardService
	Properties    *PropertyService
	Notifications *NotificationService
}

func NewServices(opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Images == nil {
		opts.Images = DisabledImageStore{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock(nil)
	}

	notifier := notification.NewStoreService(opts.Store, opts.Pusher, opts.Logger)
	catalog := NewCatalogService(opts.Store, opts.Cache, opts.Logger, opts.Clock)
	bookings := NewBookingService(opts.Store, notifier, opts.Logger, opts.Clock)

	return &Services{
		Tokens:        opts.Tokens,
		Auth:          NewAuthService(opts.Store, opts.Tokens, opts.Logger),
		Catalog:       catalog,
		Reviews:       NewReviewService(opts.Store, catalog, opts.Clock),
		Bookings:      bookings,
		Inventory:     NewInventoryService(opts.Store, bookings, catalog, opts.Logger),
		Profiles:      NewProfileService(opts.Store, opts.Images, opts.Clock),
		Dashboard:     NewDashboardService(opts.Store, opts.Clock),
		Properties:    NewPropertyService(opts.Store, opts.Images, catalog, opts.Logger),
		Notifications: NewNotificationService(opts.Store),
	}
}
