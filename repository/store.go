// Package repository định nghĩa tầng truy cập dữ liệu. GormStore dùng Postgres,
// memstore dùng cho test và chạy local không cần database.
package repository

import (
	"context"
	"errors"

	"synca/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store gom các repository, mọi thao tác ghi nhiều bảng chạy trong Transaction
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	PGs() PGRepository
	Rooms() RoomRepository
	Beds() BedRepository
	Bookings() BookingRepository
	Reviews() ReviewRepository
	Notifications() NotificationRepository

	// Transaction chạy fn trong một transaction; lỗi trả về sẽ rollback toàn bộ.
	// Gọi lồng nhau dùng lại transaction đang mở.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByEmail so khớp chính xác, lấy bản ghi cũ nhất
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID uint) (*models.StudentProfile, error)
	Save(ctx context.Context, p *models.StudentProfile) error
}

// PGQuery điều kiện lọc catalog, giá trị rỗng bỏ qua
type PGQuery struct {
	Area     string
	Type     string
	RoomType string
	MaxPrice *float64
}

type PGRepository interface {
	Create(ctx context.Context, pg *models.PG) error
	Update(ctx context.Context, pg *models.PG) error
	// FindByID nạp kèm Images
	FindByID(ctx context.Context, id uint) (*models.PG, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.PG, error)
	// Search trả về PG không trùng lặp, nạp kèm Images và toàn bộ Rooms
	Search(ctx context.Context, q PGQuery) ([]models.PG, error)
	Areas(ctx context.Context) ([]string, error)
	AddImage(ctx context.Context, img *models.PGImage) error
}

type RoomRepository interface {
	Create(ctx context.Context, r *models.Room) error
	// FindByID nạp kèm PG
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	// ListByPG sắp theo số phòng, nạp Beds theo tên giường
	ListByPG(ctx context.Context, pgID uint) ([]models.Room, error)
	NumberExists(ctx context.Context, pgID uint, number string) (bool, error)
}

type BedRepository interface {
	Create(ctx context.Context, b *models.Bed) error
	// FindByID nạp kèm Room và PG
	FindByID(ctx context.Context, id uint) (*models.Bed, error)
	CountByRoom(ctx context.Context, roomID uint) (int, error)
	IdentifierExists(ctx context.Context, roomID uint, identifier string) (bool, error)
	// Claim chuyển giường sang đã có người nếu đang trống, false khi giường đã bị giữ
	Claim(ctx context.Context, id uint) (bool, error)
	SetAvailable(ctx context.Context, id uint, available bool) error
	ListAvailableByOwner(ctx context.Context, ownerID uint) ([]models.Bed, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	// FindByID nạp kèm User, Bed, Room, PG
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	// Update chỉ ghi các cột được liệt kê
	Update(ctx context.Context, b *models.Booking, fields ...string) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error)
	ListByPG(ctx context.Context, pgID uint) ([]models.Booking, error)
	ListByBed(ctx context.Context, bedID uint, statuses ...models.BookingStatus) ([]models.Booking, error)
	ListByRoom(ctx context.Context, roomID uint, statuses ...models.BookingStatus) ([]models.Booking, error)
	ListByUserInPG(ctx context.Context, userID, pgID uint) ([]models.Booking, error)
	ListByStatus(ctx context.Context, statuses ...models.BookingStatus) ([]models.Booking, error)
	// HasLive kiểm tra giường còn booking pending/upcoming/active khác excludeID
	HasLive(ctx context.Context, bedID, excludeID uint) (bool, error)
}

type ReviewRepository interface {
	FindByPGAndUser(ctx context.Context, pgID, userID uint) (*models.Review, error)
	Save(ctx context.Context, r *models.Review) error
	ListByPG(ctx context.Context, pgID uint) ([]models.Review, error)
	AverageRatings(ctx context.Context, pgIDs []uint) (map[uint]float64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) error
}
