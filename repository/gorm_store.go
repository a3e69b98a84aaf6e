package repository

import (
	"context"
	"errors"
	"strings"

	"synca/models"

	"gorm.io/gorm"
)

// GormStore cài đặt Store trên gorm/Postgres
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository                 { return &gormUsers{s.db} }
func (s *GormStore) Profiles() ProfileRepository           { return &gormProfiles{s.db} }
func (s *GormStore) PGs() PGRepository                     { return &gormPGs{s.db} }
func (s *GormStore) Rooms() RoomRepository                 { return &gormRooms{s.db} }
func (s *GormStore) Beds() BedRepository                   { return &gormBeds{s.db} }
func (s *GormStore) Bookings() BookingRepository           { return &gormBookings{s.db} }
func (s *GormStore) Reviews() ReviewRepository             { return &gormReviews{s.db} }
func (s *GormStore) Notifications() NotificationRepository { return &gormNotifications{s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&GormStore{db: tx, inTx: true}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// translate đổi lỗi gorm sang lỗi của repository
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func statusStrings(statuses []models.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ---- users ----

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUsers) Update(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *gormUsers) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("id").First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *gormUsers) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("username").Find(&users).Error
	return users, err
}

// ---- profiles ----

type gormProfiles struct{ db *gorm.DB }

func (r *gormProfiles) GetOrCreate(ctx context.Context, userID uint) (*models.StudentProfile, error) {
	var p models.StudentProfile
	err := r.db.WithContext(ctx).Where(models.StudentProfile{UserID: userID}).FirstOrCreate(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormProfiles) Save(ctx context.Context, p *models.StudentProfile) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// ---- pgs ----

type gormPGs struct{ db *gorm.DB }

func (r *gormPGs) Create(ctx context.Context, pg *models.PG) error {
	return translate(r.db.WithContext(ctx).Omit("Owner", "Images", "Rooms").Create(pg).Error)
}

func (r *gormPGs) Update(ctx context.Context, pg *models.PG) error {
	return translate(r.db.WithContext(ctx).Omit("Owner", "Images", "Rooms").Save(pg).Error)
}

func (r *gormPGs) FindByID(ctx context.Context, id uint) (*models.PG, error) {
	var pg models.PG
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&pg, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pg, nil
}

func (r *gormPGs) ListByOwner(ctx context.Context, ownerID uint) ([]models.PG, error) {
	var pgs []models.PG
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("owner_id = ?", ownerID).
		Order("name, id").
		Find(&pgs).Error
	return pgs, err
}

func (r *gormPGs) Search(ctx context.Context, q PGQuery) ([]models.PG, error) {
	sub := r.db.WithContext(ctx).Model(&models.PG{}).Select("DISTINCT pgs.id")
	if q.Area != "" {
		sub = sub.Where("LOWER(pgs.area) = ?", strings.ToLower(q.Area))
	}
	if q.Type != "" {
		sub = sub.Where("pgs.type = ?", q.Type)
	}
	if q.RoomType != "" || q.MaxPrice != nil {
		sub = sub.Joins("JOIN rooms ON rooms.pg_id = pgs.id")
		if q.RoomType != "" {
			sub = sub.Where("rooms.room_type = ?", q.RoomType)
		}
		if q.MaxPrice != nil {
			sub = sub.Where("rooms.price_per_bed <= ?", *q.MaxPrice)
		}
	}

	var pgs []models.PG
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Rooms").
		Where("id IN (?)", sub).
		Order("id").
		Find(&pgs).Error
	return pgs, err
}

func (r *gormPGs) Areas(ctx context.Context) ([]string, error) {
	var areas []string
	err := r.db.WithContext(ctx).Model(&models.PG{}).Distinct("area").Order("area").Pluck("area", &areas).Error
	return areas, err
}

func (r *gormPGs) AddImage(ctx context.Context, img *models.PGImage) error {
	return translate(r.db.WithContext(ctx).Create(img).Error)
}

// ---- rooms ----

type gormRooms struct{ db *gorm.DB }

func (r *gormRooms) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Omit("PG", "Beds").Create(room).Error)
}

func (r *gormRooms) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Preload("PG").First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *gormRooms) ListByPG(ctx context.Context, pgID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("Beds", func(db *gorm.DB) *gorm.DB { return db.Order("identifier, id") }).
		Where("pg_id = ?", pgID).
		Order("room_number, id").
		Find(&rooms).Error
	return rooms, err
}

func (r *gormRooms) NumberExists(ctx context.Context, pgID uint, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("pg_id = ? AND LOWER(room_number) = ?", pgID, strings.ToLower(strings.TrimSpace(number))).
		Count(&count).Error
	return count > 0, err
}

// ---- beds ----

type gormBeds struct{ db *gorm.DB }

func (r *gormBeds) Create(ctx context.Context, b *models.Bed) error {
	// Select để gorm không bỏ qua is_available=false
	return translate(r.db.WithContext(ctx).Select("RoomID", "Identifier", "IsAvailable").Create(b).Error)
}

func (r *gormBeds) FindByID(ctx context.Context, id uint) (*models.Bed, error) {
	var b models.Bed
	if err := r.db.WithContext(ctx).Preload("Room.PG").First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBeds) CountByRoom(ctx context.Context, roomID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bed{}).Where("room_id = ?", roomID).Count(&count).Error
	return int(count), err
}

func (r *gormBeds) IdentifierExists(ctx context.Context, roomID uint, identifier string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bed{}).
		Where("room_id = ? AND LOWER(identifier) = ?", roomID, strings.ToLower(strings.TrimSpace(identifier))).
		Count(&count).Error
	return count > 0, err
}

func (r *gormBeds) Claim(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Bed{}).
		Where("id = ? AND is_available = ?", id, true).
		Update("is_available", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormBeds) SetAvailable(ctx context.Context, id uint, available bool) error {
	res := r.db.WithContext(ctx).Model(&models.Bed{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormBeds) ListAvailableByOwner(ctx context.Context, ownerID uint) ([]models.Bed, error) {
	var beds []models.Bed
	err := r.db.WithContext(ctx).
		Preload("Room.PG").
		Joins("JOIN rooms ON rooms.id = beds.room_id").
		Joins("JOIN pgs ON pgs.id = rooms.pg_id").
		Where("pgs.owner_id = ? AND beds.is_available = ?", ownerID, true).
		Order("pgs.name, rooms.room_number, beds.identifier").
		Find(&beds).Error
	return beds, err
}

// ---- bookings ----

type gormBookings struct{ db *gorm.DB }

func (r *gormBookings) full(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Bed.Room.PG.Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") })
}

func (r *gormBookings) Create(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit("User", "Bed").Create(b).Error)
}

func (r *gormBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.full(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormBookings) Update(ctx context.Context, b *models.Booking, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch f {
		case models.FieldStatus:
			values[f] = b.Status
		case models.FieldCheckIn:
			values[f] = b.CheckIn
		case models.FieldCheckOut:
			values[f] = b.CheckOut
		case models.FieldCancelledAt:
			values[f] = b.CancelledAt
		case models.FieldUserID:
			values[f] = b.UserID
		}
	}
	res := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", b.ID).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormBookings) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.full(ctx).Where("user_id = ?", userID).Order("booking_date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.full(ctx).
		Joins("JOIN beds ON beds.id = bookings.bed_id").
		Joins("JOIN rooms ON rooms.id = beds.room_id").
		Joins("JOIN pgs ON pgs.id = rooms.pg_id").
		Where("pgs.owner_id = ?", ownerID).
		Order("bookings.booking_date DESC, bookings.id DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByPG(ctx context.Context, pgID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN beds ON beds.id = bookings.bed_id").
		Joins("JOIN rooms ON rooms.id = beds.room_id").
		Where("rooms.pg_id = ?", pgID).
		Order("bookings.booking_date DESC, bookings.id DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByBed(ctx context.Context, bedID uint, statuses ...models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Preload("User").Where("bed_id = ?", bedID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statusStrings(statuses))
	}
	err := q.Order("booking_date DESC, id DESC").Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByRoom(ctx context.Context, roomID uint, statuses ...models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Bed").
		Joins("JOIN beds ON beds.id = bookings.bed_id").
		Where("beds.room_id = ?", roomID)
	if len(statuses) > 0 {
		q = q.Where("bookings.status IN ?", statusStrings(statuses))
	}
	err := q.Order("beds.identifier, bookings.id").Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByUserInPG(ctx context.Context, userID, pgID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Joins("JOIN beds ON beds.id = bookings.bed_id").
		Joins("JOIN rooms ON rooms.id = beds.room_id").
		Where("bookings.user_id = ? AND rooms.pg_id = ?", userID, pgID).
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) ListByStatus(ctx context.Context, statuses ...models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(statuses)).
		Order("id").
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookings) HasLive(ctx context.Context, bedID, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("bed_id = ? AND id <> ? AND status IN ?", bedID, excludeID, statusStrings(models.LiveStatuses)).
		Count(&count).Error
	return count > 0, err
}

// ---- reviews ----

type gormReviews struct{ db *gorm.DB }

func (r *gormReviews) FindByPGAndUser(ctx context.Context, pgID, userID uint) (*models.Review, error) {
	var rv models.Review
	err := r.db.WithContext(ctx).Where("pg_id = ? AND user_id = ?", pgID, userID).Order("id").First(&rv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *gormReviews) Save(ctx context.Context, rv *models.Review) error {
	return translate(r.db.WithContext(ctx).Omit("User").Save(rv).Error)
}

func (r *gormReviews) ListByPG(ctx context.Context, pgID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).Preload("User").
		Where("pg_id = ?", pgID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *gormReviews) AverageRatings(ctx context.Context, pgIDs []uint) (map[uint]float64, error) {
	out := make(map[uint]float64, len(pgIDs))
	if len(pgIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PGID uint    `gorm:"column:pg_id"`
		Avg  float64 `gorm:"column:avg"`
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("pg_id, AVG(rating) AS avg").
		Where("pg_id IN ?", pgIDs).
		Group("pg_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PGID] = row.Avg
	}
	return out, nil
}

// ---- notifications ----

type gormNotifications struct{ db *gorm.DB }

func (r *gormNotifications) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(n).Error)
}

func (r *gormNotifications) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *gormNotifications) MarkAllRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
