package repository

import (
	"context"
	"os"
	"regexp"
	"testing"
	"time"

	"synca/migrations"
	"synca/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockStore gorm trên sqlmock, bỏ transaction mặc định để chỉ thấy câu lệnh chính
func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormClaimIsConditionalUpdate(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	claimSQL := `UPDATE "beds" SET "is_available"=$1 WHERE id = $2 AND is_available = $3`

	mock.ExpectExec(regexp.QuoteMeta(claimSQL)).
		WithArgs(false, 7, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	claimed, err := store.Beds().Claim(ctx, 7)
	require.NoError(t, err)
	assert.True(t, claimed)

	mock.ExpectExec(regexp.QuoteMeta(claimSQL)).
		WithArgs(false, 7, true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	claimed, err = store.Beds().Claim(ctx, 7)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormHasLiveCountsOtherLiveBookings(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bookings" WHERE bed_id = $1 AND id <> $2 AND status IN ($3,$4,$5)`)).
		WithArgs(3, 11, "pending", "upcoming", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	live, err := store.Bookings().HasLive(ctx, 3, 11)
	require.NoError(t, err)
	assert.True(t, live)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBookingUpdateWritesOnlyListedColumns(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	b := &models.Booking{ID: 9, Status: models.BookingStatusCompleted, Notes: "not written"}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET "status"=$1 WHERE id = $2`)).
		WithArgs("completed", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Bookings().Update(ctx, b, models.FieldStatus))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bookings" SET "status"=$1 WHERE id = $2`)).
		WithArgs("completed", 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Bookings().Update(ctx, b, models.FieldStatus), ErrNotFound)

	require.NoError(t, store.Bookings().Update(ctx, b))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Các test dưới chạy với Postgres thật khi có SYNCA_TEST_DATABASE_DSN
func openTestDB(t *testing.T) *GormStore {
	t.Helper()
	dsn := os.Getenv("SYNCA_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("SYNCA_TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.Up(ctx, sqlDB))
	version, err := migrations.Version(ctx, sqlDB)
	require.NoError(t, err)
	require.GreaterOrEqual(t, version, int64(1))
	reset := func() {
		require.NoError(t, db.Exec(`TRUNCATE notifications, reviews, bookings, beds, rooms, pg_images, pgs, student_profiles, users RESTART IDENTITY CASCADE`).Error)
	}
	reset()
	t.Cleanup(reset)
	return NewGormStore(db)
}

type pgFixture struct {
	owner   *models.User
	sunrise *models.PG
	budget  *models.PG
	bed     *models.Bed
}

func seedPostgres(t *testing.T, s *GormStore) *pgFixture {
	t.Helper()
	ctx := context.Background()
	f := &pgFixture{owner: &models.User{Username: "owner", Email: "owner@example.com", Password: "x", Role: models.RoleOwner}}
	require.NoError(t, s.Users().Create(ctx, f.owner))

	f.sunrise = &models.PG{OwnerID: f.owner.ID, Name: "Sunrise", Area: "Koramangala", Type: models.PGTypeCoed, Amenities: pq.StringArray{"WiFi"}}
	require.NoError(t, s.PGs().Create(ctx, f.sunrise))
	f.budget = &models.PG{OwnerID: f.owner.ID, Name: "Budget", Area: "BTM", Type: models.PGTypeBoys, Amenities: pq.StringArray{}}
	require.NoError(t, s.PGs().Create(ctx, f.budget))

	rooms := []*models.Room{
		{PGID: f.sunrise.ID, RoomNumber: "101", RoomType: "2-sharing", PricePerBed: 8000},
		{PGID: f.sunrise.ID, RoomNumber: "102", RoomType: "3-sharing", PricePerBed: 6000},
		{PGID: f.budget.ID, RoomNumber: "1", RoomType: "1-sharing", PricePerBed: 12000},
	}
	for _, r := range rooms {
		require.NoError(t, s.Rooms().Create(ctx, r))
	}
	f.bed = &models.Bed{RoomID: rooms[0].ID, Identifier: "A", IsAvailable: true}
	require.NoError(t, s.Beds().Create(ctx, f.bed))
	return f
}

func TestPostgresClaimWinsOnce(t *testing.T) {
	s := openTestDB(t)
	f := seedPostgres(t, s)
	ctx := context.Background()

	claimed, err := s.Beds().Claim(ctx, f.bed.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.Beds().Claim(ctx, f.bed.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	bed, err := s.Beds().FindByID(ctx, f.bed.ID)
	require.NoError(t, err)
	assert.False(t, bed.IsAvailable)
	require.NotNil(t, bed.Room)
	require.NotNil(t, bed.Room.PG)
	assert.Equal(t, "Sunrise", bed.Room.PG.Name)
}

func TestPostgresBookingQueries(t *testing.T) {
	s := openTestDB(t)
	f := seedPostgres(t, s)
	ctx := context.Background()

	b := &models.Booking{BedID: f.bed.ID, Type: models.BookingTypeOnline, Status: models.BookingStatusPending}
	require.NoError(t, s.Bookings().Create(ctx, b))

	live, err := s.Bookings().HasLive(ctx, f.bed.ID, 0)
	require.NoError(t, err)
	assert.True(t, live)
	live, err = s.Bookings().HasLive(ctx, f.bed.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, live)

	in := models.Date(2025, time.March, 10)
	out := models.Date(2025, time.April, 9)
	b.Status = models.BookingStatusActive
	b.CheckIn, b.CheckOut = &in, &out
	b.Notes = "ignored"
	require.NoError(t, s.Bookings().Update(ctx, b, models.FieldStatus, models.FieldCheckIn, models.FieldCheckOut))

	owned, err := s.Bookings().ListByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, models.BookingStatusActive, owned[0].Status)
	assert.Empty(t, owned[0].Notes)
	require.NotNil(t, owned[0].CheckOut)
	assert.True(t, out.Equal(models.DateOf(*owned[0].CheckOut)))
	require.NotNil(t, owned[0].Bed)
	require.NotNil(t, owned[0].Bed.Room)
	require.NotNil(t, owned[0].Bed.Room.PG)
	assert.Equal(t, f.sunrise.ID, owned[0].Bed.Room.PG.ID)

	other, err := s.Bookings().ListByOwner(ctx, f.owner.ID+100)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPostgresSearchFilters(t *testing.T) {
	s := openTestDB(t)
	f := seedPostgres(t, s)
	ctx := context.Background()

	ids := func(q PGQuery) []uint {
		t.Helper()
		pgs, err := s.PGs().Search(ctx, q)
		require.NoError(t, err)
		out := make([]uint, 0, len(pgs))
		for _, pg := range pgs {
			out = append(out, pg.ID)
		}
		return out
	}
	maxPrice := 9000.0

	assert.Equal(t, []uint{f.sunrise.ID, f.budget.ID}, ids(PGQuery{}))
	assert.Equal(t, []uint{f.sunrise.ID}, ids(PGQuery{Area: "koramangala"}))
	assert.Equal(t, []uint{f.budget.ID}, ids(PGQuery{Type: string(models.PGTypeBoys)}))
	assert.Equal(t, []uint{f.budget.ID}, ids(PGQuery{RoomType: "1-sharing"}))
	// hai phòng cùng khớp giá vẫn chỉ trả về một PG
	assert.Equal(t, []uint{f.sunrise.ID}, ids(PGQuery{MaxPrice: &maxPrice}))
	assert.Empty(t, ids(PGQuery{Area: "BTM", MaxPrice: &maxPrice}))

	pgs, err := s.PGs().Search(ctx, PGQuery{Area: "Koramangala"})
	require.NoError(t, err)
	require.Len(t, pgs, 1)
	assert.Len(t, pgs[0].Rooms, 2)
}
