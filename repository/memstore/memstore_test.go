package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"synca/models"
	"synca/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBed(t *testing.T, s *Store) (*models.PG, *models.Room, *models.Bed) {
	t.Helper()
	ctx := context.Background()
	owner := &models.User{Username: "owner", Role: models.RoleOwner}
	require.NoError(t, s.Users().Create(ctx, owner))
	pg := &models.PG{OwnerID: owner.ID, Name: "Sunshine", Area: "Koramangala", Type: models.PGTypeCoed}
	require.NoError(t, s.PGs().Create(ctx, pg))
	room := &models.Room{PGID: pg.ID, RoomNumber: "101", RoomType: "2-sharing", PricePerBed: 8000}
	require.NoError(t, s.Rooms().Create(ctx, room))
	bed := &models.Bed{RoomID: room.ID, Identifier: "A", IsAvailable: true}
	require.NoError(t, s.Beds().Create(ctx, bed))
	return pg, room, bed
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _, bed := seedBed(t, s)

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		ok, err := tx.Beds().Claim(ctx, bed.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.Bookings().Create(ctx, &models.Booking{BedID: bed.ID, Status: models.BookingStatusPending}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Beds().FindByID(ctx, bed.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	list, err := s.Bookings().ListByBed(ctx, bed.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClaimIsExclusive(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _, bed := seedBed(t, s)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Transaction(ctx, func(tx repository.Store) error {
				ok, err := tx.Beds().Claim(ctx, bed.ID)
				if err != nil || !ok {
					return err
				}
				mu.Lock()
				wins++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestBookingRelationsAreLoaded(t *testing.T) {
	s := New()
	ctx := context.Background()
	pg, room, bed := seedBed(t, s)
	student := &models.User{Username: "asha", Role: models.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, student))

	b := &models.Booking{UserID: &student.ID, BedID: bed.ID, Status: models.BookingStatusPending, Type: models.BookingTypeOnline}
	require.NoError(t, s.Bookings().Create(ctx, b))

	got, err := s.Bookings().FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.NotNil(t, got.Bed)
	require.NotNil(t, got.Bed.Room)
	require.NotNil(t, got.Bed.Room.PG)
	assert.Equal(t, room.ID, got.Bed.Room.ID)
	assert.Equal(t, pg.ID, got.Bed.Room.PG.ID)

	owned, err := s.Bookings().ListByOwner(ctx, pg.OwnerID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	live, err := s.Bookings().HasLive(ctx, bed.ID, 0)
	require.NoError(t, err)
	assert.True(t, live)
	live, err = s.Bookings().HasLive(ctx, bed.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSearchFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	pg, _, _ := seedBed(t, s)

	maxPrice := 5000.0
	found, err := s.PGs().Search(ctx, repository.PGQuery{Area: "koramangala"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pg.ID, found[0].ID)
	assert.Len(t, found[0].Rooms, 1)

	found, err = s.PGs().Search(ctx, repository.PGQuery{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.PGs().Search(ctx, repository.PGQuery{RoomType: "2-sharing", Type: "coed"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUsernameUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, &models.User{Username: "ravi"}))
	err := s.Users().Create(ctx, &models.User{Username: "ravi"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := s.Users().UsernameExists(ctx, "ravi")
	require.NoError(t, err)
	assert.True(t, exists)
}
