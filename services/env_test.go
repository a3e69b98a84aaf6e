package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"synca/dto"
	"synca/models"
	"synca/repository/memstore"

	"github.com/stretchr/testify/require"
)

// 10/03/2025 10:00 UTC
var testNow = time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)

type recordingPusher struct {
	mu    sync.Mutex
	users []uint
}

func (p *recordingPusher) SendToUser(userID uint, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	return nil
}

func (p *recordingPusher) sent() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint(nil), p.users...)
}

type testEnv struct {
	ctx     context.Context
	store   *memstore.Store
	svc     *Services
	pusher  *recordingPusher
	owner   *Actor
	student *Actor
	other   *Actor
	pg      *models.PG
	room    *models.Room
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	store.SetNow(func() time.Time { return testNow })
	pusher := &recordingPusher{}
	svc := NewServices(Options{
		Store:  store,
		Pusher: pusher,
		Tokens: NewTokenManager("test-secret", time.Hour),
		Clock:  FixedClock(testNow),
	})

	env := &testEnv{ctx: ctx, store: store, svc: svc, pusher: pusher}
	env.owner = env.createUser(t, "owner", "owner@example.com", models.RoleOwner)
	env.student = env.createUser(t, "asha", "asha@example.com", models.RoleStudent)
	env.other = env.createUser(t, "bilal", "bilal@example.com", models.RoleStudent)
	env.pg = env.createPG(t, "Sunrise PG", "Koramangala", nil)
	env.room = env.createRoom(t, env.pg.ID, "101", "2-sharing", 8000)
	return env
}

func (e *testEnv) createUser(t *testing.T, username, email string, role models.Role) *Actor {
	t.Helper()
	hashed, err := HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{Username: username, Email: email, Password: hashed, Role: role}
	require.NoError(t, e.store.Users().Create(e.ctx, u))
	return &Actor{ID: u.ID, Role: role}
}

func (e *testEnv) createPG(t *testing.T, name, area string, lockIn *int) *models.PG {
	t.Helper()
	deposit := 5000.0
	pg, err := e.svc.Properties.Create(e.ctx, e.owner, dto.PropertyInput{
		Name:         name,
		Area:         area,
		Address:      "12 Main Road",
		City:         "Bengaluru",
		Pincode:      "560034",
		Type:         "coed",
		Amenities:    []string{"WiFi", "WiFi", "AC"},
		Deposit:      &deposit,
		LockInPeriod: lockIn,
	})
	require.NoError(t, err)
	return pg
}

func (e *testEnv) createRoom(t *testing.T, pgID uint, number, roomType string, price float64) *models.Room {
	t.Helper()
	room, err := e.svc.Inventory.CreateRoom(e.ctx, e.owner, pgID, dto.RoomInput{
		RoomNumber:  number,
		RoomType:    roomType,
		PricePerBed: price,
	})
	require.NoError(t, err)
	return room
}

func (e *testEnv) bed(t *testing.T, i int) *models.Bed {
	t.Helper()
	require.Greater(t, len(e.room.Beds), i)
	bed, err := e.store.Beds().FindByID(e.ctx, e.room.Beds[i].ID)
	require.NoError(t, err)
	return bed
}

func (e *testEnv) book(t *testing.T, actor *Actor, bedID uint) *models.Booking {
	t.Helper()
	b, err := e.svc.Bookings.CreateOnline(e.ctx, actor, bedID, dto.OnlineBookingInput{})
	require.NoError(t, err)
	return b
}

func (e *testEnv) reload(t *testing.T, id uint) *models.Booking {
	t.Helper()
	b, err := e.store.Bookings().FindByID(e.ctx, id)
	require.NoError(t, err)
	return b
}

func intPtr(v int) *int { return &v }
