// Package memstore cài đặt repository.Store trong bộ nhớ, dùng cho test và
// chế độ STORE=memory. Transaction làm việc trên bản sao state và chỉ thay
// state gốc khi fn trả về nil.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"synca/models"
	"synca/repository"
)

var _ repository.Store = (*Store)(nil)

type memoryState struct {
	seq           map[string]uint
	users         map[uint]models.User
	profiles      map[uint]models.StudentProfile
	pgs           map[uint]models.PG
	images        map[uint]models.PGImage
	rooms         map[uint]models.Room
	beds          map[uint]models.Bed
	bookings      map[uint]models.Booking
	reviews       map[uint]models.Review
	notifications map[uint]models.Notification
}

func newMemoryState() *memoryState {
	return &memoryState{
		seq:           make(map[string]uint),
		users:         make(map[uint]models.User),
		profiles:      make(map[uint]models.StudentProfile),
		pgs:           make(map[uint]models.PG),
		images:        make(map[uint]models.PGImage),
		rooms:         make(map[uint]models.Room),
		beds:          make(map[uint]models.Bed),
		bookings:      make(map[uint]models.Booking),
		reviews:       make(map[uint]models.Review),
		notifications: make(map[uint]models.Notification),
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		seq:           copyMap(s.seq),
		users:         copyMap(s.users),
		profiles:      copyMap(s.profiles),
		pgs:           copyMap(s.pgs),
		images:        copyMap(s.images),
		rooms:         copyMap(s.rooms),
		beds:          copyMap(s.beds),
		bookings:      copyMap(s.bookings),
		reviews:       copyMap(s.reviews),
		notifications: copyMap(s.notifications),
	}
}

func (s *memoryState) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Store giữ state dùng chung; các bản ghi lưu ở dạng không kèm quan hệ
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *memoryState
	nowFn func() time.Time
}

func New() *Store {
	return &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNow đổi nguồn thời gian dùng cho CreatedAt/BookingDate, gọi trước khi dùng store
func (s *Store) SetNow(fn func() time.Time) {
	s.nowFn = fn
}

func (s *Store) root() *access { return &access{store: s} }

func (s *Store) Users() repository.UserRepository                 { return &users{s.root()} }
func (s *Store) Profiles() repository.ProfileRepository           { return &profiles{s.root()} }
func (s *Store) PGs() repository.PGRepository                     { return &pgs{s.root()} }
func (s *Store) Rooms() repository.RoomRepository                 { return &rooms{s.root()} }
func (s *Store) Beds() repository.BedRepository                   { return &beds{s.root()} }
func (s *Store) Bookings() repository.BookingRepository           { return &bookings{s.root()} }
func (s *Store) Reviews() repository.ReviewRepository             { return &reviews{s.root()} }
func (s *Store) Notifications() repository.NotificationRepository { return &notifications{s.root()} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	tx := &txStore{acc: &access{store: s, tx: working}}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

// txStore là view của Store bên trong một transaction
type txStore struct{ acc *access }

func (t *txStore) Users() repository.UserRepository                 { return &users{t.acc} }
func (t *txStore) Profiles() repository.ProfileRepository           { return &profiles{t.acc} }
func (t *txStore) PGs() repository.PGRepository                     { return &pgs{t.acc} }
func (t *txStore) Rooms() repository.RoomRepository                 { return &rooms{t.acc} }
func (t *txStore) Beds() repository.BedRepository                   { return &beds{t.acc} }
func (t *txStore) Bookings() repository.BookingRepository           { return &bookings{t.acc} }
func (t *txStore) Reviews() repository.ReviewRepository             { return &reviews{t.acc} }
func (t *txStore) Notifications() repository.NotificationRepository { return &notifications{t.acc} }

func (t *txStore) Transaction(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

// access chọn state để đọc/ghi: state gốc (có khóa) hoặc bản sao của transaction
type access struct {
	store *Store
	tx    *memoryState
}

func (a *access) now() time.Time {
	return a.store.nowFn()
}

func (a *access) read(fn func(st *memoryState) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.state)
}

// write ngoài transaction vẫn chờ txMu để không bị transaction đang chạy ghi đè
func (a *access) write(fn func(st *memoryState) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.txMu.Lock()
	defer a.store.txMu.Unlock()
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.state)
}

// ---- helpers ----

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func uintPtr(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func stripPG(pg models.PG) models.PG {
	pg.Owner = nil
	pg.Images = nil
	pg.Rooms = nil
	pg.Amenities = append([]string(nil), pg.Amenities...)
	if pg.Deposit != nil {
		d := *pg.Deposit
		pg.Deposit = &d
	}
	if pg.LockInPeriod != nil {
		l := *pg.LockInPeriod
		pg.LockInPeriod = &l
	}
	return pg
}

func stripBooking(b models.Booking) models.Booking {
	b.User = nil
	b.Bed = nil
	b.UserID = uintPtr(b.UserID)
	b.CheckIn = timePtr(b.CheckIn)
	b.CheckOut = timePtr(b.CheckOut)
	b.CancelledAt = timePtr(b.CancelledAt)
	return b
}

func pgImages(st *memoryState, pgID uint) []models.PGImage {
	var out []models.PGImage
	for _, img := range st.images {
		if img.PGID == pgID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func loadPG(st *memoryState, id uint) (*models.PG, bool) {
	pg, ok := st.pgs[id]
	if !ok {
		return nil, false
	}
	pg = stripPG(pg)
	pg.Images = pgImages(st, id)
	return &pg, true
}

func loadBed(st *memoryState, id uint) (*models.Bed, bool) {
	bed, ok := st.beds[id]
	if !ok {
		return nil, false
	}
	if room, ok := st.rooms[bed.RoomID]; ok {
		room.PG, _ = loadPG(st, room.PGID)
		bed.Room = &room
	}
	return &bed, true
}

// loadBooking gắn User và Bed -> Room -> PG
func loadBooking(st *memoryState, b models.Booking) models.Booking {
	b = stripBooking(b)
	if b.UserID != nil {
		if u, ok := st.users[*b.UserID]; ok {
			b.User = &u
		}
	}
	b.Bed, _ = loadBed(st, b.BedID)
	return b
}

func pgOfBed(st *memoryState, bedID uint) (uint, bool) {
	bed, ok := st.beds[bedID]
	if !ok {
		return 0, false
	}
	room, ok := st.rooms[bed.RoomID]
	if !ok {
		return 0, false
	}
	return room.PGID, true
}

func hasStatus(s models.BookingStatus, statuses []models.BookingStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func newestFirst(list []models.Booking) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].BookingDate.Equal(list[j].BookingDate) {
			return list[i].ID > list[j].ID
		}
		return list[i].BookingDate.After(list[j].BookingDate)
	})
}

func eqFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
