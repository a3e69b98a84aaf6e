package memstore

import (
	"context"
	"sort"
	"strings"

	"synca/models"
	"synca/repository"
)

// ---- users ----

type users struct{ a *access }

func (r *users) Create(_ context.Context, u *models.User) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				return repository.ErrDuplicate
			}
		}
		u.ID = st.nextID("users")
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}

func (r *users) Update(_ context.Context, u *models.User) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.users[u.ID]; !ok {
			return repository.ErrNotFound
		}
		for _, existing := range st.users {
			if existing.ID != u.ID && existing.Username == u.Username {
				return repository.ErrDuplicate
			}
		}
		u.UpdatedAt = now
		st.users[u.ID] = *u
		return nil
	})
}

func (r *users) FindByID(_ context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := r.a.read(func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *users) findFirst(match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.a.read(func(st *memoryState) error {
		for _, u := range st.users {
			if match(u) && (out == nil || u.ID < out.ID) {
				found := u
				out = &found
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r *users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Username == username })
}

func (r *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Email == email })
}

func (r *users) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := r.findFirst(func(u models.User) bool { return u.Username == username })
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *users) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	var out []models.User
	err := r.a.read(func(st *memoryState) error {
		for _, u := range st.users {
			if u.Role == role {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

// ---- profiles ----

type profiles struct{ a *access }

func (r *profiles) GetOrCreate(_ context.Context, userID uint) (*models.StudentProfile, error) {
	now := r.a.now()
	var out *models.StudentProfile
	err := r.a.write(func(st *memoryState) error {
		for _, p := range st.profiles {
			if p.UserID == userID {
				found := p
				out = &found
				return nil
			}
		}
		p := models.StudentProfile{ID: st.nextID("profiles"), UserID: userID, CreatedAt: now, UpdatedAt: now}
		st.profiles[p.ID] = p
		out = &p
		return nil
	})
	return out, err
}

func (r *profiles) Save(_ context.Context, p *models.StudentProfile) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if p.ID == 0 {
			p.ID = st.nextID("profiles")
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		saved := *p
		saved.User = nil
		saved.DateOfBirth = timePtr(p.DateOfBirth)
		st.profiles[p.ID] = saved
		return nil
	})
}

// ---- pgs ----

type pgs struct{ a *access }

func (r *pgs) Create(_ context.Context, pg *models.PG) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		pg.ID = st.nextID("pgs")
		pg.CreatedAt, pg.UpdatedAt = now, now
		st.pgs[pg.ID] = stripPG(*pg)
		return nil
	})
}

func (r *pgs) Update(_ context.Context, pg *models.PG) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.pgs[pg.ID]; !ok {
			return repository.ErrNotFound
		}
		pg.UpdatedAt = now
		st.pgs[pg.ID] = stripPG(*pg)
		return nil
	})
}

func (r *pgs) FindByID(_ context.Context, id uint) (*models.PG, error) {
	var out *models.PG
	err := r.a.read(func(st *memoryState) error {
		pg, ok := loadPG(st, id)
		if !ok {
			return repository.ErrNotFound
		}
		out = pg
		return nil
	})
	return out, err
}

func (r *pgs) ListByOwner(_ context.Context, ownerID uint) ([]models.PG, error) {
	var out []models.PG
	err := r.a.read(func(st *memoryState) error {
		for id, pg := range st.pgs {
			if pg.OwnerID == ownerID {
				loaded, _ := loadPG(st, id)
				out = append(out, *loaded)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, err
}

func (r *pgs) Search(_ context.Context, q repository.PGQuery) ([]models.PG, error) {
	var out []models.PG
	err := r.a.read(func(st *memoryState) error {
		for id, pg := range st.pgs {
			if q.Area != "" && !strings.EqualFold(pg.Area, q.Area) {
				continue
			}
			if q.Type != "" && string(pg.Type) != q.Type {
				continue
			}
			var pgRooms []models.Room
			matched := q.RoomType == "" && q.MaxPrice == nil
			for _, room := range st.rooms {
				if room.PGID != id {
					continue
				}
				pgRooms = append(pgRooms, room)
				if (q.RoomType == "" || room.RoomType == q.RoomType) &&
					(q.MaxPrice == nil || room.PricePerBed <= *q.MaxPrice) {
					matched = true
				}
			}
			if !matched {
				continue
			}
			sort.Slice(pgRooms, func(i, j int) bool { return pgRooms[i].ID < pgRooms[j].ID })
			loaded, _ := loadPG(st, id)
			loaded.Rooms = pgRooms
			out = append(out, *loaded)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *pgs) Areas(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	err := r.a.read(func(st *memoryState) error {
		for _, pg := range st.pgs {
			if !seen[pg.Area] {
				seen[pg.Area] = true
				out = append(out, pg.Area)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *pgs) AddImage(_ context.Context, img *models.PGImage) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.pgs[img.PGID]; !ok {
			return repository.ErrNotFound
		}
		img.ID = st.nextID("pg_images")
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
		st.images[img.ID] = *img
		return nil
	})
}

// ---- rooms ----

type rooms struct{ a *access }

func (r *rooms) Create(_ context.Context, room *models.Room) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.pgs[room.PGID]; !ok {
			return repository.ErrNotFound
		}
		room.ID = st.nextID("rooms")
		room.CreatedAt = now
		saved := *room
		saved.PG, saved.Beds = nil, nil
		st.rooms[room.ID] = saved
		return nil
	})
}

func (r *rooms) FindByID(_ context.Context, id uint) (*models.Room, error) {
	var out *models.Room
	err := r.a.read(func(st *memoryState) error {
		room, ok := st.rooms[id]
		if !ok {
			return repository.ErrNotFound
		}
		room.PG, _ = loadPG(st, room.PGID)
		out = &room
		return nil
	})
	return out, err
}

func (r *rooms) ListByPG(_ context.Context, pgID uint) ([]models.Room, error) {
	var out []models.Room
	err := r.a.read(func(st *memoryState) error {
		for _, room := range st.rooms {
			if room.PGID != pgID {
				continue
			}
			for _, bed := range st.beds {
				if bed.RoomID == room.ID {
					room.Beds = append(room.Beds, bed)
				}
			}
			sort.Slice(room.Beds, func(i, j int) bool {
				if room.Beds[i].Identifier == room.Beds[j].Identifier {
					return room.Beds[i].ID < room.Beds[j].ID
				}
				return room.Beds[i].Identifier < room.Beds[j].Identifier
			})
			out = append(out, room)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomNumber == out[j].RoomNumber {
			return out[i].ID < out[j].ID
		}
		return out[i].RoomNumber < out[j].RoomNumber
	})
	return out, err
}

func (r *rooms) NumberExists(_ context.Context, pgID uint, number string) (bool, error) {
	found := false
	err := r.a.read(func(st *memoryState) error {
		for _, room := range st.rooms {
			if room.PGID == pgID && eqFold(room.RoomNumber, number) {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// ---- beds ----

type beds struct{ a *access }

func (r *beds) Create(_ context.Context, b *models.Bed) error {
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.rooms[b.RoomID]; !ok {
			return repository.ErrNotFound
		}
		b.ID = st.nextID("beds")
		saved := *b
		saved.Room = nil
		st.beds[b.ID] = saved
		return nil
	})
}

func (r *beds) FindByID(_ context.Context, id uint) (*models.Bed, error) {
	var out *models.Bed
	err := r.a.read(func(st *memoryState) error {
		bed, ok := loadBed(st, id)
		if !ok {
			return repository.ErrNotFound
		}
		out = bed
		return nil
	})
	return out, err
}

func (r *beds) CountByRoom(_ context.Context, roomID uint) (int, error) {
	n := 0
	err := r.a.read(func(st *memoryState) error {
		for _, bed := range st.beds {
			if bed.RoomID == roomID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *beds) IdentifierExists(_ context.Context, roomID uint, identifier string) (bool, error) {
	found := false
	err := r.a.read(func(st *memoryState) error {
		for _, bed := range st.beds {
			if bed.RoomID == roomID && eqFold(bed.Identifier, identifier) {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *beds) Claim(_ context.Context, id uint) (bool, error) {
	claimed := false
	err := r.a.write(func(st *memoryState) error {
		bed, ok := st.beds[id]
		if !ok || !bed.IsAvailable {
			return nil
		}
		bed.IsAvailable = false
		st.beds[id] = bed
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *beds) SetAvailable(_ context.Context, id uint, available bool) error {
	return r.a.write(func(st *memoryState) error {
		bed, ok := st.beds[id]
		if !ok {
			return repository.ErrNotFound
		}
		bed.IsAvailable = available
		st.beds[id] = bed
		return nil
	})
}

func (r *beds) ListAvailableByOwner(_ context.Context, ownerID uint) ([]models.Bed, error) {
	var out []models.Bed
	err := r.a.read(func(st *memoryState) error {
		for id, bed := range st.beds {
			if !bed.IsAvailable {
				continue
			}
			loaded, _ := loadBed(st, id)
			if loaded.Room == nil || loaded.Room.PG == nil || loaded.Room.PG.OwnerID != ownerID {
				continue
			}
			out = append(out, *loaded)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Room.PG.Name != b.Room.PG.Name {
			return a.Room.PG.Name < b.Room.PG.Name
		}
		if a.Room.RoomNumber != b.Room.RoomNumber {
			return a.Room.RoomNumber < b.Room.RoomNumber
		}
		return a.Identifier < b.Identifier
	})
	return out, err
}

// ---- bookings ----

type bookings struct{ a *access }

func (r *bookings) Create(_ context.Context, b *models.Booking) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if _, ok := st.beds[b.BedID]; !ok {
			return repository.ErrNotFound
		}
		b.ID = st.nextID("bookings")
		if b.BookingDate.IsZero() {
			b.BookingDate = now
		}
		st.bookings[b.ID] = stripBooking(*b)
		return nil
	})
}

func (r *bookings) FindByID(_ context.Context, id uint) (*models.Booking, error) {
	var out *models.Booking
	err := r.a.read(func(st *memoryState) error {
		b, ok := st.bookings[id]
		if !ok {
			return repository.ErrNotFound
		}
		loaded := loadBooking(st, b)
		out = &loaded
		return nil
	})
	return out, err
}

func (r *bookings) Update(_ context.Context, b *models.Booking, fields ...string) error {
	return r.a.write(func(st *memoryState) error {
		cur, ok := st.bookings[b.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for _, f := range fields {
			switch f {
			case models.FieldStatus:
				cur.Status = b.Status
			case models.FieldCheckIn:
				cur.CheckIn = timePtr(b.CheckIn)
			case models.FieldCheckOut:
				cur.CheckOut = timePtr(b.CheckOut)
			case models.FieldCancelledAt:
				cur.CancelledAt = timePtr(b.CancelledAt)
			case models.FieldUserID:
				cur.UserID = uintPtr(b.UserID)
			}
		}
		st.bookings[b.ID] = cur
		return nil
	})
}

// list lọc booking rồi nạp quan hệ, giữ thứ tự mới nhất trước
func (r *bookings) list(match func(st *memoryState, b models.Booking) bool) ([]models.Booking, error) {
	var out []models.Booking
	err := r.a.read(func(st *memoryState) error {
		for _, b := range st.bookings {
			if match(st, b) {
				out = append(out, loadBooking(st, b))
			}
		}
		return nil
	})
	newestFirst(out)
	return out, err
}

func (r *bookings) ListByUser(_ context.Context, userID uint, limit int) ([]models.Booking, error) {
	out, err := r.list(func(_ *memoryState, b models.Booking) bool {
		return b.UserID != nil && *b.UserID == userID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *bookings) ListByOwner(_ context.Context, ownerID uint) ([]models.Booking, error) {
	return r.list(func(st *memoryState, b models.Booking) bool {
		pgID, ok := pgOfBed(st, b.BedID)
		return ok && st.pgs[pgID].OwnerID == ownerID
	})
}

func (r *bookings) ListByPG(_ context.Context, pgID uint) ([]models.Booking, error) {
	return r.list(func(st *memoryState, b models.Booking) bool {
		id, ok := pgOfBed(st, b.BedID)
		return ok && id == pgID
	})
}

func (r *bookings) ListByBed(_ context.Context, bedID uint, statuses ...models.BookingStatus) ([]models.Booking, error) {
	return r.list(func(_ *memoryState, b models.Booking) bool {
		return b.BedID == bedID && hasStatus(b.Status, statuses)
	})
}

func (r *bookings) ListByRoom(_ context.Context, roomID uint, statuses ...models.BookingStatus) ([]models.Booking, error) {
	out, err := r.list(func(st *memoryState, b models.Booking) bool {
		return st.beds[b.BedID].RoomID == roomID && hasStatus(b.Status, statuses)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bed.Identifier < out[j].Bed.Identifier })
	return out, err
}

func (r *bookings) ListByUserInPG(_ context.Context, userID, pgID uint) ([]models.Booking, error) {
	return r.list(func(st *memoryState, b models.Booking) bool {
		id, ok := pgOfBed(st, b.BedID)
		return ok && id == pgID && b.UserID != nil && *b.UserID == userID
	})
}

func (r *bookings) ListByStatus(_ context.Context, statuses ...models.BookingStatus) ([]models.Booking, error) {
	out, err := r.list(func(_ *memoryState, b models.Booking) bool {
		return hasStatus(b.Status, statuses)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *bookings) HasLive(_ context.Context, bedID, excludeID uint) (bool, error) {
	found := false
	err := r.a.read(func(st *memoryState) error {
		for _, b := range st.bookings {
			if b.BedID == bedID && b.ID != excludeID && b.Status.IsLive() {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// ---- reviews ----

type reviews struct{ a *access }

func (r *reviews) FindByPGAndUser(_ context.Context, pgID, userID uint) (*models.Review, error) {
	var out *models.Review
	err := r.a.read(func(st *memoryState) error {
		for _, rv := range st.reviews {
			if rv.PGID == pgID && rv.UserID == userID && (out == nil || rv.ID < out.ID) {
				found := rv
				out = &found
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r *reviews) Save(_ context.Context, rv *models.Review) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		if rv.ID == 0 {
			rv.ID = st.nextID("reviews")
			rv.CreatedAt = now
		}
		rv.UpdatedAt = now
		saved := *rv
		saved.User = nil
		st.reviews[rv.ID] = saved
		return nil
	})
}

func (r *reviews) ListByPG(_ context.Context, pgID uint) ([]models.Review, error) {
	var out []models.Review
	err := r.a.read(func(st *memoryState) error {
		for _, rv := range st.reviews {
			if rv.PGID != pgID {
				continue
			}
			if u, ok := st.users[rv.UserID]; ok {
				rv.User = &u
			}
			out = append(out, rv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r *reviews) AverageRatings(_ context.Context, pgIDs []uint) (map[uint]float64, error) {
	wanted := make(map[uint]bool, len(pgIDs))
	for _, id := range pgIDs {
		wanted[id] = true
	}
	sums := make(map[uint]int)
	counts := make(map[uint]int)
	err := r.a.read(func(st *memoryState) error {
		for _, rv := range st.reviews {
			if wanted[rv.PGID] {
				sums[rv.PGID] += rv.Rating
				counts[rv.PGID]++
			}
		}
		return nil
	})
	out := make(map[uint]float64, len(counts))
	for id, n := range counts {
		out[id] = float64(sums[id]) / float64(n)
	}
	return out, err
}

// ---- notifications ----

type notifications struct{ a *access }

func (r *notifications) Create(_ context.Context, n *models.Notification) error {
	now := r.a.now()
	return r.a.write(func(st *memoryState) error {
		n.ID = st.nextID("notifications")
		n.CreatedAt, n.UpdatedAt = now, now
		saved := *n
		saved.User = nil
		saved.BookingID = uintPtr(n.BookingID)
		st.notifications[n.ID] = saved
		return nil
	})
}

func (r *notifications) ListByUser(_ context.Context, userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := r.a.read(func(st *memoryState) error {
		for _, n := range st.notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *notifications) MarkAllRead(_ context.Context, userID uint) error {
	return r.a.write(func(st *memoryState) error {
		for id, n := range st.notifications {
			if n.UserID == userID && !n.IsRead {
				n.IsRead = true
				st.notifications[id] = n
			}
		}
		return nil
	})
}
