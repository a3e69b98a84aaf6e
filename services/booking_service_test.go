package services

import (
	"sync"
	"testing"
	"time"

	"synca/constants"
	"synca/dto"
	"synca/errors"
	"synca/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOnlineClaimsBedAndNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)

	b := env.book(t, env.student, bed.ID)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, models.BookingTypeOnline, b.Type)
	require.NotNil(t, b.UserID)
	assert.Equal(t, env.student.ID, *b.UserID)
	assert.False(t, env.bed(t, 0).IsAvailable)

	notes, err := env.store.Notifications().ListByUser(env.ctx, env.owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, constants.NotifyBookingRequested, notes[0].Message)
	assert.Equal(t, []uint{env.owner.ID}, env.pusher.sent())

	_, err = env.svc.Bookings.CreateOnline(env.ctx, env.other, bed.ID, dto.OnlineBookingInput{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBedUnavailable))
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))

	onBed, err := env.store.Bookings().ListByBed(env.ctx, bed.ID)
	require.NoError(t, err)
	require.Len(t, onBed, 1)
	assert.Equal(t, b.ID, onBed[0].ID)
}

func TestCreateOnlineConcurrentRequestsOnlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for _, actor := range []*Actor{env.student, env.other, env.student, env.other} {
		wg.Add(1)
		go func(a *Actor) {
			defer wg.Done()
			_, err := env.svc.Bookings.CreateOnline(env.ctx, a, bed.ID, dto.OnlineBookingInput{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.HasCode(err, errors.ErrCodeBedUnavailable) {
				conflicts++
			}
		}(actor)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 3, conflicts)

	onBed, err := env.store.Bookings().ListByBed(env.ctx, bed.ID)
	require.NoError(t, err)
	assert.Len(t, onBed, 1)
}

func TestCreateOnlineValidation(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)

	_, err := env.svc.Bookings.CreateOnline(env.ctx, env.student, bed.ID, dto.OnlineBookingInput{CheckIn: "2025-03-01"})
	require.Error(t, err)
	app := errors.GetAppError(err)
	require.NotNil(t, app)
	assert.Contains(t, app.Fields, "checkIn")
	assert.True(t, env.bed(t, 0).IsAvailable)

	_, err = env.svc.Bookings.CreateOnline(env.ctx, env.owner, bed.ID, dto.OnlineBookingInput{})
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))

	_, err = env.svc.Bookings.CreateOnline(env.ctx, nil, bed.ID, dto.OnlineBookingInput{})
	assert.Equal(t, errors.KindUnauthorized, errors.KindOf(err))

	_, err = env.svc.Bookings.CreateOnline(env.ctx, env.student, 9999, dto.OnlineBookingInput{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeBedNotFound))
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.svc.Bookings.Quote(env.ctx, env.student, env.bed(t, 0).ID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, q.MonthlyRent)
	assert.Equal(t, 5000.0, q.SecurityDeposit)
	assert.Equal(t, 13000.0, q.TotalAmount)
	assert.True(t, q.DepositApplicable)
	assert.Equal(t, 0, q.LockInPeriod)
}

func TestApproveActivatesBooking(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.student, env.bed(t, 0).ID)

	outcome, err := env.svc.Bookings.Approve(env.ctx, env.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", outcome.Level)

	got := env.reload(t, b.ID)
	assert.Equal(t, models.BookingStatusActive, got.Status)
	require.NotNil(t, got.CheckIn)
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, models.Date(2025, time.March, 10), models.DateOf(*got.CheckIn))
	assert.Equal(t, models.Date(2025, time.April, 9), models.DateOf(*got.CheckOut))
	assert.False(t, got.Bed.IsAvailable)

	notes, err := env.store.Notifications().ListByUser(env.ctx, env.student.ID, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, constants.NotifyBookingApproved, notes[0].Message)

	again, err := env.svc.Bookings.Approve(env.ctx, env.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "info", again.Level)
}

func TestApproveRequiresPGOwner(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.student, env.bed(t, 0).ID)
	stranger := env.createUser(t, "stranger", "s@example.com", models.RoleOwner)

	_, err := env.svc.Bookings.Approve(env.ctx, stranger, b.ID)
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
	_, err = env.svc.Bookings.OwnerCancel(env.ctx, stranger, b.ID)
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
	assert.Equal(t, models.BookingStatusPending, env.reload(t, b.ID).Status)
}

func TestStudentCancelReleasesBedAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)
	b := env.book(t, env.student, bed.ID)

	_, err := env.svc.Bookings.StudentCancel(env.ctx, env.other, b.ID)
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))

	got, err := env.svc.Bookings.StudentCancel(env.ctx, env.student, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	assert.True(t, env.bed(t, 0).IsAvailable)

	again, err := env.svc.Bookings.StudentCancel(env.ctx, env.student, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, again.Status)

	// chủ PG chỉ nhận một thông báo hủy
	notes, err := env.store.Notifications().ListByUser(env.ctx, env.owner.ID, 0)
	require.NoError(t, err)
	cancelled := 0
	for _, n := range notes {
		if n.Message == constants.NotifyBookingCancelled {
			cancelled++
		}
	}
	assert.Equal(t, 1, cancelled)

	// giường trống lại nên có thể đặt tiếp
	env.book(t, env.other, bed.ID)
}

func TestCancelKeepsBedHeldByAnotherLiveBooking(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)
	first := env.book(t, env.student, bed.ID)

	userID := env.other.ID
	second := &models.Booking{UserID: &userID, BedID: bed.ID, Type: models.BookingTypeOffline, Status: models.BookingStatusActive}
	require.NoError(t, env.store.Bookings().Create(env.ctx, second))

	outcome, err := env.svc.Bookings.OwnerCancel(env.ctx, env.owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", outcome.Level)
	assert.False(t, env.bed(t, 0).IsAvailable)

	outcome, err = env.svc.Bookings.OwnerCancel(env.ctx, env.owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "info", outcome.Level)
}

func TestCreateOfflineCreatesTenant(t *testing.T) {
	env := newTestEnv(t)
	bed := env.bed(t, 0)

	b, err := env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:     bed.ID,
		FirstName: "Ravi",
		LastName:  "Kumar",
		Email:     "ravi@example.com",
		CheckIn:   "2025-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingTypeOffline, b.Type)
	assert.Equal(t, models.BookingStatusActive, b.Status)
	assert.Equal(t, models.Date(2025, time.April, 14), models.DateOf(*b.CheckOut))
	assert.False(t, env.bed(t, 0).IsAvailable)

	tenant, err := env.store.Users().FindByEmail(env.ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ravi-kumar", tenant.Username)
	assert.Equal(t, models.RoleStudent, tenant.Role)
	assert.False(t, tenant.HasUsablePassword())

	_, err = env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:     bed.ID,
		FirstName: "Someone",
		LastName:  "Else",
		Email:     "else@example.com",
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeBedUnavailable))

	_, err = env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:     env.bed(t, 1).ID,
		FirstName: "Ravi",
		LastName:  "Kumar",
		Email:     "ravi.k@example.com",
	})
	require.NoError(t, err)
	second, err := env.store.Users().FindByEmail(env.ctx, "ravi.k@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ravi-kumar1", second.Username)
}

func TestCreateOfflineReusesExistingStudent(t *testing.T) {
	env := newTestEnv(t)

	b, err := env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:         env.bed(t, 0).ID,
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         "asha@example.com",
		ContactNumber: "9876543210",
	})
	require.NoError(t, err)
	require.NotNil(t, b.UserID)
	assert.Equal(t, env.student.ID, *b.UserID)

	u, err := env.store.Users().FindByID(env.ctx, env.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.FirstName)
	assert.Equal(t, "9876543210", u.ContactNumber)
	assert.True(t, u.HasUsablePassword())
}

func TestCreateOfflineRejectsOwnerEmailAndForeignBed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:     env.bed(t, 0).ID,
		FirstName: "Own",
		LastName:  "Er",
		Email:     "owner@example.com",
	})
	assert.True(t, errors.HasCode(err, errors.ErrCodeDuplicate))
	assert.True(t, env.bed(t, 0).IsAvailable)

	stranger := env.createUser(t, "stranger", "s@example.com", models.RoleOwner)
	_, err = env.svc.Bookings.CreateOffline(env.ctx, stranger, dto.OfflineBookingInput{
		BedID:     env.bed(t, 0).ID,
		FirstName: "A",
		LastName:  "B",
		Email:     "ab@example.com",
	})
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
}

func TestOfflineBookingHonoursLockIn(t *testing.T) {
	env := newTestEnv(t)
	pg := env.createPG(t, "Lock PG", "HSR Layout", intPtr(3))
	room := env.createRoom(t, pg.ID, "1", "1-sharing", 9000)

	b, err := env.svc.Bookings.CreateOffline(env.ctx, env.owner, dto.OfflineBookingInput{
		BedID:     room.Beds[0].ID,
		FirstName: "Lock",
		LastName:  "In",
		Email:     "lock@example.com",
		CheckIn:   "2025-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Date(2025, time.April, 30), models.DateOf(*b.CheckOut))
	assert.Equal(t, models.BookingStatusActive, b.Status)
}

func TestUpdateDatesWithLockIn(t *testing.T) {
	env := newTestEnv(t)
	pg := env.createPG(t, "Lock PG", "HSR Layout", intPtr(2))
	room := env.createRoom(t, pg.ID, "1", "1-sharing", 9000)
	b := env.book(t, env.student, room.Beds[0].ID)

	_, err := env.svc.Bookings.UpdateDates(env.ctx, env.student, b.ID, dto.BookingDatesInput{
		CheckIn:  "2025-04-01",
		CheckOut: "2025-05-01",
	})
	require.Error(t, err)
	assert.Contains(t, errors.GetAppError(err).Fields, "checkOut")

	view, err := env.svc.Bookings.UpdateDates(env.ctx, env.student, b.ID, dto.BookingDatesInput{CheckIn: "2025-04-01"})
	require.NoError(t, err)
	assert.Equal(t, models.Date(2025, time.June, 1), models.DateOf(*view.CheckOut))
	assert.Equal(t, models.BookingStatusPending, view.Status)

	_, err = env.svc.Bookings.UpdateDates(env.ctx, env.other, b.ID, dto.BookingDatesInput{CheckIn: "2025-04-01"})
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))
}

func TestUpdateDatesWithoutLockIn(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.student, env.bed(t, 0).ID)
	_, err := env.svc.Bookings.Approve(env.ctx, env.owner, b.ID)
	require.NoError(t, err)

	view, err := env.svc.Bookings.UpdateDates(env.ctx, env.student, b.ID, dto.BookingDatesInput{
		CheckIn:  "2025-03-20",
		CheckOut: "2025-06-20",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusUpcoming, view.Status)
	assert.Equal(t, models.BookingStatusUpcoming, env.reload(t, b.ID).Status)

	_, err = env.svc.Bookings.UpdateDates(env.ctx, env.student, b.ID, dto.BookingDatesInput{
		CheckIn:  "2025-03-20",
		CheckOut: "2025-03-19",
	})
	assert.Contains(t, errors.GetAppError(err).Fields, "checkOut")

	_, err = env.svc.Bookings.StudentCancel(env.ctx, env.student, b.ID)
	require.NoError(t, err)
	_, err = env.svc.Bookings.UpdateDates(env.ctx, env.student, b.ID, dto.BookingDatesInput{CheckIn: "2025-03-21"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOperation))
}

func TestSuccessShowsRoommates(t *testing.T) {
	env := newTestEnv(t)
	mine := env.book(t, env.student, env.bed(t, 0).ID)
	theirs := env.book(t, env.other, env.bed(t, 1).ID)
	_, err := env.svc.Bookings.Approve(env.ctx, env.owner, theirs.ID)
	require.NoError(t, err)

	page, err := env.svc.Bookings.Success(env.ctx, env.student, mine.ID)
	require.NoError(t, err)
	assert.True(t, page.AwaitingOwner)
	assert.Equal(t, "Sunrise PG", page.Booking.PGName)
	assert.Equal(t, "101", page.Booking.RoomNumber)
	assert.Equal(t, 13000.0, page.Quote.TotalAmount)
	require.Len(t, page.Roommates, 1)
	assert.Equal(t, theirs.ID, page.Roommates[0].ID)

	_, err = env.svc.Bookings.Success(env.ctx, env.other, mine.ID)
	assert.Equal(t, errors.KindForbidden, errors.KindOf(err))

	_, err = env.svc.Bookings.Success(env.ctx, env.owner, mine.ID)
	assert.NoError(t, err)
}

func TestReassignOccupant(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.student, env.bed(t, 0).ID)

	got, err := env.svc.Bookings.ReassignOccupant(env.ctx, env.owner, b.ID, dto.OccupantInput{UserID: &env.other.ID})
	require.NoError(t, err)
	assert.Equal(t, env.other.ID, *got.UserID)

	ownerID := env.owner.ID
	_, err = env.svc.Bookings.ReassignOccupant(env.ctx, env.owner, b.ID, dto.OccupantInput{UserID: &ownerID})
	assert.Contains(t, errors.GetAppError(err).Fields, "userId")

	got, err = env.svc.Bookings.ReassignOccupant(env.ctx, env.owner, b.ID, dto.OccupantInput{})
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	assert.Nil(t, env.reload(t, b.ID).UserID)
}

func TestStudentBookingsGroupsByDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	pending := env.book(t, env.student, env.bed(t, 0).ID)
	cancelled := env.book(t, env.student, env.bed(t, 1).ID)
	_, err := env.svc.Bookings.StudentCancel(env.ctx, env.student, cancelled.ID)
	require.NoError(t, err)

	result, err := env.svc.Bookings.StudentBookings(env.ctx, env.student)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Counts["all"])
	assert.Equal(t, 1, result.Counts[string(models.BookingStatusPending)])
	assert.Equal(t, 1, result.Counts[string(models.BookingStatusCancelled)])
	assert.Equal(t, 0, result.Counts[string(models.BookingStatusActive)])
	require.Len(t, result.Grouped[models.BookingStatusPending], 1)

	view := result.Grouped[models.BookingStatusPending][0]
	assert.Equal(t, pending.ID, view.ID)
	assert.True(t, view.CanApprove)
	assert.True(t, view.CanCancel)
	require.NotNil(t, view.CheckIn)
	require.NotNil(t, view.CheckOut)
	assert.Equal(t, models.Date(2025, time.March, 10), models.DateOf(*view.CheckIn))
	assert.Equal(t, models.Date(2025, time.April, 9), models.DateOf(*view.CheckOut))
}

func TestSweepStatusesCompletesPastStays(t *testing.T) {
	env := newTestEnv(t)
	userID := env.student.ID
	in := models.Date(2025, time.January, 1)
	out := models.Date(2025, time.February, 1)
	past := &models.Booking{UserID: &userID, BedID: env.bed(t, 0).ID, Type: models.BookingTypeOffline,
		Status: models.BookingStatusActive, CheckIn: &in, CheckOut: &out}
	require.NoError(t, env.store.Bookings().Create(env.ctx, past))

	futureIn := models.Date(2025, time.March, 9)
	futureOut := models.Date(2025, time.April, 9)
	started := &models.Booking{UserID: &userID, BedID: env.bed(t, 1).ID, Type: models.BookingTypeOffline,
		Status: models.BookingStatusUpcoming, CheckIn: &futureIn, CheckOut: &futureOut}
	require.NoError(t, env.store.Bookings().Create(env.ctx, started))

	changed, err := env.svc.Bookings.SweepStatuses(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, models.BookingStatusCompleted, env.reload(t, past.ID).Status)
	assert.Equal(t, models.BookingStatusActive, env.reload(t, started.ID).Status)

	changed, err = env.svc.Bookings.SweepStatuses(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestRefreshStatusWritesOnlyWhenPersisting(t *testing.T) {
	env := newTestEnv(t)
	userID := env.student.ID
	in := models.Date(2025, time.January, 1)
	out := models.Date(2025, time.February, 1)
	stay := &models.Booking{UserID: &userID, BedID: env.bed(t, 0).ID, Type: models.BookingTypeOffline,
		Status: models.BookingStatusActive, CheckIn: &in, CheckOut: &out}
	require.NoError(t, env.store.Bookings().Create(env.ctx, stay))

	loaded := env.reload(t, stay.ID)
	status, err := env.svc.Bookings.RefreshStatus(env.ctx, loaded, false)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, status)
	assert.Equal(t, models.BookingStatusActive, env.reload(t, stay.ID).Status)

	loaded = env.reload(t, stay.ID)
	status, err = env.svc.Bookings.RefreshStatus(env.ctx, loaded, true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, status)
	assert.Equal(t, models.BookingStatusCompleted, env.reload(t, stay.ID).Status)
}

func TestReadViewsDoNotPersistDerivedStatus(t *testing.T) {
	env := newTestEnv(t)
	userID := env.student.ID
	in := models.Date(2025, time.January, 1)
	out := models.Date(2025, time.February, 1)
	stay := &models.Booking{UserID: &userID, BedID: env.bed(t, 0).ID, Type: models.BookingTypeOffline,
		Status: models.BookingStatusActive, CheckIn: &in, CheckOut: &out}
	require.NoError(t, env.store.Bookings().Create(env.ctx, stay))

	list, err := env.svc.Bookings.StudentBookings(env.ctx, env.student)
	require.NoError(t, err)
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, models.BookingStatusCompleted, list.Bookings[0].Status)
	assert.Equal(t, 1, list.Counts["completed"])

	data, err := env.svc.Dashboard.Dashboard(env.ctx, env.owner)
	require.NoError(t, err)
	require.Len(t, data.Bookings, 1)
	assert.Equal(t, models.BookingStatusCompleted, data.Bookings[0].Status)

	assert.Equal(t, models.BookingStatusActive, env.reload(t, stay.ID).Status)
}
