package services

import (
	"context"
	stderrors "errors"
	"strings"

	"synca/constants"
	"synca/dto"
	"synca/errors"
	"synca/models"
	"synca/repository"
	"synca/services/logger"
	"synca/services/notification"
	"synca/validator"
)

// BookingService điều phối vòng đời booking và trạng thái giường
type BookingService struct {
	store    repository.Store
	notifier notification.Service
	logger   logger.Logger
	clock    Clock
}

func NewBookingService(store repository.Store, notifier notification.Service, log logger.Logger, clock Clock) *BookingService {
	return &BookingService{store: store, notifier: notifier, logger: log, clock: clock}
}

func (s *BookingService) loadBooking(ctx context.Context, store repository.Store, id uint) (*models.Booking, error) {
	b, err := store.Bookings().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodeBookingNotFound, "Booking not found.")
	}
	return b, nil
}

func (s *BookingService) loadBed(ctx context.Context, store repository.Store, id uint) (*models.Bed, error) {
	bed, err := store.Beds().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, errors.ErrCodeBedNotFound, "Bed not found.")
	}
	return bed, nil
}

func bookingPG(b *models.Booking) *models.PG {
	if b == nil || b.Bed == nil || b.Bed.Room == nil {
		return nil
	}
	return b.Bed.Room.PG
}

func bedPG(bed *models.Bed) *models.PG {
	if bed == nil || bed.Room == nil {
		return nil
	}
	return bed.Room.PG
}

func bedUnavailable() error {
	return errors.Conflict(errors.ErrCodeBedUnavailable, "Selected bed has already been booked.")
}

// notify lỗi gửi thông báo chỉ ghi log, không làm hỏng thao tác chính
func (s *BookingService) notify(ctx context.Context, title string, b *models.Booking, userID uint) {
	if s.notifier == nil || userID == 0 {
		return
	}
	n := notification.NewMessageBuilder(title, b).Build(userID)
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Error("notify user %d about booking %d: %v", userID, b.ID, err)
	}
}

func (s *BookingService) notifyOwner(ctx context.Context, title string, b *models.Booking) {
	if pg := bookingPG(b); pg != nil {
		s.notify(ctx, title, b, pg.OwnerID)
	}
}

func (s *BookingService) notifyStudent(ctx context.Context, title string, b *models.Booking) {
	if b.UserID != nil {
		s.notify(ctx, title, b, *b.UserID)
	}
}

// Quote báo giá cho sinh viên trước khi đặt giường
func (s *BookingService) Quote(ctx context.Context, actor *Actor, bedID uint) (*dto.Quote, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	bed, err := s.loadBed(ctx, s.store, bedID)
	if err != nil {
		return nil, err
	}
	quote := BuildQuote(bed)
	return &quote, nil
}

// CreateOnline sinh viên đặt giường; booking ở trạng thái pending và giường bị giữ ngay
func (s *BookingService) CreateOnline(ctx context.Context, actor *Actor, bedID uint, input dto.OnlineBookingInput) (*models.Booking, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	checkIn, err := validator.ParseDate("checkIn", input.CheckIn)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	if checkIn != nil && checkIn.Before(today) {
		return nil, errors.FieldError("checkIn", "Check-in date cannot be in the past.")
	}

	userID := actor.ID
	booking := &models.Booking{
		UserID:  &userID,
		BedID:   bedID,
		Type:    models.BookingTypeOnline,
		Status:  models.BookingStatusPending,
		CheckIn: checkIn,
		Notes:   strings.TrimSpace(input.Notes),
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		bed, err := s.loadBed(ctx, tx, bedID)
		if err != nil {
			return err
		}
		if !bed.IsAvailable {
			return bedUnavailable()
		}
		claimed, err := tx.Beds().Claim(ctx, bed.ID)
		if err != nil {
			return errors.Internal("Could not reserve bed", err)
		}
		if !claimed {
			return bedUnavailable()
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return errors.Internal("Could not create booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.loadBooking(ctx, s.store, booking.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking %d requested by user %d for bed %d", created.ID, actor.ID, bedID)
	s.notifyOwner(ctx, constants.NotifyBookingRequested, created)
	return created, nil
}

// CreateOffline owner ghi nhận người thuê trực tiếp; booking active ngay
func (s *BookingService) CreateOffline(ctx context.Context, actor *Actor, input dto.OfflineBookingInput) (*models.Booking, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	input.Email = strings.TrimSpace(input.Email)
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	checkIn, err := validator.ParseDate("checkIn", input.CheckIn)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()

	var bookingID uint
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		bed, err := s.loadBed(ctx, tx, input.BedID)
		if err != nil {
			return err
		}
		pg := bedPG(bed)
		if pg == nil || pg.OwnerID != actor.ID {
			return errors.Forbidden("You can only assign beds from your own properties.")
		}
		if !bed.IsAvailable {
			return bedUnavailable()
		}

		tenant, err := s.resolveTenant(ctx, tx, input)
		if err != nil {
			return err
		}

		tenantID := tenant.ID
		booking := &models.Booking{
			UserID:  &tenantID,
			BedID:   bed.ID,
			Type:    models.BookingTypeOffline,
			CheckIn: checkIn,
		}
		models.MarkActive(booking, pg.LockInMonths(), today)

		claimed, err := tx.Beds().Claim(ctx, bed.ID)
		if err != nil {
			return errors.Internal("Could not reserve bed", err)
		}
		if !claimed {
			return bedUnavailable()
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return errors.Internal("Could not create booking", err)
		}
		bookingID = booking.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.loadBooking(ctx, s.store, bookingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("offline booking %d created by owner %d", created.ID, actor.ID)
	s.notifyStudent(ctx, constants.NotifyOfflineBooking, created)
	return created, nil
}

// resolveTenant tìm user theo email, nếu chưa có thì tạo sinh viên mới không có mật khẩu
func (s *BookingService) resolveTenant(ctx context.Context, tx repository.Store, input dto.OfflineBookingInput) (*models.User, error) {
	tenant, err := tx.Users().FindByEmail(ctx, input.Email)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Could not look up tenant", err)
	}
	if err == nil {
		if tenant.IsOwner() {
			return nil, errors.Conflict(errors.ErrCodeDuplicate, "This email belongs to an owner account and cannot be booked as a tenant.")
		}
		applyTenantDetails(tenant, input)
		if err := tx.Users().Update(ctx, tenant); err != nil {
			return nil, errors.Internal("Could not update tenant", err)
		}
		return tenant, nil
	}

	username, err := UniqueUsername(ctx, tx.Users(), input.FirstName, input.LastName, input.Email)
	if err != nil {
		return nil, errors.Internal("Could not generate username", err)
	}
	tenant = &models.User{
		Username: username,
		Email:    input.Email,
		Password: models.UnusablePassword,
		Role:     models.RoleStudent,
	}
	applyTenantDetails(tenant, input)
	if err := tx.Users().Create(ctx, tenant); err != nil {
		return nil, errors.Internal("Could not create tenant", err)
	}
	return tenant, nil
}

func applyTenantDetails(u *models.User, input dto.OfflineBookingInput) {
	u.FirstName = strings.TrimSpace(input.FirstName)
	u.LastName = strings.TrimSpace(input.LastName)
	u.Role = models.RoleStudent
	if input.Age != nil {
		age := *input.Age
		u.Age = &age
	}
	if input.Gender != "" {
		u.Gender = input.Gender
	}
	if input.Occupation != "" {
		u.Occupation = input.Occupation
	}
	if contact := strings.TrimSpace(input.ContactNumber); contact != "" {
		u.ContactNumber = contact
	}
}

// Success dữ liệu trang xác nhận booking
func (s *BookingService) Success(ctx context.Context, actor *Actor, id uint) (*dto.BookingSuccess, error) {
	if actor == nil || actor.ID == 0 {
		return nil, errors.Unauthorized(errors.ErrCodeUnauthorized, "Authentication required.", nil)
	}
	b, err := s.loadBooking(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	isTenant := b.UserID != nil && *b.UserID == actor.ID
	if !isTenant && actor.Role != models.RoleOwner {
		return nil, errors.Forbidden("You do not have permission to view this booking.")
	}

	today := s.clock.Today()
	if b.Bed == nil {
		return nil, errors.NotFound(errors.ErrCodeBedNotFound, "Bed not found.")
	}
	roommates, err := s.store.Bookings().ListByRoom(ctx, b.Bed.RoomID, models.BookingStatusActive, models.BookingStatusUpcoming)
	if err != nil {
		return nil, errors.Internal("Could not load roommates", err)
	}
	others := make([]models.Booking, 0, len(roommates))
	for _, r := range roommates {
		if r.ID != b.ID {
			others = append(others, r)
		}
	}

	view := bookingView(*b, today)
	return &dto.BookingSuccess{
		Booking:       view,
		Quote:         BuildQuote(b.Bed),
		Roommates:     bookingViews(others, today),
		AwaitingOwner: b.Status == models.BookingStatusPending,
	}, nil
}

// Approve owner duyệt booking pending; trạng thái khác trả về kết quả "info"
func (s *BookingService) Approve(ctx context.Context, actor *Actor, id uint) (*dto.ActionOutcome, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	var outcome *dto.ActionOutcome
	var approved *models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := s.loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		pg := bookingPG(b)
		if pg == nil || pg.OwnerID != actor.ID {
			return errors.Forbidden("You can only manage bookings for your own properties.")
		}
		if b.Status != models.BookingStatusPending {
			outcome = &dto.ActionOutcome{Level: "info", Message: "Only pending bookings can be approved.", Booking: b}
			return nil
		}
		fields := models.MarkActive(b, pg.LockInMonths(), s.clock.Today())
		if err := tx.Bookings().Update(ctx, b, fields...); err != nil {
			return errors.Internal("Could not approve booking", err)
		}
		if err := tx.Beds().SetAvailable(ctx, b.BedID, false); err != nil {
			return errors.Internal("Could not update bed", err)
		}
		approved = b
		outcome = &dto.ActionOutcome{Level: "success", Message: "Booking approved successfully.", Booking: b}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if approved != nil {
		s.logger.Info("booking %d approved by owner %d", approved.ID, actor.ID)
		s.notifyStudent(ctx, constants.NotifyBookingApproved, approved)
	}
	return outcome, nil
}

// OwnerCancel owner hủy booking thuộc PG của mình
func (s *BookingService) OwnerCancel(ctx context.Context, actor *Actor, id uint) (*dto.ActionOutcome, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	var outcome *dto.ActionOutcome
	var cancelled *models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := s.loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		pg := bookingPG(b)
		if pg == nil || pg.OwnerID != actor.ID {
			return errors.Forbidden("You can only manage bookings for your own properties.")
		}
		if b.Status == models.BookingStatusCancelled {
			outcome = &dto.ActionOutcome{Level: "info", Message: "Booking is already cancelled.", Booking: b}
			return nil
		}
		if err := s.cancel(ctx, tx, b); err != nil {
			return err
		}
		cancelled = b
		outcome = &dto.ActionOutcome{Level: "success", Message: "Booking cancelled successfully.", Booking: b}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cancelled != nil {
		s.logger.Info("booking %d cancelled by owner %d", cancelled.ID, actor.ID)
		s.notifyStudent(ctx, constants.NotifyBookingCancelled, cancelled)
	}
	return outcome, nil
}

// StudentCancel sinh viên hủy booking của mình, gọi lại nhiều lần không lỗi
func (s *BookingService) StudentCancel(ctx context.Context, actor *Actor, id uint) (*models.Booking, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	var result *models.Booking
	changed := false
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := s.loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.UserID == nil || *b.UserID != actor.ID {
			return errors.Forbidden("You can only cancel your own bookings.")
		}
		result = b
		if b.Status == models.BookingStatusCancelled {
			return nil
		}
		changed = true
		return s.cancel(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Info("booking %d cancelled by student %d", result.ID, actor.ID)
		s.notifyOwner(ctx, constants.NotifyBookingCancelled, result)
	}
	return result, nil
}

// cancel hủy booking và trả giường nếu không còn booking nào khác giữ giường
func (s *BookingService) cancel(ctx context.Context, tx repository.Store, b *models.Booking) error {
	fields := models.MarkCancelled(b, s.clock())
	if len(fields) == 0 {
		return nil
	}
	if err := tx.Bookings().Update(ctx, b, fields...); err != nil {
		return errors.Internal("Could not cancel booking", err)
	}
	held, err := tx.Bookings().HasLive(ctx, b.BedID, b.ID)
	if err != nil {
		return errors.Internal("Could not check bed bookings", err)
	}
	if held {
		return nil
	}
	if err := tx.Beds().SetAvailable(ctx, b.BedID, true); err != nil {
		return errors.Internal("Could not release bed", err)
	}
	if b.Bed != nil {
		b.Bed.IsAvailable = true
	}
	return nil
}

// UpdateDates sinh viên đổi ngày ở; với PG có lock-in, check-out phải khớp lock-in
func (s *BookingService) UpdateDates(ctx context.Context, actor *Actor, id uint, input dto.BookingDatesInput) (*dto.BookingView, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	checkIn, err := validator.ParseDate("checkIn", input.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := validator.ParseDate("checkOut", input.CheckOut)
	if err != nil {
		return nil, err
	}

	var updated *models.Booking
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := s.loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.UserID == nil || *b.UserID != actor.ID {
			return errors.Forbidden("You can only update your own bookings.")
		}
		if b.Status == models.BookingStatusCancelled {
			return errors.Conflict(errors.ErrCodeInvalidOperation, "Cancelled bookings cannot be updated.")
		}

		lockIn := 0
		if pg := bookingPG(b); pg != nil {
			lockIn = pg.LockInMonths()
		}
		if checkIn == nil {
			checkIn = b.CheckIn
		}
		explicitOut := checkOut != nil
		out, err := validator.ValidateStayDates(checkIn, checkOut, lockIn)
		if err != nil {
			return err
		}
		if out == nil && !explicitOut {
			out = b.CheckOut
			if out != nil && checkIn != nil && out.Before(*checkIn) {
				return errors.FieldError("checkOut", "Check-out date cannot be before check-in date.")
			}
		}

		b.CheckIn = checkIn
		b.CheckOut = out
		fields := []string{models.FieldCheckIn, models.FieldCheckOut}
		if models.ApplyDerivedStatus(b, s.clock.Today()) {
			fields = append(fields, models.FieldStatus)
		}
		if err := tx.Bookings().Update(ctx, b, fields...); err != nil {
			return errors.Internal("Could not update booking", err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := bookingView(*updated, s.clock.Today())
	return &view, nil
}

// ReassignOccupant owner đổi người ở của booking sang sinh viên khác hoặc bỏ trống
func (s *BookingService) ReassignOccupant(ctx context.Context, actor *Actor, id uint, input dto.OccupantInput) (*models.Booking, error) {
	if err := actor.RequireOwner(); err != nil {
		return nil, err
	}
	var result *models.Booking
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		b, err := s.loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		pg := bookingPG(b)
		if pg == nil || pg.OwnerID != actor.ID {
			return errors.Forbidden("You can only manage bookings for your own properties.")
		}
		b.UserID = nil
		b.User = nil
		if input.UserID != nil {
			u, err := tx.Users().FindByID(ctx, *input.UserID)
			if err != nil {
				if stderrors.Is(err, repository.ErrNotFound) {
					return errors.FieldError("userId", "Select a valid student.")
				}
				return errors.Internal("Could not load user", err)
			}
			if !u.IsStudent() {
				return errors.FieldError("userId", "Select a valid student.")
			}
			uid := u.ID
			b.UserID = &uid
			b.User = u
		}
		if err := tx.Bookings().Update(ctx, b, models.FieldUserID); err != nil {
			return errors.Internal("Could not update booking", err)
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RefreshStatus áp dụng trạng thái suy ra theo ngày; chỉ ghi khi persist và có thay đổi
func (s *BookingService) RefreshStatus(ctx context.Context, b *models.Booking, persist bool) (models.BookingStatus, error) {
	if !models.ApplyDerivedStatus(b, s.clock.Today()) || !persist {
		return b.Status, nil
	}
	if err := s.store.Bookings().Update(ctx, b, models.FieldStatus); err != nil {
		return b.Status, errors.Internal("Could not persist booking status", err)
	}
	return b.Status, nil
}

// StudentBookings danh sách booking của sinh viên, nhóm theo trạng thái
func (s *BookingService) StudentBookings(ctx context.Context, actor *Actor) (*dto.StudentBookings, error) {
	if err := actor.RequireStudent(); err != nil {
		return nil, err
	}
	list, err := s.store.Bookings().ListByUser(ctx, actor.ID, 0)
	if err != nil {
		return nil, errors.Internal("Could not load bookings", err)
	}
	today := s.clock.Today()
	result := &dto.StudentBookings{
		Bookings: make([]dto.BookingView, 0, len(list)),
		Grouped:  make(map[models.BookingStatus][]dto.BookingView, len(models.BookingStatuses)),
		Counts:   make(map[string]int, len(models.BookingStatuses)+1),
	}
	for _, status := range models.BookingStatuses {
		result.Grouped[status] = []dto.BookingView{}
		result.Counts[string(status)] = 0
	}
	for _, b := range list {
		view := withDisplayDates(bookingView(b, today))
		result.Bookings = append(result.Bookings, view)
		if _, ok := result.Grouped[view.Status]; ok {
			result.Grouped[view.Status] = append(result.Grouped[view.Status], view)
			result.Counts[string(view.Status)]++
			result.Counts["all"]++
		}
	}
	return result, nil
}

// SweepStatuses ghi trạng thái suy ra cho các booking upcoming/active, dùng cho cron
func (s *BookingService) SweepStatuses(ctx context.Context) (int, error) {
	list, err := s.store.Bookings().ListByStatus(ctx, models.BookingStatusUpcoming, models.BookingStatusActive)
	if err != nil {
		return 0, errors.Internal("Could not load bookings", err)
	}
	changed := 0
	for i := range list {
		before := list[i].Status
		status, err := s.RefreshStatus(ctx, &list[i], true)
		if err != nil {
			return changed, err
		}
		if status != before {
			changed++
		}
	}
	return changed, nil
}
