package models

import "time"

// DefaultStayDays thời gian ở mặc định khi PG không có lock-in
const DefaultStayDays = 30

// BookingState định nghĩa các chuyển trạng thái tường minh của booking.
// Mỗi hàm trả về danh sách cột đã thay đổi, nil nghĩa là không đổi gì.
type BookingState interface {
	Activate(b *Booking, lockInMonths int, today time.Time) []string
	Cancel(b *Booking, now time.Time) []string
	Pend(b *Booking) []string
}

// OpenState mọi trạng thái chưa hủy
type OpenState struct{}

func (s *OpenState) Activate(b *Booking, lockInMonths int, today time.Time) []string {
	b.Status = BookingStatusActive
	if b.CheckIn == nil {
		d := DateOf(today)
		b.CheckIn = &d
	}
	out := StayEnd(*b.CheckIn, lockInMonths)
	b.CheckOut = &out
	return []string{FieldStatus, FieldCheckIn, FieldCheckOut}
}

func (s *OpenState) Cancel(b *Booking, now time.Time) []string {
	b.Status = BookingStatusCancelled
	t := now
	b.CancelledAt = &t
	return []string{FieldStatus, FieldCancelledAt}
}

func (s *OpenState) Pend(b *Booking) []string {
	b.Status = BookingStatusPending
	return []string{FieldStatus}
}

// CancelledState trạng thái cuối, không thể chuyển đi đâu
type CancelledState struct{}

func (s *CancelledState) Activate(*Booking, int, time.Time) []string { return nil }

func (s *CancelledState) Cancel(*Booking, time.Time) []string { return nil }

func (s *CancelledState) Pend(*Booking) []string { return nil }

// GetBookingState trả về state tương ứng với trạng thái booking
func GetBookingState(status BookingStatus) BookingState {
	if status == BookingStatusCancelled {
		return &CancelledState{}
	}
	return &OpenState{}
}

func MarkActive(b *Booking, lockInMonths int, today time.Time) []string {
	return GetBookingState(b.Status).Activate(b, lockInMonths, today)
}

func MarkCancelled(b *Booking, now time.Time) []string {
	return GetBookingState(b.Status).Cancel(b, now)
}

func MarkPending(b *Booking) []string {
	return GetBookingState(b.Status).Pend(b)
}

// CalculateStatus suy ra trạng thái từ ngày check-in/check-out so với hôm nay.
// Không thay đổi booking.
func CalculateStatus(b *Booking, today time.Time) BookingStatus {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusPending {
		return b.Status
	}
	today = DateOf(today)
	if b.CheckIn != nil && DateOf(*b.CheckIn).After(today) {
		return BookingStatusUpcoming
	}
	if b.CheckOut != nil && DateOf(*b.CheckOut).Before(today) {
		return BookingStatusCompleted
	}
	if b.CheckIn != nil && (b.CheckOut == nil || !DateOf(*b.CheckOut).Before(today)) {
		return BookingStatusActive
	}
	return b.Status
}

// ApplyDerivedStatus gán trạng thái suy ra vào booking, trả về true nếu có thay đổi
func ApplyDerivedStatus(b *Booking, today time.Time) bool {
	next := CalculateStatus(b, today)
	if next == b.Status {
		return false
	}
	b.Status = next
	return true
}

// StayEnd ngày check-out: cộng lock-in theo tháng, hoặc 30 ngày nếu không có
func StayEnd(checkIn time.Time, lockInMonths int) time.Time {
	if lockInMonths > 0 {
		return AddMonths(checkIn, lockInMonths)
	}
	return DateOf(checkIn).AddDate(0, 0, DefaultStayDays)
}

// AddMonths cộng tháng theo lịch, ngày bị kẹp về ngày cuối của tháng đích
func AddMonths(date time.Time, months int) time.Time {
	date = DateOf(date)
	if months <= 0 {
		return date
	}
	idx := int(date.Month()) - 1 + months
	year := date.Year() + idx/12
	month := time.Month(idx%12 + 1)
	day := date.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOf cắt bỏ phần giờ, giữ ngày/tháng/năm theo múi giờ của t
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date tạo ngày lúc 00:00 UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
