package services

import (
	"time"

	"synca/constants"
	"synca/dto"
	"synca/models"
)

// bookingView dựng view từ bản sao booking với trạng thái suy ra theo ngày
func bookingView(b models.Booking, today time.Time) dto.BookingView {
	models.ApplyDerivedStatus(&b, today)
	view := dto.BookingView{
		Booking:     b,
		StatusLabel: b.Status.Label(),
		ImageURL:    constants.PlaceholderImage,
		CanApprove:  b.Status == models.BookingStatusPending,
		CanCancel:   b.Status.IsLive(),
	}
	if bed := b.Bed; bed != nil {
		view.BedIdentifier = bed.Identifier
		if room := bed.Room; room != nil {
			view.RoomNumber = room.RoomNumber
			view.MonthlyRent = room.PricePerBed
			if pg := room.PG; pg != nil {
				view.PGID = pg.ID
				view.PGName = pg.Name
				if photo := pg.PrimaryPhoto(); photo != "" {
					view.ImageURL = photo
				}
			}
		}
	}
	return view
}

func bookingViews(list []models.Booking, today time.Time) []dto.BookingView {
	views := make([]dto.BookingView, 0, len(list))
	for _, b := range list {
		views = append(views, bookingView(b, today))
	}
	return views
}

// withDisplayDates điền ngày hiển thị khi booking chưa có check-in/check-out
func withDisplayDates(view dto.BookingView) dto.BookingView {
	if view.CheckIn == nil {
		d := models.DateOf(view.BookingDate)
		view.CheckIn = &d
	}
	if view.CheckOut == nil {
		d := view.CheckIn.AddDate(0, 0, models.DefaultStayDays)
		view.CheckOut = &d
	}
	return view
}

// BuildQuote tính tiền thuê tháng đầu và cọc cho một giường
func BuildQuote(bed *models.Bed) dto.Quote {
	var quote dto.Quote
	if bed == nil || bed.Room == nil {
		return quote
	}
	quote.MonthlyRent = bed.Room.PricePerBed
	if pg := bed.Room.PG; pg != nil {
		if pg.Deposit != nil {
			quote.DepositApplicable = true
			quote.SecurityDeposit = *pg.Deposit
		}
		quote.LockInPeriod = pg.LockInMonths()
	}
	quote.TotalAmount = quote.MonthlyRent + quote.SecurityDeposit
	return quote
}
