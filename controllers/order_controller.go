package controllers

import (
	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

// BookingController đặt giường, hủy, đổi ngày và các quyết định của owner
type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

func (b *BookingController) Quote(c *gin.Context) {
	bedID, ok := paramID(c, "id")
	if !ok {
		return
	}
	quote, err := b.bookings.Quote(c.Request.Context(), middleware.CurrentActor(c), bedID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, quote)
}

func (b *BookingController) CreateOnline(c *gin.Context) {
	bedID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.OnlineBookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := b.bookings.CreateOnline(c.Request.Context(), middleware.CurrentActor(c), bedID, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, booking)
}

func (b *BookingController) CreateOffline(c *gin.Context) {
	var input dto.OfflineBookingInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := b.bookings.CreateOffline(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, booking)
}

func (b *BookingController) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	success, err := b.bookings.Success(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, success)
}

func (b *BookingController) StudentBookings(c *gin.Context) {
	list, err := b.bookings.StudentBookings(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

func (b *BookingController) UpdateDates(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.BookingDatesInput
	if !bindJSON(c, &input) {
		return
	}
	view, err := b.bookings.UpdateDates(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

func (b *BookingController) StudentCancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := b.bookings.StudentCancel(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, booking)
}

func (b *BookingController) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	outcome, err := b.bookings.Approve(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Message(c, outcome.Message, outcome)
}

func (b *BookingController) OwnerCancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	outcome, err := b.bookings.OwnerCancel(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Message(c, outcome.Message, outcome)
}

func (b *BookingController) ReassignOccupant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.OccupantInput
	if !bindJSON(c, &input) {
		return
	}
	booking, err := b.bookings.ReassignOccupant(c.Request.Context(), middleware.CurrentActor(c), id, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, booking)
}
