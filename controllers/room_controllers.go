package controllers

import (
	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"
	"synca/validator"

	"github.com/gin-gonic/gin"
)

// InventoryController phòng và giường của owner
type InventoryController struct {
	inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

func (i *InventoryController) CreateRoom(c *gin.Context) {
	pgID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.RoomInput
	if !bindJSON(c, &input) {
		return
	}
	room, err := i.inventory.CreateRoom(c.Request.Context(), middleware.CurrentActor(c), pgID, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, room)
}

func (i *InventoryController) CreateBed(c *gin.Context) {
	pgID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.BedInput
	if !bindJSON(c, &input) {
		return
	}
	bed, err := i.inventory.CreateBed(c.Request.Context(), middleware.CurrentActor(c), pgID, input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, bed)
}

// SetAvailability PUT /owner/beds/:id/availability {"isAvailable": true}
func (i *InventoryController) SetAvailability(c *gin.Context) {
	bedID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input dto.AvailabilityInput
	if !bindJSON(c, &input) {
		return
	}
	if err := validator.ValidateStruct(input); err != nil {
		response.Fail(c, err)
		return
	}
	result, err := i.inventory.ToggleBed(c.Request.Context(), middleware.CurrentActor(c), bedID, *input.IsAvailable)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, result)
}

func (i *InventoryController) AvailableBeds(c *gin.Context) {
	beds, err := i.inventory.AvailableBeds(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithTotal(c, beds, len(beds))
}
