package controllers

import (
	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

// ProfileController hồ sơ sinh viên và ảnh đại diện
type ProfileController struct {
	profiles *services.ProfileService
}

func NewProfileController(profiles *services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

func (p *ProfileController) GetProfile(c *gin.Context) {
	view, err := p.profiles.Get(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

func (p *ProfileController) UpdateProfile(c *gin.Context) {
	var input dto.ProfileInput
	if !bindJSON(c, &input) {
		return
	}
	view, err := p.profiles.Update(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

func (p *ProfileController) ChangePassword(c *gin.Context) {
	var input dto.PasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := p.profiles.ChangePassword(c.Request.Context(), middleware.CurrentActor(c), input); err != nil {
		response.Fail(c, err)
		return
	}
	response.Message(c, "Your password was updated successfully.", nil)
}

// UploadPhoto POST multipart field "photo"
func (p *ProfileController) UploadPhoto(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "Missing photo file")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	user, err := p.profiles.UploadPhoto(c.Request.Context(), middleware.CurrentActor(c), file)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}
