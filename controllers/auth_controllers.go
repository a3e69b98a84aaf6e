package controllers

import (
	"synca/dto"
	"synca/middleware"
	"synca/response"
	"synca/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (a *AuthController) Register(c *gin.Context) {
	var input dto.RegisterInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := a.auth.Register(c.Request.Context(), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, res)
}

func (a *AuthController) Login(c *gin.Context) {
	var input dto.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := a.auth.Login(c.Request.Context(), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, res)
}

func (a *AuthController) Me(c *gin.Context) {
	user, err := a.auth.Me(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}
