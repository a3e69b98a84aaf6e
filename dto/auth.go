package dto

import "synca/models"

type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150,username"`
	Email           string `json:"email" validate:"required,email,max=254"`
	FirstName       string `json:"firstName" validate:"max=150"`
	LastName        string `json:"lastName" validate:"max=150"`
	Age             *int   `json:"age" validate:"omitempty,min=0,max=150"`
	Gender          string `json:"gender" validate:"omitempty,gender"`
	Occupation      string `json:"occupation" validate:"omitempty,occupation"`
	ContactNumber   string `json:"contactNumber" validate:"contact"`
	Role            string `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}
