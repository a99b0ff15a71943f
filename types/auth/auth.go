package auth

import (
	"cylinder-booking/types"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Address  string `json:"address" validate:"required,min=1"`
	City     string `json:"city" validate:"omitempty,max=100"`
	Pincode  string `json:"pincode" validate:"omitempty,min=4,max=10"`
}

func (r RegisterRequest) Validate() error {
	return types.Validate.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return types.Validate.Struct(r)
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

func (r VerifyEmailRequest) Validate() error {
	return types.Validate.Struct(r)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return types.Validate.Struct(r)
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func (r ResetPasswordRequest) Validate() error {
	return types.Validate.Struct(r)
}

type UpdateProfileRequest struct {
	Name    string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone   string `json:"phone" validate:"omitempty,min=10,max=15"`
	Address string `json:"address" validate:"omitempty,min=1"`
	City    string `json:"city" validate:"omitempty,max=100"`
	Pincode string `json:"pincode" validate:"omitempty,min=4,max=10"`
}

func (r UpdateProfileRequest) Validate() error {
	return types.Validate.Struct(r)
}
