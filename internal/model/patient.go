package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	Username    string    `db:"username" json:"username"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    *string   `db:"last_name" json:"last_name,omitempty"`
	DateOfBirth Date      `db:"date_of_birth" json:"date_of_birth"`
	Email       *string   `db:"email" json:"email,omitempty"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Address     *string   `db:"address" json:"address,omitempty"`
	Audit
}

type CreatePatientRequest struct {
	FirstName   string   `json:"first_name" binding:"required,min=3,max=20,nodigits"`
	LastName    *string  `json:"last_name" binding:"omitempty,min=3,max=20,nodigits"`
	DateOfBirth Date     `json:"date_of_birth" binding:"required,past"`
	Email       *string  `json:"email" binding:"omitempty,email,min=5,max=100"`
	PhoneNumber string   `json:"phone_number" binding:"required,len=10,number"`
	Address     *string  `json:"address" binding:"omitempty,max=200"`
	Username    string   `json:"username" binding:"required,min=4,max=50"`
	Password    string   `json:"password" binding:"required,password"`
	Roles       []string `json:"roles" binding:"omitempty,dive,required,max=50"`
}

// UpdatePatientRequest replaces the profile. A blank password keeps the
// current one.
type UpdatePatientRequest struct {
	FirstName   string   `json:"first_name" binding:"required,min=3,max=20,nodigits"`
	LastName    *string  `json:"last_name" binding:"omitempty,min=3,max=20,nodigits"`
	DateOfBirth Date     `json:"date_of_birth" binding:"required,past"`
	Email       *string  `json:"email" binding:"omitempty,email,min=5,max=100"`
	PhoneNumber string   `json:"phone_number" binding:"required,len=10,number"`
	Address     *string  `json:"address" binding:"omitempty,max=200"`
	Username    string   `json:"username" binding:"required,min=4,max=50"`
	Password    string   `json:"password" binding:"password_optional"`
	Roles       []string `json:"roles" binding:"omitempty,dive,required,max=50"`
}
