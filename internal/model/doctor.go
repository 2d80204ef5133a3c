package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	AccountID         uuid.UUID `db:"account_id" json:"account_id"`
	Username          string    `db:"username" json:"username"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          *string   `db:"last_name" json:"last_name,omitempty"`
	Specialization    string    `db:"specialization" json:"specialization"`
	YearsOfExperience int       `db:"years_of_experience" json:"years_of_experience"`
	Email             *string   `db:"email" json:"email,omitempty"`
	Audit
}

type CreateDoctorRequest struct {
	FirstName         string   `json:"first_name" binding:"required,min=3,max=20,nodigits"`
	LastName          *string  `json:"last_name" binding:"omitempty,min=3,max=20,nodigits"`
	Specialization    string   `json:"specialization" binding:"required,min=3,max=50"`
	YearsOfExperience int      `json:"years_of_experience" binding:"gte=0,lte=60"`
	Email             *string  `json:"email" binding:"omitempty,email,min=5,max=100"`
	Username          string   `json:"username" binding:"required,min=4,max=50"`
	Password          string   `json:"password" binding:"required,password"`
	Roles             []string `json:"roles" binding:"omitempty,dive,required,max=50"`
}

// UpdateDoctorRequest replaces the profile. A blank password keeps the
// current one.
type UpdateDoctorRequest struct {
	FirstName         string   `json:"first_name" binding:"required,min=3,max=20,nodigits"`
	LastName          *string  `json:"last_name" binding:"omitempty,min=3,max=20,nodigits"`
	Specialization    string   `json:"specialization" binding:"required,min=3,max=50"`
	YearsOfExperience int      `json:"years_of_experience" binding:"gte=0,lte=60"`
	Email             *string  `json:"email" binding:"omitempty,email,min=5,max=100"`
	Username          string   `json:"username" binding:"required,min=4,max=50"`
	Password          string   `json:"password" binding:"password_optional"`
	Roles             []string `json:"roles" binding:"omitempty,dive,required,max=50"`
}
