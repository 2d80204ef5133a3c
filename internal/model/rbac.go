package model

import (
	"github.com/google/uuid"
)

// Built-in role names seeded with the schema
const (
	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

type Role struct {
	Base
	Name string `db:"name" json:"name"`
}

type AccountRole struct {
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	RoleID    uuid.UUID `db:"role_id" json:"role_id"`
}
