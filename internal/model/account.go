package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProfileKind discriminates the profile an account is linked to.
type ProfileKind string

const (
	ProfileNone    ProfileKind = ""
	ProfileDoctor  ProfileKind = "doctor"
	ProfilePatient ProfileKind = "patient"
)

// ProfileRef is the optional doctor-or-patient profile owned by an account.
// The zero value means the account has no profile (admin accounts).
type ProfileRef struct {
	Kind ProfileKind `json:"kind,omitempty"`
	ID   uuid.UUID   `json:"id,omitempty"`
}

func DoctorProfile(id uuid.UUID) ProfileRef {
	return ProfileRef{Kind: ProfileDoctor, ID: id}
}

func PatientProfile(id uuid.UUID) ProfileRef {
	return ProfileRef{Kind: ProfilePatient, ID: id}
}

func (p ProfileRef) IsZero() bool {
	return p.Kind == ProfileNone
}

// HomeRole is the role implied by the profile kind.
func (p ProfileRef) HomeRole() string {
	switch p.Kind {
	case ProfileDoctor:
		return RoleDoctor
	case ProfilePatient:
		return RolePatient
	default:
		return ""
	}
}

// ResolveProfile builds a ProfileRef from the optional back-references found
// in storage. Both being set violates the one-profile-per-account rule.
func ResolveProfile(doctorID, patientID uuid.NullUUID) (ProfileRef, error) {
	switch {
	case doctorID.Valid && patientID.Valid:
		return ProfileRef{}, fmt.Errorf("account linked to doctor %s and patient %s", doctorID.UUID, patientID.UUID)
	case doctorID.Valid:
		return DoctorProfile(doctorID.UUID), nil
	case patientID.Valid:
		return PatientProfile(patientID.UUID), nil
	default:
		return ProfileRef{}, nil
	}
}

type Account struct {
	Base
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	Profile      ProfileRef `db:"-" json:"profile"`
}

type CreateAdminRequest struct {
	Username string `json:"username" binding:"required,min=4,max=50"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type AccountResponse struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}
