package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base contains the identity shared by all persisted models
type Base struct {
	ID uuid.UUID `json:"id" db:"id"`
}

// Audit carries who/when stamps for records edited by staff
type Audit struct {
	CreatedBy string     `json:"created_by" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedBy *string    `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// SystemActor is recorded when a change has no authenticated actor.
const SystemActor = "system"

// ActorOrSystem falls back to SystemActor for blank actors.
func ActorOrSystem(actor string) string {
	if actor == "" {
		return SystemActor
	}
	return actor
}

func (a *Audit) StampCreated(actor string, at time.Time) {
	a.CreatedBy = ActorOrSystem(actor)
	a.CreatedAt = at
}

func (a *Audit) StampUpdated(actor string, at time.Time) {
	by := ActorOrSystem(actor)
	a.UpdatedBy = &by
	a.UpdatedAt = &at
}

// TrimOptional trims s and treats blank values as absent.
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SameOptional compares optional values case-insensitively.
func SameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return strings.EqualFold(*a, *b)
}
