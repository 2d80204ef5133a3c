// Package session carries the verified identity of a request.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

// Session is built from a verified access token and lives for one request.
type Session struct {
	AccountID uuid.UUID
	Username  string
	Roles     []string
	Profile   model.ProfileRef
	TokenID   string
	ExpiresAt time.Time
}

// HasAnyRole reports whether the session holds at least one of roles.
// Names compare case-insensitively.
func (s *Session) HasAnyRole(roles ...string) bool {
	for _, held := range s.Roles {
		for _, want := range roles {
			if strings.EqualFold(held, want) {
				return true
			}
		}
	}
	return false
}

// Actor is the name recorded in audit stamps.
func (s *Session) Actor() string {
	if s == nil {
		return ""
	}
	return s.Username
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
