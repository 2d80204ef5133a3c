package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/session"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

const ContextSession = "session"

// TokenValidator turns a bearer token into a verified session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*session.Session, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores the session in both the
// gin context and the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.AbortWithError(c, apperrors.Unauthorized("missing authorization header", nil))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.AbortWithError(c, apperrors.Unauthorized("invalid authorization format", nil))
			return
		}

		sess, err := m.tokens.ValidateToken(c.Request.Context(), token)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}

		ctx := session.NewContext(c.Request.Context(), sess)
		logger := zerolog.Ctx(ctx).With().Str("account_id", sess.AccountID.String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))
		c.Set(ContextSession, sess)
		c.Next()
	}
}

// RequireRoles rejects sessions holding none of roles. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			httputil.AbortWithError(c, apperrors.Unauthorized("authentication required", nil))
			return
		}

		if !sess.HasAnyRole(roles...) {
			zerolog.Ctx(c.Request.Context()).Warn().
				Strs("required", roles).
				Strs("held", sess.Roles).
				Str("path", c.FullPath()).
				Msg("Access denied")
			httputil.AbortWithError(c, apperrors.Forbidden("insufficient role"))
			return
		}

		c.Next()
	}
}

// SessionFrom returns the session set by Authenticate.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess, true
		}
	}
	return session.FromContext(c.Request.Context())
}
