package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Config holds the signing parameters shared by issuer and verifier.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// Claims is the payload of an access token. Subject carries the account id.
type Claims struct {
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	ProfileKind string   `json:"profile_kind,omitempty"`
	ProfileID   string   `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 access tokens.
type JWTManager struct {
	cfg Config
	now func() time.Time
}

func NewJWTManager(cfg Config) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

// Generate signs claims after filling in the registered fields. The caller
// sets Subject, Name, Roles and the optional profile reference.
func (m *JWTManager) Generate(claims Claims) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.cfg.Expiry)

	claims.ID = uuid.New().String()
	claims.Issuer = m.cfg.Issuer
	if m.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims.ExpiresAt.Time, nil
}

// Parse verifies signature, algorithm, issuer, audience and time bounds.
func (m *JWTManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
