package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/session"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
)

const invalidCredentialsMessage = "invalid username or password"

// RoleLister returns the role names held by an account.
type RoleLister interface {
	RoleNames(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

type Service struct {
	accounts  repository.AccountRepository
	roles     RoleLister
	hasher    security.PasswordHasher
	tokens    *auth.JWTManager
	revoked   session.RevocationStore
	dummyHash string
}

func NewService(accounts repository.AccountRepository, roles RoleLister, hasher security.PasswordHasher,
	tokens *auth.JWTManager, revoked session.RevocationStore) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		accounts:  accounts,
		roles:     roles,
		hasher:    hasher,
		tokens:    tokens,
		revoked:   revoked,
		dummyHash: dummy,
	}, nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords fail identically and take comparable time.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, apperrors.Unauthorized(invalidCredentialsMessage, ErrInvalidCredentials)
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("account_id", account.ID.String()).
				Msg("Stored password hash is unusable")
		}
		return nil, apperrors.Unauthorized(invalidCredentialsMessage, ErrInvalidCredentials)
	}

	roles, err := s.roles.RoleNames(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	claims := auth.Claims{Name: account.Username, Roles: roles}
	claims.Subject = account.ID.String()
	if !account.Profile.IsZero() {
		claims.ProfileKind = string(account.Profile.Kind)
		claims.ProfileID = account.Profile.ID.String()
	}

	token, expiresAt, err := s.tokens.Generate(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", account.ID.String()).
		Strs("roles", roles).
		Msg("Login succeeded")

	return &model.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken turns a bearer token into a session. Every failure is
// reported as Unauthorized.
func (s *Service) ValidateToken(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token", err)
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token subject", err)
	}

	profile, err := profileFromClaims(claims)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token profile", err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("token has been revoked", ErrTokenRevoked)
	}

	return &session.Session{
		AccountID: accountID,
		Username:  claims.Name,
		Roles:     claims.Roles,
		Profile:   profile,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if err := s.revoked.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("account_id", sess.AccountID.String()).
		Msg("Session revoked")
	return nil
}

func profileFromClaims(claims *auth.Claims) (model.ProfileRef, error) {
	if claims.ProfileKind == "" {
		return model.ProfileRef{}, nil
	}

	id, err := uuid.Parse(claims.ProfileID)
	if err != nil {
		return model.ProfileRef{}, err
	}

	switch model.ProfileKind(claims.ProfileKind) {
	case model.ProfileDoctor:
		return model.DoctorProfile(id), nil
	case model.ProfilePatient:
		return model.PatientProfile(id), nil
	default:
		return model.ProfileRef{}, fmt.Errorf("unknown profile kind %q", claims.ProfileKind)
	}
}
