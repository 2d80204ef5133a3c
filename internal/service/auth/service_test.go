package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/repotest"
	"github.com/jwalitptl/hms-api/internal/service/account"
	"github.com/jwalitptl/hms-api/internal/service/rbac"
	"github.com/jwalitptl/hms-api/internal/session"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

type fixture struct {
	store    *repotest.Store
	accounts *account.Service
	svc      *Service
	tokens   *auth.JWTManager
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	roles := rbac.NewService(store.RBAC())
	tokens := auth.NewJWTManager(auth.Config{
		Secret:   "test-secret",
		Issuer:   "hms-api",
		Audience: "hms-clients",
		Expiry:   30 * time.Minute,
	})

	svc, err := NewService(store.Accounts(), roles, hasher, tokens, session.NewMemoryRevocationStore())
	require.NoError(t, err)

	return &fixture{
		store:    store,
		accounts: account.NewService(store.Transactor(), store.Accounts(), roles, hasher),
		svc:      svc,
		tokens:   tokens,
	}
}

func TestLoginIssuesTokenWithRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acc, err := f.accounts.Provision(ctx, "drsmith", "Secret1", model.RoleDoctor, []string{"Admin"})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, "DrSmith", "Secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), resp.ExpiresAt, time.Minute)

	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID.String(), claims.Subject)
	assert.Equal(t, "drsmith", claims.Name)
	assert.ElementsMatch(t, []string{"Admin", "Doctor"}, claims.Roles)
	assert.Empty(t, claims.ProfileKind)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.accounts.Provision(ctx, "drsmith", "Secret1", model.RoleDoctor, nil)
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "drsmith", "Wrong1")
	_, unknownUser := f.svc.Login(ctx, "nobody", "Secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(wrongPassword))
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(unknownUser))
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestLoginDoesNotWrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.accounts.Provision(ctx, "drsmith", "Secret1", model.RoleDoctor, nil)
	require.NoError(t, err)
	writes := len(f.store.Calls())

	_, err = f.svc.Login(ctx, "drsmith", "Secret1")
	require.NoError(t, err)
	_, _ = f.svc.Login(ctx, "drsmith", "bad")

	assert.Len(t, f.store.Calls(), writes)
}

func TestValidateTokenBuildsSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acc, err := f.accounts.Provision(ctx, "alice", "Secret1", model.RoleAdmin, nil)
	require.NoError(t, err)
	resp, err := f.svc.Login(ctx, "alice", "Secret1")
	require.NoError(t, err)

	sess, err := f.svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, sess.AccountID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, []string{"Admin"}, sess.Roles)
	assert.True(t, sess.Profile.IsZero())
	assert.NotEmpty(t, sess.TokenID)
	assert.WithinDuration(t, resp.ExpiresAt, sess.ExpiresAt, time.Second)
}

func TestValidateTokenCarriesProfile(t *testing.T) {
	f := setup(t)
	profileID := uuid.New()

	claims := auth.Claims{Name: "drsmith", Roles: []string{"Doctor"}, ProfileKind: "doctor", ProfileID: profileID.String()}
	claims.Subject = uuid.NewString()
	token, _, err := f.tokens.Generate(claims)
	require.NoError(t, err)

	sess, err := f.svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.DoctorProfile(profileID), sess.Profile)
}

func TestValidateTokenRejects(t *testing.T) {
	f := setup(t)

	badSubject := auth.Claims{Name: "x"}
	badSubject.Subject = "not-a-uuid"
	badSubjectToken, _, err := f.tokens.Generate(badSubject)
	require.NoError(t, err)

	badProfile := auth.Claims{Name: "x", ProfileKind: "nurse", ProfileID: uuid.NewString()}
	badProfile.Subject = uuid.NewString()
	badProfileToken, _, err := f.tokens.Generate(badProfile)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "abc.def.ghi",
		"bad subject": badSubjectToken,
		"bad profile": badProfileToken,
		"empty":       "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ValidateToken(context.Background(), token)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.accounts.Provision(ctx, "alice", "Secret1", model.RoleAdmin, nil)
	require.NoError(t, err)
	resp, err := f.svc.Login(ctx, "alice", "Secret1")
	require.NoError(t, err)

	sess, err := f.svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, sess))

	_, err = f.svc.ValidateToken(ctx, resp.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// a fresh login is unaffected
	again, err := f.svc.Login(ctx, "alice", "Secret1")
	require.NoError(t, err)
	_, err = f.svc.ValidateToken(ctx, again.Token)
	assert.NoError(t, err)
}
