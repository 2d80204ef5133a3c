package account

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/handler/handlertest"
	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type fakeService struct {
	taken map[string]bool
}

func (f *fakeService) CreateAdmin(_ context.Context, req *model.CreateAdminRequest) (*model.AccountResponse, error) {
	if f.taken[req.Username] {
		return nil, apperrors.NewConflict("username already exists", nil)
	}
	f.taken[req.Username] = true
	return &model.AccountResponse{AccountID: uuid.New(), Username: req.Username, Roles: []string{model.RoleAdmin}}, nil
}

func TestCreateAdmin(t *testing.T) {
	r, api := handlertest.Router()
	NewHandler(&fakeService{taken: map[string]bool{}}).RegisterRoutes(api, handlertest.Auth())
	body := map[string]string{"username": "bob-admin", "password": "secret1"}

	w := handlertest.Do(t, r, http.MethodPost, "/api/v1/accounts/admin", handlertest.AdminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got model.AccountResponse
	handlertest.Decode(t, w, &got)
	assert.Equal(t, "bob-admin", got.Username)
	assert.NotEqual(t, uuid.Nil, got.AccountID)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/accounts/admin", handlertest.AdminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/accounts/admin", handlertest.DoctorToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/accounts/admin", handlertest.AdminToken,
		map[string]string{"username": "bob", "password": "12345"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, handlertest.Decode(t, w, nil).Errors, 2)
}
