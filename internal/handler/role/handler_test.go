package role

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/handler/handlertest"
	"github.com/jwalitptl/hms-api/internal/model"
)

type fakeService struct {
	roles []*model.Role
	err   error
}

func (f *fakeService) ListRoles(context.Context) ([]*model.Role, error) {
	return f.roles, f.err
}

func newRole(name string) *model.Role {
	r := &model.Role{Name: name}
	r.ID = uuid.New()
	return r
}

func TestListRoles(t *testing.T) {
	r, api := handlertest.Router()
	svc := &fakeService{roles: []*model.Role{newRole(model.RoleAdmin), newRole(model.RoleDoctor), newRole(model.RolePatient)}}
	NewHandler(svc).RegisterRoutes(api, handlertest.Auth())

	w := handlertest.Do(t, r, http.MethodGet, "/api/v1/roles", handlertest.AdminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []model.Role
	handlertest.Decode(t, w, &got)
	require.Len(t, got, 3)
	assert.Equal(t, model.RoleAdmin, got[0].Name)
	assert.Equal(t, svc.roles[2].ID, got[2].ID)

	w = handlertest.Do(t, r, http.MethodGet, "/api/v1/roles", handlertest.DoctorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = handlertest.Do(t, r, http.MethodGet, "/api/v1/roles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRolesStoreFailure(t *testing.T) {
	r, api := handlertest.Router()
	NewHandler(&fakeService{err: errors.New("connection reset")}).RegisterRoutes(api, handlertest.Auth())

	w := handlertest.Do(t, r, http.MethodGet, "/api/v1/roles", handlertest.AdminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
