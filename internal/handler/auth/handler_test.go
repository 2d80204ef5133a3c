package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/handler/handlertest"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/session"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type fakeService struct {
	loggedOut *session.Session
	logoutErr error
}

func (f *fakeService) Login(_ context.Context, username, password string) (*model.TokenResponse, error) {
	if username == "alice" && password == "Secret1" {
		return &model.TokenResponse{Token: "signed", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
	}
	return nil, apperrors.Unauthorized("invalid username or password", nil)
}

func (f *fakeService) Logout(_ context.Context, sess *session.Session) error {
	f.loggedOut = sess
	return f.logoutErr
}

func setup() (*fakeService, *metrics.Metrics, http.Handler) {
	svc := &fakeService{}
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	r, api := handlertest.Router()
	passthrough := func(c *gin.Context) { c.Next() }
	NewHandler(svc, m).RegisterRoutes(api, handlertest.Auth(), passthrough)
	return svc, m, r
}

func TestLogin(t *testing.T) {
	_, m, r := setup()

	w := handlertest.Do(t, r, http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice", "password": "Secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	var token model.TokenResponse
	handlertest.Decode(t, w, &token)
	assert.Equal(t, "signed", token.Token)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")))
}

func TestLoginFailures(t *testing.T) {
	_, m, r := setup()

	wrong := handlertest.Do(t, r, http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice", "password": "nope"})
	unknown := handlertest.Do(t, r, http.MethodPost, "/api/v1/login", "", map[string]string{"username": "bob", "password": "Secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failure")))

	missing := handlertest.Do(t, r, http.MethodPost, "/api/v1/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "password", handlertest.Decode(t, missing, nil).Errors[0].Field)
}

func TestLogout(t *testing.T) {
	svc, m, r := setup()

	w := handlertest.Do(t, r, http.MethodPost, "/api/v1/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/logout", handlertest.DoctorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, handlertest.Doctor, svc.loggedOut)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logouts))

	svc.logoutErr = errors.New("redis down")
	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/logout", handlertest.DoctorToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
