package router

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	accountHandler "github.com/jwalitptl/hms-api/internal/handler/account"
	appointmentHandler "github.com/jwalitptl/hms-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/hms-api/internal/handler/doctor"
	"github.com/jwalitptl/hms-api/internal/handler/handlertest"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/hms-api/internal/handler/patient"
	roleHandler "github.com/jwalitptl/hms-api/internal/handler/role"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/repotest"
	accountService "github.com/jwalitptl/hms-api/internal/service/account"
	appointmentService "github.com/jwalitptl/hms-api/internal/service/appointment"
	authService "github.com/jwalitptl/hms-api/internal/service/auth"
	doctorService "github.com/jwalitptl/hms-api/internal/service/doctor"
	patientService "github.com/jwalitptl/hms-api/internal/service/patient"
	rbacService "github.com/jwalitptl/hms-api/internal/service/rbac"
	"github.com/jwalitptl/hms-api/internal/session"
	"github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
)

const adminPassword = "Secret123"

func newTestRouter(t *testing.T) (*Router, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	rbacSvc := rbacService.NewService(store.RBAC())
	accountSvc := accountService.NewService(store.Transactor(), store.Accounts(), rbacSvc, hasher)
	tokens := auth.NewJWTManager(auth.Config{Secret: "router-test", Issuer: "hms-api", Expiry: time.Hour})
	authSvc, err := authService.NewService(store.Accounts(), rbacSvc, hasher, tokens, session.NewMemoryRevocationStore())
	require.NoError(t, err)

	_, err = accountSvc.EnsureAdmin(context.Background(), "root", adminPassword)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry, "hms")
	handlers := Handlers{
		Auth:    authHandler.NewHandler(authSvc, m),
		Account: accountHandler.NewHandler(accountSvc),
		Appointment: appointmentHandler.NewHandler(
			appointmentService.NewService(store.Transactor(), store.Appointments(), store.Patients(), store.Doctors()), m),
		Doctor: doctorHandler.NewHandler(
			doctorService.NewService(store.Transactor(), store.Doctors(), store.Appointments(), accountSvc), m),
		Patient: patientHandler.NewHandler(
			patientService.NewService(store.Transactor(), store.Patients(), store.Appointments(), accountSvc), m),
		Role: roleHandler.NewHandler(rbacSvc),
		Health: health.NewHandler(map[string]health.Check{
			"store": func(context.Context) error { return nil },
		}),
	}

	r := NewRouter(zerolog.Nop(), middleware.NewAuthMiddleware(authSvc), handlers, registry, RouterConfig{
		LoginRate:      100,
		LoginBurst:     100,
		CORSConfig:     middleware.DefaultCORSConfig(),
		SecurityConfig: middleware.DefaultSecurityConfig(),
		MetricsPrefix:  "hms",
	})
	r.Setup()
	return r, store
}

func login(t *testing.T, r *Router, username, password string) string {
	t.Helper()
	w := handlertest.Do(t, r.Engine(), http.MethodPost, "/api/v1/login", "",
		model.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token model.TokenResponse
	handlertest.Decode(t, w, &token)
	require.NotEmpty(t, token.Token)
	return token.Token
}

func TestDoctorLifecycleThroughRouter(t *testing.T) {
	r, store := newTestRouter(t)
	engine := r.Engine()
	admin := login(t, r, "root", adminPassword)

	w := handlertest.Do(t, engine, http.MethodPost, "/api/v1/doctors", admin, map[string]interface{}{
		"first_name":     "Gregory",
		"specialization": "Diagnostics",
		"username":       "house",
		"password":       "Vicodin1",
		"roles":          []string{"Admin"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doctor model.Doctor
	handlertest.Decode(t, w, &doctor)
	assert.Equal(t, "house", doctor.Username)
	assert.Equal(t, []string{model.RoleAdmin, model.RoleDoctor}, store.RoleNames(doctor.AccountID))

	doctorToken := login(t, r, "house", "Vicodin1")
	w = handlertest.Do(t, engine, http.MethodGet, "/api/v1/doctors/"+doctor.ID.String(), doctorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(t, engine, http.MethodDelete, "/api/v1/doctors/"+doctor.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, store.Counts()["doctors"])
	assert.Equal(t, 1, store.Counts()["accounts"])
}

func TestAuthorizationGate(t *testing.T) {
	r, store := newTestRouter(t)
	engine := r.Engine()
	store.SeedDoctor("drwho", "John", "Smith")

	w := handlertest.Do(t, engine, http.MethodGet, "/api/v1/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := login(t, r, "root", adminPassword)
	w = handlertest.Do(t, engine, http.MethodGet, "/api/v1/appointments", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(t, engine, http.MethodPost, "/api/v1/logout", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = handlertest.Do(t, engine, http.MethodGet, "/api/v1/appointments", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFailureIsUniform(t *testing.T) {
	r, _ := newTestRouter(t)

	unknown := handlertest.Do(t, r.Engine(), http.MethodPost, "/api/v1/login", "",
		model.LoginRequest{Username: "nobody", Password: adminPassword})
	wrong := handlertest.Do(t, r.Engine(), http.MethodPost, "/api/v1/login", "",
		model.LoginRequest{Username: "root", Password: "Wrong1234"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	engine := r.Engine()

	w := handlertest.Do(t, engine, http.MethodGet, "/api/v1/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = handlertest.Do(t, engine, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "hms_http_requests_total"))
}

func TestListRolesThroughRouter(t *testing.T) {
	r, _ := newTestRouter(t)
	admin := login(t, r, "root", adminPassword)

	w := handlertest.Do(t, r.Engine(), http.MethodGet, "/api/v1/roles", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var roles []model.Role
	handlertest.Decode(t, w, &roles)
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	assert.Equal(t, []string{model.RoleAdmin, model.RoleDoctor, model.RolePatient}, names)

	w = handlertest.Do(t, r.Engine(), http.MethodGet, "/api/v1/roles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
