// Package handlertest provides request helpers and fixed sessions for
// handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/session"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/validator"
)

const (
	AdminToken  = "admin-token"
	DoctorToken = "doctor-token"
)

var (
	Admin  = &session.Session{AccountID: uuid.New(), Username: "alice", Roles: []string{model.RoleAdmin}, TokenID: "t1"}
	Doctor = &session.Session{AccountID: uuid.New(), Username: "drsmith", Roles: []string{model.RoleDoctor}, TokenID: "t2"}
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.RegisterWithGin(); err != nil {
		panic(err)
	}
}

type tokens struct{}

func (tokens) ValidateToken(_ context.Context, token string) (*session.Session, error) {
	switch token {
	case AdminToken:
		return Admin, nil
	case DoctorToken:
		return Doctor, nil
	}
	return nil, apperrors.Unauthorized("invalid or expired token", nil)
}

// Auth returns middleware that accepts AdminToken and DoctorToken.
func Auth() *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(tokens{})
}

// Metrics returns metrics bound to a throwaway registry.
func Metrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry(), "test")
}

// Router returns an engine with an /api/v1 group.
func Router() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	return r, r.Group("/api/v1")
}

// Do sends body as JSON with an optional bearer token.
func Do(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the envelope, decoding data into out when non-nil.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) httputil.Response {
	t.Helper()
	var raw struct {
		httputil.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Response
}
