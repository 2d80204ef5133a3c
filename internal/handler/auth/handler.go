package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/session"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type Service interface {
	Login(ctx context.Context, username, password string) (*model.TokenResponse, error)
	Logout(ctx context.Context, sess *session.Session) error
}

type Handler struct {
	svc     Service
	metrics *metrics.Metrics
}

func NewHandler(svc Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

// RegisterRoutes mounts login behind limiter and logout behind
// authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware, limiter gin.HandlerFunc) {
	r.POST("/login", limiter, h.Login)
	r.POST("/logout", authMW.Authenticate(), h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		result := "error"
		if apperrors.CodeOf(err) == apperrors.ErrUnauthorized {
			result = "failure"
		}
		h.metrics.LoginAttempts.WithLabelValues(result).Inc()
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.LoginAttempts.WithLabelValues("success").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "login successful", token)
}

func (h *Handler) Logout(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized("authentication required", nil))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.Logouts.Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "logged out", nil)
}
