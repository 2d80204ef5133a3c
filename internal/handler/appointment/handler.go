package appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest, actor string) (uuid.UUID, error)
	Patch(ctx context.Context, id uuid.UUID, req *model.PatchAppointmentRequest, actor string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AppointmentSummary, error)
	List(ctx context.Context) ([]*model.AppointmentSummary, error)
}

type Handler struct {
	service Service
	metrics *metrics.Metrics
}

func NewHandler(service Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments", authMW.Authenticate())
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("", h.CreateAppointment)
		appointments.PATCH("/:id", h.PatchAppointment)
		appointments.DELETE("/:id", authMW.RequireRoles(model.RoleAdmin), h.DeleteAppointment)
	}
}

type createdResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

// CreateAppointment reports a missing patient or doctor as a bad request,
// since the ids come from the body rather than the path.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound {
			httputil.RespondWithError(c, apperrors.NewValidation(appErr.Message, err))
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.AppointmentOperations.WithLabelValues("create").Inc()
	httputil.RespondWithSuccess(c, http.StatusCreated, "appointment created", createdResponse{AppointmentID: id})
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", appointment)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", appointments)
}

func (h *Handler) PatchAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.PatchAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	affected, err := h.service.Patch(c.Request.Context(), id, &req, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.AppointmentOperations.WithLabelValues("update").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment updated", handler.RowsAffected{RowsAffected: affected})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	affected, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.AppointmentOperations.WithLabelValues("delete").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment deleted", handler.RowsAffected{RowsAffected: affected})
}
