package patient

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/httputil"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type Service interface {
	Create(ctx context.Context, req *model.CreatePatientRequest, actor string) (*model.Patient, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actor string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type Handler struct {
	service Service
	metrics *metrics.Metrics
}

func NewHandler(service Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	admin := authMW.RequireRoles(model.RoleAdmin)
	patients := r.Group("/patients", authMW.Authenticate())
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", admin, h.CreatePatient)
		patients.PUT("/:id", admin, h.UpdatePatient)
		patients.DELETE("/:id", admin, h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	patient, err := h.service.Create(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("patient", "create").Inc()
	httputil.RespondWithSuccess(c, http.StatusCreated, "patient created", patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	affected, err := h.service.Update(c.Request.Context(), id, &req, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("patient", "update").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "patient updated", handler.RowsAffected{RowsAffected: affected})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("patient", "delete").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "patient deleted", nil)
}
