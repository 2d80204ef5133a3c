package doctor

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
	Create(ctx context.Context, req *model.CreateDoctorRequest, actor string) (*model.Doctor, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest, actor string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
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
	doctors := r.Group("/doctors", authMW.Authenticate())
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", admin, h.CreateDoctor)
		doctors.PUT("/:id", admin, h.UpdateDoctor)
		doctors.DELETE("/:id", admin, h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	doctor, err := h.service.Create(c.Request.Context(), &req, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("doctor", "create").Inc()
	httputil.RespondWithSuccess(c, http.StatusCreated, "doctor created", doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "", doctors)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	affected, err := h.service.Update(c.Request.Context(), id, &req, handler.Actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("doctor", "update").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "doctor updated", handler.RowsAffected{RowsAffected: affected})
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.metrics.ProfileOperations.WithLabelValues("doctor", "delete").Inc()
	httputil.RespondWithSuccess(c, http.StatusOK, "doctor deleted", nil)
}
