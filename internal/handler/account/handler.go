package account

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Service interface {
	CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.AccountResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	accounts := r.Group("/accounts", authMW.Authenticate(), authMW.RequireRoles(model.RoleAdmin))
	{
		accounts.POST("/admin", h.CreateAdmin)
	}
}

func (h *Handler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	account, err := h.service.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, "admin account created", account)
}
