package role

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Service interface {
	ListRoles(ctx context.Context) ([]*model.Role, error)
}

// Handler exposes the role catalogue so admins can see which names the
// roles field of a doctor or patient request accepts.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	roles := r.Group("/roles", authMW.Authenticate(), authMW.RequireRoles(model.RoleAdmin))
	{
		roles.GET("", h.ListRoles)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "roles retrieved", roles)
}
