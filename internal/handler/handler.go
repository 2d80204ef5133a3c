// Package handler holds helpers shared by the HTTP handlers in its
// subpackages.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/middleware"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

// RowsAffected is the payload of update and delete responses.
type RowsAffected struct {
	RowsAffected int64 `json:"rows_affected"`
}

// ParseID reads a uuid path parameter. On failure it writes a 400 and
// returns false.
func ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid "+param, err))
		return uuid.Nil, false
	}
	return id, true
}

// Actor is the username recorded in audit stamps for this request.
func Actor(c *gin.Context) string {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return ""
	}
	return sess.Actor()
}
