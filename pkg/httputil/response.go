package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/validator"
)

// Response wraps all API responses
type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, NewSuccessResponse(message, data))
}

// RespondWithBindError reports a failed ShouldBind* call. Validator failures
// become field-level messages, oversized bodies a 413 and malformed bodies a
// generic message.
func RespondWithBindError(c *gin.Context, err error) {
	if fields := validator.Translate(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, &Response{
			Status:  "error",
			Message: "validation failed",
			Errors:  fields,
		})
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.As(err, &sizeErr):
		c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("request body too large"))
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, &Response{
			Status:  "error",
			Message: "validation failed",
			Errors:  []validator.FieldError{{Field: typeErr.Field, Message: "has an invalid type"}},
		})
	case errors.As(err, &syntaxErr):
		c.JSON(http.StatusBadRequest, NewErrorResponse("malformed JSON body"))
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
	}
}

// RespondWithError maps err onto a status code and writes the error envelope.
// Errors outside the AppError taxonomy are logged and reported generically.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logUnexpected(c, err)
			c.JSON(status, NewErrorResponse("internal server error"))
			return
		}
		c.JSON(status, NewErrorResponse(appErr.Message))
		return
	}

	logUnexpected(c, err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// AbortWithError is RespondWithError for middleware.
func AbortWithError(c *gin.Context, err error) {
	RespondWithError(c, err)
	c.Abort()
}

func logUnexpected(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unexpected error")
}
