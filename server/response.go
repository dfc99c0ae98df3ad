package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/s3agent/core"
	"github.com/hupe1980/s3agent/model"
	"github.com/hupe1980/s3agent/objectstore"
	"github.com/hupe1980/s3agent/pipeline"
)

// ErrBadRequest marks request bodies that are not a JSON object of strings.
var ErrBadRequest = errors.New("bad request")

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Field string `json:"field,omitempty"`
}

// StatusFor maps an invocation error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, core.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, objectstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, objectstore.ErrAccessDenied), errors.Is(err, model.ErrAuth):
		return http.StatusForbidden
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// RespondWithError writes err as an ErrorResponse with the status from StatusFor.
func RespondWithError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = stageErr.Stage
	}
	var fieldErr *core.FieldError
	if errors.As(err, &fieldErr) {
		resp.Field = fieldErr.Field
	}

	c.AbortWithStatusJSON(StatusFor(err), resp)
}
