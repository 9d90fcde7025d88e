package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/kpiboard/core"
	"github.com/huangsam/kpiboard/internal/iocache"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// badRequest marks errors caused by the request itself.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	var br *badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, core.ErrInvalidCoefficient):
		return http.StatusBadRequest
	case errors.Is(err, iocache.ErrOperatorNotFound),
		errors.Is(err, iocache.ErrIndicatorNotFound),
		errors.Is(err, core.ErrItemNotFound),
		errors.Is(err, core.ErrNoTemplate):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError records err for the request log and writes the JSON error body.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorResponse{Error: err.Error()})
}
