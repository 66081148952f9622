package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigerroll/gridwatch/internal/query"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ParamError reports a malformed or out-of-range request parameter.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %s", e.Field, e.Message)
}

func (e *ParamError) Unwrap() error { return ErrInvalidRequest }

func paramError(field, format string, a ...any) error {
	return &ParamError{Field: field, Message: fmt.Sprintf(format, a...)}
}

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last error attached to the context, unless a
// handler already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			logger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, lastErr.Err)
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

// AbortWithError attaches err to the context and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var pErr *ParamError
	switch {
	case errors.As(err, &pErr):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: pErr.Message, Field: pErr.Field}
	case errors.Is(err, query.ErrInvalidWindow):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error(), Field: "window"}
	case errors.Is(err, query.ErrUnknownSeries):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error(), Field: "series"}
	case errors.Is(err, query.ErrUnknownTable), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}
