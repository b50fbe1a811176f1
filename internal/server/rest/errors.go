package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	msgInternal          = "Internal server error"
	msgRouteNotFound     = "Route not found"
	msgValidation        = "Validation failed"
	msgInvalidCreds      = "Invalid credentials"
	msgConflict          = "Username or email already in use"
	msgProjectNotFound   = "Project not found"
	msgHeaderMissing     = "Authorization header missing"
	msgInvalidAuthFormat = "Invalid authorization format"
	msgInvalidToken      = "Invalid or expired token"
	msgRateLimited       = "Too many authentication attempts. Please try again later."
	msgForbiddenUpdate   = "You are not authorised to update this project"
	msgForbiddenDelete   = "You are not authorised to delete this project"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// statusError is an error that already knows its HTTP answer.
type statusError struct {
	status  int
	message string
	fields  []FieldError
	cause   error
}

func (e *statusError) Error() string { return e.message }
func (e *statusError) Unwrap() error { return e.cause }

func newStatusError(status int, message string, cause error) *statusError {
	return &statusError{status: status, message: message, cause: cause}
}

func validationError(fields []FieldError) *statusError {
	return &statusError{status: http.StatusBadRequest, message: msgValidation, fields: fields, cause: common.ErrorValidation}
}

// fail records err on the context and stops the chain. The answer is
// written once, by errorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// mapError turns an error into its status, message and field list.
// Anything unrecognised is Internal.
func mapError(err error) (int, string, []FieldError) {
	var se *statusError
	if errors.As(err, &se) {
		return se.status, se.message, se.fields
	}

	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgProjectNotFound, nil
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, msgConflict, nil
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgInvalidCreds, nil
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, msgInvalidToken, nil
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited, nil
	default:
		return http.StatusInternalServerError, msgInternal, nil
	}
}

// errorHandler is the single place errors become responses. Internal
// failures are logged with the request id; their detail never reaches the
// client.
func errorHandler(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message, fields := mapError(err)
		if status == http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request failed",
				"error", err.Error(),
				"request_id", requestID(c),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(status, errorResponse{Success: false, Message: message, Errors: fields})
	}
}

func notFoundRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, errorResponse{Success: false, Message: msgRouteNotFound})
}
