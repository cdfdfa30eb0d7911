package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-validation error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthenticationFailed), errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the client-facing message for a non-validation error.
// Internal errors never leak their text.
func Detail(err error) string {
	var d interface{ Detail() string }
	if errors.As(err, &d) {
		return d.Detail()
	}
	switch Status(err) {
	case http.StatusNotFound:
		return "Not found."
	case http.StatusUnauthorized:
		if errors.Is(err, ErrNotAuthenticated) {
			return "Authentication credentials were not provided."
		}
		return "Incorrect authentication credentials."
	case http.StatusForbidden:
		return "You do not have permission to perform this action."
	default:
		return "Internal server error."
	}
}

// Write aborts the request with the response for err.
func Write(c *gin.Context, err error) {
	status := Status(err)

	var verr *ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(status, verr.Fields)
		return
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: Detail(err)})
}
