package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"texgallery/internal/services"
)

// statusFor maps a services marker to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrIdentityMismatch):
		return http.StatusNotFound
	case errors.Is(err, services.ErrFetch), errors.Is(err, services.ErrDecode), errors.Is(err, services.ErrEncode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	respondStatus(c, statusFor(err), services.Kind(err), err)
}

func respondStatus(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error:     APIError{Message: msg, Code: code},
		RequestID: c.GetString(requestIDKey),
	})
}

// bindJSON decodes the body into dst, reporting malformed input as a
// validation failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, services.Wrap(services.ErrValidation, "api", "decode body", c.FullPath(), err))
		return false
	}
	return true
}
