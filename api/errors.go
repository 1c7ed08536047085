package api

import (
	"errors"
	"net/http"

	"veriauth/auth-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps the core's error taxonomy to HTTP status codes:
// duplicates conflict, missing resources 404, anything credential- or
// token-shaped 401, the rest of the recoverable failures 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername),
		errors.Is(err, auth.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, auth.ErrCodeNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrEmailNotVerified),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrCodeExpired),
		errors.Is(err, auth.ErrCodeMismatch),
		errors.Is(err, auth.ErrAlreadyVerified):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the JSON failure response for err. Internal errors
// get logged and replaced with a generic message so no state leaks.
func abortWithError(c *gin.Context, requestID string, err error, logMsg string) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(status, gin.H{
		"error":     err.Error(),
		"requestID": requestID,
	})
}
