package middleware

import (
	"net/http"
	"strings"

	"veriauth/auth-api/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAuthGate returns the middleware guarding protected routes. It expects
// an Authorization header of exactly "Bearer <token>", validates the token
// through the authentication core and attaches the asserted identity to
// the request context as userID and username.
func NewAuthGate(s *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No authorization header provided",
				"requestID": requestID,
			})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid authorization format",
				"requestID": requestID,
			})
			return
		}

		userID, username, err := s.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected bearer token", zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Set("username", username)
		c.Next()
	}
}
