package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserDelete removes the authenticated user's account. Outstanding tokens
// keep verifying until they expire, but every protected route that touches
// the store comes back 404 afterwards.
func (a *API) UserDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !a.Users.Delete(userID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "user not found",
			"requestID": requestID,
		})
		return
	}

	zap.L().Info("User deleted", zap.String("userID", userID))

	c.JSON(http.StatusOK, gin.H{
		"message":   "Account deleted",
		"requestID": requestID,
	})
}
