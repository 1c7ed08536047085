package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserProfile returns the full record of the authenticated user.
func (a *API) UserProfile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	user, found := a.Users.FindByID(userID)
	if !found {
		// The token outlived the account.
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "user not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"requestID": requestID,
	})
}
