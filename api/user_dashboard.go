package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserDashboard is an example protected resource. It only echoes the
// identity the gate attached to the request.
func (a *API) UserDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "This is protected content for your dashboard",
		"user": gin.H{
			"userId":   c.MustGet("userID").(string),
			"username": c.MustGet("username").(string),
		},
	})
}
