package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyEmailBody struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

func (a *API) AuthVerifyEmail(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data verifyEmailBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.UserID == "" || data.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Missing required fields",
			"requestID": requestID,
		})
		return
	}

	if err := a.Auth.VerifyEmail(data.UserID, data.Code); err != nil {
		abortWithError(c, requestID, err, "Email verification failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email verified successfully",
		"requestID": requestID,
	})
}
