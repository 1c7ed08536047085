package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resendBody struct {
	UserID string `json:"userId"`
}

func (a *API) AuthResend(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "User ID is required",
			"requestID": requestID,
		})
		return
	}

	code, err := a.Auth.ResendCode(data.UserID)
	if err != nil {
		abortWithError(c, requestID, err, "Resend verification failed")
		return
	}

	resp := gin.H{
		"message":   "Verification code resent",
		"requestID": requestID,
	}
	if a.TestMode {
		resp["verificationCode"] = code
	}

	c.JSON(http.StatusOK, resp)
}
