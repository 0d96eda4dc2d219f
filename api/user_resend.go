package api

import (
	"errors"
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"
	"github.com/planoraforstudents/PlanoraForStudents/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resendBody struct {
	Email string `json:"email"`
}

// UserResendOTP reissues the registration code for an existing
// account and mails it, subject to the per-address cooldown
func (a *API) UserResendOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email is required",
			"requestID": requestID,
		})
		return
	}

	email := service.NormalizeEmail(data.Email)

	var user model.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.reissuePasscode(c, email, model.PasscodePurposeRegister, "New OTP sent successfully")
}

// reissuePasscode is shared between resend-otp and
// request-password-reset: check the cooldown, issue a fresh code for
// the given purpose and mail it
func (a *API) reissuePasscode(c *gin.Context, email, purpose, successMsg string) {
	requestID := c.MustGet("requestID").(string)

	remaining, err := service.ResendCooldown(a.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check resend cooldown", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if remaining > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "Please wait before requesting another code",
			"requestID": requestID,
		})
		return
	}

	record, err := service.IssuePasscode(a.DB, email, purpose)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := service.SendPasscodeMail(a.Mailer, record); err != nil {
		a.DB.Where("id = ?", record.ID).Delete(model.OneTimePasscode{})

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to send verification email. Please try again.",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send passcode mail", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := service.TouchResend(a.DB, email); err != nil {
		zap.L().Warn("Failed to record resend timestamp", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": successMsg,
	})
}
