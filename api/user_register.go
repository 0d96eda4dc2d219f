package api

import (
	"errors"
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"
	"github.com/planoraforstudents/PlanoraForStudents/service"
	"github.com/planoraforstudents/PlanoraForStudents/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRegister creates or reuses a pending account for the address,
// issues a fresh code and mails it. A mail failure rolls the whole
// registration back so no unverifiable account is left behind
func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	username := service.NormalizeUsername(data.Username)

	if err := validators.UsernameValidator(username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	email := service.NormalizeEmail(data.Email)

	hash, err := a.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := service.CreatePending(a.DB, email, username, hash)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Email already exists",
				"requestID": requestID,
			})
			return
		}

		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Username already exists",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create pending user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	record, err := service.IssuePasscode(a.DB, email, model.PasscodePurposeRegister)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := service.SendPasscodeMail(a.Mailer, record); err != nil {
		// Roll back exactly what this call created so the user can
		// try again. Scoped to the created IDs, a concurrent verify
		// for the same address won't be clobbered
		a.DB.Where("id = ?", user.ID).Delete(model.User{})
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
		"message": "OTP sent successfully to email",
	})
}
