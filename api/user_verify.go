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

type verifyBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// UserVerifyOTP consumes a registration code and activates the
// pending account. Activation and consumption run in one transaction
// so a crash can't leave a consumed code with no activated user, or
// the other way around
func (a *API) UserVerifyOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.OTP == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and OTP are required",
			"requestID": requestID,
		})
		return
	}

	email := service.NormalizeEmail(data.Email)

	outcome, record, err := service.VerifyPasscode(a.DB, email, data.OTP, model.PasscodePurposeRegister)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	switch outcome {
	case service.OutcomeValid:
	case service.OutcomeExpired:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "OTP expired, please request a new one",
			"requestID": requestID,
		})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid OTP",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err = a.DB.Where("email = ? AND active = ?", email, false).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "User not found or already verified",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch pending user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := service.Activate(tx, user.ID); err != nil {
			return err
		}

		return service.ConsumePasscode(tx, record.ID)
	})
	if err != nil {
		if errors.Is(err, service.ErrPasscodeConsumed) {
			// Lost the race against a concurrent verify with the same
			// code. The transaction rolled the activation back
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid OTP",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to activate user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful!",
	})
}
