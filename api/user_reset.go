package api

import (
	"errors"
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"
	"github.com/planoraforstudents/PlanoraForStudents/service"
	"github.com/planoraforstudents/PlanoraForStudents/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetVerifyBody struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resetPasswordBody struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// UserRequestPasswordReset mails a reset code to an active account
func (a *API) UserRequestPasswordReset(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetRequestBody
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
				"error":     "No account found with that email.",
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

	if !user.Active {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Account not active. Please verify your OTP first.",
			"requestID": requestID,
		})
		return
	}

	a.reissuePasscode(c, email, model.PasscodePurposeReset, "Password reset OTP sent to your email.")
}

// UserVerifyResetOTP consumes a reset code. The consumed record acts
// as the short-lived capability that the follow-up reset-password
// call checks for
func (a *API) UserVerifyResetOTP(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetVerifyBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.OTP == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and OTP are required.",
			"requestID": requestID,
		})
		return
	}

	email := service.NormalizeEmail(data.Email)

	outcome, record, err := service.VerifyPasscode(a.DB, email, data.OTP, model.PasscodePurposeReset)
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
			"error":     "OTP expired. Please request a new one.",
			"requestID": requestID,
		})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid or expired OTP.",
			"requestID": requestID,
		})
		return
	}

	if err := service.ConsumePasscode(a.DB, record.ID); err != nil {
		if errors.Is(err, service.ErrPasscodeConsumed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired OTP.",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to consume passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP verified successfully.",
	})
}

// UserResetPassword updates the password for an account that holds a
// recently consumed reset code. The consumed records are revoked in
// the same transaction so the capability can't be replayed
func (a *API) UserResetPassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetPasswordBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email and new password required.",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	email := service.NormalizeEmail(data.Email)

	var user model.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found.",
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

	verified, err := service.HasVerifiedReset(a.DB, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check reset capability", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !verified {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Please verify your reset OTP first.",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := service.SetPassword(tx, user.ID, hash); err != nil {
			return err
		}

		return service.RevokeVerifiedReset(tx, email)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reset password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully.",
	})
}
