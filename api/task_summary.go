package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskSummary recomputes and returns today's productivity snapshot
// for the user. The row is upserted so hitting the endpoint twice on
// the same day updates the existing summary instead of stacking rows
func (a *API) TaskSummary(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var completed, pending int64

	err := a.DB.Model(model.Task{}).
		Where("user_id = ? AND status = ?", userID, model.TaskStatusCompleted).
		Count(&completed).
		Error
	if err == nil {
		err = a.DB.Model(model.Task{}).
			Where("user_id = ? AND status <> ?", userID, model.TaskStatusCompleted).
			Count(&pending).
			Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count tasks", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var score float64
	if total := completed + pending; total > 0 {
		score = float64(completed) / float64(total) * 100
	}

	today := time.Now().Truncate(24 * time.Hour)

	var summary model.DailySummary
	err = a.DB.Where("user_id = ? AND date = ?", userID, today).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary = model.DailySummary{UserID: userID, Date: today}
		err = nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch summary", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	summary.CompletedTasks = int(completed)
	summary.PendingTasks = int(pending)
	summary.ProductivityScore = score

	if err := a.DB.Save(&summary).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save summary", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, summary)
}
