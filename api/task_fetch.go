package api

import (
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) TaskFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var tasks []model.Task

	err := a.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch tasks", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, tasks)
}
