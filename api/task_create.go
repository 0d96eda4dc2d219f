package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var validTaskStatuses = []string{
	model.TaskStatusPending,
	model.TaskStatusInProgress,
	model.TaskStatusCompleted,
}

type taskCreateBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (a *API) TaskCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data taskCreateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	data.Title = strings.TrimSpace(data.Title)
	if data.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Title is required",
			"requestID": requestID,
		})
		return
	}

	if data.Status == "" {
		data.Status = model.TaskStatusPending
	}

	if !slices.Contains(validTaskStatuses, data.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid status",
			"requestID": requestID,
		})
		return
	}

	task := model.Task{
		UserID:      userID,
		Title:       data.Title,
		Description: data.Description,
		Status:      data.Status,
		DueDate:     data.DueDate,
	}

	if err := a.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create task", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, task)
}
