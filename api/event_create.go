package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type eventCreateBody struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	LinkedTaskID *uint     `json:"linked_task"`
}

func (a *API) EventCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data eventCreateBody
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

	if data.StartTime.IsZero() || data.EndTime.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Start and end time are required",
			"requestID": requestID,
		})
		return
	}

	if !data.EndTime.After(data.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "End time must be after start time",
			"requestID": requestID,
		})
		return
	}

	// A linked task has to belong to the same user, otherwise anyone
	// could probe for foreign task IDs
	if data.LinkedTaskID != nil {
		var task model.Task

		err := a.DB.Where("id = ? AND user_id = ?", *data.LinkedTaskID, userID).First(&task).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "Linked task not found",
					"requestID": requestID,
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check linked task", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	event := model.Event{
		UserID:       userID,
		Title:        data.Title,
		Description:  data.Description,
		StartTime:    data.StartTime,
		EndTime:      data.EndTime,
		LinkedTaskID: data.LinkedTaskID,
	}

	if err := a.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create event", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, event)
}
