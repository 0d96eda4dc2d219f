package api

import (
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) RoadmapFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var roadmaps []model.Roadmap

	err := a.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&roadmaps).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch roadmaps", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, roadmaps)
}
