package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/planoraforstudents/PlanoraForStudents/model"
	"github.com/planoraforstudents/PlanoraForStudents/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type roadmapGenerateBody struct {
	Goal string `json:"goal"`
}

// RoadmapGenerate asks the generator for roadmap text and stores each
// non-empty line as an ordered step. The call blocks for the duration
// of the upstream request, bounded by the generator's own timeout
func (a *API) RoadmapGenerate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data roadmapGenerateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	data.Goal = strings.TrimSpace(data.Goal)
	if data.Goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Goal is required",
			"requestID": requestID,
		})
		return
	}

	text, err := a.Generator.Generate(c.Request.Context(), service.BuildRoadmapPrompt(data.Goal))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Roadmap generation failed. Please try again.",
			"requestID": requestID,
		})

		zap.L().Error("Roadmap generation failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	title := data.Goal
	if len(title) > 50 {
		title = title[:50]
	}

	roadmap := model.Roadmap{
		UserID: userID,
		Title:  fmt.Sprintf("AI Roadmap for %s", title),
		Goal:   data.Goal,
		Steps:  service.ParseRoadmapSteps(text),
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&roadmap).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save roadmap", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, roadmap)
}
