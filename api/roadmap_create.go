package api

import (
	"net/http"
	"strings"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type roadmapCreateBody struct {
	Title string `json:"title"`
	Goal  string `json:"goal"`
}

func (a *API) RoadmapCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data roadmapCreateBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	data.Title = strings.TrimSpace(data.Title)
	data.Goal = strings.TrimSpace(data.Goal)

	if data.Title == "" || data.Goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Title and goal are required",
			"requestID": requestID,
		})
		return
	}

	roadmap := model.Roadmap{
		UserID: userID,
		Title:  data.Title,
		Goal:   data.Goal,
	}

	if err := a.DB.Create(&roadmap).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create roadmap", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, roadmap)
}
