package api

import (
	"net/http"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) EventFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var events []model.Event

	err := a.DB.Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&events).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch events", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, events)
}
