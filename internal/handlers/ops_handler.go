package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/scraper"
	"github.com/joshua-takyi/gatherly/internal/services"
)

type scrapeService interface {
	Scrape(ctx context.Context, query, city string) ([]scraper.Listing, error)
}

type reminderService interface {
	SendUpcoming(ctx context.Context, now time.Time) (*services.ReminderReport, error)
}

func Scrape(s scrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Query string `json:"query" binding:"required"`
			City  string `json:"city" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("query and city are required"))
			return
		}

		listings, err := s.Scrape(c.Request.Context(), req.Query, req.City)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(listings, ""))
	}
}

func SendReminders(r reminderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := r.SendUpcoming(c.Request.Context(), time.Now().UTC())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(report, ""))
	}
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	}
}
