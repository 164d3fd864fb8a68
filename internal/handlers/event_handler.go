package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/discovery"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
)

type eventFinder interface {
	Search(ctx context.Context, term, city string, page int) (discovery.Page[models.EventView], error)
	Recommend(ctx context.Context, session *helpers.Session, city string, page int) (discovery.Page[models.EventView], error)
	GetEventView(ctx context.Context, id uuid.UUID) (*models.EventView, error)
}

type eventEditor interface {
	CreateEvent(ctx context.Context, session *helpers.Session, event *models.Event) (*models.Event, error)
	UpdateEvent(ctx context.Context, session *helpers.Session, id uuid.UUID, fields map[string]any) (*models.Event, error)
}

func pageResponse(page discovery.Page[models.EventView]) models.ApiResponse {
	return models.PaginatedResponse(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages)
}

func SearchEvents(d eventFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := pageQuery(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := d.Search(c.Request.Context(), c.Query("q"), c.Query("city"), page)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, pageResponse(result))
	}
}

func RecommendedEvents(d eventFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		page, err := pageQuery(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := d.Recommend(c.Request.Context(), session, c.Query("city"), page)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, pageResponse(result))
	}
}

func GetEvent(d eventFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		view, err := d.GetEventView(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(view, ""))
	}
}

func CreateEvent(e eventEditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload: %v", err))
			return
		}

		created, err := e.CreateEvent(c.Request.Context(), session, &event)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func UpdateEvent(e eventEditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		id, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		updated, err := e.UpdateEvent(c.Request.Context(), session, id, fields)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}
