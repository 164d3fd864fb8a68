package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/services"
)

type attendanceService interface {
	Join(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*services.JoinResult, error)
	Leave(ctx context.Context, session *helpers.Session, eventID uuid.UUID) error
	Status(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*models.AttendanceStatus, error)
}

func AttendanceStatus(a attendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		eventID, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		status, err := a.Status(c.Request.Context(), session, eventID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(status, ""))
	}
}

// JoinEvent answers 201 with the ticket. email_sent reports whether the confirmation mail
// went out.
func JoinEvent(a attendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		eventID, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := a.Join(c.Request.Context(), session, eventID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Joined event"))
	}
}

func LeaveEvent(a attendanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		eventID, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := a.Leave(c.Request.Context(), session, eventID); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"event_id": eventID, "attending": false}, "Left event"))
	}
}
