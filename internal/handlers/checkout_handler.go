package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/payments"
	"github.com/joshua-takyi/gatherly/internal/services"
)

type checkoutService interface {
	CreateSession(ctx context.Context, req services.CheckoutRequest) (*payments.Session, error)
	StartEventCheckout(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*payments.Session, error)
	Verify(ctx context.Context, session *helpers.Session, processorSessionID string) (*services.VerifyResult, error)
}

type paymentsService interface {
	Archive(ctx context.Context, session *helpers.Session, req services.ArchiveRequest) (*services.ArchiveResult, error)
	Revenue(ctx context.Context, session *helpers.Session, req services.RevenueRequest) (*services.RevenueReport, error)
}

// CreateCheckoutSession is the raw bridge: it opens hosted checkout for any price that exists
// in the organizer's account.
func CreateCheckoutSession(cs checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		session, err := cs.CreateSession(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(session, ""))
	}
}

func StartEventCheckout(cs checkoutService) gin.HandlerFunc {
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

		checkout, err := cs.StartEventCheckout(c.Request.Context(), session, eventID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(checkout, ""))
	}
}

func VerifyCheckout(cs checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := cs.Verify(c.Request.Context(), session, c.Query("session_id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(result, ""))
	}
}

// ArchiveProduct answers 200 even when only the product archival failed. The result body
// says which steps succeeded.
func ArchiveProduct(ps paymentsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req services.ArchiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("product_id, price_id and account are required"))
			return
		}

		result, err := ps.Archive(c.Request.Context(), session, req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(result, ""))
	}
}

func Revenue(ps paymentsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var req services.RevenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("account is required"))
			return
		}

		report, err := ps.Revenue(c.Request.Context(), session, req)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(report, ""))
	}
}
