package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/payments"
)

const priceNotFoundMessage = "price not found in organizer's account"

type CheckoutRequest struct {
	PriceID          string            `json:"price_id" validate:"required"`
	SuccessURL       string            `json:"success_url" validate:"required,url"`
	CancelURL        string            `json:"cancel_url" validate:"required,url"`
	Metadata         map[string]string `json:"metadata"`
	OrganizerAccount string            `json:"organizer_account" validate:"required"`
}

type groupReader interface {
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
}

type paidJoiner interface {
	CompletePaidJoin(ctx context.Context, session *helpers.Session, eventID uuid.UUID, checkoutSessionID string) (*JoinResult, error)
}

type attendanceChecker interface {
	IsAttending(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	CountAttendees(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type VerifyResult struct {
	Status    models.CheckoutStatus `json:"status"`
	Ticket    *models.Ticket        `json:"ticket,omitempty"`
	EmailSent bool                  `json:"email_sent"`
}

type CheckoutService struct {
	processor       payments.Processor
	platformAccount string
	frontendURL     string
	events          eventReader
	groups          groupReader
	attendance      attendanceChecker
	checkouts       models.CheckoutRepo
	joiner          paidJoiner
	logger          *slog.Logger
}

type CheckoutDeps struct {
	Processor       payments.Processor
	PlatformAccount string
	FrontendURL     string
	Events          eventReader
	Groups          groupReader
	Attendance      attendanceChecker
	Checkouts       models.CheckoutRepo
	Joiner          paidJoiner
	Logger          *slog.Logger
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{
		processor:       deps.Processor,
		platformAccount: deps.PlatformAccount,
		frontendURL:     strings.TrimRight(deps.FrontendURL, "/"),
		events:          deps.Events,
		groups:          deps.Groups,
		attendance:      deps.Attendance,
		checkouts:       deps.Checkouts,
		joiner:          deps.Joiner,
		logger:          deps.Logger,
	}
}

// CreateSession verifies the price under the organizer's account and opens a one item hosted
// checkout there. Funds are transferred to the organizer when it is not the platform itself.
func (cs *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest) (*payments.Session, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, errdef.NewBadRequest("price_id, success_url, cancel_url and organizer_account are required")
	}

	if err := cs.processor.PriceExists(ctx, req.PriceID, req.OrganizerAccount); err != nil {
		if errors.Is(err, payments.ErrPriceNotFound) {
			return nil, errdef.NewBadRequest(priceNotFoundMessage)
		}
		return nil, errdef.NewUpstream("%v", err)
	}

	params := payments.CheckoutParams{
		PriceID:    req.PriceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Metadata:   req.Metadata,
		Account:    req.OrganizerAccount,
	}
	if req.OrganizerAccount != cs.platformAccount {
		params.Destination = req.OrganizerAccount
	}

	session, err := cs.processor.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, errdef.NewUpstream("%v", err)
	}
	return session, nil
}

// StartEventCheckout opens checkout for a paid event and records it as pending.
func (cs *CheckoutService) StartEventCheckout(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*payments.Session, error) {
	event, err := cs.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsFree() {
		return nil, errdef.NewBadRequest("event %s is free, join it directly", eventID)
	}

	group, err := cs.groups.GetGroup(ctx, event.GroupID)
	if err != nil {
		return nil, err
	}
	if group.PaymentAccount == "" {
		return nil, errdef.NewBadRequest("organizer has no payment account")
	}

	attending, err := cs.attendance.IsAttending(ctx, session.UserID, eventID)
	if err != nil {
		return nil, err
	}
	if attending {
		return nil, errdef.NewConflict("already attending this event")
	}
	// soft check, the paid join re-checks capacity under lock
	counts, err := cs.attendance.CountAttendees(ctx, []uuid.UUID{eventID})
	if err != nil {
		return nil, err
	}
	if models.AvailableSpots(event.Capacity, counts[eventID]).SoldOut() {
		return nil, errdef.NewConflict("event is sold out")
	}

	eventURL := fmt.Sprintf("%s/events/%s", cs.frontendURL, eventID)
	checkout, err := cs.CreateSession(ctx, CheckoutRequest{
		PriceID:    event.PriceID,
		SuccessURL: eventURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  eventURL,
		Metadata: map[string]string{
			"event_id": eventID.String(),
			"user_id":  session.UserID.String(),
		},
		OrganizerAccount: group.PaymentAccount,
	})
	if err != nil {
		return nil, err
	}

	if _, err := cs.checkouts.SaveCheckoutSession(ctx, &models.CheckoutSession{
		UserID:             session.UserID.String(),
		EventID:            eventID.String(),
		ProcessorSessionID: checkout.ID,
		Account:            group.PaymentAccount,
	}); err != nil {
		return nil, err
	}
	return checkout, nil
}

// Verify settles a checkout the caller started. A paid session completes the checkout record
// and issues the paid ticket. Anything else marks it failed.
func (cs *CheckoutService) Verify(ctx context.Context, session *helpers.Session, processorSessionID string) (*VerifyResult, error) {
	if strings.TrimSpace(processorSessionID) == "" {
		return nil, errdef.NewBadRequest("session_id is required")
	}

	record, err := cs.checkouts.GetCheckoutSession(ctx, processorSessionID)
	if err != nil {
		return nil, err
	}
	if record.UserID != session.UserID.String() {
		return nil, errdef.NewForbidden("checkout session belongs to another user")
	}
	eventID, err := uuid.Parse(record.EventID)
	if err != nil {
		return nil, fmt.Errorf("checkout session %s has invalid event id: %v", processorSessionID, err)
	}

	status, err := cs.processor.GetCheckoutSession(ctx, processorSessionID, record.Account)
	if err != nil {
		return nil, errdef.NewUpstream("%v", err)
	}

	if !status.Paid {
		// an open session or a settling async payment stays pending so a later verify can
		// still issue the ticket
		if !status.Expired {
			return &VerifyResult{Status: record.Status}, nil
		}
		updated, err := cs.checkouts.UpdateCheckoutStatus(ctx, processorSessionID, models.CheckoutResult{Status: models.CheckoutFailed})
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Status: updated.Status}, nil
	}

	updated, err := cs.checkouts.UpdateCheckoutStatus(ctx, processorSessionID, models.CheckoutResult{
		Status:          models.CheckoutCompleted,
		PaymentIntentID: status.PaymentIntentID,
		Amount:          status.AmountTotal,
		Currency:        status.Currency,
	})
	if err != nil {
		return nil, err
	}
	if updated.Status != models.CheckoutCompleted {
		return &VerifyResult{Status: updated.Status}, nil
	}

	joined, err := cs.joiner.CompletePaidJoin(ctx, session, eventID, processorSessionID)
	if err != nil {
		cs.logger.Error("Paid checkout could not be turned into attendance",
			"checkout_session", processorSessionID,
			"event_id", eventID,
			"error", err,
		)
		return nil, err
	}

	return &VerifyResult{Status: updated.Status, Ticket: joined.Ticket, EmailSent: joined.EmailSent}, nil
}
