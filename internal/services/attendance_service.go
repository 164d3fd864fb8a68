package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/mailer"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/publisher"
)

type eventReader interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

type TicketMailer interface {
	SendTicketConfirmation(ctx context.Context, to string, data mailer.TicketEmail) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type JoinResult struct {
	Ticket    *models.Ticket `json:"ticket"`
	EmailSent bool           `json:"email_sent"`
}

type attendanceEvent struct {
	UserID   uuid.UUID         `json:"user_id"`
	EventID  uuid.UUID         `json:"event_id"`
	TicketID uuid.UUID         `json:"ticket_id,omitempty"`
	Kind     models.TicketKind `json:"kind,omitempty"`
}

type AttendanceService struct {
	events     eventReader
	attendance models.AttendanceRepo
	mailer     TicketMailer
	publisher  EventPublisher
	logger     *slog.Logger
}

func NewAttendanceService(events eventReader, attendance models.AttendanceRepo, mailer TicketMailer, publisher EventPublisher, logger *slog.Logger) *AttendanceService {
	return &AttendanceService{
		events:     events,
		attendance: attendance,
		mailer:     mailer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Join registers the caller for a free event. Attendance and ticket are written in one
// transaction. The confirmation email is sent after commit and its failure is reported, not
// returned.
func (as *AttendanceService) Join(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*JoinResult, error) {
	event, err := as.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsFree() {
		return nil, errdef.NewBadRequest("event %s is paid, use checkout to join", eventID)
	}

	ticket, err := as.attendance.JoinEvent(ctx, models.JoinParams{
		UserID:   session.UserID,
		EventID:  eventID,
		Email:    session.Email,
		FullName: session.FullName,
		Kind:     models.TicketFree,
	})
	if err != nil {
		return nil, err
	}

	return as.afterJoin(ctx, ticket), nil
}

// CompletePaidJoin records attendance once a checkout session was paid. Calling it again for
// the same checkout session returns the ticket already issued.
func (as *AttendanceService) CompletePaidJoin(ctx context.Context, session *helpers.Session, eventID uuid.UUID, checkoutSessionID string) (*JoinResult, error) {
	ticket, err := as.attendance.JoinEvent(ctx, models.JoinParams{
		UserID:            session.UserID,
		EventID:           eventID,
		Email:             session.Email,
		FullName:          session.FullName,
		Kind:              models.TicketPaid,
		CheckoutSessionID: checkoutSessionID,
	})
	if err != nil {
		return nil, err
	}

	return as.afterJoin(ctx, ticket), nil
}

func (as *AttendanceService) afterJoin(ctx context.Context, ticket *models.Ticket) *JoinResult {
	result := &JoinResult{Ticket: ticket, EmailSent: true}

	err := as.mailer.SendTicketConfirmation(ctx, ticket.Email, mailer.TicketEmail{
		FullName:  ticket.FullName,
		Title:     ticket.Title,
		Address:   ticket.Address,
		StartTime: ticket.StartTime,
		Price:     ticket.Price,
		TicketID:  ticket.ID.String(),
	})
	if err != nil {
		result.EmailSent = false
		as.logger.Error("Failed to send ticket confirmation",
			"ticket_id", ticket.ID,
			"event_id", ticket.EventID,
			"error", err,
		)
	}

	payload := attendanceEvent{UserID: ticket.UserID, EventID: ticket.EventID, TicketID: ticket.ID, Kind: ticket.Kind}
	as.publish(ctx, publisher.AttendanceJoined, payload)
	as.publish(ctx, publisher.TicketIssued, payload)
	return result
}

// Leave removes attendance and the free ticket together.
func (as *AttendanceService) Leave(ctx context.Context, session *helpers.Session, eventID uuid.UUID) error {
	if err := as.attendance.LeaveEvent(ctx, session.UserID, eventID); err != nil {
		return err
	}

	as.publish(ctx, publisher.AttendanceLeft, attendanceEvent{UserID: session.UserID, EventID: eventID})
	return nil
}

func (as *AttendanceService) Status(ctx context.Context, session *helpers.Session, eventID uuid.UUID) (*models.AttendanceStatus, error) {
	event, err := as.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	attending, err := as.attendance.IsAttending(ctx, session.UserID, eventID)
	if err != nil {
		return nil, err
	}
	counts, err := as.attendance.CountAttendees(ctx, []uuid.UUID{eventID})
	if err != nil {
		return nil, err
	}

	return &models.AttendanceStatus{
		EventID:   eventID,
		Attending: attending,
		Attendees: counts[eventID],
		Spots:     models.AvailableSpots(event.Capacity, counts[eventID]),
	}, nil
}

func (as *AttendanceService) publish(ctx context.Context, routingKey string, payload any) {
	if as.publisher == nil {
		return
	}
	if err := as.publisher.Publish(ctx, routingKey, payload); err != nil {
		as.logger.Warn("Failed to publish domain event", "routing_key", routingKey, "error", err)
	}
}
