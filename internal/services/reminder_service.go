package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/mailer"
	"github.com/joshua-takyi/gatherly/internal/models"
)

const reminderWindow = 24 * time.Hour

type upcomingEvents interface {
	ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

type ticketLister interface {
	ListEventTickets(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error)
}

type ReminderMailer interface {
	SendReminder(ctx context.Context, to string, data mailer.ReminderEmail) error
}

type ReminderReport struct {
	Events int `json:"events"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type ReminderService struct {
	events  upcomingEvents
	tickets ticketLister
	mailer  ReminderMailer
	logger  *slog.Logger
}

func NewReminderService(events upcomingEvents, tickets ticketLister, mailer ReminderMailer, logger *slog.Logger) *ReminderService {
	return &ReminderService{events: events, tickets: tickets, mailer: mailer, logger: logger}
}

// SendUpcoming emails every ticket holder of events starting within the next 24 hours, one
// message per recipient. Send failures are counted and the scan continues.
func (rs *ReminderService) SendUpcoming(ctx context.Context, now time.Time) (*ReminderReport, error) {
	events, err := rs.events.ListEventsStartingBetween(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return nil, err
	}

	report := &ReminderReport{Events: len(events)}
	for _, event := range events {
		tickets, err := rs.tickets.ListEventTickets(ctx, event.ID)
		if err != nil {
			return nil, err
		}

		for _, t := range tickets {
			err := rs.mailer.SendReminder(ctx, t.Email, mailer.ReminderEmail{
				FullName:  t.FullName,
				Title:     event.Title,
				Address:   event.Address,
				StartTime: event.StartTime,
			})
			if err != nil {
				report.Failed++
				rs.logger.Warn("Failed to send reminder", "event_id", event.ID, "ticket_id", t.ID, "error", err)
				continue
			}
			report.Sent++
		}
	}

	rs.logger.Info("Reminder scan finished", "events", report.Events, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
