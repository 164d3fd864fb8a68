package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepo interface {
	JoinEvent(ctx context.Context, params JoinParams) (*Ticket, error)
	LeaveEvent(ctx context.Context, userID, eventID uuid.UUID) error
	IsAttending(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	CountAttendees(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
	ListEventTickets(ctx context.Context, eventID uuid.UUID) ([]Ticket, error)
}

// findEventForUpdate locks the event row for the rest of the transaction so concurrent joins
// for the same event are serialized.
func findEventForUpdate(tx *gorm.DB, id uuid.UUID) (*Event, error) {
	var event Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("event %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}
	return &event, nil
}

// JoinEvent records attendance and issues a ticket in one transaction. Capacity is checked
// while the event row is locked. Joining again with the same checkout session returns the
// ticket already issued for it.
func (pg *PostgresRepo) JoinEvent(ctx context.Context, params JoinParams) (*Ticket, error) {
	if params.UserID == uuid.Nil || params.EventID == uuid.Nil {
		return nil, errdef.NewBadRequest("user and event are required")
	}

	var result *Ticket
	err := pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := findEventForUpdate(tx, params.EventID)
		if err != nil {
			return err
		}

		if params.Kind == TicketFree && !event.IsFree() {
			return errdef.NewBadRequest("event %s is paid, use checkout to join", event.ID)
		}

		var existing Ticket
		err = tx.Where("user_id = ? AND event_id = ?", params.UserID, params.EventID).First(&existing).Error
		switch {
		case err == nil:
			if params.Kind == TicketPaid && existing.CheckoutSessionID == params.CheckoutSessionID {
				result = &existing
				return nil
			}
			return errdef.NewConflict("already attending this event")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to check ticket: %w", err)
		}

		var attending int64
		if err := tx.Model(&Attendance{}).
			Where("user_id = ? AND event_id = ?", params.UserID, params.EventID).
			Count(&attending).Error; err != nil {
			return fmt.Errorf("failed to check attendance: %w", err)
		}
		if attending > 0 {
			return errdef.NewConflict("already attending this event")
		}

		var count int64
		if err := tx.Model(&Attendance{}).Where("event_id = ?", params.EventID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count attendees: %w", err)
		}
		if AvailableSpots(event.Capacity, int(count)).SoldOut() {
			return errdef.NewConflict("event is sold out")
		}

		now := time.Now().UTC()
		if err := tx.Create(&Attendance{UserID: params.UserID, EventID: params.EventID, CreatedAt: now}).Error; err != nil {
			return fmt.Errorf("failed to record attendance: %w", err)
		}

		ticket := &Ticket{
			ID:                uuid.New(),
			UserID:            params.UserID,
			EventID:           event.ID,
			Title:             event.Title,
			Address:           event.Address,
			StartTime:         event.StartTime,
			Price:             event.Price,
			Email:             params.Email,
			FullName:          params.FullName,
			Kind:              params.Kind,
			CheckoutSessionID: params.CheckoutSessionID,
			CreatedAt:         now,
		}
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to issue ticket: %w", err)
		}

		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LeaveEvent deletes the ticket and the attendance row together. Paid tickets are kept and
// the leave is refused.
func (pg *PostgresRepo) LeaveEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket Ticket
		err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).First(&ticket).Error
		switch {
		case err == nil:
			if ticket.Kind == TicketPaid {
				return errdef.NewConflict("paid tickets cannot be released by leaving the event")
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load ticket: %w", err)
		}

		res := tx.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&Attendance{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete attendance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errdef.NewNotFound("not attending event %s", eventID)
		}

		if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&Ticket{}).Error; err != nil {
			return fmt.Errorf("failed to delete ticket: %w", err)
		}
		return nil
	})
}

func (pg *PostgresRepo) IsAttending(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var count int64
	err := pg.db.WithContext(ctx).Model(&Attendance{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return count > 0, nil
}

// CountAttendees returns the attendee count per event. Events without attendees are absent.
func (pg *PostgresRepo) CountAttendees(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID uuid.UUID
		Count   int
	}
	err := pg.db.WithContext(ctx).Model(&Attendance{}).
		Select("event_id, count(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}

	for _, r := range rows {
		counts[r.EventID] = r.Count
	}
	return counts, nil
}

func (pg *PostgresRepo) ListEventTickets(ctx context.Context, eventID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := pg.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}
