package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
)

// eventFields are the columns an organizer may patch.
var eventFields = map[string]bool{
	"title":       true,
	"description": true,
	"address":     true,
	"start_time":  true,
	"end_time":    true,
	"price":       true,
	"topics":      true,
	"capacity":    true,
	"price_id":    true,
	"product_id":  true,
}

type EventService struct {
	events models.EventsRepo
}

func NewEventService(events models.EventsRepo) *EventService {
	return &EventService{events: events}
}

func (es *EventService) CreateEvent(ctx context.Context, session *helpers.Session, event *models.Event) (*models.Event, error) {
	if !session.OwnsGroup(event.GroupID) {
		return nil, errdef.NewForbidden("only the group owner can create events")
	}

	event.Normalize()
	if err := event.ValidateEvent(); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}

	now := time.Now().UTC()
	event.ID = uuid.New()
	event.CreatorID = session.UserID
	event.CreatedAt = now
	event.UpdatedAt = now
	return es.events.CreateEvent(ctx, event, session.AccessToken)
}

// UpdateEvent applies a partial update. The patched event is validated as a whole before it is
// written.
func (es *EventService) UpdateEvent(ctx context.Context, session *helpers.Session, id uuid.UUID, fields map[string]any) (*models.Event, error) {
	current, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.OwnsGroup(current.GroupID) {
		return nil, errdef.NewForbidden("only the group owner can edit this event")
	}

	fields = helpers.StringTrim(fields)
	for k := range fields {
		if !eventFields[k] {
			return nil, errdef.NewBadRequest("field %q cannot be updated", k)
		}
	}

	merged, err := mergeEvent(current, fields)
	if err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}
	merged.Normalize()
	if err := merged.ValidateEvent(); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}

	if _, ok := fields["topics"]; ok {
		fields["topics"] = merged.Topics
	}
	if _, ok := fields["price"]; ok {
		fields["price"] = merged.Price
	}
	fields["updated_at"] = time.Now().UTC()
	return es.events.UpdateEvent(ctx, id, fields, session.AccessToken)
}

func mergeEvent(current *models.Event, fields map[string]any) (*models.Event, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	merged := &models.Event{}
	if err := json.Unmarshal(base, merged); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
