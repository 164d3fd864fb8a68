package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/supabase-community/postgrest-go"
)

const eventColumns = "id,title,description,address,start_time,end_time,price,group_id,creator_id,topics,capacity,price_id,product_id,created_at,updated_at"

type EventsRepo interface {
	ListEvents(ctx context.Context, city string) ([]Event, error)
	ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]any, accessToken string) (*Event, error)
}

type EventImagesRepo interface {
	ListEventImages(ctx context.Context, eventIDs []uuid.UUID) ([]EventImage, error)
}

func decodeEvents(raw []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events: %v", err)
	}
	return events, nil
}

// ListEvents returns every event ordered by start time. A non empty city narrows the rows to
// addresses containing it, case insensitive.
func (su *SupabaseRepo) ListEvents(ctx context.Context, city string) ([]Event, error) {
	q := su.supabaseClient.From(EventsTable).Select(eventColumns, "", false)
	if city = strings.TrimSpace(city); city != "" {
		q = q.Ilike("address", "*"+city+"*")
	}

	raw, _, err := q.Order("start_time", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, errdef.NewUpstream("failed to list events: %v", err)
	}
	return decodeEvents(raw)
}

func (su *SupabaseRepo) ListEventsStartingBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Gte("start_time", from.UTC().Format(time.RFC3339)).
		Lt("start_time", to.UTC().Format(time.RFC3339)).
		Order("start_time", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, errdef.NewUpstream("failed to list upcoming events: %v", err)
	}
	return decodeEvents(raw)
}

func (su *SupabaseRepo) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	if id == uuid.Nil {
		return nil, errdef.NewBadRequest("invalid event ID")
	}

	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}

	events, err := decodeEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, errdef.NewNotFound("event %s not found", id)
	}
	return &events[0], nil
}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(EventsTable).
		Insert(event, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	events, err := decodeEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no event returned after insert")
	}
	return &events[0], nil
}

func (su *SupabaseRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]any, accessToken string) (*Event, error) {
	if len(fields) == 0 {
		return nil, errdef.NewBadRequest("no fields to update")
	}

	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, count, err := client.From(EventsTable).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if count == 0 {
		return nil, errdef.NewNotFound("event %s not found", id)
	}

	events, err := decodeEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no event returned after update")
	}
	return &events[0], nil
}

func (su *SupabaseRepo) ListEventImages(ctx context.Context, eventIDs []uuid.UUID) ([]EventImage, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(eventIDs))
	for _, id := range eventIDs {
		ids = append(ids, id.String())
	}

	raw, _, err := su.supabaseClient.From(EventImagesTable).
		Select("event_id,path", "", false).
		In("event_id", ids).
		Execute()
	if err != nil {
		return nil, errdef.NewUpstream("failed to list event images: %v", err)
	}

	var images []EventImage
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event images: %v", err)
	}
	return images, nil
}
