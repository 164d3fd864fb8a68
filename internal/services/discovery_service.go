package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/discovery"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
)

type attendeeCounter interface {
	CountAttendees(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type imageResolver interface {
	ResolveEventImages(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type profileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*models.Profile, error)
}

// DiscoveryService answers the event listing endpoints with denormalized EventViews built from
// batched lookups.
type DiscoveryService struct {
	events   models.EventsRepo
	counts   attendeeCounter
	images   imageResolver
	profiles profileReader
}

func NewDiscoveryService(events models.EventsRepo, counts attendeeCounter, images imageResolver, profiles profileReader) *DiscoveryService {
	return &DiscoveryService{
		events:   events,
		counts:   counts,
		images:   images,
		profiles: profiles,
	}
}

// Search matches a free text term permissively.
func (ds *DiscoveryService) Search(ctx context.Context, term, city string, page int) (discovery.Page[models.EventView], error) {
	q := discovery.Query{
		Tags:      discovery.SearchTags(term),
		City:      city,
		Threshold: discovery.SearchThreshold,
	}
	return ds.run(ctx, q, page)
}

// Recommend matches the caller's stored interests conservatively. Without an explicit city
// the profile's city is used.
func (ds *DiscoveryService) Recommend(ctx context.Context, session *helpers.Session, city string, page int) (discovery.Page[models.EventView], error) {
	profile, err := ds.profiles.GetProfile(ctx, session.UserID, session.AccessToken)
	if err != nil {
		return discovery.Page[models.EventView]{}, fmt.Errorf("failed to load interests: %w", err)
	}
	if city == "" {
		city = profile.City
	}

	q := discovery.Query{
		Tags:      profile.Interests,
		City:      city,
		Threshold: discovery.PersonalizedThreshold,
	}
	return ds.run(ctx, q, page)
}

func (ds *DiscoveryService) run(ctx context.Context, q discovery.Query, page int) (discovery.Page[models.EventView], error) {
	if q.Empty() {
		return discovery.Paginate([]models.EventView{}, page, discovery.PageSize), nil
	}

	events, err := ds.events.ListEvents(ctx, q.City)
	if err != nil {
		return discovery.Page[models.EventView]{}, err
	}

	matched := discovery.Paginate(discovery.Match(events, q), page, discovery.PageSize)

	views, err := ds.buildViews(ctx, matched.Items)
	if err != nil {
		return discovery.Page[models.EventView]{}, err
	}

	return discovery.Page[models.EventView]{
		Items:      views,
		Page:       matched.Page,
		PageSize:   matched.PageSize,
		Total:      matched.Total,
		TotalPages: matched.TotalPages,
	}, nil
}

func (ds *DiscoveryService) GetEventView(ctx context.Context, id uuid.UUID) (*models.EventView, error) {
	event, err := ds.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := ds.buildViews(ctx, []models.Event{*event})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (ds *DiscoveryService) buildViews(ctx context.Context, events []models.Event) ([]models.EventView, error) {
	views := make([]models.EventView, 0, len(events))
	if len(events) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	counts, err := ds.counts.CountAttendees(ctx, ids)
	if err != nil {
		return nil, err
	}
	urls, err := ds.images.ResolveEventImages(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		views = append(views, models.EventView{
			Event:     e,
			ImageURL:  urls[e.ID],
			Attendees: counts[e.ID],
			Spots:     models.AvailableSpots(e.Capacity, counts[e.ID]),
		})
	}
	return views, nil
}
