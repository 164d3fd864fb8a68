package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableSpots(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		attendees int
		want      Spots
	}{
		{"no limit", 0, 4, Spots{Unlimited: true, Display: NoLimit}},
		{"negative capacity", -1, 0, Spots{Unlimited: true, Display: NoLimit}},
		{"sold out", 10, 10, Spots{Display: SoldOut}},
		{"over capacity", 10, 12, Spots{Display: SoldOut}},
		{"some left", 10, 7, Spots{Available: 3, Display: "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AvailableSpots(tt.capacity, tt.attendees))
		})
	}
}

func TestSpotsSoldOut(t *testing.T) {
	assert.True(t, AvailableSpots(10, 10).SoldOut())
	assert.False(t, AvailableSpots(0, 10).SoldOut())
	assert.False(t, AvailableSpots(10, 9).SoldOut())
}

func validEvent() Event {
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	return Event{
		Title:     "Hike",
		Address:   "Gdansk, Dluga 1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Price:     "free",
		Topics:    Topics{Version: 1, Groups: []InterestGroup{{Name: "Outdoor", Interests: []string{"Hiking"}}}},
	}
}

func TestEventValidate(t *testing.T) {
	e := validEvent()
	e.Normalize()
	require.NoError(t, e.ValidateEvent())
	assert.Equal(t, PriceFree, e.Price)
	assert.Equal(t, "Gdansk", e.City())

	paid := validEvent()
	paid.Price = "25.00"
	assert.Error(t, paid.ValidateEvent(), "paid event needs a price id")
	paid.PriceID = "price_123"
	assert.NoError(t, paid.ValidateEvent())

	bad := validEvent()
	bad.Price = "-5"
	bad.PriceID = "price_123"
	assert.Error(t, bad.ValidateEvent())

	backwards := validEvent()
	backwards.EndTime = backwards.StartTime.Add(-time.Hour)
	assert.Error(t, backwards.ValidateEvent())
}

func TestAlbumPicturesUnmarshal(t *testing.T) {
	var album Album
	err := json.Unmarshal([]byte(`{"name":"Summer","pictures":"[\"a/1.jpg\",\"a/2.jpg\"]"}`), &album)
	require.NoError(t, err)
	assert.Equal(t, AlbumPictures{"a/1.jpg", "a/2.jpg"}, album.Pictures)

	err = json.Unmarshal([]byte(`{"name":"Summer","pictures":["b/1.jpg"]}`), &album)
	require.NoError(t, err)
	assert.Equal(t, AlbumPictures{"b/1.jpg"}, album.Pictures)

	err = json.Unmarshal([]byte(`{"name":"Summer","pictures":{"a":1}}`), &album)
	assert.Error(t, err)
}

func TestAlbumPicturesValidate(t *testing.T) {
	assert.NoError(t, AlbumPictures{"a/1.jpg"}.Validate())
	assert.Error(t, AlbumPictures{" "}.Validate())
	assert.Error(t, AlbumPictures{"../secret"}.Validate())

	b, err := json.Marshal(AlbumPictures(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestGroupInterests(t *testing.T) {
	groups := GroupInterests([]Interest{
		{Name: "Skiing", GroupName: "Sports"},
		{Name: "Chess", GroupName: "Games"},
		{Name: "Hiking", GroupName: "Sports"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Games", groups[0].Name)
	assert.Equal(t, []string{"Skiing", "Hiking"}, groups[1].Interests)
}

type mapCache struct {
	data    map[string][]byte
	getErr  error
	setCall int
}

func (m *mapCache) Get(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

func (m *mapCache) Set(key string, value []byte, ttl time.Duration) error {
	m.setCall++
	m.data[key] = value
	return nil
}

type countingInterests struct {
	calls int
	err   error
}

func (c *countingInterests) ListInterests(ctx context.Context) ([]Interest, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []Interest{{Name: "Hiking", GroupName: "Outdoor"}}, nil
}

func TestCachedInterests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := &countingInterests{}
	cache := &mapCache{data: map[string][]byte{}}
	repo := NewCachedInterests(next, cache, time.Hour, logger)

	first, err := repo.ListInterests(context.Background())
	require.NoError(t, err)
	second, err := repo.ListInterests(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.setCall)
}

func TestCachedInterestsCacheDown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := &countingInterests{}
	cache := &mapCache{data: map[string][]byte{}, getErr: errors.New("connection refused")}
	repo := NewCachedInterests(next, cache, time.Hour, logger)

	interests, err := repo.ListInterests(context.Background())

	require.NoError(t, err)
	assert.Len(t, interests, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCachedInterestsSourceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := &countingInterests{err: errors.New("boom")}
	cache := &mapCache{data: map[string][]byte{}}
	repo := NewCachedInterests(next, cache, time.Hour, logger)

	_, err := repo.ListInterests(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, cache.setCall)
}
