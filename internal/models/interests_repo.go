package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/go-redis/redis"
	"github.com/supabase-community/postgrest-go"
)

const interestsCacheKey = "gatherly:interests:v1"

// ErrCacheMiss is returned by Cache implementations when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type Interest struct {
	Name      string `json:"name"`
	GroupName string `json:"group_name"`
}

type InterestsRepo interface {
	ListInterests(ctx context.Context) ([]Interest, error)
}

type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// GroupInterests folds the flat reference rows into interest groups sorted by name.
func GroupInterests(interests []Interest) []InterestGroup {
	byGroup := make(map[string][]string)
	for _, i := range interests {
		byGroup[i.GroupName] = append(byGroup[i.GroupName], i.Name)
	}

	groups := make([]InterestGroup, 0, len(byGroup))
	for name, tags := range byGroup {
		groups = append(groups, InterestGroup{Name: name, Interests: tags})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func (su *SupabaseRepo) ListInterests(ctx context.Context) ([]Interest, error) {
	raw, _, err := su.supabaseClient.From(InterestsTable).
		Select("name,group_name", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}

	var interests []Interest
	if err := json.Unmarshal(raw, &interests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interests: %v", err)
	}
	return interests, nil
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(key string) ([]byte, error) {
	b, err := r.client.Get(key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (r *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(key, value, ttl).Err()
}

// CachedInterests serves the interests reference table from the cache and falls back to the
// underlying repo. Cache errors are logged and never fail the read.
type CachedInterests struct {
	next   InterestsRepo
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedInterests(next InterestsRepo, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedInterests {
	return &CachedInterests{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (ci *CachedInterests) ListInterests(ctx context.Context) ([]Interest, error) {
	if ci.cache != nil {
		b, err := ci.cache.Get(interestsCacheKey)
		switch {
		case err == nil:
			var cached []Interest
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
			ci.logger.Warn("Discarding corrupt interests cache entry")
		case !errors.Is(err, ErrCacheMiss):
			ci.logger.Warn("Interests cache read failed", "error", err)
		}
	}

	interests, err := ci.next.ListInterests(ctx)
	if err != nil {
		return nil, err
	}

	if ci.cache != nil {
		b, err := json.Marshal(interests)
		if err == nil {
			err = ci.cache.Set(interestsCacheKey, b, ci.ttl)
		}
		if err != nil {
			ci.logger.Warn("Interests cache write failed", "error", err)
		}
	}
	return interests, nil
}
