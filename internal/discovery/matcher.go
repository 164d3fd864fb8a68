// Package discovery selects and pages events for the search and recommendation endpoints.
package discovery

import (
	"strings"

	"github.com/joshua-takyi/gatherly/internal/models"
)

const (
	// SearchThreshold is permissive so free text finds loosely related events.
	SearchThreshold = 0.05
	// PersonalizedThreshold keeps recommendations close to the stored interests.
	PersonalizedThreshold = 0.5
)

// Query is one matching request. Tags come from a profile or from a split search term.
type Query struct {
	Tags      []string
	City      string
	Threshold float64
}

// Empty reports whether there is nothing to match on. Callers skip the event query entirely.
func (q Query) Empty() bool {
	return len(normalizeTags(q.Tags)) == 0 && strings.TrimSpace(q.City) == ""
}

// Match filters events by city and then by tag. An exact, case insensitive tag match on any
// event wins and the fuzzy tier is skipped. Otherwise an event is kept when any pair of its
// tags and the query tags scores at or above the threshold. Events without tags never match
// a tag query. Input order is preserved.
func Match(events []models.Event, q Query) []models.Event {
	if q.Empty() {
		return []models.Event{}
	}

	inCity := filterCity(events, q.City)
	tags := normalizeTags(q.Tags)
	if len(tags) == 0 {
		return inCity
	}

	if exact := exactTier(inCity, tags); len(exact) > 0 {
		return exact
	}
	return fuzzyTier(inCity, tags, q.Threshold)
}

// SearchTags splits a free text term into the tags it is matched with. The whole term is kept
// as well so multi word interests can still match exactly.
func SearchTags(term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	tags := []string{term}
	words := strings.Fields(term)
	if len(words) > 1 {
		tags = append(tags, words...)
	}
	return tags
}

func filterCity(events []models.Event, city string) []models.Event {
	city = strings.ToLower(strings.TrimSpace(city))
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if city == "" || strings.Contains(strings.ToLower(e.Address), city) {
			out = append(out, e)
		}
	}
	return out
}

func exactTier(events []models.Event, tags []string) []models.Event {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	out := []models.Event{}
	for _, e := range events {
		for _, tag := range e.Topics.Tags() {
			if _, ok := want[strings.ToLower(tag)]; ok {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func fuzzyTier(events []models.Event, tags []string, threshold float64) []models.Event {
	out := []models.Event{}
	for _, e := range events {
		eventTags := e.Topics.Tags()
		if len(eventTags) > 0 && bestScore(eventTags, tags) >= threshold {
			out = append(out, e)
		}
	}
	return out
}

func bestScore(eventTags, tags []string) float64 {
	best := 0.0
	for _, et := range eventTags {
		for _, t := range tags {
			if s := Similarity(et, t); s > best {
				best = s
			}
		}
	}
	return best
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
