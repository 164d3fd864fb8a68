package discovery

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(title, address string, tags ...string) models.Event {
	topics := models.Topics{Version: models.TopicsVersion}
	if len(tags) > 0 {
		topics.Groups = []models.InterestGroup{{Name: "Any", Interests: tags}}
	}
	return models.Event{ID: uuid.New(), Title: title, Address: address, Topics: topics}
}

func titles(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func TestMatchGdanskScenario(t *testing.T) {
	events := []models.Event{
		event("Forest walk", "Gdansk, Oliwa", "Hiking"),
		event("Slopes", "Warsaw, Centrum", "Skiing"),
	}

	got := Match(events, Query{Tags: []string{"Hiking", "Chess"}, City: "Gdansk", Threshold: PersonalizedThreshold})

	assert.Equal(t, []string{"Forest walk"}, titles(got))
}

func TestMatchExactTierSuppressesFuzzy(t *testing.T) {
	events := []models.Event{
		event("Exact", "Gdansk", "HIKING"),
		event("Close", "Gdansk", "Hiking trips"),
	}
	require.GreaterOrEqual(t, Similarity("Hiking trips", "hiking"), PersonalizedThreshold)

	got := Match(events, Query{Tags: []string{"hiking"}, Threshold: PersonalizedThreshold})

	assert.Equal(t, []string{"Exact"}, titles(got))
}

func TestMatchFuzzyTier(t *testing.T) {
	events := []models.Event{
		event("Close", "Gdansk", "Hiking trips"),
		event("Far", "Gdansk", "Chess"),
	}

	got := Match(events, Query{Tags: []string{"Hiking"}, Threshold: PersonalizedThreshold})

	assert.Equal(t, []string{"Close"}, titles(got))
}

func TestMatchThresholdPerEntryPoint(t *testing.T) {
	events := []models.Event{event("Walk", "Gdansk", "Hiking")}
	score := Similarity("Hiking", "Hikes")
	require.Less(t, score, PersonalizedThreshold)
	require.GreaterOrEqual(t, score, SearchThreshold)

	personalized := Match(events, Query{Tags: []string{"Hikes"}, Threshold: PersonalizedThreshold})
	search := Match(events, Query{Tags: SearchTags("Hikes"), Threshold: SearchThreshold})

	assert.Empty(t, personalized)
	assert.Equal(t, []string{"Walk"}, titles(search))
}

func TestMatchFuzzyIffScoreMeetsThreshold(t *testing.T) {
	events := []models.Event{
		event("a", "Gdansk", "Board games"),
		event("b", "Gdansk", "Painting", "Pottery"),
		event("c", "Gdansk", "Hiking trips"),
		event("d", "Gdansk", "Swimming"),
		event("e", "Gdansk"),
	}
	tags := []string{"Hikes", "Gaming"}

	for _, threshold := range []float64{SearchThreshold, 0.2, PersonalizedThreshold, 0.9} {
		got := titles(Match(events, Query{Tags: tags, Threshold: threshold}))

		for _, e := range events {
			best := 0.0
			for _, et := range e.Topics.Tags() {
				for _, qt := range tags {
					best = max(best, Similarity(et, qt))
				}
			}
			want := len(e.Topics.Tags()) > 0 && best >= threshold
			assert.Equal(t, want, contains(got, e.Title), "event %s at threshold %v (score %v)", e.Title, threshold, best)
		}
	}
}

func TestMatchEventsWithoutTagsExcluded(t *testing.T) {
	events := []models.Event{event("Bare", "Gdansk")}

	assert.Empty(t, Match(events, Query{Tags: []string{"Hiking"}, Threshold: 0}))
}

func TestMatchEmptyQuery(t *testing.T) {
	events := []models.Event{event("Walk", "Gdansk", "Hiking")}

	assert.Empty(t, Match(events, Query{Tags: []string{" "}, City: ""}))
	assert.True(t, Query{}.Empty())
}

func TestMatchCityOnly(t *testing.T) {
	events := []models.Event{
		event("Walk", "Gdansk, Oliwa", "Hiking"),
		event("Slopes", "Warsaw", "Skiing"),
		event("Untagged", "GDANSK, Wrzeszcz"),
	}

	got := Match(events, Query{City: "gdansk"})

	assert.Equal(t, []string{"Walk", "Untagged"}, titles(got))
}

func TestSearchTags(t *testing.T) {
	assert.Nil(t, SearchTags("  "))
	assert.Equal(t, []string{"chess"}, SearchTags(" chess "))
	assert.Equal(t, []string{"board games", "board", "games"}, SearchTags("board games"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Hiking", " hiking "))
	assert.Equal(t, 0.0, Similarity("", "hiking"))
	assert.Equal(t, 0.0, Similarity("Chess", "Skiing"))
	assert.InDelta(t, Similarity("Hiking", "Hikes"), Similarity("Hikes", "Hiking"), 1e-9)

	s := Similarity("Board games", "Gaming")
	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	first := Paginate(items, 1, PageSize)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 45, first.Total)
	assert.Equal(t, items[0:20], first.Items)

	last := Paginate(items, 3, PageSize)
	assert.Equal(t, items[40:45], last.Items)

	beyond := Paginate(items, 4, PageSize)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 3, beyond.TotalPages)

	clamped := Paginate(items, 0, PageSize)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, items[0:20], clamped.Items)
}

func TestPaginateHugePage(t *testing.T) {
	huge := Paginate([]int{1, 2, 3}, math.MaxInt, PageSize)
	assert.NotNil(t, huge.Items)
	assert.Empty(t, huge.Items)
	assert.Equal(t, math.MaxInt, huge.Page)
	assert.Equal(t, 1, huge.TotalPages)

	none := Paginate([]int{}, math.MaxInt, PageSize)
	assert.Empty(t, none.Items)
	assert.Equal(t, 0, none.TotalPages)
}

func TestPaginatePageCount(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 1, 20: 1, 21: 2, 40: 2, 41: 3} {
		p := Paginate(make([]string, n), 1, PageSize)
		assert.Equal(t, want, p.TotalPages, "n=%d", n)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
