package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsUnmarshalVersioned(t *testing.T) {
	var topics Topics
	err := json.Unmarshal([]byte(`{"version":1,"groups":[{"name":"Outdoor","interests":["Hiking"," Climbing "]}]}`), &topics)

	require.NoError(t, err)
	assert.Equal(t, TopicsVersion, topics.Version)
	assert.Equal(t, []string{"Hiking", "Climbing"}, topics.Tags())
}

func TestTopicsUnmarshalLegacyMap(t *testing.T) {
	var topics Topics
	err := json.Unmarshal([]byte(`{"Sports":["Skiing"],"Games":[{"name":"Chess"}]}`), &topics)

	require.NoError(t, err)
	require.Len(t, topics.Groups, 2)
	assert.Equal(t, "Games", topics.Groups[0].Name)
	assert.Equal(t, []string{"Chess", "Skiing"}, topics.Tags())
}

func TestTopicsUnmarshalStringified(t *testing.T) {
	var topics Topics
	err := json.Unmarshal([]byte(`"{\"Outdoor\":[\"Hiking\"]}"`), &topics)

	require.NoError(t, err)
	assert.Equal(t, []string{"Hiking"}, topics.Tags())
}

func TestTopicsUnmarshalEmpty(t *testing.T) {
	for _, raw := range []string{`null`, `""`} {
		var topics Topics
		require.NoError(t, json.Unmarshal([]byte(raw), &topics), raw)
		assert.Empty(t, topics.Tags())
		assert.Equal(t, TopicsVersion, topics.Version)
	}
}

func TestTopicsUnmarshalRejectsList(t *testing.T) {
	var topics Topics
	err := json.Unmarshal([]byte(`["Hiking"]`), &topics)

	assert.Error(t, err)
}

func TestTopicsMarshalFillsVersion(t *testing.T) {
	b, err := json.Marshal(Topics{})

	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"groups":[]}`, string(b))
}

func TestTopicsValidate(t *testing.T) {
	valid := Topics{Version: 1, Groups: []InterestGroup{{Name: "Outdoor", Interests: []string{"Hiking"}}}}
	assert.NoError(t, valid.Validate())

	wrongVersion := Topics{Version: 2}
	assert.Error(t, wrongVersion.Validate())

	emptyTag := Topics{Version: 1, Groups: []InterestGroup{{Name: "Outdoor", Interests: []string{""}}}}
	assert.Error(t, emptyTag.Validate())

	noName := Topics{Version: 1, Groups: []InterestGroup{{Interests: []string{"Hiking"}}}}
	assert.Error(t, noName.Validate())
}

func TestTopicsScan(t *testing.T) {
	var topics Topics
	require.NoError(t, topics.Scan([]byte(`{"Outdoor":["Hiking"]}`)))
	assert.Equal(t, []string{"Hiking"}, topics.Tags())

	assert.Error(t, topics.Scan(42))
}
