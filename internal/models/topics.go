package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const TopicsVersion = 1

type InterestGroup struct {
	Name      string   `json:"name" validate:"required"`
	Interests []string `json:"interests" validate:"dive,required"`
}

// Topics is the interest tag document attached to an event. Rows written before the
// document was versioned hold a plain `{"group": ["tag", ...]}` object, sometimes stringified
// into a text column; both are normalized on read.
type Topics struct {
	Version int             `json:"version"`
	Groups  []InterestGroup `json:"groups" validate:"dive"`
}

// Tags returns every interest name in the document, trimmed, in document order.
func (t Topics) Tags() []string {
	var tags []string
	for _, g := range t.Groups {
		for _, name := range g.Interests {
			if name = strings.TrimSpace(name); name != "" {
				tags = append(tags, name)
			}
		}
	}
	return tags
}

func (t Topics) Validate() error {
	if t.Version != TopicsVersion {
		return fmt.Errorf("unsupported topics version %d", t.Version)
	}
	if err := Validate.Struct(t); err != nil {
		return fmt.Errorf("invalid topics: %v", err)
	}
	return nil
}

func (t Topics) MarshalJSON() ([]byte, error) {
	type plain Topics
	if t.Version == 0 {
		t.Version = TopicsVersion
	}
	if t.Groups == nil {
		t.Groups = []InterestGroup{}
	}
	return json.Marshal(plain(t))
}

func (t *Topics) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Topics{Version: TopicsVersion}
		return nil
	}

	switch data[0] {
	case '"':
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("failed to unquote topics: %v", err)
		}
		if strings.TrimSpace(inner) == "" {
			*t = Topics{Version: TopicsVersion}
			return nil
		}
		return t.UnmarshalJSON([]byte(inner))
	case '{':
	default:
		return fmt.Errorf("topics must be a JSON object, got %q", string(data[:1]))
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to decode topics: %v", err)
	}

	if _, ok := probe["version"]; ok {
		type plain Topics
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to decode topics: %v", err)
		}
		*t = Topics(p)
		return nil
	}

	return t.fromLegacy(probe)
}

// fromLegacy accepts group -> ["tag"] and group -> [{"name": "tag"}] maps.
func (t *Topics) fromLegacy(groups map[string]json.RawMessage) error {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := Topics{Version: TopicsVersion, Groups: make([]InterestGroup, 0, len(names))}
	for _, name := range names {
		var items []json.RawMessage
		if err := json.Unmarshal(groups[name], &items); err != nil {
			return fmt.Errorf("topics group %q must be a list: %v", name, err)
		}

		group := InterestGroup{Name: name, Interests: make([]string, 0, len(items))}
		for _, item := range items {
			var tag string
			if err := json.Unmarshal(item, &tag); err == nil {
				group.Interests = append(group.Interests, tag)
				continue
			}
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &named); err != nil {
				return fmt.Errorf("topics group %q has an invalid interest: %v", name, err)
			}
			group.Interests = append(group.Interests, named.Name)
		}
		out.Groups = append(out.Groups, group)
	}

	*t = out
	return nil
}

// Value stores the document as jsonb.
func (t Topics) Value() (driver.Value, error) {
	b, err := t.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Topics) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Topics{Version: TopicsVersion}
		return nil
	case []byte:
		return t.UnmarshalJSON(v)
	case string:
		return t.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into Topics", src)
	}
}
