package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
)

type Group struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name" validate:"required,max=120"`
	OwnerID        uuid.UUID `json:"owner_id"`
	PaymentAccount string    `json:"payment_account,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlbumPictures is the ordered list of storage keys of an album. Older rows hold the list as
// a JSON string.
type AlbumPictures []string

func (p AlbumPictures) Validate() error {
	for i, key := range p {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("picture %d has an empty storage key", i)
		}
		if strings.Contains(key, "..") {
			return fmt.Errorf("picture %d has an invalid storage key %q", i, key)
		}
	}
	return nil
}

func (p AlbumPictures) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

func (p *AlbumPictures) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = AlbumPictures{}
		return nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("failed to unquote album pictures: %v", err)
		}
		if strings.TrimSpace(inner) == "" {
			*p = AlbumPictures{}
			return nil
		}
		data = []byte(inner)
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("album pictures must be a list of storage keys: %v", err)
	}
	*p = keys
	return nil
}

type Album struct {
	ID        uuid.UUID     `json:"id"`
	GroupID   uuid.UUID     `json:"group_id"`
	Name      string        `json:"name" validate:"required,max=120"`
	Pictures  AlbumPictures `json:"pictures"`
	CreatedAt time.Time     `json:"created_at"`
}

type GroupsRepo interface {
	CreateGroup(ctx context.Context, group *Group, accessToken string) (*Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	ListOwnedGroupIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type AlbumsRepo interface {
	CreateAlbum(ctx context.Context, album *Album, accessToken string) (*Album, error)
	GetAlbum(ctx context.Context, id uuid.UUID) (*Album, error)
	DeleteAlbum(ctx context.Context, id uuid.UUID, accessToken string) error
}

func (su *SupabaseRepo) CreateGroup(ctx context.Context, group *Group, accessToken string) (*Group, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(GroupsTable).
		Insert(group, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}

	var groups []Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group: %v", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no group returned after insert")
	}
	return &groups[0], nil
}

func (su *SupabaseRepo) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	raw, _, err := su.supabaseClient.From(GroupsTable).
		Select("id,name,owner_id,payment_account,created_at", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	var groups []Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group: %v", err)
	}
	if len(groups) == 0 {
		return nil, errdef.NewNotFound("group %s not found", id)
	}
	return &groups[0], nil
}

func (su *SupabaseRepo) ListOwnedGroupIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	raw, _, err := su.supabaseClient.From(GroupsTable).
		Select("id", "", false).
		Eq("owner_id", ownerID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list owned groups: %w", err)
	}

	var rows []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal owned groups: %v", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (su *SupabaseRepo) CreateAlbum(ctx context.Context, album *Album, accessToken string) (*Album, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(AlbumsTable).
		Insert(album, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert album: %w", err)
	}

	var albums []Album
	if err := json.Unmarshal(raw, &albums); err != nil {
		return nil, fmt.Errorf("failed to unmarshal album: %v", err)
	}
	if len(albums) == 0 {
		return nil, fmt.Errorf("no album returned after insert")
	}
	return &albums[0], nil
}

func (su *SupabaseRepo) GetAlbum(ctx context.Context, id uuid.UUID) (*Album, error) {
	raw, _, err := su.supabaseClient.From(AlbumsTable).
		Select("id,group_id,name,pictures,created_at", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	var albums []Album
	if err := json.Unmarshal(raw, &albums); err != nil {
		return nil, fmt.Errorf("failed to unmarshal album: %v", err)
	}
	if len(albums) == 0 {
		return nil, errdef.NewNotFound("album %s not found", id)
	}
	return &albums[0], nil
}

func (su *SupabaseRepo) DeleteAlbum(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return fmt.Errorf("failed to create authenticated client: %v", err)
	}

	_, count, err := client.From(AlbumsTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}
	if count == 0 {
		return errdef.NewNotFound("album %s not found", id)
	}
	return nil
}
