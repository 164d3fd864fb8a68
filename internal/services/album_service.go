package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
)

type pathResolver interface {
	ResolvePaths(ctx context.Context, bucket string, paths []string) ([]string, error)
	RemovePaths(ctx context.Context, bucket string, paths []string) error
}

// AlbumView carries the album with its pictures resolved to URLs, in album order.
type AlbumView struct {
	models.Album
	URLs []string `json:"urls"`
}

type AlbumService struct {
	albums models.AlbumsRepo
	paths  pathResolver
	bucket string
}

func NewAlbumService(albums models.AlbumsRepo, paths pathResolver, bucket string) *AlbumService {
	return &AlbumService{albums: albums, paths: paths, bucket: bucket}
}

func (as *AlbumService) CreateAlbum(ctx context.Context, session *helpers.Session, groupID uuid.UUID, album *models.Album) (*models.Album, error) {
	if !session.OwnsGroup(groupID) {
		return nil, errdef.NewForbidden("only the group owner can create albums")
	}

	album.Name = strings.TrimSpace(album.Name)
	if err := models.Validate.Struct(album); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}
	if err := album.Pictures.Validate(); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}

	album.ID = uuid.New()
	album.GroupID = groupID
	album.CreatedAt = time.Now().UTC()
	return as.albums.CreateAlbum(ctx, album, session.AccessToken)
}

func (as *AlbumService) GetAlbum(ctx context.Context, id uuid.UUID) (*AlbumView, error) {
	album, err := as.albums.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	urls, err := as.paths.ResolvePaths(ctx, as.bucket, album.Pictures)
	if err != nil {
		return nil, err
	}
	return &AlbumView{Album: *album, URLs: urls}, nil
}

// DeleteAlbum removes the stored pictures concurrently and then the album row. The row is kept
// when any object removal fails so the keys are not lost.
func (as *AlbumService) DeleteAlbum(ctx context.Context, session *helpers.Session, id uuid.UUID) error {
	album, err := as.albums.GetAlbum(ctx, id)
	if err != nil {
		return err
	}
	if !session.OwnsGroup(album.GroupID) {
		return errdef.NewForbidden("only the group owner can delete albums")
	}

	if err := as.paths.RemovePaths(ctx, as.bucket, album.Pictures); err != nil {
		return fmt.Errorf("failed to remove album pictures: %w", err)
	}
	return as.albums.DeleteAlbum(ctx, id, session.AccessToken)
}
