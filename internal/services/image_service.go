package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/models"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentResolves bounds the storage calls in flight for one request.
const maxConcurrentResolves = 16

type ImageService struct {
	images      models.EventImagesRepo
	storage     models.ObjectStorage
	eventBucket string
}

func NewImageService(images models.EventImagesRepo, storage models.ObjectStorage, eventBucket string) *ImageService {
	return &ImageService{images: images, storage: storage, eventBucket: eventBucket}
}

// ResolveEventImages maps event ids to the URL of their first stored image. Events without an
// image row are absent from the map. One failed resolution fails the whole batch.
func (is *ImageService) ResolveEventImages(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	urls := make(map[uuid.UUID]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return urls, nil
	}

	rows, err := is.images.ListEventImages(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	first := make([]models.EventImage, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.EventID]; ok {
			continue
		}
		seen[row.EventID] = struct{}{}
		first = append(first, row)
	}

	paths := make([]string, len(first))
	for i, row := range first {
		paths[i] = row.Path
	}
	resolved, err := is.ResolvePaths(ctx, is.eventBucket, paths)
	if err != nil {
		return nil, err
	}

	for i, row := range first {
		urls[row.EventID] = resolved[i]
	}
	return urls, nil
}

// ResolvePaths resolves storage keys concurrently and returns the URLs in input order.
func (is *ImageService) ResolvePaths(ctx context.Context, bucket string, paths []string) ([]string, error) {
	urls := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolves)
	for i, path := range paths {
		g.Go(func() error {
			url, err := is.storage.ResolveURL(gctx, bucket, path)
			if err != nil {
				return fmt.Errorf("failed to resolve image %q: %w", path, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// RemovePaths deletes storage objects concurrently.
func (is *ImageService) RemovePaths(ctx context.Context, bucket string, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolves)
	for _, path := range paths {
		g.Go(func() error {
			return is.storage.RemoveObject(gctx, bucket, path)
		})
	}
	return g.Wait()
}
