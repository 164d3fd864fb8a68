package models

import (
	"context"
	"fmt"
	"strings"
)

type ObjectStorage interface {
	ResolveURL(ctx context.Context, bucket, path string) (string, error)
	RemoveObject(ctx context.Context, bucket, path string) error
}

// ResolveURL turns a stored object key into a URL the browser can fetch. With a signed URL
// TTL configured the bucket is treated as private.
func (su *SupabaseRepo) ResolveURL(ctx context.Context, bucket, path string) (string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("empty object path in bucket %s", bucket)
	}

	if su.signedURLTTL > 0 {
		res, err := su.supabaseClient.Storage.CreateSignedUrl(bucket, path, su.signedURLTTL)
		if err != nil {
			return "", fmt.Errorf("failed to sign %s/%s: %w", bucket, path, err)
		}
		return res.SignedURL, nil
	}

	res := su.supabaseClient.Storage.GetPublicUrl(bucket, path)
	if res.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s/%s", bucket, path)
	}
	return res.SignedURL, nil
}

func (su *SupabaseRepo) RemoveObject(ctx context.Context, bucket, path string) error {
	if _, err := su.supabaseClient.Storage.RemoveFile(bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", bucket, path, err)
	}
	return nil
}
