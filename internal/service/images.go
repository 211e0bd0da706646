package service

import (
	"context"
	"log/slog"

	"github.com/fancystore/storeadmin/internal/domain"
)

// ImageStore is the part of the blob adapter the catalog services use.
type ImageStore interface {
	Store(ctx context.Context, payload []byte, contentType, filename string) (string, error)
	Delete(ctx context.Context, ref string)
	PublicURL(ref string) string
}

// StatsCache caches dashboard aggregates. Mutations invalidate it.
type StatsCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context) error
}

// storeImage persists upload and returns its reference. A nil upload yields a
// nil reference.
func storeImage(ctx context.Context, images ImageStore, upload *domain.ImageUpload) (*string, error) {
	if upload == nil {
		return nil, nil
	}
	ref, err := images.Store(ctx, upload.Data, upload.ContentType, upload.Filename)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// discardImage deletes ref if set. Deletion is best-effort.
func discardImage(ctx context.Context, images ImageStore, ref *string) {
	if ref != nil && *ref != "" {
		images.Delete(ctx, *ref)
	}
}

func publicURL(images ImageStore, ref *string) string {
	if ref == nil {
		return ""
	}
	return images.PublicURL(*ref)
}

func invalidateStats(ctx context.Context, cache StatsCache, logger *slog.Logger) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "failed to invalidate stats cache",
			slog.String("error", err.Error()),
		)
	}
}
