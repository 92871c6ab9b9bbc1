// Package storage keeps uploaded recipe images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// ImageStore persists image files under slash-separated keys.
type ImageStore interface {
	Save(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is the address clients use to fetch key.
	URL(key string) string
}

// New builds the store selected by MEDIA_STORAGE.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ImageStore, error) {
	switch cfg.MediaStorage {
	case BackendLocal:
		logger.Info("🗂️ [Storage] Using local media storage", "root", cfg.MediaRoot, "url", cfg.MediaURL)
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case BackendS3:
		logger.Info("🪣 [Storage] Using S3 media storage", "bucket", cfg.S3Bucket, "endpoint", cfg.S3BaseEndpoint)
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported media storage %q", cfg.MediaStorage)
	}
}
