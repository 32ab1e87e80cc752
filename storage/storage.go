// Package storage keeps uploaded media: a local directory or an S3 bucket.
package storage

import (
	"context"
	"fmt"

	"github.com/cppla/yatube/config"
)

// Storage saves blobs under content paths such as "posts/<uuid>.jpg".
type Storage interface {
	Save(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	// URL returns the public address of a stored path.
	URL(path string) string
}

// New selects the backend named by cfg.StorageType.
func New(cfg config.AppConfig) (Storage, error) {
	switch cfg.StorageType {
	case "disk", "":
		return NewDiskStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
