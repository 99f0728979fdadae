package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Type    string // "local" or "s3"
	Dir     string // Directory for local storage
	BaseURL string // Server base URL for local download links
	Bucket  string
	Region  string
	Prefix  string
}

// New builds the backend selected by cfg.Type.
func New(ctx context.Context, cfg Config) (StorageInterface, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.BaseURL, cfg.Dir)
	case "s3":
		return NewS3Storage(ctx, cfg.Region, cfg.Bucket, cfg.Prefix)
	}
	return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
}
