package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// StorageInterface defines the backends that hold generated report files.
// Supports the local filesystem and S3.
type StorageInterface interface {
	// SaveFile stores the content under key.
	SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error

	// GenerateDownloadURL returns a URL the caller can fetch the file from
	// for at least expiresIn.
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage
	DeleteFile(ctx context.Context, key string) error

	// ReadFile opens a file for reading
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// ListFiles returns the keys of every stored file.
	ListFiles(ctx context.Context) ([]string, error)
}
