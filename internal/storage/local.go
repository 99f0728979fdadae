package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blooddrive-backend/internal/logger"
)

// LocalStorage keeps reports on the local filesystem and serves them
// through the API download route.
type LocalStorage struct {
	baseURL    string // Server URL (e.g., "http://localhost:8080")
	reportsDir string
}

// NewLocalStorage creates the reports directory if needed.
func NewLocalStorage(baseURL, uploadsDir string) (*LocalStorage, error) {
	reportsDir := filepath.Join(uploadsDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	return &LocalStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		reportsDir: reportsDir,
	}, nil
}

func (m *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if key == "" || filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(m.reportsDir, clean), nil
}

// GenerateDownloadURL points at the API download route. The route enforces
// the expiry carried in report keys; expiresIn is not encoded in the URL.
func (m *LocalStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/download/%s", m.baseURL, key), nil
}

// FileExists checks if file exists in local filesystem
func (m *LocalStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

// DeleteFile deletes file from local filesystem
func (m *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SaveFile writes the report to local filesystem
func (m *LocalStorage) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Report saved to local storage", "key", key, "bytes", n, "contentType", contentType)
	return nil
}

// ReadFile opens a stored report for reading
func (m *LocalStorage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// ListFiles returns the names of the files in the reports directory.
func (m *LocalStorage) ListFiles(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(m.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}
