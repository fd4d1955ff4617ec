package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
)

// FileStore persists uploaded documents and hands back local paths the PDF
// tools can open.
type FileStore interface {
	Save(ctx context.Context, id string, r io.Reader) (string, error)
	Path(ctx context.Context, id string) (string, error)
}

// LocalFileStore keeps uploads in a directory. Saving an existing id
// overwrites the previous file.
type LocalFileStore struct {
	Dir string
}

func (s *LocalFileStore) Save(_ context.Context, id string, r io.Reader) (string, error) {
	path, err := s.location(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

func (s *LocalFileStore) Path(_ context.Context, id string) (string, error) {
	path, err := s.location(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("document %s: %w", id, err)
	}
	return path, nil
}

// location keeps ids inside Dir.
func (s *LocalFileStore) location(id string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + id))
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("%w: empty document id", models.ErrInvalidRequest)
	}
	return filepath.Join(s.Dir, name), nil
}

// GCSFileStore mirrors every upload to a bucket and restores missing local
// copies from it.
type GCSFileStore struct {
	Local  *LocalFileStore
	Bucket *storage.BucketHandle
	Logger *slog.Logger
}

func (s *GCSFileStore) Save(ctx context.Context, id string, r io.Reader) (string, error) {
	path, err := s.Local.Save(ctx, id, r)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to reopen %s: %w", path, err)
	}
	defer f.Close()

	if err := gcp.WriteObject(ctx, s.Bucket, filepath.Base(path), "application/pdf", f); err != nil {
		return "", err
	}
	s.logger().Info("Upload mirrored to GCS.", "documentId", id, "gcsObject", filepath.Base(path))
	return path, nil
}

func (s *GCSFileStore) Path(ctx context.Context, id string) (string, error) {
	path, err := s.Local.Path(ctx, id)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return path, err
	}

	path, err = s.Local.location(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Local.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	gcsReader, err := s.Bucket.Object(filepath.Base(path)).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get GCS object reader for %s: %w", id, err)
	}
	defer gcsReader.Close()
	if _, err := s.Local.Save(ctx, id, gcsReader); err != nil {
		return "", err
	}
	s.logger().Info("Restored upload from GCS.", "documentId", id)
	return path, nil
}

func (s *GCSFileStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
