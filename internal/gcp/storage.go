package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// SaveToGCSAtomically streams r to a GCS object only if it doesn't already exist.
// An existing object is not a failure: re-runs for the same id keep the first copy.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, r io.Reader) error {
	obj := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true})
	err := writeObject(ctx, obj, contentType, r)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 412 {
		slog.Info("Object already exists, skipping upload.", "gcsObject", objectName)
		return nil
	}
	return err
}

// WriteObject streams r to a GCS object, replacing any existing object.
func WriteObject(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, r io.Reader) error {
	return writeObject(ctx, bucket.Object(objectName), contentType, r)
}

func writeObject(ctx context.Context, obj *storage.ObjectHandle, contentType string, r io.Reader) error {
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// DownloadObject copies gs://bucket/object to destPath on local disk.
func DownloadObject(ctx context.Context, client *storage.Client, bucket, object, destPath string) error {
	gcsReader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create local file at %s: %w", destPath, err)
	}
	if _, err := io.Copy(localFile, gcsReader); err != nil {
		_ = localFile.Close()
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return localFile.Close()
}
