package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// DocumentKey turns a document identifier into a valid Firestore document ID.
// Uploaded filenames may contain characters Firestore reserves.
func DocumentKey(id string) string {
	key := strings.ReplaceAll(id, "/", "_")
	if key == "." || key == ".." || strings.HasPrefix(key, "__") {
		key = "doc_" + key
	}
	return key
}
