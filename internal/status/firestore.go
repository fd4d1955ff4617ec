package status

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
)

// FirestoreJournal mirrors stage changes into the documents collection.
type FirestoreJournal struct {
	Client     *firestore.Client
	Collection string
}

func (j *FirestoreJournal) Record(ctx context.Context, id string, stage models.Stage) error {
	update := map[string]interface{}{
		"status":    stage.Kind.String(),
		"updatedAt": firestore.ServerTimestamp,
	}
	if stage.Kind == models.StageFailed {
		update["errorDetails"] = stage.Reason
	}
	docRef := j.Client.Collection(j.Collection).Doc(gcp.DocumentKey(id))
	if _, err := docRef.Set(ctx, update, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update status in Firestore: %w", err)
	}
	return nil
}
