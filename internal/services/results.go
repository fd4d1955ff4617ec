package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
)

// ResultStore keeps the outcome of completed documents for Q&A.
type ResultStore interface {
	Save(ctx context.Context, o models.Outcome) error
	// Clear forgets the outcome of id, if any.
	Clear(ctx context.Context, id string) error
	// Get fails with models.ErrNotProcessed when id has no completed outcome.
	Get(ctx context.Context, id string) (models.Outcome, error)
}

// MemoryResults is a process-local ResultStore.
type MemoryResults struct {
	mu       sync.RWMutex
	outcomes map[string]models.Outcome
}

// NewMemoryResults returns an empty MemoryResults.
func NewMemoryResults() *MemoryResults {
	return &MemoryResults{outcomes: make(map[string]models.Outcome)}
}

func (m *MemoryResults) Save(_ context.Context, o models.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[o.DocumentID] = o
	return nil
}

func (m *MemoryResults) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.outcomes, id)
	return nil
}

func (m *MemoryResults) Get(_ context.Context, id string) (models.Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.outcomes[id]
	if !ok {
		return models.Outcome{}, fmt.Errorf("%w: %s", models.ErrNotProcessed, id)
	}
	return o, nil
}

// FirestoreResults stores outcomes as documents records, alongside the
// status fields written by the status journal.
type FirestoreResults struct {
	Client     *firestore.Client
	Collection string
}

func (f *FirestoreResults) Save(ctx context.Context, o models.Outcome) error {
	docRef := f.Client.Collection(f.Collection).Doc(gcp.DocumentKey(o.DocumentID))
	if _, err := docRef.Set(ctx, outcomeFields(o), firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save outcome to Firestore: %w", err)
	}
	return nil
}

// Clear drops the extracted text so Get reports the id as not processed.
func (f *FirestoreResults) Clear(ctx context.Context, id string) error {
	docRef := f.Client.Collection(f.Collection).Doc(gcp.DocumentKey(id))
	update := map[string]interface{}{
		"extractedText": firestore.Delete,
		"updatedAt":     firestore.ServerTimestamp,
	}
	if _, err := docRef.Set(ctx, update, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to clear outcome in Firestore: %w", err)
	}
	return nil
}

// outcomeFields are the record fields owned by the result store. status and
// errorDetails are written only by the status journal.
func outcomeFields(o models.Outcome) map[string]interface{} {
	rec := o.Record(time.Time{})
	return map[string]interface{}{
		"originalFilename": rec.OriginalFilename,
		"pageCount":        rec.PageCount,
		"isScanned":        rec.IsScanned,
		"financialTables":  rec.FinancialTables,
		"legalDocument":    rec.LegalDocument,
		"strategy":         rec.Strategy,
		"decision":         rec.Decision,
		"model":            rec.Model,
		"title":            rec.Title,
		"author":           rec.Author,
		"subject":          rec.Subject,
		"extractedText":    rec.ExtractedText,
		"filePath":         rec.FilePath,
		"updatedAt":        firestore.ServerTimestamp,
	}
}

func (f *FirestoreResults) Get(ctx context.Context, id string) (models.Outcome, error) {
	snap, err := f.Client.Collection(f.Collection).Doc(gcp.DocumentKey(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Outcome{}, fmt.Errorf("%w: %s", models.ErrNotProcessed, id)
	}
	if err != nil {
		return models.Outcome{}, fmt.Errorf("failed to read outcome from Firestore: %w", err)
	}

	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return models.Outcome{}, fmt.Errorf("failed to decode Firestore document: %w", err)
	}
	if doc.ExtractedText == "" {
		return models.Outcome{}, fmt.Errorf("%w: %s", models.ErrNotProcessed, id)
	}
	return models.OutcomeFromRecord(id, doc), nil
}
