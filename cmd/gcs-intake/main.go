package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/services"
)

// intake processes PDFs finalized in a GCS bucket and writes the extracted
// content next to them in RESULTS_BUCKET.
type intake struct {
	pipeline      *services.Pipeline
	storageClient *storage.Client
	resultsBucket string
}

var (
	instance *intake
	once     sync.Once
	initErr  error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ProcessUpload", processUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func newIntake(ctx context.Context) (*intake, error) {
	cfg, err := services.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	resultsBucket := gcp.GetEnv("RESULTS_BUCKET", "")
	if resultsBucket == "" {
		return nil, fmt.Errorf("RESULTS_BUCKET environment variable must be set")
	}
	cfg.UploadDir = filepath.Join(os.TempDir(), "docrouter-intake")

	pipeline, err := services.NewPipeline(ctx, cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		_ = pipeline.Close()
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &intake{pipeline: pipeline, storageClient: storageClient, resultsBucket: resultsBucket}, nil
}

func processUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		instance, initErr = newIntake(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	return instance.process(ctx, gcsEvent)
}

func (in *intake) process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	id := path.Base(e.Name)
	if !strings.HasSuffix(strings.ToLower(id), ".pdf") {
		logCtx.Info("Skipping non-PDF object.")
		return nil
	}
	logCtx = logCtx.With("documentId", id)

	tempDir, err := os.MkdirTemp("", "gcs-intake-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, id)
	if err := gcp.DownloadObject(ctx, in.storageClient, e.Bucket, e.Name, localPath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}

	outcome, err := in.pipeline.Orchestrator.ProcessFile(ctx, logCtx, id, localPath)
	if err != nil {
		// Failed documents are recorded in the status store and journal; a
		// retry would fail the same way.
		return nil
	}

	objectName := strings.TrimSuffix(e.Name, path.Ext(e.Name)) + ".md"
	bucket := in.storageClient.Bucket(in.resultsBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucket, objectName, "text/markdown", strings.NewReader(outcome.Data)); err != nil {
		logCtx.Error("Failed to save extracted content", "error", err)
		return err
	}
	logCtx.Info("Extracted content saved.", "output", fmt.Sprintf("gs://%s/%s", in.resultsBucket, objectName), "strategy", outcome.Strategy)
	return nil
}
