package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"github.com/ollama/ollama/api"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/documentrouter/internal/backends"
	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
	"github.com/Lllllllleong/documentrouter/internal/profile"
	"github.com/Lllllllleong/documentrouter/internal/routing"
	"github.com/Lllllllleong/documentrouter/internal/status"
)

// Pipeline is the fully wired document router.
type Pipeline struct {
	Config       *Config
	Status       *status.Store
	Files        FileStore
	Orchestrator *Orchestrator
	QA           *QA

	vertexClient     *gcp.VertexClient
	firestoreClient  *firestore.Client
	storageClient    *storage.Client
	executionsClient *executions.Client
}

// NewPipeline creates every client the configuration asks for and wires the
// processing components together.
func NewPipeline(ctx context.Context, cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	p := &Pipeline{Config: cfg}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.ProjectID != "" {
		g.Go(func() error {
			vc, err := gcp.NewVertexClient(gctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.GeminiModel)
			if err != nil {
				return fmt.Errorf("failed to create vertex client: %w", err)
			}
			p.vertexClient = vc
			return nil
		})
	}
	if cfg.FirestoreEnabled {
		g.Go(func() error {
			fc, err := gcp.NewFirestoreClient(gctx, cfg.ProjectID)
			if err != nil {
				return err
			}
			p.firestoreClient = fc
			return nil
		})
	}
	if cfg.UploadBucket != "" {
		g.Go(func() error {
			sc, err := storage.NewClient(gctx)
			if err != nil {
				return fmt.Errorf("failed to create Storage client: %w", err)
			}
			p.storageClient = sc
			return nil
		})
	}
	if cfg.WorkflowID != "" {
		g.Go(func() error {
			ec, err := gcp.NewExecutionsClient(gctx)
			if err != nil {
				return err
			}
			p.executionsClient = ec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = p.Close()
		return nil, err
	}

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	tools := pdf.NewTools(cfg.Tools, pdf.ExecRunner{Logger: logger})
	reader := pdf.PDFCPUReader{Text: tools}
	local := &backends.Ollama{
		Client:         ollamaClient,
		Reader:         reader,
		LlamaModel:     cfg.LlamaModel,
		SmallModel:     cfg.SmallModel,
		SmallMaxTokens: cfg.SmallMaxTokens,
		Logger:         logger,
	}

	bindings := map[models.Decision]routing.Binding{
		models.DecisionFinancial: {Model: backends.ModelLlama, Run: local.ExtractFinancial},
		models.DecisionLegal:     {Model: backends.ModelLlama, Run: local.ExtractLegal},
		models.DecisionSmall:     {Model: backends.ModelTinyLlama, Run: local.ExtractSmall},
		models.DecisionDefault:   {Model: backends.ModelLlama, Run: local.ExtractGeneral},
	}
	if p.vertexClient != nil {
		gemini := backends.NewGemini(p.vertexClient, reader, tools, logger)
		bindings[models.DecisionScanned] = routing.Binding{Model: backends.ModelGeminiScanned, Run: gemini.ExtractScanned}
		bindings[models.DecisionLarge] = routing.Binding{Model: backends.ModelGeminiLarge, Run: gemini.ExtractLarge}
	} else {
		logger.Warn("PROJECT_ID not set; Gemini strategies will report failures.")
		bindings[models.DecisionScanned] = routing.Binding{
			Model: backends.ModelGeminiScanned,
			Run:   backends.Unconfigured(backends.ModelGeminiScanned, "vision backend not configured"),
		}
		bindings[models.DecisionLarge] = routing.Binding{
			Model: backends.ModelGeminiLarge,
			Run:   backends.Unconfigured(backends.ModelGeminiLarge, "vision backend not configured"),
		}
	}
	table, err := routing.NewTable(bindings)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	storeOpts := []status.Option{status.WithLogger(logger)}
	var results ResultStore = NewMemoryResults()
	if p.firestoreClient != nil {
		storeOpts = append(storeOpts, status.WithJournal(&status.FirestoreJournal{
			Client:     p.firestoreClient,
			Collection: cfg.FirestoreCollection,
		}))
		results = &FirestoreResults{Client: p.firestoreClient, Collection: cfg.FirestoreCollection}
	}
	p.Status = status.NewStore(storeOpts...)

	localFiles := &LocalFileStore{Dir: cfg.UploadDir}
	p.Files = localFiles
	if p.storageClient != nil {
		p.Files = &GCSFileStore{Local: localFiles, Bucket: p.storageClient.Bucket(cfg.UploadBucket), Logger: logger}
	}

	p.Orchestrator = &Orchestrator{
		Files:          p.Files,
		Profiler:       profile.New(reader, tools, tools, tools),
		Route:          routing.Route,
		Dispatcher:     table,
		Status:         p.Status,
		Results:        results,
		Pause:          cfg.StagePause,
		BackendTimeout: cfg.BackendTimeout,
	}
	if p.executionsClient != nil {
		p.Orchestrator.Handoff = &WorkflowHandoff{
			Client: p.executionsClient,
			Target: gcp.WorkflowTarget{
				ProjectID: cfg.ProjectID,
				Location:  cfg.WorkflowLocation,
				Workflow:  cfg.WorkflowID,
			},
		}
	}
	p.QA = &QA{Results: results, Model: local}

	logger.Info("Document router initialized.",
		"vertexAI", p.vertexClient != nil,
		"firestore", p.firestoreClient != nil,
		"uploadBucket", cfg.UploadBucket,
		"workflowId", cfg.WorkflowID,
	)
	return p, nil
}

// Close stops status delivery and releases every client.
func (p *Pipeline) Close() error {
	if p.Status != nil {
		p.Status.Close()
	}
	var errs []error
	if p.vertexClient != nil {
		errs = append(errs, p.vertexClient.Close())
	}
	if p.firestoreClient != nil {
		errs = append(errs, p.firestoreClient.Close())
	}
	if p.storageClient != nil {
		errs = append(errs, p.storageClient.Close())
	}
	if p.executionsClient != nil {
		errs = append(errs, p.executionsClient.Close())
	}
	return errors.Join(errs...)
}
