package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/routing"
)

// Profiler derives routing features from a stored document.
type Profiler interface {
	Profile(ctx context.Context, logCtx *slog.Logger, path string) (models.Features, models.Metadata, error)
}

// Dispatcher runs the backend bound to a decision.
type Dispatcher interface {
	Dispatch(ctx context.Context, d models.Decision, path string) (routing.Dispatched, error)
}

// StageWriter receives every stage transition.
type StageWriter interface {
	Update(id string, stage models.Stage)
}

// Orchestrator runs one document through upload, profiling, routing and
// dispatch, recording each step in the status store.
type Orchestrator struct {
	Files      FileStore
	Profiler   Profiler
	Route      func(models.Features) models.Decision
	Dispatcher Dispatcher
	Status     StageWriter

	// Optional collaborators.
	Results Results
	Handoff Handoff

	// Pause follows every stage update so observers can see it; zero only
	// yields the processor.
	Pause time.Duration
	// BackendTimeout bounds the dispatch step; zero waits indefinitely.
	BackendTimeout time.Duration
}

// Results is the write side of a ResultStore.
type Results interface {
	Save(ctx context.Context, o models.Outcome) error
	Clear(ctx context.Context, id string) error
}

// Process stores the uploaded bytes under id and processes them. Every
// failure, including panics, is recorded as a Failed stage before a
// *models.ProcessingError is returned.
func (o *Orchestrator) Process(ctx context.Context, logCtx *slog.Logger, id string, r io.Reader) (models.Outcome, error) {
	return o.run(ctx, logCtx, id, func(ctx context.Context) (string, error) {
		path, err := o.Files.Save(ctx, id, r)
		if err != nil {
			return "", fmt.Errorf("failed to save upload: %w", err)
		}
		return path, nil
	})
}

// ProcessFile processes a document that is already on local disk.
func (o *Orchestrator) ProcessFile(ctx context.Context, logCtx *slog.Logger, id, path string) (models.Outcome, error) {
	return o.run(ctx, logCtx, id, func(context.Context) (string, error) {
		return path, nil
	})
}

func (o *Orchestrator) run(ctx context.Context, logCtx *slog.Logger, id string, persist func(context.Context) (string, error)) (out models.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = models.Outcome{}
			err = o.fail(logCtx, id, fmt.Sprintf("%v", r), fmt.Errorf("panic: %v", r))
		}
	}()

	if o.Results != nil {
		if err := o.Results.Clear(ctx, id); err != nil {
			logCtx.Warn("Failed to clear previous outcome.", "error", err)
		}
	}
	o.advance(ctx, id, models.Uploading())
	path, err := persist(ctx)
	if err != nil {
		return models.Outcome{}, o.fail(logCtx, id, err.Error(), err)
	}
	logCtx.Info("Document stored.", "path", path)

	o.advance(ctx, id, models.Extracting())
	features, metadata, err := o.Profiler.Profile(ctx, logCtx, path)
	if err != nil {
		return models.Outcome{}, o.fail(logCtx, id, err.Error(), err)
	}

	o.advance(ctx, id, models.Processing())
	decision := o.Route(features)
	logCtx = logCtx.With("decision", decision.String())
	logCtx.Info("Routing decision made.")

	dispatched, err := o.dispatch(ctx, decision, path)
	if err != nil {
		return models.Outcome{}, o.fail(logCtx, id, err.Error(), err)
	}
	res := dispatched.Result
	if res == nil {
		return models.Outcome{}, o.fail(logCtx, id, "No result received from processing", models.ErrNoResult)
	}

	data := res.Data
	if data == "" {
		data = models.NoDataExtracted
	}
	if !res.Success {
		cause := dispatched.Cause
		if cause == nil {
			cause = fmt.Errorf("%w: %s", models.ErrBackendRejected, res.Error)
		}
		return models.Outcome{}, o.fail(logCtx, id, res.Error+". "+data, cause)
	}

	out = models.Outcome{
		DocumentID: id,
		FilePath:   path,
		Metadata:   metadata,
		Features:   features,
		Decision:   decision,
		Strategy:   dispatched.Label,
		Model:      res.Model,
		Data:       data,
	}

	o.advance(ctx, id, models.Extracted())
	if o.Results != nil {
		if err := o.Results.Save(ctx, out); err != nil {
			logCtx.Warn("Failed to save outcome.", "error", err)
		}
	}
	o.advance(ctx, id, models.Completed())
	logCtx.Info("Document processed.", "strategy", out.Strategy, "model", out.Model)

	if o.Handoff != nil {
		if err := o.Handoff.Completed(ctx, out); err != nil {
			logCtx.Error("Failed to hand off completed document.", "error", err)
		}
	}
	return out, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, d models.Decision, path string) (routing.Dispatched, error) {
	if o.BackendTimeout <= 0 {
		return o.Dispatcher.Dispatch(ctx, d, path)
	}
	ctx, cancel := context.WithTimeout(ctx, o.BackendTimeout)
	defer cancel()
	return o.Dispatcher.Dispatch(ctx, d, path)
}

// advance records stage and gives observers a chance to see it.
func (o *Orchestrator) advance(ctx context.Context, id string, stage models.Stage) {
	o.Status.Update(id, stage)
	if o.Pause <= 0 {
		runtime.Gosched()
		return
	}
	t := time.NewTimer(o.Pause)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) fail(logCtx *slog.Logger, id, reason string, err error) error {
	o.Status.Update(id, models.Failed(reason))
	logCtx.Error("Document processing failed.", "reason", reason, "error", err)
	return &models.ProcessingError{DocumentID: id, Reason: reason, Err: err}
}
