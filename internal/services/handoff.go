package services

import (
	"context"
	"log/slog"

	executions "cloud.google.com/go/workflows/executions/apiv1"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
)

// Handoff is notified after a document completes.
type Handoff interface {
	Completed(ctx context.Context, o models.Outcome) error
}

// WorkflowHandoff starts a Cloud Workflows execution for every completed
// document.
type WorkflowHandoff struct {
	Client *executions.Client
	Target gcp.WorkflowTarget
}

func (h *WorkflowHandoff) Completed(ctx context.Context, o models.Outcome) error {
	payload := models.HandoffPayload{
		DocumentID: o.DocumentID,
		FilePath:   o.FilePath,
		Decision:   o.Decision.String(),
		Strategy:   o.Strategy,
		Model:      o.Model,
		PageCount:  o.Features.PageCount,
	}
	name, err := gcp.TriggerWorkflow(ctx, h.Client, h.Target, payload)
	if err != nil {
		return err
	}
	slog.Info("Successfully triggered workflow.", "documentId", o.DocumentID, "executionId", name)
	return nil
}
