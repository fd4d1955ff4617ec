package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// Answerer answers a question from document content.
type Answerer interface {
	Ask(ctx context.Context, content, question string) (answer, model string, err error)
}

// QA answers questions about documents that completed processing.
type QA struct {
	Results ResultStore
	Model   Answerer
}

func (q *QA) Ask(ctx context.Context, req models.AskRequest) (models.AskResponse, error) {
	req.FileID = strings.TrimSpace(req.FileID)
	req.Question = strings.TrimSpace(req.Question)
	if req.FileID == "" || req.Question == "" {
		return models.AskResponse{}, fmt.Errorf("%w: file_id and question are required", models.ErrInvalidRequest)
	}

	outcome, err := q.Results.Get(ctx, req.FileID)
	if err != nil {
		return models.AskResponse{}, err
	}
	answer, model, err := q.Model.Ask(ctx, outcome.Data, req.Question)
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
	return models.AskResponse{FileID: req.FileID, Model: model, Answer: answer}, nil
}
