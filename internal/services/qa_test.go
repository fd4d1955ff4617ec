package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

type fakeAnswerer struct {
	content, question string
	err               error
}

func (f *fakeAnswerer) Ask(_ context.Context, content, question string) (string, string, error) {
	f.content, f.question = content, question
	if f.err != nil {
		return "", "", f.err
	}
	return "Twelve months.", "Llama 3.2", nil
}

func TestQAAnswersFromStoredOutcome(t *testing.T) {
	results := NewMemoryResults()
	require.NoError(t, results.Save(context.Background(), models.Outcome{DocumentID: "nda.pdf", Data: "Term: 12 months"}))
	answerer := &fakeAnswerer{}
	qa := &QA{Results: results, Model: answerer}

	resp, err := qa.Ask(context.Background(), models.AskRequest{FileID: " nda.pdf ", Question: "How long?"})
	require.NoError(t, err)
	assert.Equal(t, models.AskResponse{FileID: "nda.pdf", Model: "Llama 3.2", Answer: "Twelve months."}, resp)
	assert.Equal(t, "Term: 12 months", answerer.content)
	assert.Equal(t, "How long?", answerer.question)
}

func TestQAErrors(t *testing.T) {
	results := NewMemoryResults()
	require.NoError(t, results.Save(context.Background(), models.Outcome{DocumentID: "a.pdf", Data: "x"}))

	qa := &QA{Results: results, Model: &fakeAnswerer{}}
	_, err := qa.Ask(context.Background(), models.AskRequest{FileID: "a.pdf"})
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = qa.Ask(context.Background(), models.AskRequest{FileID: "missing.pdf", Question: "?"})
	assert.ErrorIs(t, err, models.ErrNotProcessed)

	qa.Model = &fakeAnswerer{err: errors.New("ollama down")}
	_, err = qa.Ask(context.Background(), models.AskRequest{FileID: "a.pdf", Question: "?"})
	assert.ErrorIs(t, err, models.ErrBackendUnavailable)
}
