package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

func bindings(run Backend) map[models.Decision]Binding {
	b := make(map[models.Decision]Binding)
	for _, d := range models.AllDecisions() {
		b[d] = Binding{Model: "model-" + d.String(), Run: run}
	}
	return b
}

func TestNewTableRequiresEveryDecision(t *testing.T) {
	b := bindings(func(context.Context, string) (*models.ExtractionResult, error) { return nil, nil })
	delete(b, models.DecisionLegal)

	_, err := NewTable(b)
	assert.ErrorIs(t, err, models.ErrRoutingExhausted)
	assert.ErrorContains(t, err, "Legal")
}

func TestDispatchReturnsLabelAndResult(t *testing.T) {
	var gotPath string
	table, err := NewTable(bindings(func(_ context.Context, path string) (*models.ExtractionResult, error) {
		gotPath = path
		return &models.ExtractionResult{Success: true, Model: "Llama 3.2", Data: "summary"}, nil
	}))
	require.NoError(t, err)

	for _, d := range models.AllDecisions() {
		out, err := table.Dispatch(context.Background(), d, "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, Labels[d], out.Label)
		assert.Equal(t, "summary", out.Result.Data)
		assert.NoError(t, out.Cause)
	}
	assert.Equal(t, "doc.pdf", gotPath)
	assert.Equal(t, "Scanned PDF processing", Labels[models.DecisionScanned])
	assert.Equal(t, "General analysis", Labels[models.DecisionDefault])
}

func TestDispatchConvertsBackendErrors(t *testing.T) {
	table, err := NewTable(bindings(func(context.Context, string) (*models.ExtractionResult, error) {
		return nil, errors.New("model failed to load")
	}))
	require.NoError(t, err)

	out, err := table.Dispatch(context.Background(), models.DecisionSmall, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, &models.ExtractionResult{Success: false, Model: "model-Small", Error: "model failed to load"}, out.Result)
	assert.ErrorIs(t, out.Cause, models.ErrBackendUnavailable)
}

func TestDispatchRecoversPanics(t *testing.T) {
	table, err := NewTable(bindings(func(context.Context, string) (*models.ExtractionResult, error) {
		panic("nil pointer in backend")
	}))
	require.NoError(t, err)

	out, err := table.Dispatch(context.Background(), models.DecisionFinancial, "doc.pdf")
	require.NoError(t, err)
	assert.False(t, out.Result.Success)
	assert.Contains(t, out.Result.Error, "nil pointer in backend")
	assert.ErrorIs(t, out.Cause, models.ErrBackendUnavailable)
}

func TestDispatchNilResultPassesThrough(t *testing.T) {
	table, err := NewTable(bindings(func(context.Context, string) (*models.ExtractionResult, error) { return nil, nil }))
	require.NoError(t, err)

	out, err := table.Dispatch(context.Background(), models.DecisionDefault, "doc.pdf")
	require.NoError(t, err)
	assert.Nil(t, out.Result)
}

func TestDispatchUnknownDecision(t *testing.T) {
	table, err := NewTable(bindings(func(context.Context, string) (*models.ExtractionResult, error) { return nil, nil }))
	require.NoError(t, err)

	_, err = table.Dispatch(context.Background(), models.Decision(42), "doc.pdf")
	assert.ErrorIs(t, err, models.ErrRoutingExhausted)
}
