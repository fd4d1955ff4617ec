package routing

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// Human-readable labels for each strategy.
const (
	LabelScanned   = "Scanned PDF processing"
	LabelLarge     = "Large document processing"
	LabelFinancial = "Financial data extraction"
	LabelLegal     = "Legal document processing"
	LabelSmall     = "Small document processing"
	LabelDefault   = "General analysis"
)

// Labels maps each decision to its label.
var Labels = map[models.Decision]string{
	models.DecisionScanned:   LabelScanned,
	models.DecisionLarge:     LabelLarge,
	models.DecisionFinancial: LabelFinancial,
	models.DecisionLegal:     LabelLegal,
	models.DecisionSmall:     LabelSmall,
	models.DecisionDefault:   LabelDefault,
}

// Backend calls one processing backend for the PDF at path. A nil result
// with a nil error means the backend produced nothing.
type Backend func(ctx context.Context, path string) (*models.ExtractionResult, error)

// Binding is a backend plus the model name reported when it fails before
// producing a result.
type Binding struct {
	Model string
	Run   Backend
}

// Dispatched is the outcome of one dispatch.
type Dispatched struct {
	Label  string
	Result *models.ExtractionResult
	// Cause is set when the backend raised instead of returning a result;
	// it wraps models.ErrBackendUnavailable.
	Cause error
}

// Table binds every decision to a backend.
type Table struct {
	bindings map[models.Decision]Binding
}

// NewTable checks that every decision has a binding.
func NewTable(bindings map[models.Decision]Binding) (*Table, error) {
	t := &Table{bindings: make(map[models.Decision]Binding, len(bindings))}
	for _, d := range models.AllDecisions() {
		b, ok := bindings[d]
		if !ok || b.Run == nil {
			return nil, fmt.Errorf("%w: %s", models.ErrRoutingExhausted, d)
		}
		t.bindings[d] = b
	}
	return t, nil
}

// Dispatch runs the backend bound to d. Backend errors and panics become a
// failed ExtractionResult; only an unbound decision returns an error.
func (t *Table) Dispatch(ctx context.Context, d models.Decision, path string) (Dispatched, error) {
	b, ok := t.bindings[d]
	if !ok {
		return Dispatched{}, fmt.Errorf("%w: %s", models.ErrRoutingExhausted, d)
	}
	out := Dispatched{Label: Labels[d]}
	res, err := invoke(ctx, b.Run, path)
	if err != nil {
		out.Cause = fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
		out.Result = &models.ExtractionResult{
			Success: false,
			Model:   b.Model,
			Error:   err.Error(),
		}
		return out, nil
	}
	out.Result = res
	return out, nil
}

func invoke(ctx context.Context, run Backend, path string) (res *models.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return run(ctx, path)
}
