// Package routing selects a processing strategy for a profiled document and
// dispatches it to the bound backend.
package routing

import "github.com/Lllllllleong/documentrouter/internal/models"

// Page-count boundaries. Large is strictly greater than LargePageThreshold;
// Small is at most SmallPageThreshold.
const (
	LargePageThreshold = 10
	SmallPageThreshold = 3
)

// Rule pairs a predicate with the decision it yields.
type Rule struct {
	Name     string
	Matches  func(models.Features) bool
	Decision models.Decision
}

// Rules is evaluated top to bottom; the first match wins. The last rule
// always matches, so Route is total.
var Rules = []Rule{
	{
		Name:     "scanned",
		Matches:  func(f models.Features) bool { return f.IsScanned },
		Decision: models.DecisionScanned,
	},
	{
		Name:     "large",
		Matches:  func(f models.Features) bool { return f.PageCount > LargePageThreshold },
		Decision: models.DecisionLarge,
	},
	{
		Name:     "financial",
		Matches:  func(f models.Features) bool { return f.ContainsFinancialTables },
		Decision: models.DecisionFinancial,
	},
	{
		Name:     "legal",
		Matches:  func(f models.Features) bool { return f.IsLegalDocument },
		Decision: models.DecisionLegal,
	},
	{
		Name:     "small",
		Matches:  func(f models.Features) bool { return f.PageCount <= SmallPageThreshold },
		Decision: models.DecisionSmall,
	},
	{
		Name:     "default",
		Matches:  func(models.Features) bool { return true },
		Decision: models.DecisionDefault,
	},
}

// Route maps features to exactly one decision.
func Route(f models.Features) models.Decision {
	for _, r := range Rules {
		if r.Matches(f) {
			return r.Decision
		}
	}
	return models.DecisionDefault
}
