package models

import "fmt"

// Decision is the processing strategy chosen for a document.
type Decision int

const (
	DecisionScanned Decision = iota
	DecisionLarge
	DecisionFinancial
	DecisionLegal
	DecisionSmall
	DecisionDefault
)

var decisionNames = [...]string{
	DecisionScanned:   "Scanned",
	DecisionLarge:     "Large",
	DecisionFinancial: "Financial",
	DecisionLegal:     "Legal",
	DecisionSmall:     "Small",
	DecisionDefault:   "Default",
}

func (d Decision) String() string {
	if d < 0 || int(d) >= len(decisionNames) {
		return fmt.Sprintf("Decision(%d)", int(d))
	}
	return decisionNames[d]
}

// Valid reports whether d is one of the declared decisions.
func (d Decision) Valid() bool {
	return d >= 0 && int(d) < len(decisionNames)
}

// AllDecisions lists every decision in routing priority order.
func AllDecisions() []Decision {
	out := make([]Decision, len(decisionNames))
	for i := range decisionNames {
		out[i] = Decision(i)
	}
	return out
}

// ParseDecision maps a tag name back to its Decision.
func ParseDecision(s string) (Decision, error) {
	for i, name := range decisionNames {
		if name == s {
			return Decision(i), nil
		}
	}
	return DecisionDefault, fmt.Errorf("unknown decision %q", s)
}

// MarshalText encodes a decision as its tag name in JSON.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
