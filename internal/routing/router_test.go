package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

func TestRoutePriority(t *testing.T) {
	tests := []struct {
		name     string
		features models.Features
		want     models.Decision
	}{
		{"scanned dominates everything", models.Features{IsScanned: true, PageCount: 50, ContainsFinancialTables: true, IsLegalDocument: true}, models.DecisionScanned},
		{"large beats financial", models.Features{PageCount: 50, ContainsFinancialTables: true}, models.DecisionLarge},
		{"financial beats legal", models.Features{PageCount: 5, ContainsFinancialTables: true, IsLegalDocument: true}, models.DecisionFinancial},
		{"legal beats small", models.Features{PageCount: 2, IsLegalDocument: true}, models.DecisionLegal},
		{"small", models.Features{PageCount: 1}, models.DecisionSmall},
		{"default", models.Features{PageCount: 7}, models.DecisionDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.features))
		})
	}
}

func TestRoutePageBoundaries(t *testing.T) {
	assert.Equal(t, models.DecisionDefault, Route(models.Features{PageCount: 10}))
	assert.Equal(t, models.DecisionLarge, Route(models.Features{PageCount: 11}))
	assert.Equal(t, models.DecisionSmall, Route(models.Features{PageCount: 3}))
	assert.Equal(t, models.DecisionDefault, Route(models.Features{PageCount: 4}))
	assert.Equal(t, models.DecisionSmall, Route(models.Features{PageCount: 0}))
}

func TestRouteIsTotal(t *testing.T) {
	for _, pages := range []int{0, 1, 3, 4, 10, 11, 500} {
		for mask := 0; mask < 8; mask++ {
			f := models.Features{
				PageCount:               pages,
				IsScanned:               mask&1 != 0,
				ContainsFinancialTables: mask&2 != 0,
				IsLegalDocument:         mask&4 != 0,
			}
			d := Route(f)
			assert.True(t, d.Valid(), "features %+v", f)
			if f.IsScanned {
				assert.Equal(t, models.DecisionScanned, d)
			}
		}
	}
}

func TestRulesEndWithCatchAll(t *testing.T) {
	last := Rules[len(Rules)-1]
	assert.Equal(t, models.DecisionDefault, last.Decision)
	assert.True(t, last.Matches(models.Features{}))
}
