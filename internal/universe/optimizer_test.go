package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swing-trader/internal/models"
)

func scoredCandidate(symbol, sector string, score float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		Candidate:  models.StockCandidate{Symbol: symbol, Sector: sector},
		FinalScore: score,
	}
}

func selectedSymbols(selected []models.ScoredCandidate) []string {
	out := make([]string, len(selected))
	for i, sc := range selected {
		out[i] = sc.Candidate.Symbol
	}
	return out
}

func TestOptimizerGreedyByScore(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 3, MaxPerSector: 3, MaxRotation: 3, MinSectors: 1})

	scored := []models.ScoredCandidate{
		scoredCandidate("C", "tech", 0.5),
		scoredCandidate("A", "tech", 0.9),
		scoredCandidate("D", "tech", 0.3),
		scoredCandidate("B", "tech", 0.7),
	}

	selected := o.Optimize(scored, nil, nil)
	assert.Equal(t, []string{"A", "B", "C"}, selectedSymbols(selected))
}

func TestOptimizerSectorCap(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 3, MaxPerSector: 2, MaxRotation: 10, MinSectors: 1})

	scored := []models.ScoredCandidate{
		scoredCandidate("T1", "tech", 0.9),
		scoredCandidate("T2", "tech", 0.8),
		scoredCandidate("T3", "tech", 0.7),
		scoredCandidate("E1", "energy", 0.1),
	}

	selected := o.Optimize(scored, nil, nil)
	// Third tech name is skipped for the energy name despite its score.
	assert.ElementsMatch(t, []string{"T1", "T2", "E1"}, selectedSymbols(selected))
}

func TestOptimizerRotationCap(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 4, MaxPerSector: 10, MaxRotation: 1, MinSectors: 1})

	currentPool := map[string]bool{"OLD1": true, "OLD2": true, "OLD3": true}
	scored := []models.ScoredCandidate{
		scoredCandidate("NEW1", "tech", 0.9),
		scoredCandidate("NEW2", "tech", 0.85),
		scoredCandidate("OLD1", "tech", 0.5),
		scoredCandidate("OLD2", "tech", 0.4),
		scoredCandidate("OLD3", "tech", 0.3),
	}

	selected := o.Optimize(scored, currentPool, nil)
	symbols := selectedSymbols(selected)
	// Only one newcomer may enter per cycle.
	assert.Contains(t, symbols, "NEW1")
	assert.NotContains(t, symbols, "NEW2")
	assert.ElementsMatch(t, []string{"NEW1", "OLD1", "OLD2", "OLD3"}, symbols)
}

func TestOptimizerRotationCapIgnoredOnFirstCycle(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 3, MaxPerSector: 10, MaxRotation: 1, MinSectors: 1})

	scored := []models.ScoredCandidate{
		scoredCandidate("A", "tech", 0.9),
		scoredCandidate("B", "tech", 0.8),
		scoredCandidate("C", "tech", 0.7),
	}

	// Empty current pool: everything is "new" but the cap does not apply.
	selected := o.Optimize(scored, nil, nil)
	assert.Len(t, selected, 3)
}

func TestOptimizerForceIncludesOpenPositions(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 2, MaxPerSector: 10, MaxRotation: 10, MinSectors: 1})

	scored := []models.ScoredCandidate{
		scoredCandidate("HIGH", "tech", 0.9),
		scoredCandidate("MID", "tech", 0.5),
		scoredCandidate("HELD", "tech", 0.1),
	}

	selected := o.Optimize(scored, nil, map[string]bool{"HELD": true})
	symbols := selectedSymbols(selected)
	assert.Contains(t, symbols, "HELD")
	assert.Contains(t, symbols, "HIGH")
	assert.NotContains(t, symbols, "MID")
}

func TestOptimizerDiversityRepair(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 4, MaxPerSector: 4, MaxRotation: 10, MinSectors: 3})

	scored := []models.ScoredCandidate{
		scoredCandidate("T1", "tech", 0.9),
		scoredCandidate("T2", "tech", 0.85),
		scoredCandidate("T3", "tech", 0.8),
		scoredCandidate("E1", "energy", 0.75),
		scoredCandidate("F1", "finance", 0.2),
	}

	selected := o.Optimize(scored, nil, nil)
	symbols := selectedSymbols(selected)
	require.Len(t, symbols, 4)

	// The greedy pass picks three tech names plus energy; repair swaps the
	// weakest tech name for the finance candidate to reach three sectors.
	assert.Contains(t, symbols, "F1")
	assert.NotContains(t, symbols, "T3")

	sectors := make(map[string]bool)
	for _, sc := range selected {
		sectors[sc.Candidate.Sector] = true
	}
	assert.GreaterOrEqual(t, len(sectors), 3)
}

func TestOptimizerDiversityRepairKeepsForced(t *testing.T) {
	o := NewPortfolioOptimizer(OptimizerConfig{TargetSize: 2, MaxPerSector: 2, MaxRotation: 10, MinSectors: 2})

	scored := []models.ScoredCandidate{
		scoredCandidate("H1", "tech", 0.3),
		scoredCandidate("H2", "tech", 0.2),
		scoredCandidate("E1", "energy", 0.9),
	}
	openPositions := map[string]bool{"H1": true, "H2": true}

	selected := o.Optimize(scored, nil, openPositions)
	// Both held names are forced; no swap is possible even though the
	// sector minimum is unmet.
	assert.ElementsMatch(t, []string{"H1", "H2"}, selectedSymbols(selected))
}
