package universe

import (
	"sort"

	"swing-trader/internal/models"
)

// OptimizerConfig bounds the greedy portfolio construction.
type OptimizerConfig struct {
	TargetSize   int `mapstructure:"target_size"`
	MaxPerSector int `mapstructure:"max_per_sector"`
	MaxRotation  int `mapstructure:"max_rotation"`
	MinSectors   int `mapstructure:"min_sectors"`
}

// DefaultOptimizerConfig returns the production optimizer bounds.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		TargetSize:   10,
		MaxPerSector: 4,
		MaxRotation:  3,
		MinSectors:   4,
	}
}

// PortfolioOptimizer selects the final portfolio from scored candidates in
// three phases: force-include held symbols, greedy add by final score under
// sector and rotation caps, then diversity repair.
type PortfolioOptimizer struct {
	config OptimizerConfig
}

// NewPortfolioOptimizer creates a portfolio optimizer.
func NewPortfolioOptimizer(config OptimizerConfig) *PortfolioOptimizer {
	return &PortfolioOptimizer{config: config}
}

// Optimize returns the selected candidates. Symbols with open positions are
// always selected and never swapped out; the rotation cap limits how many
// symbols outside currentPool may enter, and only applies when currentPool
// is non-empty.
func (o *PortfolioOptimizer) Optimize(scored []models.ScoredCandidate, currentPool, openPositions map[string]bool) []models.ScoredCandidate {
	ranked := make([]models.ScoredCandidate, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	var selected []models.ScoredCandidate
	selectedSymbols := make(map[string]bool)
	forced := make(map[string]bool)
	sectorCounts := make(map[string]int)
	newAdditions := 0

	// Phase 1: symbols with open positions cannot be dropped.
	for _, sc := range ranked {
		if openPositions[sc.Candidate.Symbol] && !selectedSymbols[sc.Candidate.Symbol] {
			selected = append(selected, sc)
			selectedSymbols[sc.Candidate.Symbol] = true
			forced[sc.Candidate.Symbol] = true
			sectorCounts[sc.Candidate.Sector]++
			if len(currentPool) > 0 && !currentPool[sc.Candidate.Symbol] {
				newAdditions++
			}
		}
	}

	// Phase 2: greedy add by descending final score.
	for _, sc := range ranked {
		if len(selected) >= o.config.TargetSize {
			break
		}
		symbol := sc.Candidate.Symbol
		if selectedSymbols[symbol] {
			continue
		}
		if sectorCounts[sc.Candidate.Sector] >= o.config.MaxPerSector {
			continue
		}
		isNew := len(currentPool) > 0 && !currentPool[symbol]
		if isNew && newAdditions >= o.config.MaxRotation {
			continue
		}

		selected = append(selected, sc)
		selectedSymbols[symbol] = true
		sectorCounts[sc.Candidate.Sector]++
		if isNew {
			newAdditions++
		}
	}

	// Phase 3: diversity repair.
	o.repairDiversity(&selected, selectedSymbols, sectorCounts, forced, ranked)

	return selected
}

// repairDiversity swaps low-score members of over-represented sectors for
// the best candidates from missing sectors until the minimum sector count
// is met or no further swap is possible.
func (o *PortfolioOptimizer) repairDiversity(selected *[]models.ScoredCandidate, selectedSymbols map[string]bool,
	sectorCounts map[string]int, forced map[string]bool, ranked []models.ScoredCandidate) {

	for {
		if len(*selected) < o.config.MinSectors {
			return
		}
		distinct := 0
		for _, count := range sectorCounts {
			if count > 0 {
				distinct++
			}
		}
		if distinct >= o.config.MinSectors {
			return
		}

		// Best unselected candidate from a sector not yet represented.
		var incoming *models.ScoredCandidate
		for i := range ranked {
			sc := &ranked[i]
			if selectedSymbols[sc.Candidate.Symbol] {
				continue
			}
			if sectorCounts[sc.Candidate.Sector] == 0 {
				incoming = sc
				break
			}
		}
		if incoming == nil {
			return
		}

		// Lowest-score swappable member of a sector holding more than one
		// selection. Force-included members are not swappable.
		outIdx := -1
		for i, sc := range *selected {
			if forced[sc.Candidate.Symbol] {
				continue
			}
			if sectorCounts[sc.Candidate.Sector] <= 1 {
				continue
			}
			if outIdx == -1 || sc.FinalScore < (*selected)[outIdx].FinalScore {
				outIdx = i
			}
		}
		if outIdx == -1 {
			return
		}

		outgoing := (*selected)[outIdx]
		sectorCounts[outgoing.Candidate.Sector]--
		delete(selectedSymbols, outgoing.Candidate.Symbol)

		(*selected)[outIdx] = *incoming
		sectorCounts[incoming.Candidate.Sector]++
		selectedSymbols[incoming.Candidate.Symbol] = true
	}
}
