package regime

import (
	"fmt"
	"sort"
	"strings"

	"swing-trader/internal/models"
)

// compatibilityThreshold is the minimum weight a strategy needs in a regime
// to be considered compatible with it.
const compatibilityThreshold = 0.10

// PositionReviewer recommends keep/close for open positions after a regime
// change, using a compatibility matrix derived from the weight table: a
// strategy is compatible with every regime where its weight exceeds 0.10.
type PositionReviewer struct {
	compatible map[string]map[Regime]bool
}

// NewPositionReviewer builds the compatibility matrix from a weight table.
func NewPositionReviewer(weights WeightTable) *PositionReviewer {
	compatible := make(map[string]map[Regime]bool)
	for r, strategyWeights := range weights {
		for strategy, w := range strategyWeights {
			if w > compatibilityThreshold {
				if compatible[strategy] == nil {
					compatible[strategy] = make(map[Regime]bool)
				}
				compatible[strategy][r] = true
			}
		}
	}
	return &PositionReviewer{compatible: compatible}
}

// Review produces one recommendation per open position, preserving the
// iteration order of the supplied symbols. Positions opened by a strategy
// unknown to the matrix are kept: missing metadata must never force a
// liquidation.
func (pr *PositionReviewer) Review(newRegime Regime, positions map[string]string) []models.PositionReview {
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	reviews := make([]models.PositionReview, 0, len(symbols))
	for _, symbol := range symbols {
		strategy := positions[symbol]
		reviews = append(reviews, pr.reviewOne(newRegime, symbol, strategy))
	}
	return reviews
}

func (pr *PositionReviewer) reviewOne(newRegime Regime, symbol, strategy string) models.PositionReview {
	regimes, known := pr.compatible[strategy]
	if !known {
		return models.PositionReview{
			Symbol:   symbol,
			Strategy: strategy,
			Action:   models.ReviewKeep,
			Reason:   "unknown_strategy",
		}
	}
	if regimes[newRegime] {
		return models.PositionReview{
			Symbol:   symbol,
			Strategy: strategy,
			Action:   models.ReviewKeep,
			Reason:   "compatible",
		}
	}
	return models.PositionReview{
		Symbol:   symbol,
		Strategy: strategy,
		Action:   models.ReviewClose,
		Reason:   fmt.Sprintf("incompatible_with_%s", strings.ToLower(string(newRegime))),
	}
}

// CompatibleRegimes returns the regimes a strategy may hold positions in.
func (pr *PositionReviewer) CompatibleRegimes(strategy string) []Regime {
	var out []Regime
	for _, r := range AllRegimes() {
		if pr.compatible[strategy][r] {
			out = append(out, r)
		}
	}
	return out
}
