package regime

import (
	"fmt"
	"math"
	"sort"

	"swing-trader/internal/errors"
)

// Strategy names known to the decision core. New strategies must be added
// here and to every regime's weight map before they can receive capital.
const (
	StrategyRSIMeanReversion = "rsi_mean_reversion"
	StrategyADXPullback      = "adx_pullback"
	StrategyBBSqueeze        = "bb_squeeze"
	StrategyOverboughtShort  = "overbought_short"
	StrategyRegimeMomentum   = "regime_momentum"
)

// RegisteredStrategies returns the live strategy registry in a stable order.
func RegisteredStrategies() []string {
	return []string{
		StrategyRSIMeanReversion,
		StrategyADXPullback,
		StrategyBBSqueeze,
		StrategyOverboughtShort,
		StrategyRegimeMomentum,
	}
}

// WeightTable maps each regime to its strategy capital weights. The table
// is configuration data supplied at startup, not a compiled-in constant.
type WeightTable map[Regime]map[string]float64

func (t WeightTable) clone() WeightTable {
	out := make(WeightTable, len(t))
	for r, weights := range t {
		m := make(map[string]float64, len(weights))
		for strategy, w := range weights {
			m[strategy] = w
		}
		out[r] = m
	}
	return out
}

// DefaultWeightTable returns the production weight table. Weights sum to
// 1.00 per regime except Uncertain, which sums to 0.90 and reserves a 10%
// cash buffer.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		Trend: {
			StrategyRSIMeanReversion: 0.15,
			StrategyADXPullback:      0.30,
			StrategyBBSqueeze:        0.20,
			StrategyOverboughtShort:  0.10,
			StrategyRegimeMomentum:   0.25,
		},
		Ranging: {
			StrategyRSIMeanReversion: 0.35,
			StrategyADXPullback:      0.10,
			StrategyBBSqueeze:        0.25,
			StrategyOverboughtShort:  0.20,
			StrategyRegimeMomentum:   0.10,
		},
		HighVolatility: {
			StrategyRSIMeanReversion: 0.20,
			StrategyADXPullback:      0.10,
			StrategyBBSqueeze:        0.30,
			StrategyOverboughtShort:  0.25,
			StrategyRegimeMomentum:   0.15,
		},
		Uncertain: {
			StrategyRSIMeanReversion: 0.20,
			StrategyADXPullback:      0.15,
			StrategyBBSqueeze:        0.20,
			StrategyOverboughtShort:  0.15,
			StrategyRegimeMomentum:   0.20,
		},
	}
}

const weightSumTolerance = 1e-9

// expected per-regime weight sums; Uncertain holds back a cash buffer
const (
	fullAllocation      = 1.00
	uncertainAllocation = 0.90
)

// ValidateWeightTable checks a configured table against the live strategy
// registry. Every regime must be present, every regime's strategy set must
// match the registry exactly, and per-regime sums must equal 1.00 (0.90 for
// Uncertain). A mismatched strategy set is rejected rather than guessed at.
func ValidateWeightTable(table WeightTable, registered []string) error {
	want := make(map[string]bool, len(registered))
	for _, s := range registered {
		want[s] = true
	}

	for _, r := range AllRegimes() {
		weights, ok := table[r]
		if !ok {
			return errors.NewConfigError("weights", string(r), "regime missing from weight table", nil)
		}

		for strategy := range weights {
			if !want[strategy] {
				return errors.NewConfigError("weights", string(r),
					fmt.Sprintf("strategy %q is not registered", strategy), nil)
			}
		}
		if len(weights) != len(registered) {
			missing := make([]string, 0)
			for _, s := range registered {
				if _, ok := weights[s]; !ok {
					missing = append(missing, s)
				}
			}
			sort.Strings(missing)
			return errors.NewConfigError("weights", string(r),
				fmt.Sprintf("registered strategies missing from table: %v", missing), nil)
		}

		var total float64
		for _, w := range weights {
			if w < 0 {
				return errors.NewConfigError("weights", string(r), "negative strategy weight", nil)
			}
			total += w
		}
		expected := fullAllocation
		if r == Uncertain {
			expected = uncertainAllocation
		}
		if math.Abs(total-expected) > weightSumTolerance {
			return errors.NewConfigError("weights", string(r),
				fmt.Sprintf("weights sum to %.4f, expected %.2f", total, expected), nil)
		}
	}

	return nil
}
