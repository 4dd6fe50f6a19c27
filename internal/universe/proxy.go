package universe

import (
	"swing-trader/internal/models"
)

// ProxyWeights defines the factor weights for the proxy score. The default
// weights sum to 0.90, deliberately leaving headroom below a perfect 1.0.
type ProxyWeights struct {
	Liquidity        float64
	VolQuality       float64
	StrategyCoverage float64
	GapSafety        float64
	ExecutionQuality float64
	IncumbentBonus   float64
}

// DefaultProxyWeights returns the production factor weights.
func DefaultProxyWeights() ProxyWeights {
	return ProxyWeights{
		Liquidity:        0.10,
		VolQuality:       0.15,
		StrategyCoverage: 0.15,
		GapSafety:        0.20,
		ExecutionQuality: 0.15,
		IncumbentBonus:   0.15,
	}
}

const (
	idealATRRatio   = 0.02
	atrDecayRange   = 0.02 // score reaches 0 at ideal ± 2pp
	trendCapability = 0.50 // trend_pct at which trend capability saturates
	rangeCapability = 0.60 // range_pct at which range capability saturates
	gapDecayLimit   = 0.15 // gap safety reaches 0 at 15% gap frequency
	volCycleDecayAt = 1.5  // execution quality reaches 0 at this vol cycle
)

// ProxyScorer scores candidates from static liquidity, volatility and gap
// metrics, without running a backtest. Scores land in [0, 1].
type ProxyScorer struct {
	weights ProxyWeights
}

// NewProxyScorer creates a proxy scorer.
func NewProxyScorer(weights ProxyWeights) *ProxyScorer {
	return &ProxyScorer{weights: weights}
}

// Score computes one proxy score per candidate. Liquidity is min-max
// normalized across the batch, so a candidate's score depends on who it is
// batched with; incumbency is judged against currentPool.
func (s *ProxyScorer) Score(candidates []models.StockCandidate, currentPool map[string]bool) []float64 {
	scores := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return scores
	}

	minDV, maxDV := candidates[0].AvgDollarVolume, candidates[0].AvgDollarVolume
	for _, c := range candidates[1:] {
		if c.AvgDollarVolume < minDV {
			minDV = c.AvgDollarVolume
		}
		if c.AvgDollarVolume > maxDV {
			maxDV = c.AvgDollarVolume
		}
	}

	for i, c := range candidates {
		liquidity := 0.5
		if maxDV > minDV {
			liquidity = (c.AvgDollarVolume - minDV) / (maxDV - minDV)
		}

		scores[i] = s.weights.Liquidity*liquidity +
			s.weights.VolQuality*volQuality(c.ATRRatio) +
			s.weights.StrategyCoverage*strategyCoverage(c.TrendPct, c.RangePct) +
			s.weights.GapSafety*gapSafety(c.GapFrequency) +
			s.weights.ExecutionQuality*executionQuality(c.VolCycle) +
			s.weights.IncumbentBonus*incumbentBonus(c.Symbol, currentPool)
	}

	return scores
}

// volQuality peaks at the ideal ATR ratio and decays linearly to 0 at
// ideal ± 2 percentage points.
func volQuality(atrRatio float64) float64 {
	dist := atrRatio - idealATRRatio
	if dist < 0 {
		dist = -dist
	}
	if dist >= atrDecayRange {
		return 0
	}
	return 1 - dist/atrDecayRange
}

// strategyCoverage averages the trend and range capabilities, each capped
// at 1.0 once the candidate spends enough of its history in that state.
func strategyCoverage(trendPct, rangePct float64) float64 {
	trend := trendPct / trendCapability
	if trend > 1 {
		trend = 1
	}
	rng := rangePct / rangeCapability
	if rng > 1 {
		rng = 1
	}
	return (trend + rng) / 2
}

func gapSafety(gapFrequency float64) float64 {
	if gapFrequency >= gapDecayLimit {
		return 0
	}
	return 1 - gapFrequency/gapDecayLimit
}

func executionQuality(volCycle float64) float64 {
	if volCycle >= volCycleDecayAt {
		return 0
	}
	return 1 - volCycle/volCycleDecayAt
}

func incumbentBonus(symbol string, currentPool map[string]bool) float64 {
	if currentPool[symbol] {
		return 1
	}
	return 0
}
