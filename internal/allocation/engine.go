// Package allocation converts regime strategy weights and account equity
// into concrete position sizes under risk constraints.
package allocation

import (
	"math"

	"swing-trader/internal/models"
	"swing-trader/internal/regime"
)

// Config holds the risk parameters applied to every sizing decision.
type Config struct {
	MinPositionValue        float64 `mapstructure:"min_position_value"`
	RiskPerTradePct         float64 `mapstructure:"risk_per_trade_pct"`
	ShortSizeRatio          float64 `mapstructure:"short_size_ratio"`
	MaxPositionsPerStrategy int     `mapstructure:"max_positions_per_strategy"`
	MinEntryWeight          float64 `mapstructure:"min_entry_weight"`
}

// DefaultConfig returns the default risk parameters.
func DefaultConfig() Config {
	return Config{
		MinPositionValue:        200.0,
		RiskPerTradePct:         0.02,
		ShortSizeRatio:          0.65,
		MaxPositionsPerStrategy: 2,
		MinEntryWeight:          0.05,
	}
}

// Engine sizes positions from the confirmed regime's strategy weights.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config   Config
	detector *regime.Detector
}

// NewEngine creates an allocation engine reading weights from the detector.
func NewEngine(config Config, detector *regime.Detector) *Engine {
	return &Engine{config: config, detector: detector}
}

// SizeRequest describes one sizing decision.
type SizeRequest struct {
	Strategy  string
	Price     float64
	Equity    float64
	Regime    regime.Regime
	ATR       float64 // 0 when unavailable
	Direction models.SignalDirection
}

// PositionSize returns the share count for a prospective entry, 0 when the
// trade should not be taken. Sizing is capped by the regime weight slice of
// equity and, when ATR is supplied, by the per-trade risk budget against a
// 2-ATR stop. Short entries are additionally haircut.
func (e *Engine) PositionSize(req SizeRequest) int {
	if req.Price <= 0 {
		return 0
	}

	weight := e.detector.Weight(req.Regime, req.Strategy)
	maxValue := req.Equity * weight
	if maxValue < e.config.MinPositionValue {
		return 0
	}

	qty := int(math.Floor(maxValue / req.Price))

	if req.ATR > 0 {
		stopDistance := 2 * req.ATR
		riskQty := int(math.Floor(req.Equity * e.config.RiskPerTradePct / stopDistance))
		if riskQty < qty {
			qty = riskQty
		}
	}

	if req.Direction == models.SignalShort {
		qty = int(math.Floor(float64(qty) * e.config.ShortSizeRatio))
	}

	if float64(qty)*req.Price < e.config.MinPositionValue {
		return 0
	}
	return qty
}

// ShouldEnter reports whether a strategy may open another position under
// the given regime: the strategy needs a minimum capital weight and must be
// below its per-strategy position cap.
func (e *Engine) ShouldEnter(strategy string, r regime.Regime, openCount int) bool {
	if e.detector.Weight(r, strategy) < e.config.MinEntryWeight {
		return false
	}
	return openCount < e.config.MaxPositionsPerStrategy
}
