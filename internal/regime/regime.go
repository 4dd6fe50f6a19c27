// Package regime provides market regime classification, debounced regime
// tracking, and regime-driven position review.
package regime

import (
	"time"
)

// Regime represents the current market regime classification.
type Regime string

const (
	Trend          Regime = "TREND"
	Ranging        Regime = "RANGING"
	HighVolatility Regime = "HIGH_VOLATILITY"
	Uncertain      Regime = "UNCERTAIN"
)

// AllRegimes lists every regime in a stable order.
func AllRegimes() []Regime {
	return []Regime{Trend, Ranging, HighVolatility, Uncertain}
}

// Valid reports whether r is one of the known regimes.
func (r Regime) Valid() bool {
	switch r {
	case Trend, Ranging, HighVolatility, Uncertain:
		return true
	}
	return false
}

func (r Regime) String() string {
	return string(r)
}

// Transition records one confirmed regime change. Transitions are created
// only by the tracker on confirmation and are immutable afterwards.
type Transition struct {
	Previous        Regime
	Current         Regime
	Timestamp       time.Time
	BarsInNewRegime int
}
