package models

import (
	"time"
)

// StockCandidate holds the per-symbol metrics computed once per selection
// cycle from a bar history. It is never mutated after construction.
type StockCandidate struct {
	Symbol          string
	Sector          string
	Close           float64
	AvgVolume       float64
	AvgDollarVolume float64
	ATRRatio        float64 // ATR / close
	GapFrequency    float64 // share of bars opening >2% away from prior close
	TrendPct        float64 // share of lookback bars with a trending ADX
	RangePct        float64 // share of lookback bars with a low ADX
	VolCycle        float64 // current BB width / average BB width
}

// ScoredCandidate wraps a candidate with its pipeline scores, all in [0, 1].
// FinalScore is the configured blend of proxy and backtest scores.
type ScoredCandidate struct {
	Candidate     StockCandidate
	ProxyScore    float64
	BacktestScore float64
	FinalScore    float64
}

// BacktestMetrics are the per-symbol simulation results fed into the
// backtest scorer by an external backtest run.
type BacktestMetrics struct {
	TotalTrades      int
	WinRate          float64
	ProfitFactor     float64 // math.Inf(1) when no losing trades
	StrategiesActive int
}

// UniverseResult is the authoritative weekly portfolio produced by a
// selection cycle and consumed exactly once by the rotation manager.
type UniverseResult struct {
	Symbols     []string
	Scored      []ScoredCandidate
	Timestamp   time.Time
	RotationIn  []string // Symbols - previous pool
	RotationOut []string // previous pool - Symbols
}

// Contains reports whether the symbol is part of the selected universe.
func (u *UniverseResult) Contains(symbol string) bool {
	for _, s := range u.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
