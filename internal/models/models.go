// Package models provides domain models shared across the trading core.
package models

import (
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// SignalDirection represents the direction of a strategy signal.
type SignalDirection string

const (
	SignalLong  SignalDirection = "LONG"
	SignalShort SignalDirection = "SHORT"
	SignalClose SignalDirection = "CLOSE"
)

// IsEntry reports whether the direction opens a new position.
func (d SignalDirection) IsEntry() bool {
	return d == SignalLong || d == SignalShort
}

// Signal is emitted by a strategy and consumed by the rotation filter.
// Strength is clamped into [0, 1] at construction; the decision core
// never mutates a signal after that.
type Signal struct {
	Strategy  string
	Symbol    string
	Direction SignalDirection
	Strength  float64
	Metadata  map[string]string
}

// NewSignal creates a signal with strength clamped into [0, 1].
func NewSignal(strategy, symbol string, direction SignalDirection, strength float64) Signal {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return Signal{
		Strategy:  strategy,
		Symbol:    symbol,
		Direction: direction,
		Strength:  strength,
	}
}

// Position represents an open position tracked by the decision core.
type Position struct {
	Symbol   string
	Strategy string
	Quantity int
	AvgPrice float64
	OpenedAt time.Time
	Sector   string
}

// PositionReviewAction is the recommendation for an open position after a
// regime change.
type PositionReviewAction string

const (
	ReviewKeep  PositionReviewAction = "KEEP"
	ReviewClose PositionReviewAction = "CLOSE"
)

// PositionReview is one keep/close recommendation produced per open
// position during a regime-change review. It carries no state; the caller
// that actually closes positions consumes it immediately.
type PositionReview struct {
	Symbol   string
	Strategy string
	Action   PositionReviewAction
	Reason   string
}
