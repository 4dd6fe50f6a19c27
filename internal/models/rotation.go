package models

import (
	"time"

	"swing-trader/internal/errors"
)

// WatchlistEntry tracks a symbol rotated out of the active set while still
// holding an open position. The entry lives until the position closes or
// the symbol re-enters the active set.
type WatchlistEntry struct {
	Symbol   string
	AddedAt  time.Time
	Deadline time.Time
	Reason   string
}

// NewWatchlistEntry creates a watchlist entry. A deadline before the
// added-at time indicates caller misuse and is rejected.
func NewWatchlistEntry(symbol string, addedAt, deadline time.Time, reason string) (WatchlistEntry, error) {
	if deadline.Before(addedAt) {
		return WatchlistEntry{}, errors.NewValidationError("deadline", deadline,
			"force-close deadline precedes watchlist entry time")
	}
	return WatchlistEntry{
		Symbol:   symbol,
		AddedAt:  addedAt,
		Deadline: deadline,
		Reason:   reason,
	}, nil
}

// Expired reports whether the force-close deadline has passed.
func (w WatchlistEntry) Expired(now time.Time) bool {
	return !now.Before(w.Deadline)
}

// RotationEvent summarizes one applied rotation, appended to the manager's
// history.
type RotationEvent struct {
	Timestamp   time.Time
	Activated   []string
	RotatedIn   []string
	RotatedOut  []string
	Watchlisted []string
	Trigger     string // "scheduled", "regime_change", "vix_spike"
}
