package regime

import (
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/metrics"
)

// DefaultConfirmationBars is the number of consecutive observations a new
// regime must persist before the tracker confirms it.
const DefaultConfirmationBars = 3

// Tracker debounces raw regime classifications so that a new regime must
// persist for a configured number of consecutive observations before the
// confirmed regime changes. This prevents whipsaw reallocation on regime
// flicker.
//
// Tracker is a single-writer object: callers must serialize Update calls.
type Tracker struct {
	confirmationBars int
	confirmed        Regime
	pending          Regime
	pendingCount     int
	history          []Transition
	recorder         *metrics.Recorder
	logger           zerolog.Logger
}

// NewTracker creates a tracker starting in the Uncertain regime. recorder
// may be nil.
func NewTracker(confirmationBars int, recorder *metrics.Recorder, logger zerolog.Logger) *Tracker {
	if confirmationBars <= 0 {
		confirmationBars = DefaultConfirmationBars
	}
	return &Tracker{
		confirmationBars: confirmationBars,
		confirmed:        Uncertain,
		recorder:         recorder,
		logger:           logger,
	}
}

// Update feeds one raw classification into the tracker. It returns a
// non-nil Transition only when the pending regime reaches the confirmation
// threshold. A raw regime matching the confirmed one clears any pending
// candidate; a raw regime differing from both confirmed and pending resets
// the pending counter to 1, so flicker never accumulates across different
// candidates.
func (t *Tracker) Update(raw Regime, timestamp time.Time) *Transition {
	if raw == t.confirmed {
		t.pending = ""
		t.pendingCount = 0
		return nil
	}

	if raw == t.pending {
		t.pendingCount++
	} else {
		t.pending = raw
		t.pendingCount = 1
	}

	if t.pendingCount < t.confirmationBars {
		return nil
	}

	transition := Transition{
		Previous:        t.confirmed,
		Current:         raw,
		Timestamp:       timestamp,
		BarsInNewRegime: t.pendingCount,
	}
	t.confirmed = raw
	t.pending = ""
	t.pendingCount = 0
	t.history = append(t.history, transition)

	t.recorder.RegimeTransition(string(transition.Previous), string(transition.Current))
	t.logger.Info().
		Str("event", "regime_transition").
		Str("previous", string(transition.Previous)).
		Str("current", string(transition.Current)).
		Int("bars_in_new_regime", transition.BarsInNewRegime).
		Time("timestamp", timestamp).
		Msg("Regime transition confirmed")

	return &transition
}

// Confirmed returns the current confirmed regime.
func (t *Tracker) Confirmed() Regime {
	return t.confirmed
}

// Pending returns the unconfirmed candidate regime and its streak length.
// The candidate is empty when nothing is pending.
func (t *Tracker) Pending() (Regime, int) {
	return t.pending, t.pendingCount
}

// History returns the append-only transition history.
func (t *Tracker) History() []Transition {
	out := make([]Transition, len(t.history))
	copy(out, t.history)
	return out
}
