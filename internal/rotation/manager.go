// Package rotation maintains the active trading set produced by universe
// selection: watchlisted exits, force-close deadlines, the weekly loss
// halt, and the signal gate in front of strategy execution.
package rotation

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/earnings"
	"swing-trader/internal/errors"
	"swing-trader/internal/metrics"
	"swing-trader/internal/models"
	"swing-trader/pkg/utils"
)

// Rotation triggers recorded on rotation events.
const (
	TriggerScheduled    = "scheduled"
	TriggerRegimeChange = "regime_change"
	TriggerVIXSpike     = "vix_spike"
)

// Config holds the rotation parameters.
type Config struct {
	ForceCloseDay      int     `mapstructure:"force_close_day"` // 0=Sunday .. 6=Saturday
	ForceCloseHour     int     `mapstructure:"force_close_hour"`
	WeeklyLossLimitPct float64 `mapstructure:"weekly_loss_limit_pct"`
}

// DefaultConfig returns the production rotation parameters: force closes on
// Friday at 15:00 exchange time, halting at a 5% weekly loss.
func DefaultConfig() Config {
	return Config{
		ForceCloseDay:      5,
		ForceCloseHour:     15,
		WeeklyLossLimitPct: 0.05,
	}
}

// Manager owns the rotation state. It is a single-writer object: callers
// must serialize ApplyRotation, CheckWeeklyLossLimit and OnPositionClosed
// through one decision loop per trading session. ApplyRotation requires
// monotonically increasing universe timestamps.
type Manager struct {
	config   Config
	calendar earnings.Calendar
	recorder *metrics.Recorder
	logger   zerolog.Logger

	active            map[string]bool
	watchlist         map[string]models.WatchlistEntry
	lastRotation      time.Time
	weeklyStartEquity float64
	halted            bool
	history           []models.RotationEvent
}

// NewManager creates a rotation manager with an empty active set. calendar
// and recorder may be nil.
func NewManager(config Config, calendar earnings.Calendar, recorder *metrics.Recorder, logger zerolog.Logger) *Manager {
	return &Manager{
		config:    config,
		calendar:  calendar,
		recorder:  recorder,
		logger:    logger,
		active:    make(map[string]bool),
		watchlist: make(map[string]models.WatchlistEntry),
	}
}

// FilterSignals gates strategy signals against rotation state. Close
// signals always pass; entries pass only when trading is not halted and
// the symbol is in the active set. Watchlisted and unknown symbols never
// receive new entries.
func (m *Manager) FilterSignals(signals []models.Signal) []models.Signal {
	out := make([]models.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Direction == models.SignalClose {
			out = append(out, sig)
			m.recorder.SignalFiltered("passed")
			continue
		}
		if m.halted || !m.active[sig.Symbol] {
			m.recorder.SignalFiltered("dropped")
			continue
		}
		out = append(out, sig)
		m.recorder.SignalFiltered("passed")
	}
	return out
}

// ApplyRotation installs a new universe result. Symbols rotated out while
// still held are watchlisted with a force-close deadline on the configured
// weekday strictly after the universe timestamp; symbols rotated out flat
// are simply dropped. A positive newEquity resets the weekly equity
// baseline. The halt flag clears on every rotation.
func (m *Manager) ApplyRotation(universe *models.UniverseResult, openPositionSymbols []string,
	newEquity float64, trigger string) (models.RotationEvent, error) {

	if !m.lastRotation.IsZero() && !universe.Timestamp.After(m.lastRotation) {
		return models.RotationEvent{}, errors.ErrNonMonotonicRotation
	}
	if trigger == "" {
		trigger = TriggerScheduled
	}

	held := make(map[string]bool, len(openPositionSymbols))
	for _, s := range openPositionSymbols {
		held[s] = true
	}

	// Symbols back in the universe leave the watchlist.
	for symbol := range m.watchlist {
		if universe.Contains(symbol) {
			delete(m.watchlist, symbol)
		}
	}

	var watchlisted []string
	for _, symbol := range universe.RotationOut {
		if !held[symbol] {
			continue
		}
		if _, exists := m.watchlist[symbol]; exists {
			continue
		}
		deadline := utils.NextWeekdayHour(universe.Timestamp,
			time.Weekday(m.config.ForceCloseDay), m.config.ForceCloseHour)
		entry, err := models.NewWatchlistEntry(symbol, universe.Timestamp, deadline, "rotated_out_with_position")
		if err != nil {
			return models.RotationEvent{}, err
		}
		m.watchlist[symbol] = entry
		watchlisted = append(watchlisted, symbol)
	}
	sort.Strings(watchlisted)

	m.active = make(map[string]bool, len(universe.Symbols))
	for _, s := range universe.Symbols {
		m.active[s] = true
	}
	m.lastRotation = universe.Timestamp
	m.halted = false
	if newEquity > 0 {
		m.weeklyStartEquity = newEquity
	}

	event := models.RotationEvent{
		Timestamp:   universe.Timestamp,
		Activated:   append([]string(nil), universe.Symbols...),
		RotatedIn:   append([]string(nil), universe.RotationIn...),
		RotatedOut:  append([]string(nil), universe.RotationOut...),
		Watchlisted: watchlisted,
		Trigger:     trigger,
	}
	m.history = append(m.history, event)

	m.recorder.RotationApplied(trigger)
	m.recorder.SetRotationState(len(m.active), len(m.watchlist))
	m.logger.Info().
		Str("event", "rotation").
		Str("trigger", trigger).
		Int("active", len(m.active)).
		Int("rotated_in", len(event.RotatedIn)).
		Int("rotated_out", len(event.RotatedOut)).
		Int("watchlisted", len(watchlisted)).
		Time("timestamp", universe.Timestamp).
		Msg("Rotation applied")

	return event, nil
}

// ForceCloseSymbols returns the held symbols that must be liquidated now:
// all of them when halted, otherwise watchlisted symbols past deadline
// plus symbols inside the earnings force-close window.
func (m *Manager) ForceCloseSymbols(now time.Time, openPositionSymbols []string) []string {
	if m.halted {
		out := append([]string(nil), openPositionSymbols...)
		sort.Strings(out)
		return out
	}

	seen := make(map[string]bool)
	var out []string
	for _, symbol := range openPositionSymbols {
		if entry, ok := m.watchlist[symbol]; ok && entry.Expired(now) && !seen[symbol] {
			out = append(out, symbol)
			seen[symbol] = true
		}
		if m.calendar != nil && m.calendar.ShouldForceClose(symbol, now) && !seen[symbol] {
			out = append(out, symbol)
			seen[symbol] = true
		}
	}
	sort.Strings(out)
	return out
}

// CheckWeeklyLossLimit compares current equity against the weekly baseline
// and halts trading when the configured loss fraction is breached. It
// returns true only on a breach.
func (m *Manager) CheckWeeklyLossLimit(currentEquity float64) bool {
	if m.weeklyStartEquity <= 0 {
		return false
	}
	lossPct := (m.weeklyStartEquity - currentEquity) / m.weeklyStartEquity
	if lossPct < m.config.WeeklyLossLimitPct {
		return false
	}

	m.halted = true
	m.recorder.HaltTriggered()
	m.logger.Warn().
		Str("event", "halt").
		Float64("loss_pct", lossPct).
		Float64("limit_pct", m.config.WeeklyLossLimitPct).
		Msg("Weekly loss limit breached, trading halted")
	return true
}

// OnPositionClosed removes the symbol from the watchlist if present.
// Calling it for a symbol that is not watchlisted is a no-op.
func (m *Manager) OnPositionClosed(symbol string) {
	if _, ok := m.watchlist[symbol]; !ok {
		return
	}
	delete(m.watchlist, symbol)
	m.recorder.SetRotationState(len(m.active), len(m.watchlist))
	m.logger.Debug().Str("symbol", symbol).Msg("Watchlist entry cleared after position close")
}

// ActiveSymbols returns the active set, sorted.
func (m *Manager) ActiveSymbols() []string {
	out := make([]string, 0, len(m.active))
	for s := range m.active {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// WatchlistSymbols returns the watchlisted symbols, sorted.
func (m *Manager) WatchlistSymbols() []string {
	out := make([]string, 0, len(m.watchlist))
	for s := range m.watchlist {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// WatchlistEntry returns the entry for a symbol, if watchlisted.
func (m *Manager) WatchlistEntry(symbol string) (models.WatchlistEntry, bool) {
	entry, ok := m.watchlist[symbol]
	return entry, ok
}

// IsHalted reports whether entries are blocked by the weekly loss limit.
func (m *Manager) IsHalted() bool {
	return m.halted
}

// WeeklyStartEquity returns the current weekly equity baseline.
func (m *Manager) WeeklyStartEquity() float64 {
	return m.weeklyStartEquity
}

// History returns the append-only rotation event history.
func (m *Manager) History() []models.RotationEvent {
	out := make([]models.RotationEvent, len(m.history))
	copy(out, m.history)
	return out
}
