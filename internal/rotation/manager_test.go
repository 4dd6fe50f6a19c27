package rotation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swing-trader/internal/earnings"
	"swing-trader/internal/errors"
	"swing-trader/internal/models"
)

func newTestManager() *Manager {
	return NewManager(DefaultConfig(), nil, nil, zerolog.Nop())
}

// monday returns a Monday 16:00 UTC timestamp n weeks after the base week.
func monday(week int) time.Time {
	return time.Date(2026, time.March, 2, 16, 0, 0, 0, time.UTC).AddDate(0, 0, 7*week)
}

func universeAt(ts time.Time, symbols, rotationIn, rotationOut []string) *models.UniverseResult {
	return &models.UniverseResult{
		Symbols:     symbols,
		Timestamp:   ts,
		RotationIn:  rotationIn,
		RotationOut: rotationOut,
	}
}

func TestApplyRotationActivatesUniverse(t *testing.T) {
	m := newTestManager()

	event, err := m.ApplyRotation(
		universeAt(monday(0), []string{"AAPL", "MSFT"}, []string{"AAPL", "MSFT"}, nil),
		nil, 10000, TriggerScheduled)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, m.ActiveSymbols())
	assert.Equal(t, TriggerScheduled, event.Trigger)
	assert.Equal(t, 10000.0, m.WeeklyStartEquity())
	assert.Empty(t, m.WatchlistSymbols())
}

func TestApplyRotationRejectsNonMonotonicTimestamp(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(universeAt(monday(1), []string{"AAPL"}, nil, nil), nil, 0, "")
	require.NoError(t, err)

	_, err = m.ApplyRotation(universeAt(monday(0), []string{"MSFT"}, nil, nil), nil, 0, "")
	assert.ErrorIs(t, err, errors.ErrNonMonotonicRotation)

	// Equal timestamps are rejected too.
	_, err = m.ApplyRotation(universeAt(monday(1), []string{"MSFT"}, nil, nil), nil, 0, "")
	assert.ErrorIs(t, err, errors.ErrNonMonotonicRotation)
}

func TestApplyRotationWatchlistsHeldRotationOuts(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(
		universeAt(monday(0), []string{"AAPL", "TSLA"}, nil, nil), nil, 0, "")
	require.NoError(t, err)

	// TSLA rotates out while held, AAPL rotates out flat.
	event, err := m.ApplyRotation(
		universeAt(monday(1), []string{"MSFT"}, []string{"MSFT"}, []string{"AAPL", "TSLA"}),
		[]string{"TSLA"}, 0, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"TSLA"}, event.Watchlisted)
	assert.Equal(t, []string{"TSLA"}, m.WatchlistSymbols())

	entry, ok := m.WatchlistEntry("TSLA")
	require.True(t, ok)
	// The deadline lands on the configured weekday and hour, strictly
	// after the rotation timestamp.
	assert.Equal(t, time.Weekday(DefaultConfig().ForceCloseDay), entry.Deadline.Weekday())
	assert.Equal(t, DefaultConfig().ForceCloseHour, entry.Deadline.Hour())
	assert.True(t, entry.Deadline.After(monday(1)))
}

func TestApplyRotationReturningSymbolLeavesWatchlist(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(universeAt(monday(0), []string{"TSLA"}, nil, nil), nil, 0, "")
	require.NoError(t, err)
	_, err = m.ApplyRotation(
		universeAt(monday(1), []string{"MSFT"}, nil, []string{"TSLA"}),
		[]string{"TSLA"}, 0, "")
	require.NoError(t, err)
	require.Equal(t, []string{"TSLA"}, m.WatchlistSymbols())

	// TSLA re-enters the universe: its watchlist entry is dropped.
	_, err = m.ApplyRotation(
		universeAt(monday(2), []string{"MSFT", "TSLA"}, []string{"TSLA"}, nil),
		[]string{"TSLA"}, 0, "")
	require.NoError(t, err)
	assert.Empty(t, m.WatchlistSymbols())
}

func TestFilterSignals(t *testing.T) {
	m := newTestManager()
	_, err := m.ApplyRotation(universeAt(monday(0), []string{"AAPL"}, nil, nil), nil, 10000, "")
	require.NoError(t, err)

	long := models.Signal{Symbol: "AAPL", Direction: models.SignalLong}
	inactive := models.Signal{Symbol: "GME", Direction: models.SignalLong}
	closeSig := models.Signal{Symbol: "GME", Direction: models.SignalClose}

	out := m.FilterSignals([]models.Signal{long, inactive, closeSig})
	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Symbol)
	assert.Equal(t, models.SignalClose, out[1].Direction)

	// After a halt only close signals pass.
	require.True(t, m.CheckWeeklyLossLimit(9000))
	out = m.FilterSignals([]models.Signal{long, closeSig})
	require.Len(t, out, 1)
	assert.Equal(t, models.SignalClose, out[0].Direction)
}

func TestCheckWeeklyLossLimit(t *testing.T) {
	m := newTestManager()
	_, err := m.ApplyRotation(universeAt(monday(0), []string{"AAPL"}, nil, nil), nil, 3000, "")
	require.NoError(t, err)

	// 3000 -> 2900 is a 3.3% drawdown, under the 5% limit.
	assert.False(t, m.CheckWeeklyLossLimit(2900))
	assert.False(t, m.IsHalted())

	// 3000 -> 2840 is 5.33%, breaching the limit.
	assert.True(t, m.CheckWeeklyLossLimit(2840))
	assert.True(t, m.IsHalted())

	// The next rotation clears the halt and resets the baseline.
	_, err = m.ApplyRotation(universeAt(monday(1), []string{"AAPL"}, nil, nil), nil, 2840, "")
	require.NoError(t, err)
	assert.False(t, m.IsHalted())
	assert.Equal(t, 2840.0, m.WeeklyStartEquity())
}

func TestCheckWeeklyLossLimitWithoutBaseline(t *testing.T) {
	m := newTestManager()
	assert.False(t, m.CheckWeeklyLossLimit(0))
	assert.False(t, m.CheckWeeklyLossLimit(100000))
}

func TestForceCloseSymbols(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(universeAt(monday(0), []string{"TSLA", "NVDA"}, nil, nil), nil, 0, "")
	require.NoError(t, err)
	_, err = m.ApplyRotation(
		universeAt(monday(1), []string{"MSFT"}, nil, []string{"TSLA", "NVDA"}),
		[]string{"TSLA", "NVDA"}, 0, "")
	require.NoError(t, err)

	entry, ok := m.WatchlistEntry("TSLA")
	require.True(t, ok)

	// Before the deadline nothing is flagged.
	assert.Empty(t, m.ForceCloseSymbols(entry.Deadline.Add(-time.Hour), []string{"TSLA", "NVDA"}))

	// At the deadline both expire together.
	assert.Equal(t, []string{"NVDA", "TSLA"}, m.ForceCloseSymbols(entry.Deadline, []string{"TSLA", "NVDA"}))
}

func TestForceCloseSymbolsWhenHalted(t *testing.T) {
	m := newTestManager()
	_, err := m.ApplyRotation(universeAt(monday(0), []string{"AAPL"}, nil, nil), nil, 3000, "")
	require.NoError(t, err)
	require.True(t, m.CheckWeeklyLossLimit(2500))

	// Halted: every held position is flagged regardless of watchlist state.
	assert.Equal(t, []string{"AAPL", "MSFT"}, m.ForceCloseSymbols(monday(0), []string{"MSFT", "AAPL"}))
}

func TestForceCloseSymbolsEarningsWindow(t *testing.T) {
	calendar := earnings.NewMemoryCalendar()
	calendar.SetReportDates("AAPL", []time.Time{monday(0).AddDate(0, 0, 2)}) // Wednesday report

	m := NewManager(DefaultConfig(), calendar, nil, zerolog.Nop())
	_, err := m.ApplyRotation(universeAt(monday(0), []string{"AAPL"}, nil, nil), nil, 0, "")
	require.NoError(t, err)

	// Monday is within three business days of a Wednesday report.
	assert.Equal(t, []string{"AAPL"}, m.ForceCloseSymbols(monday(0), []string{"AAPL"}))
}

func TestOnPositionClosedIdempotent(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(universeAt(monday(0), []string{"TSLA"}, nil, nil), nil, 0, "")
	require.NoError(t, err)
	_, err = m.ApplyRotation(
		universeAt(monday(1), []string{"MSFT"}, nil, []string{"TSLA"}),
		[]string{"TSLA"}, 0, "")
	require.NoError(t, err)
	require.Equal(t, []string{"TSLA"}, m.WatchlistSymbols())

	m.OnPositionClosed("TSLA")
	assert.Empty(t, m.WatchlistSymbols())

	// Repeat and unknown-symbol calls are no-ops.
	m.OnPositionClosed("TSLA")
	m.OnPositionClosed("AMZN")
	assert.Empty(t, m.WatchlistSymbols())
}

func TestHistoryAppendsEvents(t *testing.T) {
	m := newTestManager()

	_, err := m.ApplyRotation(universeAt(monday(0), []string{"AAPL"}, nil, nil), nil, 0, TriggerScheduled)
	require.NoError(t, err)
	_, err = m.ApplyRotation(universeAt(monday(1), []string{"MSFT"}, nil, nil), nil, 0, TriggerRegimeChange)
	require.NoError(t, err)

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, TriggerScheduled, history[0].Trigger)
	assert.Equal(t, TriggerRegimeChange, history[1].Trigger)
}
