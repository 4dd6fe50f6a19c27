package regime

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swing-trader/internal/metrics"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, 2, 16, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestTrackerConfirmsAfterThreeBars(t *testing.T) {
	tr := NewTracker(3, nil, zerolog.Nop())
	require.Equal(t, Uncertain, tr.Confirmed())

	assert.Nil(t, tr.Update(Trend, day(0)))
	assert.Nil(t, tr.Update(Trend, day(1)))
	assert.Equal(t, Uncertain, tr.Confirmed())

	transition := tr.Update(Trend, day(2))
	require.NotNil(t, transition)
	assert.Equal(t, Uncertain, transition.Previous)
	assert.Equal(t, Trend, transition.Current)
	assert.Equal(t, 3, transition.BarsInNewRegime)
	assert.Equal(t, day(2), transition.Timestamp)
	assert.Equal(t, Trend, tr.Confirmed())
}

func TestTrackerFlickerResetsStreak(t *testing.T) {
	tr := NewTracker(3, nil, zerolog.Nop())

	assert.Nil(t, tr.Update(Trend, day(0)))
	assert.Nil(t, tr.Update(Trend, day(1)))
	// A different candidate resets the count to 1, it does not accumulate.
	assert.Nil(t, tr.Update(Ranging, day(2)))
	pending, count := tr.Pending()
	assert.Equal(t, Ranging, pending)
	assert.Equal(t, 1, count)

	assert.Nil(t, tr.Update(Trend, day(3)))
	assert.Nil(t, tr.Update(Trend, day(4)))
	require.NotNil(t, tr.Update(Trend, day(5)))
	assert.Equal(t, Trend, tr.Confirmed())
}

func TestTrackerConfirmedRegimeClearsPending(t *testing.T) {
	tr := NewTracker(3, nil, zerolog.Nop())

	assert.Nil(t, tr.Update(Trend, day(0)))
	assert.Nil(t, tr.Update(Trend, day(1)))
	// Observing the confirmed regime again wipes the candidate streak.
	assert.Nil(t, tr.Update(Uncertain, day(2)))
	pending, count := tr.Pending()
	assert.Equal(t, Regime(""), pending)
	assert.Zero(t, count)

	assert.Nil(t, tr.Update(Trend, day(3)))
	assert.Nil(t, tr.Update(Trend, day(4)))
	assert.NotNil(t, tr.Update(Trend, day(5)))
}

func TestTrackerHistory(t *testing.T) {
	tr := NewTracker(2, nil, zerolog.Nop())

	require.Nil(t, tr.Update(Trend, day(0)))
	require.NotNil(t, tr.Update(Trend, day(1)))
	require.Nil(t, tr.Update(HighVolatility, day(2)))
	require.NotNil(t, tr.Update(HighVolatility, day(3)))

	history := tr.History()
	require.Len(t, history, 2)
	assert.Equal(t, Uncertain, history[0].Previous)
	assert.Equal(t, Trend, history[0].Current)
	assert.Equal(t, Trend, history[1].Previous)
	assert.Equal(t, HighVolatility, history[1].Current)

	// History is a copy.
	history[0].Current = Ranging
	assert.Equal(t, Trend, tr.History()[0].Current)
}

func TestTrackerDefaultsConfirmationBars(t *testing.T) {
	tr := NewTracker(0, nil, zerolog.Nop())
	assert.Nil(t, tr.Update(Trend, day(0)))
	assert.Nil(t, tr.Update(Trend, day(1)))
	assert.NotNil(t, tr.Update(Trend, day(2)))
}

func TestTrackerRecordsConfirmedTransitions(t *testing.T) {
	registry := prometheus.NewRegistry()
	tr := NewTracker(2, metrics.NewRecorder(registry), zerolog.Nop())

	assert.Nil(t, tr.Update(Trend, day(0)))
	require.NotNil(t, tr.Update(Trend, day(1)))

	families, err := registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() != "regime_transitions_total" {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		sample := family.GetMetric()[0]
		assert.Equal(t, 1.0, sample.GetCounter().GetValue())
		labels := make(map[string]string, 2)
		for _, pair := range sample.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		assert.Equal(t, string(Uncertain), labels["from"])
		assert.Equal(t, string(Trend), labels["to"])
		found = true
	}
	assert.True(t, found, "regime_transitions_total not gathered")

	// An unconfirmed flicker must not count.
	assert.Nil(t, tr.Update(Ranging, day(2)))
	families, err = registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == "regime_transitions_total" {
			require.Len(t, family.GetMetric(), 1)
			assert.Equal(t, 1.0, family.GetMetric()[0].GetCounter().GetValue())
		}
	}
}
