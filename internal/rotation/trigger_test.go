package rotation

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swing-trader/internal/regime"
)

func transition(from, to regime.Regime) *regime.Transition {
	return &regime.Transition{Previous: from, Current: to, Timestamp: monday(0)}
}

func newTestTrigger(cfg TriggerConfig) *EventTrigger {
	t := NewEventTrigger(cfg, zerolog.Nop())
	t.now = func() time.Time { return monday(0) }
	return t
}

func TestTriggerPatternMatching(t *testing.T) {
	trigger := newTestTrigger(DefaultTriggerConfig())

	tests := []struct {
		name string
		tr   *regime.Transition
		want bool
	}{
		{"trend into high vol", transition(regime.Trend, regime.HighVolatility), true},
		{"anything into high vol", transition(regime.Ranging, regime.HighVolatility), true},
		{"leaving high vol", transition(regime.HighVolatility, regime.Trend), true},
		{"trend to ranging", transition(regime.Trend, regime.Ranging), false},
		{"ranging to uncertain", transition(regime.Ranging, regime.Uncertain), false},
		{"nil transition", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := trigger.ShouldTrigger(tt.tr, nil)
			assert.Equal(t, tt.want, got, reason)
		})
	}
}

func TestTriggerVIXSpike(t *testing.T) {
	trigger := newTestTrigger(DefaultTriggerConfig())

	calm := 25.0
	fired, reason := trigger.ShouldTrigger(nil, &calm)
	assert.False(t, fired, reason)

	spike := 30.0
	fired, reason = trigger.ShouldTrigger(nil, &spike)
	assert.True(t, fired)
	assert.True(t, strings.HasPrefix(reason, "vix_spike:"))
}

func TestTriggerCooldown(t *testing.T) {
	trigger := newTestTrigger(DefaultTriggerConfig())

	fired, _ := trigger.ShouldTrigger(transition(regime.Trend, regime.HighVolatility), nil)
	require.True(t, fired)
	trigger.MarkTriggered()

	// Inside the 48h cooldown nothing fires, not even a VIX spike.
	trigger.now = func() time.Time { return monday(0).Add(47 * time.Hour) }
	spike := 45.0
	fired, reason := trigger.ShouldTrigger(transition(regime.Trend, regime.HighVolatility), &spike)
	assert.False(t, fired)
	assert.True(t, strings.HasPrefix(reason, "cooldown_active_"))

	// Once the cooldown elapses the trigger is live again.
	trigger.now = func() time.Time { return monday(0).Add(49 * time.Hour) }
	fired, _ = trigger.ShouldTrigger(transition(regime.Trend, regime.HighVolatility), nil)
	assert.True(t, fired)
}

func TestTriggerDisabled(t *testing.T) {
	cfg := DefaultTriggerConfig()
	cfg.Enabled = false
	trigger := newTestTrigger(cfg)

	spike := 50.0
	fired, reason := trigger.ShouldTrigger(transition(regime.Trend, regime.HighVolatility), &spike)
	assert.False(t, fired)
	assert.Equal(t, "disabled", reason)
}

func TestTriggerSkipsMalformedPatterns(t *testing.T) {
	cfg := DefaultTriggerConfig()
	cfg.Patterns = []string{"not a pattern", "TREND->NOWHERE", "TREND->RANGING"}
	trigger := newTestTrigger(cfg)

	// Only the well-formed pattern survives parsing.
	require.Len(t, trigger.patterns, 1)

	fired, _ := trigger.ShouldTrigger(transition(regime.Trend, regime.Ranging), nil)
	assert.True(t, fired)
	fired, _ = trigger.ShouldTrigger(transition(regime.Trend, regime.HighVolatility), nil)
	assert.False(t, fired)
}
