package rotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/regime"
)

// TriggerConfig configures the out-of-schedule rotation trigger.
type TriggerConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	CooldownHours   int      `mapstructure:"cooldown_hours"`
	VIXSpikeTrigger float64  `mapstructure:"vix_spike_trigger"`
	Patterns        []string `mapstructure:"patterns"` // "FROM->TO", "*" wildcards
}

// DefaultTriggerConfig returns the production trigger parameters.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		Enabled:         true,
		CooldownHours:   48,
		VIXSpikeTrigger: 30.0,
		Patterns: []string{
			"TREND->HIGH_VOLATILITY",
			"*->HIGH_VOLATILITY",
			"HIGH_VOLATILITY->*",
		},
	}
}

// transitionPattern is a "FROM->TO" trigger parsed once at load time. A nil
// side is a wildcard.
type transitionPattern struct {
	from *regime.Regime
	to   *regime.Regime
}

func (p transitionPattern) matches(t regime.Transition) bool {
	if p.from != nil && *p.from != t.Previous {
		return false
	}
	if p.to != nil && *p.to != t.Current {
		return false
	}
	return true
}

// EventTrigger decides whether a confirmed regime transition or a VIX
// spike warrants requesting an out-of-schedule universe recomputation. A
// cooldown prevents back-to-back recomputations.
type EventTrigger struct {
	config        TriggerConfig
	patterns      []transitionPattern
	patternLabels []string
	lastTriggered time.Time
	logger        zerolog.Logger
	now           func() time.Time
}

// NewEventTrigger parses the configured patterns once. Malformed patterns
// are logged and skipped, never fatal.
func NewEventTrigger(config TriggerConfig, logger zerolog.Logger) *EventTrigger {
	t := &EventTrigger{
		config: config,
		logger: logger,
		now:    time.Now,
	}
	for _, raw := range config.Patterns {
		pattern, err := parsePattern(raw)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", raw).Msg("Skipping malformed rotation trigger pattern")
			continue
		}
		t.patterns = append(t.patterns, pattern)
		t.patternLabels = append(t.patternLabels, raw)
	}
	return t
}

func parsePattern(raw string) (transitionPattern, error) {
	parts := strings.Split(raw, "->")
	if len(parts) != 2 {
		return transitionPattern{}, fmt.Errorf("pattern %q is not of the form FROM->TO", raw)
	}
	from, err := parseSide(strings.TrimSpace(parts[0]))
	if err != nil {
		return transitionPattern{}, err
	}
	to, err := parseSide(strings.TrimSpace(parts[1]))
	if err != nil {
		return transitionPattern{}, err
	}
	return transitionPattern{from: from, to: to}, nil
}

func parseSide(s string) (*regime.Regime, error) {
	if s == "*" {
		return nil, nil
	}
	r := regime.Regime(s)
	if !r.Valid() {
		return nil, fmt.Errorf("unknown regime %q", s)
	}
	return &r, nil
}

// ShouldTrigger evaluates a (possibly nil) transition and a (possibly nil)
// VIX reading against the trigger rules. It returns whether to request a
// rotation and a human-readable reason either way.
func (t *EventTrigger) ShouldTrigger(transition *regime.Transition, vixValue *float64) (bool, string) {
	if !t.config.Enabled {
		return false, "disabled"
	}

	if !t.lastTriggered.IsZero() {
		cooldown := time.Duration(t.config.CooldownHours) * time.Hour
		elapsed := t.now().Sub(t.lastTriggered)
		if elapsed < cooldown {
			remaining := cooldown - elapsed
			return false, fmt.Sprintf("cooldown_active_%s", remaining.Round(time.Minute))
		}
	}

	if transition != nil {
		for i, pattern := range t.patterns {
			if pattern.matches(*transition) {
				return true, fmt.Sprintf("regime_change:%s->%s (pattern %s)",
					transition.Previous, transition.Current, t.patternLabels[i])
			}
		}
	}

	if vixValue != nil && *vixValue >= t.config.VIXSpikeTrigger {
		return true, fmt.Sprintf("vix_spike:%.1f", *vixValue)
	}

	return false, "no_trigger"
}

// MarkTriggered starts the cooldown window. Call it after a triggered
// rotation request is actually dispatched.
func (t *EventTrigger) MarkTriggered() {
	t.lastTriggered = t.now()
	t.logger.Debug().Time("at", t.lastTriggered).Msg("Rotation trigger cooldown started")
}
