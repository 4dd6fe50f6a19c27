package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swing-trader/internal/models"
	"swing-trader/internal/regime"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), regime.NewDetector(regime.DefaultWeightTable()))
}

func TestPositionSize(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		req  SizeRequest
		want int
	}{
		{
			// weight cap: 3000 * 0.30 = 900 -> 9 shares at $100,
			// risk cap: 3000 * 0.02 / (2*3) = 10 shares, weight cap binds
			name: "risk cap looser than weight cap",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 100, Equity: 3000,
				Regime: regime.Trend, ATR: 3, Direction: models.SignalLong,
			},
			want: 9,
		},
		{
			// risk cap: 10000 * 0.02 / (2*8) = 12 shares, tighter than
			// weight cap 10000 * 0.30 / 100 = 30
			name: "risk cap binds",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 100, Equity: 10000,
				Regime: regime.Trend, ATR: 8, Direction: models.SignalLong,
			},
			want: 12,
		},
		{
			// no ATR: weight cap alone
			name: "no atr skips risk cap",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 100, Equity: 10000,
				Regime: regime.Trend, Direction: models.SignalLong,
			},
			want: 30,
		},
		{
			// short haircut: floor(30 * 0.65) = 19
			name: "short entries are haircut",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 100, Equity: 10000,
				Regime: regime.Trend, Direction: models.SignalShort,
			},
			want: 19,
		},
		{
			// allocation below minimum position value
			name: "allocation below minimum",
			req: SizeRequest{
				Strategy: regime.StrategyOverboughtShort, Price: 100, Equity: 1500,
				Regime: regime.Trend, Direction: models.SignalLong,
			},
			want: 0,
		},
		{
			// final value below minimum after flooring
			name: "final value below minimum",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 180, Equity: 1000,
				Regime: regime.Trend, Direction: models.SignalLong,
			},
			want: 0,
		},
		{
			name: "zero price",
			req: SizeRequest{
				Strategy: regime.StrategyADXPullback, Price: 0, Equity: 10000,
				Regime: regime.Trend, Direction: models.SignalLong,
			},
			want: 0,
		},
		{
			name: "unknown strategy gets no capital",
			req: SizeRequest{
				Strategy: "no_such_strategy", Price: 100, Equity: 10000,
				Regime: regime.Trend, Direction: models.SignalLong,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.PositionSize(tt.req))
		})
	}
}

func TestShouldEnter(t *testing.T) {
	e := newTestEngine()

	assert.True(t, e.ShouldEnter(regime.StrategyADXPullback, regime.Trend, 0))
	assert.True(t, e.ShouldEnter(regime.StrategyADXPullback, regime.Trend, 1))

	// per-strategy cap
	assert.False(t, e.ShouldEnter(regime.StrategyADXPullback, regime.Trend, 2))

	// unknown strategy has zero weight, below min entry weight
	assert.False(t, e.ShouldEnter("no_such_strategy", regime.Trend, 0))
}
