package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Swing trading core configuration
# Edit the values below, then re-run the command.

[risk]
# Minimum dollar value for any position
min_position_value = 200.0
# Fraction of equity risked per trade
risk_per_trade_pct = 0.02
# Short position size as a fraction of the equivalent long size
short_size_ratio = 0.65
# Maximum concurrent positions per strategy
max_positions_per_strategy = 2
# Minimum strategy weight required to open a new position
min_entry_weight = 0.05

[rotation]
# Force-close deadline: weekday (0 = Sunday .. 6 = Saturday) and hour
force_close_day = 5
force_close_hour = 15
# Halt new entries when the weekly drawdown reaches this fraction
weekly_loss_limit_pct = 0.05

[trigger]
# Event-driven rotation on regime transitions
enabled = true
# Minimum hours between event-driven rotations
cooldown_hours = 48
# VIX level that forces a rotation regardless of transition pattern
vix_spike_trigger = 30.0
# Transition patterns ("FROM->TO", "*" matches any regime)
patterns = ["TREND->HIGH_VOLATILITY", "*->HIGH_VOLATILITY", "HIGH_VOLATILITY->*"]

[universe]
# Index proxy classified by the daily regime check
benchmark = "SPY"
# Scan list for weekly selection, e.g.
# [[universe.scan]]
# symbol = "AAPL"
# sector = "Technology"

[universe.filter]
min_dollar_volume = 50000000.0
min_volume = 1000000.0
min_price = 20.0
max_price = 200.0
min_atr_ratio = 0.01
max_atr_ratio = 0.04
max_gap_frequency = 0.15

[universe.optimizer]
target_size = 10
max_per_sector = 4
max_rotation = 3
min_sectors = 4

[universe.selector]
# Final score blend: proxy_weight * proxy + backtest_weight * backtest
proxy_weight = 0.5
backtest_weight = 0.5

[regime]
# Consecutive bars a new classification must hold before it is confirmed
confirmation_bars = 3

[schedule]
# Daemon cron expressions, evaluated in the US market timezone
weekly_cron = "0 16 * * 1"
daily_cron = "30 16 * * 1-5"
force_close_cron = "0 15 * * 1-5"
`

const weightsTemplate = `# Regime classification thresholds and strategy weight tables.
# Weights per regime must sum to 1.00, except UNCERTAIN which sums
# to 0.90 (the remainder is held as a cash buffer).

thresholds:
  trend_adx: 25
  range_adx: 20
  wide_band_ratio: 1.3
  narrow_band_ratio: 0.8
  high_vol_atr: 0.03

weights:
  TREND:
    rsi_mean_reversion: 0.15
    adx_pullback: 0.30
    bb_squeeze: 0.20
    overbought_short: 0.10
    regime_momentum: 0.25
  RANGING:
    rsi_mean_reversion: 0.35
    adx_pullback: 0.10
    bb_squeeze: 0.25
    overbought_short: 0.20
    regime_momentum: 0.10
  HIGH_VOLATILITY:
    rsi_mean_reversion: 0.20
    adx_pullback: 0.10
    bb_squeeze: 0.30
    overbought_short: 0.25
    regime_momentum: 0.15
  UNCERTAIN:
    rsi_mean_reversion: 0.20
    adx_pullback: 0.15
    bb_squeeze: 0.20
    overbought_short: 0.15
    regime_momentum: 0.20
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateWeights(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(weightsTemplate), 0644); err != nil {
		return fmt.Errorf("writing weights template: %w", err)
	}

	return fmt.Errorf("weights file not found, created template at %s", path)
}
