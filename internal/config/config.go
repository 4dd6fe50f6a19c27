// Package config provides configuration management for the trading core.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"swing-trader/internal/allocation"
	"swing-trader/internal/rotation"
	"swing-trader/internal/universe"
)

// Config holds all application configuration.
type Config struct {
	Risk     allocation.Config      `mapstructure:"risk"`
	Rotation rotation.Config        `mapstructure:"rotation"`
	Trigger  rotation.TriggerConfig `mapstructure:"trigger"`
	Universe UniverseConfig         `mapstructure:"universe"`
	Regime   RegimeConfig           `mapstructure:"regime"`
	Schedule ScheduleConfig         `mapstructure:"schedule"`
	Weights  WeightsFile            `mapstructure:"-"` // loaded separately from weights.yaml
}

// UniverseConfig groups the selection pipeline configuration.
type UniverseConfig struct {
	Filter    universe.HardFilterConfig `mapstructure:"filter"`
	Optimizer universe.OptimizerConfig  `mapstructure:"optimizer"`
	Selector  universe.SelectorConfig   `mapstructure:"selector"`
	// Benchmark is the index proxy the daily regime check classifies.
	Benchmark string `mapstructure:"benchmark"`
	// Scan lists the symbols the weekly selection considers.
	Scan []ScanSymbol `mapstructure:"scan"`
}

// ScanSymbol is one entry of the weekly selection scan list.
type ScanSymbol struct {
	Symbol string `mapstructure:"symbol"`
	Sector string `mapstructure:"sector"`
}

// ScheduleConfig holds the daemon cron expressions, evaluated in the US
// market timezone.
type ScheduleConfig struct {
	WeeklyCron     string `mapstructure:"weekly_cron"`
	DailyCron      string `mapstructure:"daily_cron"`
	ForceCloseCron string `mapstructure:"force_close_cron"`
}

// RegimeConfig groups the regime tracking configuration. Classification
// thresholds and the weight table live in weights.yaml.
type RegimeConfig struct {
	ConfirmationBars int `mapstructure:"confirmation_bars"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/swing-trader"
	}
	return filepath.Join(home, ".config", "swing-trader")
}

// Load loads configuration from the specified directory. If configDir is
// empty, uses the default config directory. Missing files are created from
// templates.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := defaults()

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	weights, err := LoadWeightsFile(filepath.Join(configDir, "weights.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading weights.yaml: %w", err)
	}
	cfg.Weights = weights

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Risk:     allocation.DefaultConfig(),
		Rotation: rotation.DefaultConfig(),
		Trigger:  rotation.DefaultTriggerConfig(),
		Universe: UniverseConfig{
			Filter:    universe.DefaultHardFilterConfig(),
			Optimizer: universe.DefaultOptimizerConfig(),
			Selector:  universe.DefaultSelectorConfig(),
			Benchmark: "SPY",
		},
		Regime: RegimeConfig{ConfirmationBars: 3},
		Schedule: ScheduleConfig{
			WeeklyCron:     "0 16 * * 1",
			DailyCron:      "30 16 * * 1-5",
			ForceCloseCron: "0 15 * * 1-5",
		},
	}
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template and keep defaults
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWING_WEEKLY_LOSS_LIMIT_PCT"); v != "" {
		var pct float64
		if _, err := fmt.Sscanf(v, "%f", &pct); err == nil && pct > 0 {
			cfg.Rotation.WeeklyLossLimitPct = pct
		}
	}
	if v := os.Getenv("SWING_TRIGGER_DISABLED"); v == "1" || v == "true" {
		cfg.Trigger.Enabled = false
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Rotation.ForceCloseDay < 0 || c.Rotation.ForceCloseDay > 6 {
		return fmt.Errorf("rotation.force_close_day must be between 0 and 6")
	}
	if c.Rotation.ForceCloseHour < 0 || c.Rotation.ForceCloseHour > 23 {
		return fmt.Errorf("rotation.force_close_hour must be between 0 and 23")
	}
	if c.Rotation.WeeklyLossLimitPct <= 0 || c.Rotation.WeeklyLossLimitPct >= 1 {
		return fmt.Errorf("rotation.weekly_loss_limit_pct must be in (0, 1)")
	}
	if c.Risk.RiskPerTradePct <= 0 || c.Risk.RiskPerTradePct >= 1 {
		return fmt.Errorf("risk.risk_per_trade_pct must be in (0, 1)")
	}
	if c.Risk.ShortSizeRatio <= 0 || c.Risk.ShortSizeRatio > 1 {
		return fmt.Errorf("risk.short_size_ratio must be in (0, 1]")
	}
	blend := c.Universe.Selector.ProxyWeight + c.Universe.Selector.BacktestWeight
	if blend <= 0 {
		return fmt.Errorf("universe.selector blend weights must be positive")
	}
	if c.Universe.Optimizer.TargetSize <= 0 {
		return fmt.Errorf("universe.optimizer.target_size must be positive")
	}
	if c.Universe.Optimizer.MinSectors <= 0 || c.Universe.Optimizer.MaxPerSector <= 0 {
		return fmt.Errorf("universe.optimizer sector bounds must be positive")
	}
	if c.Regime.ConfirmationBars <= 0 {
		return fmt.Errorf("regime.confirmation_bars must be positive")
	}
	if c.Trigger.CooldownHours < 0 {
		return fmt.Errorf("trigger.cooldown_hours must be non-negative")
	}
	if c.Universe.Benchmark == "" {
		return fmt.Errorf("universe.benchmark must be set")
	}
	if c.Schedule.WeeklyCron == "" || c.Schedule.DailyCron == "" || c.Schedule.ForceCloseCron == "" {
		return fmt.Errorf("schedule cron expressions must be set")
	}
	return nil
}
