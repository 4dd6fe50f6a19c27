package universe

import (
	"swing-trader/internal/models"
)

// HardFilterConfig holds the liquidity and tradability thresholds a
// candidate must clear before scoring. All thresholds are configuration.
type HardFilterConfig struct {
	MinDollarVolume float64 `mapstructure:"min_dollar_volume"`
	MinVolume       float64 `mapstructure:"min_volume"`
	MinPrice        float64 `mapstructure:"min_price"`
	MaxPrice        float64 `mapstructure:"max_price"`
	MinATRRatio     float64 `mapstructure:"min_atr_ratio"`
	MaxATRRatio     float64 `mapstructure:"max_atr_ratio"`
	MaxGapFrequency float64 `mapstructure:"max_gap_frequency"`
}

// DefaultHardFilterConfig returns the production filter thresholds.
func DefaultHardFilterConfig() HardFilterConfig {
	return HardFilterConfig{
		MinDollarVolume: 50_000_000,
		MinVolume:       1_000_000,
		MinPrice:        20,
		MaxPrice:        200,
		MinATRRatio:     0.01,
		MaxATRRatio:     0.04,
		MaxGapFrequency: 0.15,
	}
}

// HardFilter applies the non-negotiable candidate thresholds.
type HardFilter struct {
	config HardFilterConfig
}

// NewHardFilter creates a hard filter.
func NewHardFilter(config HardFilterConfig) *HardFilter {
	return &HardFilter{config: config}
}

// Passes reports whether the candidate clears every threshold.
func (f *HardFilter) Passes(c models.StockCandidate) bool {
	switch {
	case c.AvgDollarVolume < f.config.MinDollarVolume:
		return false
	case c.AvgVolume < f.config.MinVolume:
		return false
	case c.Close < f.config.MinPrice || c.Close > f.config.MaxPrice:
		return false
	case c.ATRRatio < f.config.MinATRRatio || c.ATRRatio > f.config.MaxATRRatio:
		return false
	case c.GapFrequency > f.config.MaxGapFrequency:
		return false
	}
	return true
}

// Apply returns the candidates that pass the filter.
func (f *HardFilter) Apply(candidates []models.StockCandidate) []models.StockCandidate {
	out := make([]models.StockCandidate, 0, len(candidates))
	for _, c := range candidates {
		if f.Passes(c) {
			out = append(out, c)
		}
	}
	return out
}
