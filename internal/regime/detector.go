package regime

// DetectorConfig holds the classification thresholds.
type DetectorConfig struct {
	TrendADX        float64 `yaml:"trend_adx"`         // default 25
	RangeADX        float64 `yaml:"range_adx"`         // default 20
	WideBandRatio   float64 `yaml:"wide_band_ratio"`   // default 1.3
	NarrowBandRatio float64 `yaml:"narrow_band_ratio"` // default 0.8
	HighVolATRRatio float64 `yaml:"high_vol_atr"`      // default 0.03
}

// DefaultDetectorConfig returns the default classification thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		TrendADX:        25.0,
		RangeADX:        20.0,
		WideBandRatio:   1.3,
		NarrowBandRatio: 0.8,
		HighVolATRRatio: 0.03,
	}
}

// Detector classifies indicator readings into a market regime and owns the
// per-regime strategy weight table. Classification is pure and safe for
// concurrent use; the detector holds no mutable state.
type Detector struct {
	config  DetectorConfig
	weights WeightTable
}

// NewDetector creates a detector with default thresholds and the supplied
// weight table. The table must already be validated against the strategy
// registry (see ValidateWeightTable).
func NewDetector(weights WeightTable) *Detector {
	return NewDetectorWithConfig(DefaultDetectorConfig(), weights)
}

// NewDetectorWithConfig creates a detector with custom thresholds.
func NewDetectorWithConfig(config DetectorConfig, weights WeightTable) *Detector {
	return &Detector{
		config:  config,
		weights: weights.clone(),
	}
}

// Classify maps indicator readings to a regime. Rules are evaluated in
// order; the first match wins. A zero band-width average resolves to
// Uncertain rather than an error.
func (d *Detector) Classify(adx, bbWidth, bbWidthAvg, atrRatio float64) Regime {
	if bbWidthAvg == 0 {
		return Uncertain
	}
	widthRatio := bbWidth / bbWidthAvg

	switch {
	case adx >= d.config.TrendADX && widthRatio >= d.config.WideBandRatio:
		return Trend
	case adx < d.config.RangeADX && widthRatio <= d.config.NarrowBandRatio:
		return Ranging
	case adx < d.config.RangeADX && widthRatio >= d.config.WideBandRatio && atrRatio > d.config.HighVolATRRatio:
		return HighVolatility
	default:
		return Uncertain
	}
}

// Weights returns a copy of the strategy weight map for the given regime.
// An unknown regime yields an empty map.
func (d *Detector) Weights(r Regime) map[string]float64 {
	src, ok := d.weights[r]
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(src))
	for strategy, w := range src {
		out[strategy] = w
	}
	return out
}

// Weight returns the weight for a single strategy under the given regime,
// 0 if the strategy or regime is unknown.
func (d *Detector) Weight(r Regime, strategy string) float64 {
	return d.weights[r][strategy]
}

// WeightTable returns a deep copy of the full table.
func (d *Detector) WeightTable() WeightTable {
	return d.weights.clone()
}
