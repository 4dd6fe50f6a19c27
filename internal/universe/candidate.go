// Package universe implements the weekly symbol-selection pipeline: metric
// construction, hard filtering, proxy and backtest scoring, and constrained
// portfolio optimization.
package universe

import (
	"swing-trader/internal/analysis/indicators"
	"swing-trader/internal/errors"
	"swing-trader/internal/models"
)

const (
	// MinBars is the bar history required to build a candidate.
	MinBars = 60

	volumeLookback = 20
	adxPeriod      = 14
	atrPeriod      = 14
	bbPeriod       = 20
	bbStdDev       = 2.0

	// gapThreshold marks an open more than 2% away from the prior close.
	gapThreshold = 0.02

	trendADXLevel = 25.0
	rangeADXLevel = 20.0
)

// SymbolInfo identifies a candidate symbol and its sector.
type SymbolInfo struct {
	Symbol string
	Sector string
}

// BuildCandidate computes the per-symbol selection metrics from a bar
// history. The candidate is immutable once built. Fewer than MinBars
// candles yields ErrInsufficientData.
func BuildCandidate(info SymbolInfo, candles []models.Candle) (models.StockCandidate, error) {
	if len(candles) < MinBars {
		return models.StockCandidate{}, errors.NewDataError("candles", info.Symbol,
			"bar history too short for candidate construction", errors.ErrInsufficientData)
	}

	n := len(candles)
	lastClose := candles[n-1].Close

	var avgVolume, avgDollarVolume float64
	for _, c := range candles[n-volumeLookback:] {
		avgVolume += float64(c.Volume)
		avgDollarVolume += float64(c.Volume) * c.Close
	}
	avgVolume /= volumeLookback
	avgDollarVolume /= volumeLookback

	atrRatio := computeATRRatio(candles, lastClose)
	gapFreq := computeGapFrequency(candles)
	trendPct, rangePct := computeADXShares(candles)
	volCycle := computeVolCycle(candles)

	return models.StockCandidate{
		Symbol:          info.Symbol,
		Sector:          info.Sector,
		Close:           lastClose,
		AvgVolume:       avgVolume,
		AvgDollarVolume: avgDollarVolume,
		ATRRatio:        atrRatio,
		GapFrequency:    gapFreq,
		TrendPct:        trendPct,
		RangePct:        rangePct,
		VolCycle:        volCycle,
	}, nil
}

func computeATRRatio(candles []models.Candle, lastClose float64) float64 {
	if lastClose <= 0 {
		return 0
	}
	atr := indicators.NewATR(atrPeriod)
	values, err := atr.Calculate(candles)
	if err != nil {
		return 0
	}
	return values[len(values)-1] / lastClose
}

func computeGapFrequency(candles []models.Candle) float64 {
	gaps := 0
	counted := 0
	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		if prevClose <= 0 {
			continue
		}
		counted++
		gap := candles[i].Open - prevClose
		if gap < 0 {
			gap = -gap
		}
		if gap/prevClose > gapThreshold {
			gaps++
		}
	}
	if counted == 0 {
		return 0
	}
	return float64(gaps) / float64(counted)
}

// computeADXShares returns the share of lookback bars spent trending
// (ADX above the trend level) and ranging (ADX below the range level).
func computeADXShares(candles []models.Candle) (trendPct, rangePct float64) {
	adx := indicators.NewADX(adxPeriod)
	values, err := adx.Calculate(candles)
	if err != nil {
		return 0, 0
	}
	series := values["adx"]

	// Skip the warmup region where ADX is undefined.
	start := adx.Period()
	if start >= len(series) {
		return 0, 0
	}

	trending, ranging, counted := 0, 0, 0
	for _, v := range series[start:] {
		counted++
		if v >= trendADXLevel {
			trending++
		} else if v < rangeADXLevel {
			ranging++
		}
	}
	if counted == 0 {
		return 0, 0
	}
	return float64(trending) / float64(counted), float64(ranging) / float64(counted)
}

// computeVolCycle returns the current Bollinger band width relative to its
// average over the history: >1 means volatility is expanded, <1 compressed.
func computeVolCycle(candles []models.Candle) float64 {
	bb := indicators.NewBollingerBands(bbPeriod, bbStdDev)
	values, err := bb.Calculate(candles)
	if err != nil {
		return 0
	}
	bandwidth := values["bandwidth"]

	var total float64
	counted := 0
	for _, w := range bandwidth[bbPeriod-1:] {
		total += w
		counted++
	}
	if counted == 0 || total == 0 {
		return 0
	}
	avg := total / float64(counted)
	return bandwidth[len(bandwidth)-1] / avg
}
