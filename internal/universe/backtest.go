package universe

import (
	"math"

	"swing-trader/internal/models"
)

// BacktestFunc runs an external per-symbol backtest and returns its summary
// metrics. It is supplied by the caller; the pipeline never simulates fills
// itself.
type BacktestFunc func(symbol string, candles []models.Candle) (models.BacktestMetrics, error)

const (
	tradesWeight     = 0.20
	winRateWeight    = 0.30
	profitWeight     = 0.30
	strategiesWeight = 0.20

	tradesSaturation     = 10.0 // sample-size credit saturates at 10 trades
	profitSaturation     = 3.0  // profit-factor credit saturates at 3.0
	strategiesSaturation = 5.0
)

// BacktestScorer converts backtest summary metrics into a [0, 1] score.
type BacktestScorer struct{}

// NewBacktestScorer creates a backtest scorer.
func NewBacktestScorer() *BacktestScorer {
	return &BacktestScorer{}
}

// ScoreFromMetrics blends trade count, win rate, profit factor and strategy
// breadth. Symbols with no trades score 0: an untested symbol earns no
// credit.
func (s *BacktestScorer) ScoreFromMetrics(m models.BacktestMetrics) float64 {
	if m.TotalTrades == 0 {
		return 0
	}

	trades := float64(m.TotalTrades) / tradesSaturation
	if trades > 1 {
		trades = 1
	}

	winRate := m.WinRate
	if winRate < 0 {
		winRate = 0
	}
	if winRate > 1 {
		winRate = 1
	}

	profit := 1.0
	if !math.IsInf(m.ProfitFactor, 1) {
		profit = m.ProfitFactor / profitSaturation
		if profit > 1 {
			profit = 1
		}
		if profit < 0 {
			profit = 0
		}
	}

	strategies := float64(m.StrategiesActive) / strategiesSaturation
	if strategies > 1 {
		strategies = 1
	}

	return tradesWeight*trades + winRateWeight*winRate + profitWeight*profit + strategiesWeight*strategies
}
