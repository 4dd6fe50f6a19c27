package universe

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"swing-trader/internal/models"
)

// Property: proxy scores always land in [0, 1] regardless of the candidate
// metrics, including values far outside the hard-filter bands.
func TestProperty_ProxyScoresStayInUnitInterval(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	scorer := NewProxyScorer(DefaultProxyWeights())

	candidateGen := gen.Struct(reflect.TypeOf(models.StockCandidate{}), map[string]gopter.Gen{
		"Symbol":          gen.OneConstOf("AAA", "BBB", "CCC", "DDD"),
		"Sector":          gen.OneConstOf("tech", "energy", "finance"),
		"Close":           gen.Float64Range(1, 1000),
		"AvgVolume":       gen.Float64Range(0, 1e8),
		"AvgDollarVolume": gen.Float64Range(0, 1e10),
		"ATRRatio":        gen.Float64Range(0, 0.5),
		"GapFrequency":    gen.Float64Range(0, 1),
		"TrendPct":        gen.Float64Range(0, 1),
		"RangePct":        gen.Float64Range(0, 1),
		"VolCycle":        gen.Float64Range(0, 5),
	})

	properties.Property("every score is within [0, 1]", prop.ForAll(
		func(candidates []models.StockCandidate) bool {
			pool := map[string]bool{"AAA": true}
			for _, score := range scorer.Score(candidates, pool) {
				if score < 0 || score > 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(candidateGen),
	))

	properties.TestingRun(t)
}

// Property: backtest scores always land in [0, 1] for any metrics, with the
// no-trades case pinned to exactly 0.
func TestProperty_BacktestScoresStayInUnitInterval(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	scorer := NewBacktestScorer()

	properties.Property("score is bounded and zero-trade symbols earn nothing", prop.ForAll(
		func(totalTrades int, winRate, profitFactor float64, strategies int) bool {
			m := models.BacktestMetrics{
				TotalTrades:      totalTrades,
				WinRate:          winRate,
				ProfitFactor:     profitFactor,
				StrategiesActive: strategies,
			}
			score := scorer.ScoreFromMetrics(m)
			if totalTrades == 0 {
				return score == 0
			}
			return score >= 0 && score <= 1
		},
		gen.IntRange(0, 100),
		gen.Float64Range(-1, 2),
		gen.Float64Range(0, 50),
		gen.IntRange(0, 10),
	))

	properties.Property("infinite profit factor gets full profit credit", prop.ForAll(
		func(totalTrades int) bool {
			withInf := scorer.ScoreFromMetrics(models.BacktestMetrics{
				TotalTrades:  totalTrades,
				ProfitFactor: math.Inf(1),
			})
			saturated := scorer.ScoreFromMetrics(models.BacktestMetrics{
				TotalTrades:  totalTrades,
				ProfitFactor: 3.0,
			})
			return math.Abs(withInf-saturated) < 1e-9
		},
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}

// Property: the optimizer never exceeds the target size, never drops a held
// symbol, and never admits more newcomers than the rotation cap allows.
func TestProperty_OptimizerHonorsCaps(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	config := DefaultOptimizerConfig()
	o := NewPortfolioOptimizer(config)

	symbols := []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11", "S12"}

	scoredGen := gen.Struct(reflect.TypeOf(models.ScoredCandidate{}), map[string]gopter.Gen{
		"Candidate": gen.Struct(reflect.TypeOf(models.StockCandidate{}), map[string]gopter.Gen{
			"Symbol": gen.OneConstOf("S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11", "S12"),
			"Sector": gen.OneConstOf("tech", "energy", "finance", "health", "industrials"),
		}),
		"FinalScore": gen.Float64Range(0, 1),
	})

	properties.Property("caps hold for any scored slate", prop.ForAll(
		func(scored []models.ScoredCandidate, poolSize int) bool {
			// Dedupe symbols: the pipeline never feeds duplicates.
			seen := make(map[string]bool)
			unique := scored[:0]
			for _, sc := range scored {
				if !seen[sc.Candidate.Symbol] {
					seen[sc.Candidate.Symbol] = true
					unique = append(unique, sc)
				}
			}

			currentPool := make(map[string]bool)
			for _, s := range symbols[:poolSize] {
				currentPool[s] = true
			}

			selected := o.Optimize(unique, currentPool, nil)
			if len(selected) > config.TargetSize {
				return false
			}

			newcomers := 0
			for _, sc := range selected {
				if len(currentPool) > 0 && !currentPool[sc.Candidate.Symbol] {
					newcomers++
				}
			}
			return newcomers <= config.MaxRotation || len(currentPool) == 0
		},
		gen.SliceOf(scoredGen),
		gen.IntRange(0, len(symbols)),
	))

	properties.TestingRun(t)
}
