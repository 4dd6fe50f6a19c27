package universe

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/models"
	"swing-trader/internal/resilience"
)

// SelectorConfig blends the two candidate scores into the final score.
type SelectorConfig struct {
	ProxyWeight    float64 `mapstructure:"proxy_weight"`
	BacktestWeight float64 `mapstructure:"backtest_weight"`
}

// DefaultSelectorConfig returns an even proxy/backtest blend.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		ProxyWeight:    0.5,
		BacktestWeight: 0.5,
	}
}

// Selector orchestrates one selection cycle: candidate construction, hard
// filtering, backtest and proxy scoring, blending, and portfolio
// optimization. Its output is the authoritative weekly portfolio.
type Selector struct {
	config      SelectorConfig
	filter      *HardFilter
	proxy       *ProxyScorer
	backtest    *BacktestScorer
	optimizer   *PortfolioOptimizer
	runBacktest BacktestFunc
	breaker     *resilience.CircuitBreaker
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSelector wires the pipeline stages together. runBacktest may be nil,
// in which case every backtest score is 0 and selection leans entirely on
// the proxy score.
func NewSelector(config SelectorConfig, filter *HardFilter, proxy *ProxyScorer,
	backtest *BacktestScorer, optimizer *PortfolioOptimizer, runBacktest BacktestFunc,
	logger zerolog.Logger) *Selector {
	return &Selector{
		config:      config,
		filter:      filter,
		proxy:       proxy,
		backtest:    backtest,
		optimizer:   optimizer,
		runBacktest: runBacktest,
		logger:      logger,
		now:         time.Now,
	}
}

// SetBreaker installs a circuit breaker around the backtest runner. With the
// circuit open, backtest calls are skipped and the affected symbols score 0,
// the same fail-open behavior as a backtest error.
func (s *Selector) SetBreaker(breaker *resilience.CircuitBreaker) {
	s.breaker = breaker
}

// Select runs one full selection cycle against the supplied bar histories
// and returns the new universe with its rotation delta against currentPool.
func (s *Selector) Select(infos []SymbolInfo, barsBySymbol map[string][]models.Candle,
	currentPool, openPositions []string) (*models.UniverseResult, error) {

	started := s.now()
	poolSet := toSet(currentPool)
	positionSet := toSet(openPositions)

	// Build candidates; symbols with short histories are skipped, not fatal.
	candidates := make([]models.StockCandidate, 0, len(infos))
	for _, info := range infos {
		candles := barsBySymbol[info.Symbol]
		if len(candles) < MinBars {
			s.logger.Debug().
				Str("symbol", info.Symbol).
				Int("bars", len(candles)).
				Msg("Skipping symbol with short bar history")
			continue
		}
		candidate, err := BuildCandidate(info, candles)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", info.Symbol).Msg("Candidate construction failed")
			continue
		}
		candidates = append(candidates, candidate)
	}

	survivors := s.filter.Apply(candidates)

	// Score: backtest per survivor (fail-open to 0 on error), proxy as a
	// batch, then blend.
	backtestScores := make([]float64, len(survivors))
	for i, c := range survivors {
		if s.runBacktest == nil {
			continue
		}
		metrics, err := s.backtestSymbol(c.Symbol, barsBySymbol[c.Symbol])
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", c.Symbol).Msg("Backtest failed, scoring 0")
			continue
		}
		backtestScores[i] = s.backtest.ScoreFromMetrics(metrics)
	}
	proxyScores := s.proxy.Score(survivors, poolSet)

	scored := make([]models.ScoredCandidate, len(survivors))
	for i, c := range survivors {
		scored[i] = models.ScoredCandidate{
			Candidate:     c,
			ProxyScore:    proxyScores[i],
			BacktestScore: backtestScores[i],
			FinalScore:    s.config.ProxyWeight*proxyScores[i] + s.config.BacktestWeight*backtestScores[i],
		}
	}

	selected := s.optimizer.Optimize(scored, poolSet, positionSet)

	symbols := make([]string, len(selected))
	for i, sc := range selected {
		symbols[i] = sc.Candidate.Symbol
	}
	sort.Strings(symbols)

	result := &models.UniverseResult{
		Symbols:     symbols,
		Scored:      selected,
		Timestamp:   started,
		RotationIn:  difference(symbols, poolSet),
		RotationOut: missingFrom(currentPool, toSet(symbols)),
	}

	s.logger.Info().
		Str("event", "selection").
		Int("candidates", len(candidates)).
		Int("passed_filter", len(survivors)).
		Int("selected", len(selected)).
		Int("rotation_in", len(result.RotationIn)).
		Int("rotation_out", len(result.RotationOut)).
		Dur("duration", s.now().Sub(started)).
		Msg("Universe selection completed")

	return result, nil
}

func (s *Selector) backtestSymbol(symbol string, candles []models.Candle) (models.BacktestMetrics, error) {
	if s.breaker == nil {
		return s.runBacktest(symbol, candles)
	}
	if err := s.breaker.Allow(); err != nil {
		return models.BacktestMetrics{}, err
	}
	metrics, err := s.runBacktest(symbol, candles)
	if err != nil {
		s.breaker.RecordFailure()
		return models.BacktestMetrics{}, err
	}
	s.breaker.RecordSuccess()
	return metrics, nil
}

func toSet(symbols []string) map[string]bool {
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		set[s] = true
	}
	return set
}

// difference returns the symbols not present in the set, sorted.
func difference(symbols []string, set map[string]bool) []string {
	var out []string
	for _, s := range symbols {
		if !set[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// missingFrom returns the pool members absent from the set, sorted.
func missingFrom(pool []string, set map[string]bool) []string {
	var out []string
	for _, s := range pool {
		if !set[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
