// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"swing-trader/internal/models"
	"swing-trader/internal/regime"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)
	GetCandlesFreshness(ctx context.Context, symbol, timeframe string) (time.Time, error)

	// Universe selections
	SaveUniverseResult(ctx context.Context, result *models.UniverseResult) error
	GetLatestUniverse(ctx context.Context) (*models.UniverseResult, error)
	GetUniverseHistory(ctx context.Context, filter UniverseFilter) ([]models.UniverseResult, error)

	// Rotation events
	SaveRotationEvent(ctx context.Context, event *models.RotationEvent) error
	GetRotationEvents(ctx context.Context, filter RotationFilter) ([]models.RotationEvent, error)

	// Regime transitions
	SaveRegimeTransition(ctx context.Context, transition *regime.Transition) error
	GetRegimeTransitions(ctx context.Context, from, to time.Time) ([]regime.Transition, error)
	GetLatestRegime(ctx context.Context) (regime.Regime, time.Time, error)

	// Watchlist
	SaveWatchlistEntry(ctx context.Context, entry *models.WatchlistEntry) error
	RemoveWatchlistEntry(ctx context.Context, symbol string) error
	GetWatchlist(ctx context.Context) ([]models.WatchlistEntry, error)

	// Lifecycle
	Close() error
}

// UniverseFilter represents filters for querying universe selections.
type UniverseFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// RotationFilter represents filters for querying rotation events.
type RotationFilter struct {
	Trigger   string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
