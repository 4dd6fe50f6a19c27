package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"swing-trader/internal/models"
	"swing-trader/internal/regime"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Weekly universe selections
	CREATE TABLE IF NOT EXISTS universe_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL UNIQUE,
		symbols TEXT NOT NULL,
		scored TEXT NOT NULL,
		rotation_in TEXT,
		rotation_out TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Applied rotation events
	CREATE TABLE IF NOT EXISTS rotation_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		trigger_type TEXT NOT NULL,
		activated TEXT NOT NULL,
		rotated_in TEXT,
		rotated_out TEXT,
		watchlisted TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Confirmed regime transitions
	CREATE TABLE IF NOT EXISTS regime_transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		previous TEXT NOT NULL,
		current TEXT NOT NULL,
		bars_in_new_regime INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Force-close watchlist
	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		added_at DATETIME NOT NULL,
		deadline DATETIME NOT NULL,
		reason TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_candles_symbol_timeframe ON candles(symbol, timeframe);
	CREATE INDEX IF NOT EXISTS idx_candles_timestamp ON candles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_universe_timestamp ON universe_results(timestamp);
	CREATE INDEX IF NOT EXISTS idx_rotation_timestamp ON rotation_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_rotation_trigger ON rotation_events(trigger_type);
	CREATE INDEX IF NOT EXISTS idx_transitions_timestamp ON regime_transitions(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Candles Methods
// ============================================================================

// SaveCandles saves candles to the database.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves candles from the database.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, timeframe, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		c := models.Candle{Symbol: symbol}
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// GetCandlesFreshness returns the timestamp of the most recent candle.
func (s *SQLiteStore) GetCandlesFreshness(ctx context.Context, symbol, timeframe string) (time.Time, error) {
	var timestamp sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM candles WHERE symbol = ? AND timeframe = ?
	`, symbol, timeframe).Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get candles freshness: %w", err)
	}
	if !timestamp.Valid {
		return time.Time{}, nil
	}
	return timestamp.Time, nil
}

// ============================================================================
// Universe Methods
// ============================================================================

// SaveUniverseResult persists a weekly selection result.
func (s *SQLiteStore) SaveUniverseResult(ctx context.Context, result *models.UniverseResult) error {
	symbols, _ := json.Marshal(result.Symbols)
	scored, err := json.Marshal(result.Scored)
	if err != nil {
		return fmt.Errorf("failed to marshal scored candidates: %w", err)
	}
	rotIn, _ := json.Marshal(result.RotationIn)
	rotOut, _ := json.Marshal(result.RotationOut)

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO universe_results (timestamp, symbols, scored, rotation_in, rotation_out)
		VALUES (?, ?, ?, ?, ?)
	`, result.Timestamp, string(symbols), string(scored), string(rotIn), string(rotOut))
	if err != nil {
		return fmt.Errorf("failed to save universe result: %w", err)
	}
	return nil
}

// GetLatestUniverse returns the most recent selection result, or nil when
// no selection has been persisted yet.
func (s *SQLiteStore) GetLatestUniverse(ctx context.Context) (*models.UniverseResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT timestamp, symbols, scored, rotation_in, rotation_out
		FROM universe_results
		ORDER BY timestamp DESC
		LIMIT 1
	`)

	result, err := scanUniverseResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// GetUniverseHistory retrieves past selection results.
func (s *SQLiteStore) GetUniverseHistory(ctx context.Context, filter UniverseFilter) ([]models.UniverseResult, error) {
	query := `SELECT timestamp, symbols, scored, rotation_in, rotation_out FROM universe_results WHERE 1=1`
	args := []interface{}{}

	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe history: %w", err)
	}
	defer rows.Close()

	var results []models.UniverseResult
	for rows.Next() {
		result, err := scanUniverseResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniverseResult(row rowScanner) (*models.UniverseResult, error) {
	var result models.UniverseResult
	var symbols, scored, rotIn, rotOut string
	if err := row.Scan(&result.Timestamp, &symbols, &scored, &rotIn, &rotOut); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(symbols), &result.Symbols); err != nil {
		return nil, fmt.Errorf("failed to unmarshal symbols: %w", err)
	}
	if err := json.Unmarshal([]byte(scored), &result.Scored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scored candidates: %w", err)
	}
	json.Unmarshal([]byte(rotIn), &result.RotationIn)
	json.Unmarshal([]byte(rotOut), &result.RotationOut)
	return &result, nil
}

// ============================================================================
// Rotation Methods
// ============================================================================

// SaveRotationEvent persists an applied rotation.
func (s *SQLiteStore) SaveRotationEvent(ctx context.Context, event *models.RotationEvent) error {
	activated, _ := json.Marshal(event.Activated)
	rotIn, _ := json.Marshal(event.RotatedIn)
	rotOut, _ := json.Marshal(event.RotatedOut)
	watchlisted, _ := json.Marshal(event.Watchlisted)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rotation_events (timestamp, trigger_type, activated, rotated_in, rotated_out, watchlisted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.Timestamp, event.Trigger, string(activated), string(rotIn), string(rotOut), string(watchlisted))
	if err != nil {
		return fmt.Errorf("failed to save rotation event: %w", err)
	}
	return nil
}

// GetRotationEvents retrieves rotation events.
func (s *SQLiteStore) GetRotationEvents(ctx context.Context, filter RotationFilter) ([]models.RotationEvent, error) {
	query := `SELECT timestamp, trigger_type, activated, rotated_in, rotated_out, watchlisted FROM rotation_events WHERE 1=1`
	args := []interface{}{}

	if filter.Trigger != "" {
		query += " AND trigger_type = ?"
		args = append(args, filter.Trigger)
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rotation events: %w", err)
	}
	defer rows.Close()

	var events []models.RotationEvent
	for rows.Next() {
		var event models.RotationEvent
		var activated, rotIn, rotOut, watchlisted string
		if err := rows.Scan(&event.Timestamp, &event.Trigger, &activated, &rotIn, &rotOut, &watchlisted); err != nil {
			return nil, fmt.Errorf("failed to scan rotation event: %w", err)
		}
		json.Unmarshal([]byte(activated), &event.Activated)
		json.Unmarshal([]byte(rotIn), &event.RotatedIn)
		json.Unmarshal([]byte(rotOut), &event.RotatedOut)
		json.Unmarshal([]byte(watchlisted), &event.Watchlisted)
		events = append(events, event)
	}
	return events, rows.Err()
}

// ============================================================================
// Regime Methods
// ============================================================================

// SaveRegimeTransition persists a confirmed regime transition.
func (s *SQLiteStore) SaveRegimeTransition(ctx context.Context, transition *regime.Transition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regime_transitions (timestamp, previous, current, bars_in_new_regime)
		VALUES (?, ?, ?, ?)
	`, transition.Timestamp, string(transition.Previous), string(transition.Current),
		transition.BarsInNewRegime)
	if err != nil {
		return fmt.Errorf("failed to save regime transition: %w", err)
	}
	return nil
}

// GetRegimeTransitions retrieves confirmed transitions in a time range.
func (s *SQLiteStore) GetRegimeTransitions(ctx context.Context, from, to time.Time) ([]regime.Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, previous, current, bars_in_new_regime
		FROM regime_transitions
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query regime transitions: %w", err)
	}
	defer rows.Close()

	var transitions []regime.Transition
	for rows.Next() {
		var t regime.Transition
		var prev, cur string
		if err := rows.Scan(&t.Timestamp, &prev, &cur, &t.BarsInNewRegime); err != nil {
			return nil, fmt.Errorf("failed to scan regime transition: %w", err)
		}
		t.Previous = regime.Regime(prev)
		t.Current = regime.Regime(cur)
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}

// GetLatestRegime returns the most recently confirmed regime. Returns
// UNCERTAIN with a zero time when no transition has been recorded.
func (s *SQLiteStore) GetLatestRegime(ctx context.Context) (regime.Regime, time.Time, error) {
	var cur string
	var timestamp time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT current, timestamp FROM regime_transitions ORDER BY timestamp DESC LIMIT 1
	`).Scan(&cur, &timestamp)
	if err == sql.ErrNoRows {
		return regime.Uncertain, time.Time{}, nil
	}
	if err != nil {
		return regime.Uncertain, time.Time{}, fmt.Errorf("failed to get latest regime: %w", err)
	}
	return regime.Regime(cur), timestamp, nil
}

// ============================================================================
// Watchlist Methods
// ============================================================================

// SaveWatchlistEntry inserts or updates a watchlist entry.
func (s *SQLiteStore) SaveWatchlistEntry(ctx context.Context, entry *models.WatchlistEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO watchlist (symbol, added_at, deadline, reason)
		VALUES (?, ?, ?, ?)
	`, entry.Symbol, entry.AddedAt, entry.Deadline, entry.Reason)
	if err != nil {
		return fmt.Errorf("failed to save watchlist entry: %w", err)
	}
	return nil
}

// RemoveWatchlistEntry deletes a symbol from the watchlist.
func (s *SQLiteStore) RemoveWatchlistEntry(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	return nil
}

// GetWatchlist retrieves all watchlist entries ordered by deadline.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, added_at, deadline, reason FROM watchlist ORDER BY deadline ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.Symbol, &e.AddedAt, &e.Deadline, &e.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
