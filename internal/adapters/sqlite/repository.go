package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.TradeArchive interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite trade archive instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signalwatcher.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Trade archive initialized", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		trade_id TEXT PRIMARY KEY,
		row_number INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		trader TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		leverage REAL NOT NULL,
		announced_at TIMESTAMP NOT NULL,
		close_kind TEXT DEFAULT NULL,
		final_pnl REAL DEFAULT NULL,
		closed_at TIMESTAMP DEFAULT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_announced_at ON trades (announced_at);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades (symbol);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing trade archive")
		return r.db.Close()
	}
	return nil
}

// RecordAnnounced stores a newly announced trade. Re-announcing a known
// trade ID is a no-op so restarts can safely replay the sweep.
func (r *Repository) RecordAnnounced(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT INTO trades (trade_id, row_number, symbol, trader, side, entry_price, leverage, announced_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(trade_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.RowNumber, trade.Symbol, trade.Trader, trade.Side,
		trade.EntryPrice, trade.Leverage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.ID, err)
	}
	r.logger.Debug(ctx, "Trade recorded in archive", map[string]interface{}{"tradeID": trade.ID, "symbol": trade.Symbol})
	return nil
}

// RecordClosed stores the close outcome for a previously announced trade.
func (r *Repository) RecordClosed(ctx context.Context, tradeID string, kind domain.CloseKind, finalPnl float64) error {
	const query = `
	UPDATE trades
	SET close_kind = ?, final_pnl = ?, closed_at = ?
	WHERE trade_id = ?`

	result, err := r.db.ExecContext(ctx, query, kind, finalPnl, time.Now().UTC(), tradeID)
	if err != nil {
		return fmt.Errorf("failed to record close for trade %s: %w", tradeID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for trade %s: %w", tradeID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for close: %w", tradeID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade close recorded in archive", map[string]interface{}{"tradeID": tradeID, "closeKind": kind, "finalPnl": finalPnl})
	return nil
}

// FindRecent returns the most recently announced trades, newest first.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*ports.ArchivedTrade, error) {
	const query = `
	SELECT trade_id, row_number, symbol, trader, side, entry_price, leverage,
	       announced_at, COALESCE(close_kind, ''), final_pnl, closed_at
	FROM trades
	ORDER BY announced_at DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recent trades: %v", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*ports.ArchivedTrade, 0, limit)
	for rows.Next() {
		var (
			t        ports.ArchivedTrade
			finalPnl sql.NullFloat64
			closedAt sql.NullTime
		)
		if err := rows.Scan(&t.TradeID, &t.RowNumber, &t.Symbol, &t.Trader, &t.Side,
			&t.EntryPrice, &t.Leverage, &t.AnnouncedAt, &t.CloseKind, &finalPnl, &closedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning trade row: %v", ports.ErrQueryFailed, err)
		}
		if finalPnl.Valid {
			v := finalPnl.Float64
			t.FinalPnl = &v
		}
		if closedAt.Valid {
			ts := closedAt.Time
			t.ClosedAt = &ts
		}
		trades = append(trades, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating trade rows: %v", ports.ErrQueryFailed, err)
	}
	return trades, nil
}

// TotalClosedPnl sums the final PnL percent across all closed trades.
func (r *Repository) TotalClosedPnl(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(SUM(final_pnl), 0) FROM trades WHERE closed_at IS NOT NULL`

	var total float64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: summing closed pnl: %v", ports.ErrQueryFailed, err)
	}
	return total, nil
}
