package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.LedgerRepository using SQLite. The ledger state
// lives in three tables: a single-row snapshot of balances and the ID counter,
// the open position set (replaced wholesale on every snapshot save) and an
// append-only closed-trade history.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the database and verifies the schema.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signal_bot.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, ports.ErrDBConnection)
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
	cfg.Logger.Info(context.Background(), "SQLite ledger store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS ledger_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		starting_balance REAL NOT NULL,
		balance REAL NOT NULL,
		next_position_id INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS open_positions (
		id INTEGER PRIMARY KEY,
		side TEXT NOT NULL,
		symbol TEXT NOT NULL,
		entry_price REAL NOT NULL,
		lot_size REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		current_price REAL NOT NULL,
		opened_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position_id INTEGER NOT NULL,
		side TEXT NOT NULL,
		symbol TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		lot_size REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		pnl REAL NOT NULL,
		pnl_pct REAL NOT NULL,
		result TEXT NOT NULL,
		opened_at TIMESTAMP NOT NULL,
		closed_at TIMESTAMP NOT NULL,
		balance REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_closed_at ON trade_history (closed_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// LoadSnapshot retrieves the persisted ledger state. Returns nil, nil when no
// snapshot has been saved yet.
func (r *Repository) LoadSnapshot(ctx context.Context) (*ports.LedgerSnapshot, error) {
	snap := &ports.LedgerSnapshot{}
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT starting_balance, balance, next_position_id, updated_at FROM ledger_state WHERE id = 1`).
		Scan(&snap.StartingBalance, &snap.Balance, &snap.NextPositionID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, side, symbol, entry_price, lot_size, stop_loss, take_profit, current_price, opened_at
		 FROM open_positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open position: %w", err)
		}
		snap.OpenPositions = append(snap.OpenPositions, pos)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open position rows: %w", err)
	}

	history, err := r.queryTrades(ctx, `SELECT position_id, side, symbol, entry_price, exit_price, lot_size,
		exit_reason, pnl, pnl_pct, result, opened_at, closed_at, balance
		FROM trade_history ORDER BY closed_at, id`)
	if err != nil {
		return nil, err
	}
	snap.History = history

	r.logger.Debug(ctx, "Ledger snapshot loaded", map[string]interface{}{
		"balance":       snap.Balance,
		"openPositions": len(snap.OpenPositions),
		"trades":        len(snap.History),
	})
	return snap, nil
}

// SaveSnapshot persists the full ledger state, replacing any prior one.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *ports.LedgerSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_state (id, starting_balance, balance, next_position_id, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   starting_balance = excluded.starting_balance,
		   balance = excluded.balance,
		   next_position_id = excluded.next_position_id,
		   updated_at = excluded.updated_at`,
		snap.StartingBalance, snap.Balance, snap.NextPositionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert ledger state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM open_positions`); err != nil {
		return fmt.Errorf("failed to clear open positions: %w", err)
	}
	for _, pos := range snap.OpenPositions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO open_positions (id, side, symbol, entry_price, lot_size, stop_loss, take_profit, current_price, opened_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pos.ID, string(pos.Side), pos.Symbol, pos.EntryPrice, pos.LotSize,
			pos.StopLoss, pos.TakeProfit, pos.CurrentPrice, pos.OpenedAt); err != nil {
			return fmt.Errorf("failed to insert open position %d: %w", pos.ID, err)
		}
	}

	// History is append-only in normal operation; a snapshot save rewrites it
	// so restoring from the snapshot alone reproduces the ledger exactly.
	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_history`); err != nil {
		return fmt.Errorf("failed to clear trade history: %w", err)
	}
	for _, trade := range snap.History {
		if err := insertTrade(ctx, tx, trade); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	r.logger.Debug(ctx, "Ledger snapshot saved", map[string]interface{}{
		"balance":       snap.Balance,
		"openPositions": len(snap.OpenPositions),
		"trades":        len(snap.History),
	})
	return nil
}

// RecordTrade appends a single closed trade to the history.
func (r *Repository) RecordTrade(ctx context.Context, trade *domain.ClosedTrade) error {
	if err := insertTrade(ctx, r.db, trade); err != nil {
		return err
	}
	r.logger.Debug(ctx, "Trade recorded", map[string]interface{}{
		"positionID": trade.PositionID,
		"symbol":     trade.Symbol,
		"pnl":        trade.PNL,
	})
	return nil
}

// RecentTrades retrieves the most recent closed trades, newest first.
func (r *Repository) RecentTrades(ctx context.Context, limit int) ([]*domain.ClosedTrade, error) {
	return r.queryTrades(ctx, `SELECT position_id, side, symbol, entry_price, exit_price, lot_size,
		exit_reason, pnl, pnl_pct, result, opened_at, closed_at, balance
		FROM trade_history ORDER BY closed_at DESC, id DESC LIMIT ?`, limit)
}

func (r *Repository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]*domain.ClosedTrade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade history: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.ClosedTrade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade history row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade history rows: %w", err)
	}
	return trades, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTrade(ctx context.Context, db execer, trade *domain.ClosedTrade) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO trade_history (position_id, side, symbol, entry_price, exit_price, lot_size,
		                            exit_reason, pnl, pnl_pct, result, opened_at, closed_at, balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.PositionID, string(trade.Side), trade.Symbol, trade.EntryPrice, trade.ExitPrice, trade.LotSize,
		string(trade.ExitReason), trade.PNL, trade.PNLPct, string(trade.Result),
		trade.OpenedAt, trade.ClosedAt, trade.Balance)
	if err != nil {
		return fmt.Errorf("failed to insert trade for position %d: %w", trade.PositionID, err)
	}
	return nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(s scanner) (*domain.Position, error) {
	p := &domain.Position{}
	var side string
	err := s.Scan(&p.ID, &side, &p.Symbol, &p.EntryPrice, &p.LotSize,
		&p.StopLoss, &p.TakeProfit, &p.CurrentPrice, &p.OpenedAt)
	if err != nil {
		return nil, err
	}
	p.Side = domain.Side(side)
	return p, nil
}

func scanTrade(s scanner) (*domain.ClosedTrade, error) {
	t := &domain.ClosedTrade{}
	var side, reason, result string
	err := s.Scan(&t.PositionID, &side, &t.Symbol, &t.EntryPrice, &t.ExitPrice, &t.LotSize,
		&reason, &t.PNL, &t.PNLPct, &result, &t.OpenedAt, &t.ClosedAt, &t.Balance)
	if err != nil {
		return nil, err
	}
	t.Side = domain.Side(side)
	t.ExitReason = domain.ExitReason(reason)
	t.Result = domain.TradeResult(result)
	return t, nil
}
