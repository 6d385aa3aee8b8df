package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"OptionPulse/internal/model"
)

// SQLiteStore persists signals to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id               TEXT PRIMARY KEY,
			instrument       TEXT NOT NULL,
			option_symbol    TEXT,
			option_type      TEXT,
			strike           REAL,
			expiry           TEXT,
			lot_size         INTEGER,
			direction        TEXT NOT NULL,
			entry_price      REAL NOT NULL,
			target_price     REAL NOT NULL,
			stop_loss        REAL NOT NULL,
			confidence       REAL NOT NULL,
			risk_reward      REAL NOT NULL,
			setup            TEXT,
			created_at       INTEGER NOT NULL,
			status           TEXT NOT NULL,
			closed_at        INTEGER,
			close_reason     TEXT,
			realized_pnl_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_status ON signals(status)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at)`,

		`CREATE TABLE IF NOT EXISTS signal_outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id TEXT NOT NULL,
			status    TEXT NOT NULL,
			reason    TEXT,
			pnl_pct   REAL,
			closed_at INTEGER NOT NULL,
			FOREIGN KEY (signal_id) REFERENCES signals(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_signal ON signal_outcomes(signal_id)`,

		`CREATE TABLE IF NOT EXISTS daily_stats (
			date          TEXT PRIMARY KEY,
			total_signals INTEGER DEFAULT 0,
			wins          INTEGER DEFAULT 0,
			losses        INTEGER DEFAULT 0,
			total_pnl_pct REAL DEFAULT 0
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveSignal inserts a newly created signal.
func (s *SQLiteStore) SaveSignal(ctx context.Context, sig *model.Signal) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO signals
		(id, instrument, option_symbol, option_type, strike, expiry, lot_size,
		 direction, entry_price, target_price, stop_loss, confidence,
		 risk_reward, setup, created_at, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sig.ID, sig.Instrument, sig.Leg.Symbol, sig.Leg.OptionType,
		sig.Leg.Strike, sig.Leg.Expiry, sig.Leg.LotSize,
		string(sig.Direction), sig.EntryPrice, sig.TargetPrice, sig.StopLoss,
		sig.Confidence, sig.RiskReward, sig.Setup,
		sig.CreatedAt.Unix(), string(sig.Status),
	)
	return err
}

// UpdateSignalStatus records a terminal transition: the signal row, an
// outcome history row, and the daily win/loss stats, in one transaction.
func (s *SQLiteStore) UpdateSignalStatus(ctx context.Context, id string, status model.Status, closedAt time.Time, reason model.CloseReason, pnlPct float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE signals
		SET status=?, closed_at=?, close_reason=?, realized_pnl_pct=?
		WHERE id=? AND status=?`,
		string(status), closedAt.Unix(), string(reason), pnlPct, id, string(model.StatusActive),
	)
	if err != nil {
		return fmt.Errorf("update signal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Already closed; treat a replayed transition as done.
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO signal_outcomes
		(signal_id, status, reason, pnl_pct, closed_at) VALUES (?,?,?,?,?)`,
		id, string(status), string(reason), pnlPct, closedAt.Unix(),
	); err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}

	win, loss := 0, 0
	if status == model.StatusTargetHit || (status != model.StatusCancelled && pnlPct > 0) {
		win = 1
	} else if status != model.StatusCancelled {
		loss = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO daily_stats (date, total_signals, wins, losses, total_pnl_pct)
		VALUES (?,1,?,?,?)
		ON CONFLICT(date) DO UPDATE SET
			total_signals = total_signals + 1,
			wins = wins + excluded.wins,
			losses = losses + excluded.losses,
			total_pnl_pct = total_pnl_pct + excluded.total_pnl_pct`,
		closedAt.Format("2006-01-02"), win, loss, pnlPct,
	); err != nil {
		return fmt.Errorf("upsert daily stats: %w", err)
	}

	return tx.Commit()
}

// LoadOpenSignals returns all signals still in ACTIVE state.
func (s *SQLiteStore) LoadOpenSignals(ctx context.Context) ([]*model.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, instrument, option_symbol, option_type, strike, expiry, lot_size,
		direction, entry_price, target_price, stop_loss, confidence,
		risk_reward, setup, created_at
		FROM signals WHERE status=? ORDER BY created_at`,
		string(model.StatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("query open signals: %w", err)
	}
	defer rows.Close()

	var out []*model.Signal
	for rows.Next() {
		sig := &model.Signal{Status: model.StatusActive}
		var direction string
		var createdAt int64
		if err := rows.Scan(
			&sig.ID, &sig.Instrument, &sig.Leg.Symbol, &sig.Leg.OptionType,
			&sig.Leg.Strike, &sig.Leg.Expiry, &sig.Leg.LotSize,
			&direction, &sig.EntryPrice, &sig.TargetPrice, &sig.StopLoss,
			&sig.Confidence, &sig.RiskReward, &sig.Setup, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Direction = model.Direction(direction)
		sig.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// DailyStats returns the closed-signal summary for a trading day.
func (s *SQLiteStore) DailyStats(ctx context.Context, day string) (Stats, error) {
	st := Stats{Day: day}
	err := s.db.QueryRowContext(ctx, `SELECT total_signals, wins, losses, total_pnl_pct
		FROM daily_stats WHERE date=?`, day,
	).Scan(&st.Total, &st.Wins, &st.Losses, &st.TotalPnLPct)
	if err == sql.ErrNoRows {
		return st, nil
	}
	return st, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
