package storage

// sqlite.go: persistencia del journal.
//
// Tablas:
//   - `accounts`: una fila por cuenta con sus settings de riesgo. El account
//     high persistido solo sube (ver UpdateAccountHigh).
//   - `trades`: el ledger. Montos como TEXT decimal para no perder centavos.
//   - `daily_snapshots`: una fila por cuenta y día (UPSERT), escrita por el
//     job de fin de día. Prune automático al arrancar.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id                    TEXT PRIMARY KEY,
    name                  TEXT NOT NULL,
    account_type          TEXT NOT NULL,
    starting_balance      TEXT,
    trailing_drawdown     TEXT,
    daily_loss_limit      TEXT,
    account_start_date    TEXT,
    is_live_funded        INTEGER NOT NULL DEFAULT 0,
    first_payout_received INTEGER NOT NULL DEFAULT 0,
    current_account_high  TEXT,
    data_source           TEXT NOT NULL DEFAULT '',
    created_at            TEXT NOT NULL,
    updated_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    id                  TEXT PRIMARY KEY,
    account_id          TEXT NOT NULL,
    symbol              TEXT NOT NULL,
    market              TEXT NOT NULL,
    side                TEXT NOT NULL,
    quantity            TEXT NOT NULL,
    entry_price         TEXT NOT NULL,
    exit_price          TEXT,
    entry_date          TEXT NOT NULL,
    exit_date           TEXT,
    status              TEXT NOT NULL,
    net_pnl             TEXT,
    gross_pnl           TEXT,
    commission          TEXT NOT NULL DEFAULT '0',
    entry_fees          TEXT NOT NULL DEFAULT '0',
    exit_fees           TEXT NOT NULL DEFAULT '0',
    contract_multiplier TEXT NOT NULL DEFAULT '1',
    notes               TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS daily_snapshots (
    id                 TEXT NOT NULL,
    account_id         TEXT NOT NULL,
    date               TEXT NOT NULL,
    end_of_day_balance TEXT NOT NULL,
    account_high       TEXT NOT NULL,
    calculated_limit   TEXT NOT NULL,
    daily_limit        TEXT,
    net_pnl_to_date    TEXT NOT NULL,
    daily_pnl          TEXT NOT NULL,
    daily_fees         TEXT NOT NULL DEFAULT '0',
    within_trailing    INTEGER NOT NULL DEFAULT 1,
    within_daily       INTEGER NOT NULL DEFAULT 1,
    created_at         TEXT NOT NULL,
    PRIMARY KEY (account_id, date)
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id, entry_date);
CREATE INDEX IF NOT EXISTS idx_snapshots_date ON daily_snapshots(date);
`

// retentionSnapshots: dos años de historia alcanzan para cualquier gráfico.
const retentionSnapshots = 2 * 365 * 24 * time.Hour

const (
	timeLayout = time.RFC3339Nano
	dateLayout = "2006-01-02"
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia snapshots antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db, now: time.Now}
	s.pruneOld(context.Background())
	return s, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina snapshots fuera de la ventana de retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := s.now().UTC().Add(-retentionSnapshots).Format(dateLayout)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM daily_snapshots WHERE date < ?`, cutoff); err != nil {
		slog.Warn("prune old snapshots failed", "cutoff", cutoff, "err", err)
	}
}

// --- helpers internos ---

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatTime(*t)
	return &v
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", v, err)
	}
	return t.UTC(), nil
}

func parseTimePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
