package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerStore persiste los trades del journal. El motor de riesgo solo lee.
type LedgerStore interface {
	// SaveTrade inserta o reemplaza un trade por ID.
	SaveTrade(ctx context.Context, trade domain.Trade) error

	// ListTrades devuelve todos los trades de una cuenta, ordenados por entry date.
	ListTrades(ctx context.Context, accountID string) ([]domain.Trade, error)
}

// AccountStore persists accounts and their risk settings.
type AccountStore interface {
	SaveAccount(ctx context.Context, acct domain.Account) error
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// UpdateAccountHigh stores a new high-water mark. Implementations must
	// never lower an existing one.
	UpdateAccountHigh(ctx context.Context, id string, high decimal.Decimal) error
}

// SnapshotStore keeps the end-of-day history used by trend charts.
type SnapshotStore interface {
	// SaveSnapshot upserts on (account, date): re-running the job for the
	// same day overwrites the row.
	SaveSnapshot(ctx context.Context, s domain.DailySnapshot) error

	// ListSnapshots returns snapshots with from <= date <= to, oldest first.
	ListSnapshots(ctx context.Context, accountID string, from, to time.Time) ([]domain.DailySnapshot, error)
}

// Storage agrupa todos los stores; el adapter SQLite implementa los tres.
type Storage interface {
	LedgerStore
	AccountStore
	SnapshotStore

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
