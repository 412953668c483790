package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, account_type, starting_balance, trailing_drawdown,
	daily_loss_limit, account_start_date, is_live_funded, first_payout_received,
	current_account_high, data_source, created_at, updated_at`

// SaveAccount inserts or replaces an account and its settings.
func (s *SQLiteStorage) SaveAccount(ctx context.Context, acct domain.Account) error {
	c := acct.Config
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name                  = excluded.name,
			account_type          = excluded.account_type,
			starting_balance      = excluded.starting_balance,
			trailing_drawdown     = excluded.trailing_drawdown,
			daily_loss_limit      = excluded.daily_loss_limit,
			account_start_date    = excluded.account_start_date,
			is_live_funded        = excluded.is_live_funded,
			first_payout_received = excluded.first_payout_received,
			current_account_high  = excluded.current_account_high,
			data_source           = excluded.data_source,
			updated_at            = excluded.updated_at`,
		acct.ID, acct.Name, string(c.AccountType),
		c.StartingBalance, c.TrailingDrawdownAmount, c.DailyLossLimit,
		formatTimePtr(c.AccountStartDate),
		boolToInt(c.IsLiveFunded), boolToInt(c.FirstPayoutReceived),
		c.CurrentAccountHigh, c.DataSource,
		formatTime(acct.CreatedAt), formatTime(acct.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveAccount: %w", err)
	}
	return nil
}

// GetAccount returns the account with the given ID or ErrNotFound.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("storage.GetAccount: account %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("storage.GetAccount: %w", err)
	}
	return acct, nil
}

// ListAccounts returns every account ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListAccounts: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListAccounts: scan row: %w", err)
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

// UpdateAccountHigh raises the persisted high-water mark. A lower value is
// ignored so a late or replayed job can never pull the high down.
func (s *SQLiteStorage) UpdateAccountHigh(ctx context.Context, id string, high decimal.Decimal) error {
	acct, err := s.GetAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("storage.UpdateAccountHigh: %w", err)
	}
	cur := acct.Config.CurrentAccountHigh
	if cur.Valid && !high.GreaterThan(cur.Decimal) {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET current_account_high = ?, updated_at = ? WHERE id = ?`,
		domain.Round(high), formatTime(s.now()), id,
	); err != nil {
		return fmt.Errorf("storage.UpdateAccountHigh: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (domain.Account, error) {
	var (
		acct                domain.Account
		accountType         string
		startDate           sql.NullString
		liveFunded, payout  int
		createdAt, updateAt string
	)
	c := &acct.Config
	if err := r.Scan(
		&acct.ID, &acct.Name, &accountType,
		&c.StartingBalance, &c.TrailingDrawdownAmount, &c.DailyLossLimit,
		&startDate, &liveFunded, &payout,
		&c.CurrentAccountHigh, &c.DataSource,
		&createdAt, &updateAt,
	); err != nil {
		return domain.Account{}, err
	}

	c.AccountType = domain.AccountType(accountType)
	c.IsLiveFunded = liveFunded == 1
	c.FirstPayoutReceived = payout == 1

	var err error
	if c.AccountStartDate, err = parseTimePtr(startDate); err != nil {
		return domain.Account{}, err
	}
	if acct.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	if acct.UpdatedAt, err = parseTime(updateAt); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}
