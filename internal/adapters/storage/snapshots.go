package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
)

// SaveSnapshot upserts the end-of-day row of an account. Re-running the job
// for the same day replaces the numbers but keeps the original ID.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap domain.DailySnapshot) error {
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_snapshots
			(id, account_id, date, end_of_day_balance, account_high, calculated_limit,
			 daily_limit, net_pnl_to_date, daily_pnl, daily_fees,
			 within_trailing, within_daily, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, date) DO UPDATE SET
			end_of_day_balance = excluded.end_of_day_balance,
			account_high       = excluded.account_high,
			calculated_limit   = excluded.calculated_limit,
			daily_limit        = excluded.daily_limit,
			net_pnl_to_date    = excluded.net_pnl_to_date,
			daily_pnl          = excluded.daily_pnl,
			daily_fees         = excluded.daily_fees,
			within_trailing    = excluded.within_trailing,
			within_daily       = excluded.within_daily,
			created_at         = excluded.created_at`,
		snap.ID, snap.AccountID, domain.DayOf(snap.Date).Format(dateLayout),
		snap.EndOfDayBalance, snap.AccountHigh, snap.CalculatedLimit,
		snap.DailyLimit, snap.NetPnLToDate, snap.DailyPnL, snap.DailyFees,
		boolToInt(snap.IsWithinTrailingLimit), boolToInt(snap.IsWithinDailyLimit),
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: %s %s: %w",
			snap.AccountID, snap.Date.Format(dateLayout), err)
	}
	return nil
}

// ListSnapshots returns the snapshots of an account with from <= date <= to
// (compared by UTC day), oldest first.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context, accountID string, from, to time.Time) ([]domain.DailySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, date, end_of_day_balance, account_high, calculated_limit,
		       daily_limit, net_pnl_to_date, daily_pnl, daily_fees,
		       within_trailing, within_daily, created_at
		FROM daily_snapshots
		WHERE account_id = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC`,
		accountID,
		domain.DayOf(from).Format(dateLayout),
		domain.DayOf(to).Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("storage.ListSnapshots: query: %w", err)
	}
	defer rows.Close()

	var out []domain.DailySnapshot
	for rows.Next() {
		var (
			snap                  domain.DailySnapshot
			date, createdAt       string
			withinTrail, withinDy int
		)
		if err := rows.Scan(
			&snap.ID, &snap.AccountID, &date,
			&snap.EndOfDayBalance, &snap.AccountHigh, &snap.CalculatedLimit,
			&snap.DailyLimit, &snap.NetPnLToDate, &snap.DailyPnL, &snap.DailyFees,
			&withinTrail, &withinDy, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage.ListSnapshots: scan row: %w", err)
		}
		if snap.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("storage.ListSnapshots: parse date %q: %w", date, err)
		}
		if snap.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("storage.ListSnapshots: %w", err)
		}
		snap.IsWithinTrailingLimit = withinTrail == 1
		snap.IsWithinDailyLimit = withinDy == 1
		out = append(out, snap)
	}
	return out, rows.Err()
}
