package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alejandrodnm/tradejournal/internal/domain"
)

const tradeColumns = `id, account_id, symbol, market, side, quantity, entry_price, exit_price,
	entry_date, exit_date, status, net_pnl, gross_pnl, commission, entry_fees, exit_fees,
	contract_multiplier, notes`

// SaveTrade inserts a trade or replaces the row with the same ID.
func (s *SQLiteStorage) SaveTrade(ctx context.Context, t domain.Trade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Symbol, string(t.Market), string(t.Side),
		t.Quantity, t.EntryPrice, t.ExitPrice,
		formatTime(t.EntryDate), formatTimePtr(t.ExitDate), string(t.Status),
		t.NetPnL, t.GrossPnL, t.Commission, t.EntryFees, t.ExitFees,
		t.ContractMultiplier, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTrade: %s: %w", t.ID, err)
	}
	return nil
}

// ListTrades returns the ledger of an account, oldest entry first.
func (s *SQLiteStorage) ListTrades(ctx context.Context, accountID string) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE account_id = ?
		ORDER BY entry_date ASC, id ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTrades: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var (
			t                    domain.Trade
			market, side, status string
			entryDate            string
			exitDate             sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Symbol, &market, &side,
			&t.Quantity, &t.EntryPrice, &t.ExitPrice,
			&entryDate, &exitDate, &status,
			&t.NetPnL, &t.GrossPnL, &t.Commission, &t.EntryFees, &t.ExitFees,
			&t.ContractMultiplier, &t.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.ListTrades: scan row: %w", err)
		}
		t.Market = domain.MarketType(market)
		t.Side = domain.Side(side)
		t.Status = domain.TradeStatus(status)
		if t.EntryDate, err = parseTime(entryDate); err != nil {
			return nil, fmt.Errorf("storage.ListTrades: %s: %w", t.ID, err)
		}
		if t.ExitDate, err = parseTimePtr(exitDate); err != nil {
			return nil, fmt.Errorf("storage.ListTrades: %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
