package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/adapters/storage"
	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeAccount(id string) domain.Account {
	d := start
	return domain.Account{
		ID:   id,
		Name: "Combine " + id,
		Config: domain.AccountConfig{
			AccountType:            domain.AccountTopstep50K,
			StartingBalance:        domain.NullMoney(50000),
			TrailingDrawdownAmount: domain.NullMoney(2000),
			DailyLossLimit:         domain.NullMoney(1000),
			AccountStartDate:       &d,
			DataSource:             "topstep csv",
		},
		CreatedAt: start,
		UpdatedAt: start,
	}
}

func makeTrade(id, accountID string, when time.Time, net float64) domain.Trade {
	return domain.Trade{
		ID:                 id,
		AccountID:          accountID,
		Symbol:             "MNQH25",
		Market:             domain.MarketMicroFutures,
		Side:               domain.SideLong,
		Quantity:           decimal.NewFromInt(2),
		EntryPrice:         domain.Money(21000.25),
		ExitPrice:          domain.NullMoney(21010.5),
		EntryDate:          when,
		Status:             domain.TradeClosed,
		NetPnL:             domain.NullMoney(net),
		GrossPnL:           domain.NullMoney(net + 1.48),
		Commission:         domain.Money(1.48),
		ContractMultiplier: decimal.NewFromInt(2),
	}
}

func TestSQLiteStorage_AccountRoundTrip(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	acct := makeAccount("a1")
	require.NoError(t, db.SaveAccount(ctx, acct))

	got, err := db.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Combine a1", got.Name)
	assert.Equal(t, domain.AccountTopstep50K, got.Config.AccountType)
	assert.True(t, got.Config.StartingBalance.Decimal.Equal(decimal.NewFromInt(50000)))
	assert.True(t, got.Config.DailyLossLimit.Valid)
	assert.False(t, got.Config.CurrentAccountHigh.Valid)
	require.NotNil(t, got.Config.AccountStartDate)
	assert.True(t, start.Equal(*got.Config.AccountStartDate))
	assert.Equal(t, "topstep csv", got.Config.DataSource)
}

func TestSQLiteStorage_GetAccount_NotFound(t *testing.T) {
	db := newStore(t)
	_, err := db.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteStorage_SaveAccount_Updates(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	acct := makeAccount("a1")
	require.NoError(t, db.SaveAccount(ctx, acct))

	acct.Config.IsLiveFunded = true
	acct.Config.FirstPayoutReceived = true
	acct.Config.DailyLossLimit = decimal.NullDecimal{}
	require.NoError(t, db.SaveAccount(ctx, acct))

	got, err := db.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Config.IsLiveFunded)
	assert.True(t, got.Config.FirstPayoutReceived)
	assert.False(t, got.Config.DailyLossLimit.Valid)

	all, err := db.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStorage_UpdateAccountHigh_OnlyRaises(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()
	require.NoError(t, db.SaveAccount(ctx, makeAccount("a1")))

	require.NoError(t, db.UpdateAccountHigh(ctx, "a1", domain.Money(51000)))
	require.NoError(t, db.UpdateAccountHigh(ctx, "a1", domain.Money(50500)))

	got, err := db.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.True(t, got.Config.CurrentAccountHigh.Valid)
	assert.Equal(t, "51000.00", got.Config.CurrentAccountHigh.Decimal.StringFixed(2))

	assert.ErrorIs(t, db.UpdateAccountHigh(ctx, "nope", domain.Money(1)), storage.ErrNotFound)
}

func TestSQLiteStorage_TradesRoundTrip(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	late := makeTrade("t2", "a1", start.Add(30*time.Hour), -120.5)
	early := makeTrade("t1", "a1", start.Add(10*time.Hour), 250.25)
	other := makeTrade("t3", "a2", start.Add(time.Hour), 99)
	for _, tr := range []domain.Trade{late, early, other} {
		require.NoError(t, db.SaveTrade(ctx, tr))
	}

	trades, err := db.ListTrades(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "t1", trades[0].ID)
	assert.Equal(t, "t2", trades[1].ID)
	assert.Equal(t, domain.TradeClosed, trades[0].Status)
	assert.Equal(t, domain.MarketMicroFutures, trades[0].Market)
	assert.Equal(t, "250.25", trades[0].NetPnL.Decimal.StringFixed(2))
	assert.Equal(t, "21010.50", trades[0].ExitPrice.Decimal.StringFixed(2))
	assert.Nil(t, trades[0].ExitDate)
	assert.True(t, early.EntryDate.Equal(trades[0].EntryDate))
	assert.True(t, trades[0].EntryFees.IsZero())
}

func TestSQLiteStorage_SaveTrade_NullPnL(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	open := makeTrade("open", "a1", start, 0)
	open.Status = domain.TradeOpen
	open.NetPnL = decimal.NullDecimal{}
	open.GrossPnL = decimal.NullDecimal{}
	open.ExitPrice = decimal.NullDecimal{}
	require.NoError(t, db.SaveTrade(ctx, open))

	trades, err := db.ListTrades(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.False(t, trades[0].NetPnL.Valid)
	assert.False(t, trades[0].ExitPrice.Valid)
	assert.False(t, trades[0].CountsTowardBalance())
}

func TestSQLiteStorage_SnapshotsUpsert(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	snap := domain.DailySnapshot{
		ID:                    "s1",
		AccountID:             "a1",
		Date:                  start.Add(21 * time.Hour),
		EndOfDayBalance:       domain.Money(50500),
		AccountHigh:           domain.Money(50500),
		CalculatedLimit:       domain.Money(48500),
		NetPnLToDate:          domain.Money(500),
		DailyPnL:              domain.Money(500),
		IsWithinTrailingLimit: true,
		IsWithinDailyLimit:    true,
	}
	require.NoError(t, db.SaveSnapshot(ctx, snap))

	snap.ID = "s1-rerun"
	snap.EndOfDayBalance = domain.Money(50400)
	snap.DailyLimit = domain.NullMoney(49400)
	require.NoError(t, db.SaveSnapshot(ctx, snap))

	next := snap
	next.ID = "s2"
	next.Date = start.AddDate(0, 0, 1)
	next.IsWithinDailyLimit = false
	require.NoError(t, db.SaveSnapshot(ctx, next))

	got, err := db.ListSnapshots(ctx, "a1", start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, start, got[0].Date)
	assert.Equal(t, "50400.00", got[0].EndOfDayBalance.StringFixed(2))
	assert.True(t, got[0].DailyLimit.Valid)
	assert.False(t, got[1].IsWithinDailyLimit)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestSQLiteStorage_ListSnapshots_Range(t *testing.T) {
	db := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveSnapshot(ctx, domain.DailySnapshot{
			ID:        "s",
			AccountID: "a1",
			Date:      start.AddDate(0, 0, i),
		}))
	}

	got, err := db.ListSnapshots(ctx, "a1", start.AddDate(0, 0, 1), start.AddDate(0, 0, 3).Add(5*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 3)

	none, err := db.ListSnapshots(ctx, "other", start, start.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, none)
}
