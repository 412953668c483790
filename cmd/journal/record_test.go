package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/adapters/cache"
	"github.com/alejandrodnm/tradejournal/internal/adapters/notify"
	"github.com/alejandrodnm/tradejournal/internal/adapters/storage"
	"github.com/alejandrodnm/tradejournal/internal/application/account"
	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `
accounts:
  - name: Combine 50K
    type: TOPSTEP_50K
    starting_balance: 50000
    daily_loss_limit: 1000
    start_date: 2024-03-01
    data_source: topstep export
    trades:
      - symbol: MESH4
        market: MICRO_FUTURES
        side: LONG
        quantity: 2
        entry_price: 5100
        exit_price: 5110
        net_pnl: 100
        entry_date: 2024-03-01T15:00:00Z
      - symbol: MESH4
        market: MICRO_FUTURES
        side: SHORT
        quantity: 2
        entry_price: 5120
        exit_price: 5125
        net_pnl: -50
        entry_date: 2024-03-04T14:30:00Z
      - symbol: MESH4
        market: MICRO_FUTURES
        quantity: 0
        entry_price: 5120
        entry_date: 2024-03-04T15:30:00Z
  - name: Broken
    type: APEX_50K
    trades:
      - {symbol: ES, quantity: 1, entry_price: 5000, entry_date: 2024-03-04T15:30:00Z}
`

func newTestService(t *testing.T) (*account.Service, *bytes.Buffer) {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := func() time.Time { return time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC) }
	svc := account.NewService(db, cache.NewMemoryWithClock(time.Minute, clock)).WithClock(clock)
	return svc, &bytes.Buffer{}
}

func TestRecordYAML(t *testing.T) {
	svc, out := newTestService(t)
	ctx := context.Background()
	console := notify.NewConsoleWriter(out, false)

	sum, err := recordYAML(ctx, svc, console, []byte(sampleFile))
	require.NoError(t, err)
	assert.Equal(t, recordSummary{Accounts: 1, Trades: 2, Rejected: 2}, sum)
	assert.Contains(t, out.String(), "quantity must be positive")
	assert.Contains(t, out.String(), "account Broken: INVALID")

	accts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 1)

	_, m, ok, err := svc.Metrics(ctx, accts[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.BrokerTopstep, m.Broker)
	assert.Equal(t, "50050.00", m.CurrentBalance.StringFixed(2))
	assert.Equal(t, "50100.00", m.AccountHigh.StringFixed(2))
	// 2 MES × 0.37 por lado, dos trades
	assert.Equal(t, "2.96", m.TotalFeesToDate.StringFixed(2))
	assert.Equal(t, "1.48", m.DailyFees.StringFixed(2))
}

func TestRecordYAML_ExistingAccount(t *testing.T) {
	svc, out := newTestService(t)
	ctx := context.Background()
	console := notify.NewConsoleWriter(out, false)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	acct, _, err := svc.CreateAccount(ctx, "Tradovate", domain.AccountConfig{
		AccountType:      domain.AccountCustom,
		StartingBalance:  domain.NullMoney(25000),
		AccountStartDate: &start,
		DataSource:       "tradovate",
	})
	require.NoError(t, err)

	file := `
trades:
  - account_id: ` + acct.ID + `
    symbol: ESM4
    quantity: 1
    entry_price: 5200
    exit_price: 5202
    net_pnl: 97.75
    entry_date: 2024-03-04T15:00:00Z
`
	sum, err := recordYAML(ctx, svc, console, []byte(file))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Trades)

	_, m, _, err := svc.Metrics(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BrokerTradovate, m.Broker)
	// (0.99 + 0.065 regulatorio) redondeado por lado
	assert.Equal(t, "2.12", m.TotalFeesToDate.StringFixed(2))
	assert.Equal(t, "25097.75", m.CurrentBalance.StringFixed(2))
}

func TestRecordYAML_UnknownAccount(t *testing.T) {
	svc, out := newTestService(t)
	console := notify.NewConsoleWriter(out, false)

	_, err := recordYAML(context.Background(), svc, console, []byte(`
trades:
  - {account_id: nope, symbol: ES, quantity: 1, entry_price: 5000, entry_date: 2024-03-04T15:00:00Z}
`))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordYAML_BadYAML(t *testing.T) {
	svc, out := newTestService(t)
	_, err := recordYAML(context.Background(), svc, notify.NewConsoleWriter(out, false), []byte("accounts: {"))
	assert.Error(t, err)
}

func TestRecordYAML_LowercaseEnums(t *testing.T) {
	svc, out := newTestService(t)
	ctx := context.Background()

	sum, err := recordYAML(ctx, svc, notify.NewConsoleWriter(out, false), []byte(`
accounts:
  - name: lower
    type: topstep_50k
    starting_balance: 50000
    start_date: 2024-03-01
    trades:
      - {symbol: MESH4, market: micro_futures, side: long, status: closed, quantity: 2,
         entry_price: 5100, exit_price: 5110, net_pnl: 100, entry_date: 2024-03-04T15:00:00Z}
      - {symbol: MESH4, market: futurez, quantity: 1, entry_price: 5100, entry_date: 2024-03-04T15:00:00Z}
`))
	require.NoError(t, err)
	assert.Equal(t, recordSummary{Accounts: 1, Trades: 1, Rejected: 1}, sum)
	assert.Contains(t, out.String(), `unknown market "FUTUREZ"`)

	accts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, domain.AccountTopstep50K, accts[0].Config.AccountType)

	_, m, ok, err := svc.Metrics(ctx, accts[0].ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "50100.00", m.CurrentBalance.StringFixed(2))
	assert.Equal(t, "1.48", m.TotalFeesToDate.StringFixed(2))
}
