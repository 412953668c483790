package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func validInput() TradeInput {
	return TradeInput{
		Symbol:     "ESZ4",
		Market:     MarketFutures,
		Quantity:   1,
		EntryPrice: 5000,
		ExitPrice:  ptr(5010),
		NetPnL:     ptr(497.2),
		GrossPnL:   ptr(500),
		Commission: 2.8,
	}
}

func TestValidateTrade_Valid(t *testing.T) {
	r := ValidateTrade(validInput())
	require.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
	require.NotNil(t, r.Sanitized)
	assertMoney(t, "497.20", r.Sanitized.NetPnL.Decimal)
	assertMoney(t, "50.00", r.Sanitized.ContractMultiplier)
	assert.False(t, r.Sanitized.StopLoss.Valid)
}

func TestValidateTrade_SanitizedIsRounded(t *testing.T) {
	in := validInput()
	in.NetPnL = ptr(10.125)
	in.GrossPnL = ptr(12.925)
	r := ValidateTrade(in)
	require.True(t, r.IsValid)
	assertMoney(t, "10.13", r.Sanitized.NetPnL.Decimal)
	assertMoney(t, "12.93", r.Sanitized.GrossPnL.Decimal)
}

func TestValidateTrade_HardErrors(t *testing.T) {
	cases := map[string]func(*TradeInput){
		"zero entry":        func(in *TradeInput) { in.EntryPrice = 0 },
		"negative quantity": func(in *TradeInput) { in.Quantity = -1 },
		"negative fee":      func(in *TradeInput) { in.ExitFees = -0.5 },
		"NaN net":           func(in *TradeInput) { in.NetPnL = ptr(math.NaN()) },
		"Inf gross":         func(in *TradeInput) { in.GrossPnL = ptr(math.Inf(1)) },
		"zero exit":         func(in *TradeInput) { in.ExitPrice = ptr(0) },
		"negative stop":     func(in *TradeInput) { in.StopLoss = ptr(-1) },
		"zero target":       func(in *TradeInput) { in.TakeProfit = ptr(0) },
		"negative risk":     func(in *TradeInput) { in.RiskAmount = ptr(-100) },
		"zero multiplier":   func(in *TradeInput) { in.ContractMultiplier = ptr(0) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			r := ValidateTrade(in)
			assert.False(t, r.IsValid)
			assert.NotEmpty(t, r.Errors)
			assert.Nil(t, r.Sanitized)
		})
	}
}

func TestValidateTrade_ZeroRiskIsAllowed(t *testing.T) {
	in := validInput()
	in.RiskAmount = ptr(0)
	assert.True(t, ValidateTrade(in).IsValid)
}

func TestValidateTrade_PriceMoveWarning(t *testing.T) {
	in := validInput()
	in.ExitPrice = ptr(8000)
	in.NetPnL, in.GrossPnL = nil, nil
	r := ValidateTrade(in)
	assert.True(t, r.IsValid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "exit price differs")
}

func TestValidateTrade_FeesOverNotionalWarning(t *testing.T) {
	in := TradeInput{
		Symbol:     "PENNY",
		Market:     MarketStocks,
		Quantity:   10,
		EntryPrice: 1,
		Commission: 5,
	}
	r := ValidateTrade(in)
	assert.True(t, r.IsValid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "exceed 10%")
}

func TestValidateTrade_PnLMismatchWarning(t *testing.T) {
	in := validInput()
	in.NetPnL = ptr(500) // ignores the 2.80 commission
	r := ValidateTrade(in)
	assert.True(t, r.IsValid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "P&L mismatch")
}

func TestValidateTrade_PnLWithinTolerance(t *testing.T) {
	in := validInput()
	in.NetPnL = ptr(497.21)
	assert.Empty(t, ValidateTrade(in).Warnings)
}

func configFor(start, trailing float64) AccountConfig {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return AccountConfig{
		AccountType:            AccountTopstep50K,
		StartingBalance:        NullMoney(start),
		TrailingDrawdownAmount: NullMoney(trailing),
		AccountStartDate:       &d,
	}
}

func TestValidateAccountConfig_Valid(t *testing.T) {
	r := ValidateAccountConfig(configFor(50000, 2000))
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
}

func TestValidateAccountConfig_TrailingNotBelowStart(t *testing.T) {
	r := ValidateAccountConfig(configFor(2000, 2000))
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors[0], "must be less than starting balance")
}

func TestValidateAccountConfig_MissingPrerequisites(t *testing.T) {
	r := ValidateAccountConfig(AccountConfig{AccountType: AccountCustom})
	assert.False(t, r.IsValid)
	assert.Len(t, r.Errors, 2)
}

func TestValidateAccountConfig_NegativeStart(t *testing.T) {
	r := ValidateAccountConfig(configFor(-5, 2000))
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors, "starting balance must be positive")
}

func TestValidateAccountConfig_DailyLoss(t *testing.T) {
	cfg := configFor(50000, 2000)
	cfg.DailyLossLimit = NullMoney(-1)
	assert.False(t, ValidateAccountConfig(cfg).IsValid)

	cfg.DailyLossLimit = NullMoney(1000)
	assert.True(t, ValidateAccountConfig(cfg).IsValid)
}

func TestValidateAccountConfig_Warnings(t *testing.T) {
	cfg := configFor(50000, 2000)
	cfg.CurrentAccountHigh = NullMoney(49000)
	cfg.FirstPayoutReceived = true
	r := ValidateAccountConfig(cfg)
	assert.True(t, r.IsValid)
	assert.Len(t, r.Warnings, 2)
}

func TestValidateTrade_QuantityRoundsToZero(t *testing.T) {
	in := TradeInput{
		Symbol:     "BTCUSD",
		Market:     MarketCrypto,
		Quantity:   0.001,
		EntryPrice: 60000,
	}
	r := ValidateTrade(in)
	assert.True(t, r.IsValid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "quantity 0.001 rounds to 0.00")
	assert.True(t, r.Sanitized.Quantity.IsZero())
}

func TestValidateAccountConfig_UnknownType(t *testing.T) {
	cfg := configFor(50000, 2000)
	cfg.AccountType = "topstep_50k"
	r := ValidateAccountConfig(cfg)
	assert.False(t, r.IsValid)
	assert.Contains(t, r.Errors, `unknown account type "topstep_50k"`)

	cfg.AccountType = ParseAccountType(" topstep_50k ")
	assert.True(t, ValidateAccountConfig(cfg).IsValid)
}
