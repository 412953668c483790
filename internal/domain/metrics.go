package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ComputeMetrics builds the risk snapshot of an account from its config and
// ledger at reference time ref (used only to decide what "today" is).
// It returns false when the account has no starting balance or start date:
// callers show "not configured yet" rather than an error.
func ComputeMetrics(cfg AccountConfig, trades []Trade, ref time.Time) (AccountMetrics, bool) {
	if !cfg.Configured() {
		return AccountMetrics{}, false
	}

	start := Round(cfg.StartingBalance.Decimal)
	since := cfg.AccountStartDate

	balance := CurrentBalance(start, trades, since)
	calculatedHigh := AccountHigh(start, trades, since)

	stored := start
	if cfg.CurrentAccountHigh.Valid {
		stored = Round(cfg.CurrentAccountHigh.Decimal)
	}
	// The stored high may be stale, and a trade recorded minutes ago may have
	// pushed the live balance above both.
	high := MaxDecimal(stored, calculatedHigh, balance, start)

	trailingAmount := cfg.TrailingAmount()
	broker := DetectBroker(cfg.AccountType, cfg.DataSource)

	trailingLimit := TrailingLimit(high, trailingAmount, start,
		cfg.IsLiveFunded, cfg.FirstPayoutReceived, broker)
	dailyLimit := DailyLimit(balance, cfg.DailyLossLimit)

	m := AccountMetrics{
		CurrentBalance:          balance,
		AccountHigh:             high,
		CalculatedTrailingLimit: trailingLimit,
		CalculatedDailyLimit:    dailyLimit,
		TrailingBuffer:          Buffer(balance, trailingLimit),
		DailyBuffer:             NullableBuffer(balance, dailyLimit),
		IsWithinTrailingLimit:   IsCompliant(balance, trailingLimit),
		IsWithinDailyLimit:      IsCompliantNullable(balance, dailyLimit),
		NetPnLToDate:            Subtract(balance, start),
		DailyPnL:                DailyPnL(trades, since, ref),
		StartingBalance:         start,
		TrailingDrawdownAmount:  trailingAmount,
		Broker:                  broker,
		ReferenceTime:           ref,
	}

	if cfg.CurrentAccountHigh.Valid && balance.GreaterThan(stored) {
		m.Warnings = append(m.Warnings, fmt.Sprintf(
			"current balance %s exceeds recorded account high %s - may need updating",
			balance.StringFixed(CentPlaces), stored.StringFixed(CentPlaces)))
	}
	return m, true
}

// ComputeExtendedMetrics is ComputeMetrics plus fee transparency over the
// same settled trades.
func ComputeExtendedMetrics(cfg AccountConfig, trades []Trade, ref time.Time) (ExtendedMetrics, bool) {
	base, ok := ComputeMetrics(cfg, trades, ref)
	if !ok {
		return ExtendedMetrics{}, false
	}

	totalFees, dailyFees, gross := decimal.Zero, decimal.Zero, decimal.Zero
	settled := settledSince(trades, cfg.AccountStartDate)
	for _, t := range settled {
		fees := t.TotalFees()
		totalFees = Add(totalFees, fees)
		gross = Add(gross, t.Gross())
		if sameDay(t.EntryDate, ref) {
			dailyFees = Add(dailyFees, fees)
		}
		if w, bad := pnlMismatch(t); bad {
			base.Warnings = append(base.Warnings, w)
		}
	}

	avg := decimal.Zero
	if len(settled) > 0 {
		avg = Round(totalFees.Div(decimal.NewFromInt(int64(len(settled)))))
	}

	return ExtendedMetrics{
		AccountMetrics:      base,
		TotalFeesToDate:     totalFees,
		DailyFees:           dailyFees,
		GrossPnLToDate:      gross,
		FeeImpactPercentage: Percent(totalFees, gross),
		AverageFeePerTrade:  avg,
		ClosedTrades:        len(settled),
	}, true
}

var pnlMismatchTolerance = decimal.RequireFromString("0.01")

// pnlMismatch flags a trade whose net P&L is not gross minus fees.
func pnlMismatch(t Trade) (string, bool) {
	if !t.GrossPnL.Valid {
		return "", false
	}
	expected := Subtract(t.GrossPnL.Decimal, t.TotalFees())
	diff := Subtract(t.NetPnL.Decimal, expected).Abs()
	if diff.LessThanOrEqual(pnlMismatchTolerance) {
		return "", false
	}
	return fmt.Sprintf("P&L mismatch detected on trade %s: net %s, expected %s",
		t.ID, Round(t.NetPnL.Decimal).StringFixed(CentPlaces), expected.StringFixed(CentPlaces)), true
}
