package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	priceMoveWarnRatio = 0.5  // exit differs from entry by more than 50%
	feeNotionalWarn    = 0.10 // fees above 10% of notional
	pnlTolerance       = 0.01 // dollars
)

// TradeInput is a trade as typed or imported, before it is rounded and
// stored. Optional fields are nil when not provided.
type TradeInput struct {
	Symbol             string
	Market             MarketType
	Quantity           float64
	EntryPrice         float64
	ExitPrice          *float64
	StopLoss           *float64
	TakeProfit         *float64
	RiskAmount         *float64
	NetPnL             *float64
	GrossPnL           *float64
	Commission         float64
	EntryFees          float64
	ExitFees           float64
	ContractMultiplier *float64
}

// SanitizedTrade is TradeInput with every number rounded to cents.
type SanitizedTrade struct {
	Quantity           decimal.Decimal
	EntryPrice         decimal.Decimal
	ExitPrice          decimal.NullDecimal
	StopLoss           decimal.NullDecimal
	TakeProfit         decimal.NullDecimal
	RiskAmount         decimal.NullDecimal
	NetPnL             decimal.NullDecimal
	GrossPnL           decimal.NullDecimal
	Commission         decimal.Decimal
	EntryFees          decimal.Decimal
	ExitFees           decimal.Decimal
	ContractMultiplier decimal.Decimal
}

// ValidationResult carries blocking errors and advisory warnings.
// Sanitized is only set by ValidateTrade when IsValid.
type ValidationResult struct {
	IsValid   bool
	Errors    []string
	Warnings  []string
	Sanitized *SanitizedTrade
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateTrade sanity-checks the numbers of a single trade. It is advisory
// to the trade-entry layer; the metrics engine trusts stored trades.
func ValidateTrade(in TradeInput) ValidationResult {
	var r ValidationResult

	if !finite(in.EntryPrice) || in.EntryPrice <= 0 {
		r.fail("entry price must be positive")
	}
	if !finite(in.Quantity) || in.Quantity <= 0 {
		r.fail("quantity must be positive")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"commission", in.Commission},
		{"entry fees", in.EntryFees},
		{"exit fees", in.ExitFees},
	} {
		if !finite(f.value) || f.value < 0 {
			r.fail("%s cannot be negative", f.name)
		}
	}
	if in.NetPnL != nil && !finite(*in.NetPnL) {
		r.fail("net P&L must be a finite number")
	}
	if in.GrossPnL != nil && !finite(*in.GrossPnL) {
		r.fail("gross P&L must be a finite number")
	}
	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"exit price", in.ExitPrice},
		{"stop loss", in.StopLoss},
		{"take profit", in.TakeProfit},
	} {
		if f.value != nil && (!finite(*f.value) || *f.value <= 0) {
			r.fail("%s must be positive when provided", f.name)
		}
	}
	if in.RiskAmount != nil && (!finite(*in.RiskAmount) || *in.RiskAmount < 0) {
		r.fail("risk amount cannot be negative")
	}
	if in.ContractMultiplier != nil && (!finite(*in.ContractMultiplier) || *in.ContractMultiplier <= 0) {
		r.fail("contract multiplier must be positive")
	}

	r.IsValid = len(r.Errors) == 0
	if !r.IsValid {
		return r
	}

	totalFees := in.Commission + in.EntryFees + in.ExitFees

	if in.ExitPrice != nil {
		move := math.Abs(*in.ExitPrice-in.EntryPrice) / in.EntryPrice
		if move > priceMoveWarnRatio {
			r.warn("exit price differs from entry price by %.0f%%, check for a typo", move*100)
		}
	}

	multiplier := in.multiplier()
	notional := in.EntryPrice * in.Quantity * multiplier
	if notional > 0 && totalFees > notional*feeNotionalWarn {
		r.warn("fees ($%.2f) exceed 10%% of trade value ($%.2f)", totalFees, notional)
	}

	if in.NetPnL != nil && in.GrossPnL != nil {
		expected := *in.GrossPnL - totalFees
		if math.Abs(*in.NetPnL-expected) > pnlTolerance+1e-9 {
			r.warn("P&L mismatch detected: net %.2f, gross %.2f minus fees %.2f is %.2f",
				*in.NetPnL, *in.GrossPnL, totalFees, expected)
		}
	}

	if RoundFloat(in.Quantity).IsZero() {
		r.warn("quantity %g rounds to 0.00 and will be stored as zero", in.Quantity)
	}

	r.Sanitized = &SanitizedTrade{
		Quantity:           RoundFloat(in.Quantity),
		EntryPrice:         RoundFloat(in.EntryPrice),
		ExitPrice:          nullRounded(in.ExitPrice),
		StopLoss:           nullRounded(in.StopLoss),
		TakeProfit:         nullRounded(in.TakeProfit),
		RiskAmount:         nullRounded(in.RiskAmount),
		NetPnL:             nullRounded(in.NetPnL),
		GrossPnL:           nullRounded(in.GrossPnL),
		Commission:         RoundFloat(in.Commission),
		EntryFees:          RoundFloat(in.EntryFees),
		ExitFees:           RoundFloat(in.ExitFees),
		ContractMultiplier: RoundFloat(multiplier),
	}
	return r
}

// multiplier returns the explicit multiplier or the contract table's.
func (in TradeInput) multiplier() float64 {
	if in.ContractMultiplier != nil {
		return *in.ContractMultiplier
	}
	return Multiplier(in.Symbol, in.Market).InexactFloat64()
}

func nullRounded(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(RoundFloat(*f))
}

// ValidateAccountConfig reports configuration errors that make the risk
// numbers meaningless. Metrics computation never fails on them; this is for
// the settings layer to refuse the update.
func ValidateAccountConfig(cfg AccountConfig) ValidationResult {
	var r ValidationResult

	if !cfg.AccountType.IsValid() {
		r.fail("unknown account type %q", cfg.AccountType)
	}
	if !cfg.StartingBalance.Valid {
		r.fail("starting balance is required")
	} else if !cfg.StartingBalance.Decimal.IsPositive() {
		r.fail("starting balance must be positive")
	}
	if cfg.AccountStartDate == nil {
		r.fail("account start date is required")
	}

	trailing := cfg.TrailingAmount()
	if cfg.TrailingDrawdownAmount.Valid && !cfg.TrailingDrawdownAmount.Decimal.IsPositive() {
		r.fail("trailing drawdown amount must be positive")
	} else if cfg.StartingBalance.Valid && trailing.GreaterThanOrEqual(cfg.StartingBalance.Decimal) {
		r.fail("trailing drawdown amount (%s) must be less than starting balance (%s)",
			trailing.StringFixed(CentPlaces), cfg.StartingBalance.Decimal.StringFixed(CentPlaces))
	}

	if cfg.DailyLossLimit.Valid {
		if cfg.DailyLossLimit.Decimal.IsNegative() {
			r.fail("daily loss limit cannot be negative")
		} else if cfg.StartingBalance.Valid && cfg.DailyLossLimit.Decimal.GreaterThanOrEqual(cfg.StartingBalance.Decimal) {
			r.fail("daily loss limit must be less than starting balance")
		}
	}

	if cfg.CurrentAccountHigh.Valid && cfg.StartingBalance.Valid &&
		cfg.CurrentAccountHigh.Decimal.LessThan(cfg.StartingBalance.Decimal) {
		r.warn("recorded account high is below starting balance and will be ignored")
	}
	if cfg.FirstPayoutReceived && !cfg.IsLiveFunded {
		r.warn("first payout is only meaningful for live funded accounts")
	}

	r.IsValid = len(r.Errors) == 0
	return r
}
