package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the prop-firm tier (or funded/custom kind) of an account.
type AccountType string

const (
	AccountTopstep50K  AccountType = "TOPSTEP_50K"
	AccountTopstep100K AccountType = "TOPSTEP_100K"
	AccountTopstep150K AccountType = "TOPSTEP_150K"
	AccountApex50K     AccountType = "APEX_50K"
	AccountApex100K    AccountType = "APEX_100K"
	AccountFTMO100K    AccountType = "FTMO_100K"
	AccountLiveFunded  AccountType = "LIVE_FUNDED"
	AccountCustom      AccountType = "CUSTOM"
)

// AccountTypes lists every known tier, in display order.
var AccountTypes = []AccountType{
	AccountTopstep50K,
	AccountTopstep100K,
	AccountTopstep150K,
	AccountApex50K,
	AccountApex100K,
	AccountFTMO100K,
	AccountLiveFunded,
	AccountCustom,
}

// ParseAccountType upper-cases and trims s. The result may still be unknown;
// check it with IsValid.
func ParseAccountType(s string) AccountType {
	return AccountType(normalizeEnum(s))
}

// IsValid reports whether t is one of AccountTypes.
func (t AccountType) IsValid() bool {
	return slices.Contains(AccountTypes, t)
}

// fallbackTrailingDrawdown applies to tiers that were never given an amount.
var fallbackTrailingDrawdown = decimal.NewFromInt(2000)

// DefaultTrailingDrawdown returns the published trailing drawdown of a tier.
// Unknown tiers get the conservative 50K amount.
func DefaultTrailingDrawdown(t AccountType) decimal.Decimal {
	switch t {
	case AccountTopstep50K:
		return decimal.NewFromInt(2000)
	case AccountTopstep100K:
		return decimal.NewFromInt(3000)
	case AccountTopstep150K:
		return decimal.NewFromInt(4500)
	case AccountApex50K:
		return decimal.NewFromInt(2500)
	case AccountApex100K:
		return decimal.NewFromInt(3000)
	case AccountFTMO100K:
		return decimal.NewFromInt(10000)
	case AccountLiveFunded, AccountCustom:
		return fallbackTrailingDrawdown
	default:
		return fallbackTrailingDrawdown
	}
}

// AccountConfig is the risk configuration of an account. It changes only
// through explicit settings updates.
type AccountConfig struct {
	AccountType            AccountType
	StartingBalance        decimal.NullDecimal
	TrailingDrawdownAmount decimal.NullDecimal
	DailyLossLimit         decimal.NullDecimal
	AccountStartDate       *time.Time
	IsLiveFunded           bool
	FirstPayoutReceived    bool
	// CurrentAccountHigh is the high-water mark persisted by the end-of-day
	// job. Authoritative when present, but may lag behind the ledger.
	CurrentAccountHigh decimal.NullDecimal
	// DataSource describes where the trades came from ("topstep csv", ...);
	// it takes priority over AccountType when detecting the broker.
	DataSource string
}

// TrailingAmount returns the configured trailing drawdown, or the tier
// default when unset or non-positive.
func (c AccountConfig) TrailingAmount() decimal.Decimal {
	if c.TrailingDrawdownAmount.Valid && c.TrailingDrawdownAmount.Decimal.IsPositive() {
		return Round(c.TrailingDrawdownAmount.Decimal)
	}
	return DefaultTrailingDrawdown(c.AccountType)
}

// Configured reports whether the config has what metrics need.
func (c AccountConfig) Configured() bool {
	return c.StartingBalance.Valid && c.AccountStartDate != nil
}

// Account is a trading account and its risk settings.
type Account struct {
	ID        string
	Name      string
	Config    AccountConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountMetrics is the risk snapshot of an account at a reference time.
// Consumers must treat it as read-only.
type AccountMetrics struct {
	CurrentBalance          decimal.Decimal
	AccountHigh             decimal.Decimal
	CalculatedTrailingLimit decimal.Decimal
	CalculatedDailyLimit    decimal.NullDecimal
	TrailingBuffer          decimal.Decimal
	DailyBuffer             decimal.NullDecimal
	IsWithinTrailingLimit   bool
	IsWithinDailyLimit      bool
	NetPnLToDate            decimal.Decimal
	DailyPnL                decimal.Decimal

	StartingBalance        decimal.Decimal
	TrailingDrawdownAmount decimal.Decimal
	Broker                 Broker
	ReferenceTime          time.Time
	Warnings               []string
}

// ExtendedMetrics adds fee transparency to AccountMetrics.
type ExtendedMetrics struct {
	AccountMetrics

	TotalFeesToDate     decimal.Decimal
	DailyFees           decimal.Decimal
	GrossPnLToDate      decimal.Decimal
	FeeImpactPercentage decimal.Decimal
	AverageFeePerTrade  decimal.Decimal
	ClosedTrades        int
}

// DailySnapshot is the end-of-day history row written by the snapshot job.
type DailySnapshot struct {
	ID                    string
	AccountID             string
	Date                  time.Time // UTC midnight
	EndOfDayBalance       decimal.Decimal
	AccountHigh           decimal.Decimal
	CalculatedLimit       decimal.Decimal
	DailyLimit            decimal.NullDecimal
	NetPnLToDate          decimal.Decimal
	DailyPnL              decimal.Decimal
	DailyFees             decimal.Decimal
	IsWithinTrailingLimit bool
	IsWithinDailyLimit    bool
	CreatedAt             time.Time
}

// SnapshotFromMetrics builds the history row for m's reference day.
func SnapshotFromMetrics(accountID string, m ExtendedMetrics) DailySnapshot {
	return DailySnapshot{
		AccountID:             accountID,
		Date:                  DayOf(m.ReferenceTime),
		EndOfDayBalance:       m.CurrentBalance,
		AccountHigh:           m.AccountHigh,
		CalculatedLimit:       m.CalculatedTrailingLimit,
		DailyLimit:            m.CalculatedDailyLimit,
		NetPnLToDate:          m.NetPnLToDate,
		DailyPnL:              m.DailyPnL,
		DailyFees:             m.DailyFees,
		IsWithinTrailingLimit: m.IsWithinTrailingLimit,
		IsWithinDailyLimit:    m.IsWithinDailyLimit,
	}
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
