package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus is the lifecycle of a journal entry.
type TradeStatus string

const (
	TradeOpen      TradeStatus = "OPEN"
	TradeClosed    TradeStatus = "CLOSED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// ParseTradeStatus upper-cases and trims s.
func ParseTradeStatus(s string) TradeStatus {
	return TradeStatus(normalizeEnum(s))
}

// IsValid reports whether s is a known status.
func (s TradeStatus) IsValid() bool {
	switch s {
	case TradeOpen, TradeClosed, TradeCancelled:
		return true
	}
	return false
}

// MarketType classifies the instrument a trade was placed on.
type MarketType string

const (
	MarketFutures      MarketType = "FUTURES"
	MarketMicroFutures MarketType = "MICRO_FUTURES"
	MarketStocks       MarketType = "STOCKS"
	MarketForex        MarketType = "FOREX"
	MarketCrypto       MarketType = "CRYPTO"
	MarketOptions      MarketType = "OPTIONS"
)

// IsFutures reports whether contract multipliers apply to the market.
func (m MarketType) IsFutures() bool {
	return m == MarketFutures || m == MarketMicroFutures
}

// ParseMarketType upper-cases and trims s.
func ParseMarketType(s string) MarketType {
	return MarketType(normalizeEnum(s))
}

// IsValid reports whether m is a known market.
func (m MarketType) IsValid() bool {
	switch m {
	case MarketFutures, MarketMicroFutures, MarketStocks, MarketForex, MarketCrypto, MarketOptions:
		return true
	}
	return false
}

// Side is the trade direction.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide upper-cases and trims s.
func ParseSide(s string) Side {
	return Side(normalizeEnum(s))
}

// IsValid reports whether s is LONG or SHORT.
func (s Side) IsValid() bool {
	return s == SideLong || s == SideShort
}

func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Trade is one ledger entry. The risk engine only reads trades; they are
// written by the trade-entry layer (see application/account).
type Trade struct {
	ID                 string
	AccountID          string
	Symbol             string
	Market             MarketType
	Side               Side
	Quantity           decimal.Decimal
	EntryPrice         decimal.Decimal
	ExitPrice          decimal.NullDecimal
	EntryDate          time.Time
	ExitDate           *time.Time
	Status             TradeStatus
	NetPnL             decimal.NullDecimal
	GrossPnL           decimal.NullDecimal
	Commission         decimal.Decimal
	EntryFees          decimal.Decimal
	ExitFees           decimal.Decimal
	ContractMultiplier decimal.Decimal
	Notes              string
}

// TotalFees is commission + entry fees + exit fees.
func (t Trade) TotalFees() decimal.Decimal {
	return Add(t.Commission, t.EntryFees, t.ExitFees)
}

// CountsTowardBalance reports whether the trade settles into the balance:
// CLOSED with a recorded net P&L.
func (t Trade) CountsTowardBalance() bool {
	return t.Status == TradeClosed && t.NetPnL.Valid
}

// Gross returns the recorded gross P&L, or net + fees when gross was never
// recorded.
func (t Trade) Gross() decimal.Decimal {
	if t.GrossPnL.Valid {
		return Round(t.GrossPnL.Decimal)
	}
	return Add(t.NetPnL.Decimal, t.TotalFees())
}

// settledSince returns the trades that count toward the balance and were
// entered on or after since (nil means no lower bound).
func settledSince(trades []Trade, since *time.Time) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if !t.CountsTowardBalance() {
			continue
		}
		if since != nil && t.EntryDate.Before(*since) {
			continue
		}
		out = append(out, t)
	}
	return out
}
