package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBaseSymbol(t *testing.T) {
	cases := map[string]string{
		"ESZ4":   "ES",
		"MNQH25": "MNQ",
		"M2KZ4":  "M2K",
		"6EM25":  "6E",
		" esz4 ": "ES",
		"ES":     "ES",
		"MES":    "MES",
		"AAPL":   "AAPL",
	}
	for in, want := range cases {
		assert.Equal(t, want, BaseSymbol(in), in)
	}
}

func TestMultiplier_Futures(t *testing.T) {
	assertMoney(t, "50.00", Multiplier("ES", MarketFutures))
	assertMoney(t, "50.00", Multiplier("ESZ4", MarketFutures))
	assertMoney(t, "2.00", Multiplier("MNQH25", MarketMicroFutures))
	assertMoney(t, "0.50", Multiplier("MYM", MarketMicroFutures))
}

func TestMultiplier_UnknownOrNonFutures(t *testing.T) {
	assertMoney(t, "1.00", Multiplier("XYZ", MarketFutures))
	assertMoney(t, "1.00", Multiplier("ES", MarketStocks))
	assertMoney(t, "1.00", Multiplier("EURUSD", MarketForex))
}

func TestFees_Fallbacks(t *testing.T) {
	// exact
	assertMoney(t, "0.37", Fees("MES", BrokerTopstep).EntryFee)
	// stripped expiration code
	assertMoney(t, "2.80", Fees("ESZ4", BrokerTopstep).RoundTurnFee)
	// broker default row
	assertMoney(t, "1.40", Fees("ZB", BrokerTopstep).EntryFee)
	// broker with only a default row
	assertMoney(t, "3.00", Fees("ES", BrokerMyForexFunds).ExitFee)
	// unknown broker
	assert.Equal(t, genericFees, Fees("ES", Broker("SOMEBODY")))
	assert.Equal(t, genericFees, Fees("ES", BrokerGeneric))
}

func TestFeeSchedule_ForQuantity(t *testing.T) {
	f := Fees("ES", BrokerTradovate)
	entry, exit := f.ForQuantity(decimal.NewFromInt(2))
	// (0.99 + 0.13/2) × 2
	assertMoney(t, "2.11", entry)
	assertMoney(t, "2.11", exit)
	assertMoney(t, "2.11", f.PerContract())
}

func TestDetectBroker_DataSourceWins(t *testing.T) {
	assert.Equal(t, BrokerApex, DetectBroker(AccountTopstep50K, "Apex Trader Funding CSV"))
	assert.Equal(t, BrokerTradovate, DetectBroker(AccountCustom, "tradovate-export"))
	assert.Equal(t, BrokerNinjaTrader, DetectBroker(AccountCustom, "NinjaTrader 8"))
	assert.Equal(t, BrokerMyForexFunds, DetectBroker(AccountCustom, "MFF statement"))
}

func TestDetectBroker_AccountTypeInference(t *testing.T) {
	assert.Equal(t, BrokerTopstep, DetectBroker(AccountTopstep150K, ""))
	assert.Equal(t, BrokerTopstep, DetectBroker(AccountLiveFunded, "manual"))
	assert.Equal(t, BrokerApex, DetectBroker(AccountApex100K, ""))
	assert.Equal(t, BrokerFTMO, DetectBroker(AccountFTMO100K, ""))
}

func TestDetectBroker_ConservativeDefault(t *testing.T) {
	assert.Equal(t, BrokerTopstep, DetectBroker(AccountCustom, ""))
	assert.Equal(t, BrokerTopstep, DetectBroker(AccountType("WHATEVER"), "spreadsheet"))
}

func TestDefaultTrailingDrawdown_EveryTier(t *testing.T) {
	for _, at := range AccountTypes {
		assert.True(t, DefaultTrailingDrawdown(at).IsPositive(), at)
	}
	assertMoney(t, "3000.00", DefaultTrailingDrawdown(AccountTopstep100K))
	assertMoney(t, "2000.00", DefaultTrailingDrawdown(AccountType("UNKNOWN")))
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, TradeClosed, ParseTradeStatus(" closed"))
	assert.Equal(t, MarketMicroFutures, ParseMarketType("micro_futures "))
	assert.Equal(t, SideShort, ParseSide("Short"))
	assert.Equal(t, AccountApex100K, ParseAccountType("apex_100k"))

	assert.True(t, MarketOptions.IsValid())
	assert.False(t, MarketType("futures").IsValid())
	assert.False(t, Side("BUY").IsValid())
	assert.False(t, TradeStatus("").IsValid())
	assert.False(t, AccountType("TOPSTEP_75K").IsValid())
	for _, at := range AccountTypes {
		assert.True(t, at.IsValid(), at)
	}
}
