package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Broker identifies whose fee schedule and drawdown rules apply.
type Broker string

const (
	BrokerTopstep      Broker = "TOPSTEP"
	BrokerApex         Broker = "APEX"
	BrokerFTMO         Broker = "FTMO"
	BrokerMyForexFunds Broker = "MYFOREXFUNDS"
	BrokerTradovate    Broker = "TRADOVATE"
	BrokerNinjaTrader  Broker = "NINJATRADER"
	BrokerGeneric      Broker = "GENERIC"
)

// FeeSchedule is the per-contract cost of a trade at a broker.
type FeeSchedule struct {
	EntryFee       decimal.Decimal
	ExitFee        decimal.Decimal
	RoundTurnFee   decimal.Decimal
	RegulatoryFees decimal.Decimal
	PlatformFee    decimal.Decimal
}

// PerContract is the all-in cost of one round turn of one contract.
func (f FeeSchedule) PerContract() decimal.Decimal {
	return Add(f.RoundTurnFee, f.RegulatoryFees, f.PlatformFee)
}

// ForQuantity returns the entry and exit fees of a position of qty contracts.
// Regulatory and platform fees are split evenly between both legs.
func (f FeeSchedule) ForQuantity(qty decimal.Decimal) (entry, exit decimal.Decimal) {
	extras := Add(f.RegulatoryFees, f.PlatformFee).Div(decimal.NewFromInt(2))
	entry = Round(f.EntryFee.Add(extras).Mul(qty))
	exit = Round(f.ExitFee.Add(extras).Mul(qty))
	return entry, exit
}

func fees(entry, exit, regulatory, platform string) FeeSchedule {
	e := decimal.RequireFromString(entry)
	x := decimal.RequireFromString(exit)
	return FeeSchedule{
		EntryFee:       e,
		ExitFee:        x,
		RoundTurnFee:   Add(e, x),
		RegulatoryFees: decimal.RequireFromString(regulatory),
		PlatformFee:    decimal.RequireFromString(platform),
	}
}

// defaultSymbol is the row used when a broker has no entry for a symbol.
const defaultSymbol = "DEFAULT"

var genericFees = fees("2.50", "2.50", "0.00", "0.00")

// feeTables holds per-broker rows keyed by base symbol.
var feeTables = map[Broker]map[string]FeeSchedule{
	BrokerTopstep: {
		"ES":          fees("1.40", "1.40", "0.00", "0.00"),
		"NQ":          fees("1.40", "1.40", "0.00", "0.00"),
		"YM":          fees("1.40", "1.40", "0.00", "0.00"),
		"RTY":         fees("1.40", "1.40", "0.00", "0.00"),
		"CL":          fees("1.52", "1.52", "0.00", "0.00"),
		"GC":          fees("1.54", "1.54", "0.00", "0.00"),
		"MES":         fees("0.37", "0.37", "0.00", "0.00"),
		"MNQ":         fees("0.37", "0.37", "0.00", "0.00"),
		"MYM":         fees("0.37", "0.37", "0.00", "0.00"),
		"M2K":         fees("0.37", "0.37", "0.00", "0.00"),
		"MCL":         fees("0.52", "0.52", "0.00", "0.00"),
		"MGC":         fees("0.52", "0.52", "0.00", "0.00"),
		defaultSymbol: fees("1.40", "1.40", "0.00", "0.00"),
	},
	BrokerApex: {
		"ES":          fees("1.55", "1.55", "0.00", "0.00"),
		"NQ":          fees("1.55", "1.55", "0.00", "0.00"),
		"MES":         fees("0.52", "0.52", "0.00", "0.00"),
		"MNQ":         fees("0.52", "0.52", "0.00", "0.00"),
		defaultSymbol: fees("1.55", "1.55", "0.00", "0.00"),
	},
	BrokerTradovate: {
		"ES":          fees("0.99", "0.99", "0.13", "0.00"),
		"NQ":          fees("0.99", "0.99", "0.13", "0.00"),
		"MES":         fees("0.35", "0.35", "0.13", "0.00"),
		"MNQ":         fees("0.35", "0.35", "0.13", "0.00"),
		defaultSymbol: fees("0.99", "0.99", "0.13", "0.00"),
	},
	BrokerNinjaTrader: {
		"ES":          fees("1.29", "1.29", "0.13", "0.00"),
		"NQ":          fees("1.29", "1.29", "0.13", "0.00"),
		"MES":         fees("0.39", "0.39", "0.13", "0.00"),
		"MNQ":         fees("0.39", "0.39", "0.13", "0.00"),
		defaultSymbol: fees("1.29", "1.29", "0.13", "0.00"),
	},
	BrokerFTMO: {
		defaultSymbol: fees("2.50", "2.50", "0.00", "0.00"),
	},
	BrokerMyForexFunds: {
		defaultSymbol: fees("3.00", "3.00", "0.00", "0.00"),
	},
}

// Fees resolves the fee schedule of symbol at broker: exact symbol, then
// base symbol, then the broker's default row. Unknown brokers get the
// generic schedule.
func Fees(symbol string, broker Broker) FeeSchedule {
	table, ok := feeTables[broker]
	if !ok {
		return genericFees
	}
	s := NormalizeSymbol(symbol)
	if f, ok := table[s]; ok {
		return f
	}
	if f, ok := table[BaseSymbol(s)]; ok {
		return f
	}
	if f, ok := table[defaultSymbol]; ok {
		return f
	}
	return genericFees
}

// dataSourceBrokers is checked in order; the first substring hit wins.
var dataSourceBrokers = []struct {
	needle string
	broker Broker
}{
	{"topstep", BrokerTopstep},
	{"apex", BrokerApex},
	{"ftmo", BrokerFTMO},
	{"myforexfunds", BrokerMyForexFunds},
	{"mff", BrokerMyForexFunds},
	{"tradovate", BrokerTradovate},
	{"ninjatrader", BrokerNinjaTrader},
	{"ninja", BrokerNinjaTrader},
}

// DetectBroker infers the broker from the import data source and, failing
// that, from the account type. Nothing matching means TopStep, the most
// conservative prop-firm assumption.
func DetectBroker(accountType AccountType, dataSource string) Broker {
	src := strings.ToLower(dataSource)
	if src != "" {
		for _, d := range dataSourceBrokers {
			if strings.Contains(src, d.needle) {
				return d.broker
			}
		}
	}

	switch accountType {
	case AccountTopstep50K, AccountTopstep100K, AccountTopstep150K, AccountLiveFunded:
		return BrokerTopstep
	case AccountApex50K, AccountApex100K:
		return BrokerApex
	case AccountFTMO100K:
		return BrokerFTMO
	case AccountCustom:
		return BrokerTopstep
	default:
		return BrokerTopstep
	}
}
