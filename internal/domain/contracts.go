package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ContractSpec describes a futures contract.
type ContractSpec struct {
	Symbol     string
	Multiplier decimal.Decimal // dollars per point per contract
}

func spec(symbol, multiplier string) ContractSpec {
	return ContractSpec{
		Symbol:     symbol,
		Multiplier: decimal.RequireFromString(multiplier),
	}
}

// contractSpecs is keyed by base symbol (no expiration code).
var contractSpecs = map[string]ContractSpec{
	// equity index
	"ES":  spec("ES", "50"),   // E-mini S&P 500
	"MES": spec("MES", "5"),   // Micro E-mini S&P 500
	"NQ":  spec("NQ", "20"),   // E-mini Nasdaq-100
	"MNQ": spec("MNQ", "2"),   // Micro E-mini Nasdaq-100
	"YM":  spec("YM", "5"),    // E-mini Dow
	"MYM": spec("MYM", "0.5"), // Micro E-mini Dow
	"RTY": spec("RTY", "50"),  // E-mini Russell 2000
	"M2K": spec("M2K", "5"),   // Micro E-mini Russell 2000
	// energy
	"CL":  spec("CL", "1000"),  // Crude Oil
	"MCL": spec("MCL", "100"),  // Micro Crude Oil
	"QM":  spec("QM", "500"),   // E-mini Crude Oil
	"NG":  spec("NG", "10000"), // Natural Gas
	// metals
	"GC":  spec("GC", "100"),   // Gold
	"MGC": spec("MGC", "10"),   // Micro Gold
	"SI":  spec("SI", "5000"),  // Silver
	"SIL": spec("SIL", "1000"), // Micro Silver
	"HG":  spec("HG", "25000"), // Copper
	// rates
	"ZB": spec("ZB", "1000"), // 30-Year T-Bond
	"ZN": spec("ZN", "1000"), // 10-Year T-Note
	"ZF": spec("ZF", "1000"), // 5-Year T-Note
	// currencies
	"6E":  spec("6E", "125000"),   // Euro FX
	"6B":  spec("6B", "62500"),    // British Pound
	"6J":  spec("6J", "12500000"), // Japanese Yen
	"M6E": spec("M6E", "12500"),   // Micro Euro FX
}

// expirationCode matches a trailing month code plus a one or two digit year,
// e.g. the "Z4" in ESZ4 or the "H25" in MNQH25.
var expirationCode = regexp.MustCompile(`^(.+?)[FGHJKMNQUVXZ]\d{1,2}$`)

// NormalizeSymbol upper-cases and trims a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// BaseSymbol strips the expiration code from a futures symbol. Symbols
// without one are returned normalized.
func BaseSymbol(symbol string) string {
	s := NormalizeSymbol(symbol)
	if m := expirationCode.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// LookupContract finds the spec for symbol, first as given and then by base
// symbol.
func LookupContract(symbol string) (ContractSpec, bool) {
	s := NormalizeSymbol(symbol)
	if cs, ok := contractSpecs[s]; ok {
		return cs, true
	}
	cs, ok := contractSpecs[BaseSymbol(s)]
	return cs, ok
}

// Multiplier returns dollars per point per contract. Non-futures markets and
// unknown futures symbols are 1.
func Multiplier(symbol string, market MarketType) decimal.Decimal {
	if !market.IsFutures() {
		return decimal.NewFromInt(1)
	}
	if cs, ok := LookupContract(symbol); ok {
		return cs.Multiplier
	}
	return decimal.NewFromInt(1)
}
