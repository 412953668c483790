package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// CentPlaces is the precision every monetary value is carried at.
const CentPlaces = 2

var hundred = decimal.NewFromInt(100)

// Round rounds d to cents, half away from zero (10.125 → 10.13).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// RoundFloat converts a raw float to a rounded decimal.
// NaN and ±Inf become 0 instead of an error: these numbers end up on a
// compliance display, not in a transaction.
func RoundFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return Round(decimal.NewFromFloat(f))
}

// Add sums xs rounding after every step, so thousands of trades never
// accumulate sub-cent drift.
func Add(xs ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, x := range xs {
		total = Round(total.Add(Round(x)))
	}
	return total
}

// Subtract returns round(round(a) - round(b)).
func Subtract(a, b decimal.Decimal) decimal.Decimal {
	return Round(Round(a).Sub(Round(b)))
}

// Percent returns part/whole × 100 rounded to cents, or 0 when whole <= 0.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Round(part.Div(whole).Mul(hundred))
}

// Money builds a rounded decimal from a float literal. Handy in tests and
// static tables.
func Money(f float64) decimal.Decimal {
	return RoundFloat(f)
}

// NullMoney wraps a float as a valid NullDecimal.
func NullMoney(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(RoundFloat(f))
}

// MaxDecimal returns the largest of xs, or zero if xs is empty.
func MaxDecimal(xs ...decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	return decimal.Max(xs[0], xs[1:]...)
}
