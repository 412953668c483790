package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// assertMoney compares a decimal against its fixed two-place rendering.
func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(CentPlaces), msgAndArgs...)
}

func TestRoundFloat_HalfUp(t *testing.T) {
	assertMoney(t, "10.13", RoundFloat(10.125))
	assertMoney(t, "10.12", RoundFloat(10.124))
	assertMoney(t, "0.01", RoundFloat(0.005))
}

func TestRoundFloat_NonFinite(t *testing.T) {
	assert.True(t, RoundFloat(math.NaN()).IsZero())
	assert.True(t, RoundFloat(math.Inf(1)).IsZero())
	assert.True(t, RoundFloat(math.Inf(-1)).IsZero())
}

func TestAdd_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 in float64 is 0.30000000000000004
	assertMoney(t, "0.30", Add(Money(0.1), Money(0.2)))

	xs := make([]decimal.Decimal, 0, 10000)
	for i := 0; i < 10000; i++ {
		xs = append(xs, Money(0.1))
	}
	assertMoney(t, "1000.00", Add(xs...))
}

func TestAdd_Empty(t *testing.T) {
	assert.True(t, Add().IsZero())
}

func TestSubtract(t *testing.T) {
	assertMoney(t, "49500.00", Subtract(Money(51500), Money(2000)))
	assertMoney(t, "-0.10", Subtract(Money(0.2), Money(0.3)))
}

func TestPercent_GuardsZeroWhole(t *testing.T) {
	assertMoney(t, "25.00", Percent(Money(50), Money(200)))
	assert.True(t, Percent(Money(50), decimal.Zero).IsZero())
	assert.True(t, Percent(Money(50), Money(-10)).IsZero())
}

func TestMaxDecimal(t *testing.T) {
	assertMoney(t, "3.00", MaxDecimal(Money(1), Money(3), Money(2)))
	assert.True(t, MaxDecimal().IsZero())
}
