package domain

import "github.com/shopspring/decimal"

// TrailingLimit computes the max loss limit (MLL): the balance floor that
// trails the end-of-day high.
//
//	limit = max(accountHigh - trailingAmount, startingBalance - trailingAmount)
//
// The second term is floor protection: the limit is never harsher than for an
// account that never made a dollar. A TopStep live funded account that has
// received its first payout has no trailing constraint and gets 0.
func TrailingLimit(
	accountHigh, trailingAmount, startingBalance decimal.Decimal,
	isLiveFunded, firstPayoutReceived bool,
	broker Broker,
) decimal.Decimal {
	if isLiveFunded && firstPayoutReceived && broker == BrokerTopstep {
		return decimal.Zero
	}

	// Every firm shares the end-of-day formula for now. The cases stay split
	// so one firm's rules (Apex trails the intraday high, for instance) can
	// change without touching callers.
	switch broker {
	case BrokerTopstep:
		return endOfDayTrailing(accountHigh, trailingAmount, startingBalance)
	case BrokerApex:
		return endOfDayTrailing(accountHigh, trailingAmount, startingBalance)
	case BrokerFTMO:
		return endOfDayTrailing(accountHigh, trailingAmount, startingBalance)
	case BrokerMyForexFunds:
		return endOfDayTrailing(accountHigh, trailingAmount, startingBalance)
	default:
		return endOfDayTrailing(accountHigh, trailingAmount, startingBalance)
	}
}

func endOfDayTrailing(accountHigh, trailingAmount, startingBalance decimal.Decimal) decimal.Decimal {
	candidate := Subtract(accountHigh, trailingAmount)
	floor := Subtract(startingBalance, trailingAmount)
	return decimal.Max(candidate, floor)
}

// DailyLimit is the balance the account may not close the day below. It is
// anchored to the current balance, not the high. No configured loss amount
// (absent or non-positive) means no daily limit.
func DailyLimit(currentBalance decimal.Decimal, dailyLossAmount decimal.NullDecimal) decimal.NullDecimal {
	if !dailyLossAmount.Valid || !dailyLossAmount.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Subtract(currentBalance, dailyLossAmount.Decimal))
}

// IsCompliant reports whether balance sits on or above the limit floor.
func IsCompliant(balance, limit decimal.Decimal) bool {
	return Round(balance).GreaterThanOrEqual(Round(limit))
}

// IsCompliantNullable treats a missing limit as always compliant.
func IsCompliantNullable(balance decimal.Decimal, limit decimal.NullDecimal) bool {
	if !limit.Valid {
		return true
	}
	return IsCompliant(balance, limit.Decimal)
}

// Buffer is how far balance sits above limit (negative when in violation).
func Buffer(balance, limit decimal.Decimal) decimal.Decimal {
	return Subtract(balance, limit)
}

// NullableBuffer is Buffer for an optional limit.
func NullableBuffer(balance decimal.Decimal, limit decimal.NullDecimal) decimal.NullDecimal {
	if !limit.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Buffer(balance, limit.Decimal))
}
