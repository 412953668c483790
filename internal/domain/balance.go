package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CurrentBalance is startingBalance plus the net P&L of every settled trade
// entered on or after startDate (nil: all of them).
func CurrentBalance(startingBalance decimal.Decimal, trades []Trade, startDate *time.Time) decimal.Decimal {
	settled := settledSince(trades, startDate)
	pnl := make([]decimal.Decimal, 0, len(settled)+1)
	pnl = append(pnl, startingBalance)
	for _, t := range settled {
		pnl = append(pnl, t.NetPnL.Decimal)
	}
	return Add(pnl...)
}

// DayBalance is the balance of an account once all of a day's trades settled.
type DayBalance struct {
	Date    time.Time // UTC midnight
	PnL     decimal.Decimal
	Balance decimal.Decimal
	Trades  int
}

// DailyEndBalances buckets settled trades by UTC entry day and returns the
// running end-of-day balance, oldest day first. Days without trades are not
// present.
func DailyEndBalances(startingBalance decimal.Decimal, trades []Trade, startDate time.Time) []DayBalance {
	settled := settledSince(trades, &startDate)
	if len(settled) == 0 {
		return nil
	}
	sort.SliceStable(settled, func(i, j int) bool {
		return settled[i].EntryDate.Before(settled[j].EntryDate)
	})

	var days []DayBalance
	running := Round(startingBalance)
	cur := DayBalance{Date: DayOf(settled[0].EntryDate), PnL: decimal.Zero}
	for _, t := range settled {
		day := DayOf(t.EntryDate)
		if !day.Equal(cur.Date) {
			running = Add(running, cur.PnL)
			cur.Balance = running
			days = append(days, cur)
			cur = DayBalance{Date: day, PnL: decimal.Zero}
		}
		cur.PnL = Add(cur.PnL, t.NetPnL.Decimal)
		cur.Trades++
	}
	running = Add(running, cur.PnL)
	cur.Balance = running
	return append(days, cur)
}

// AccountHigh is the highest end-of-day balance reached since startDate.
// Intraday excursions never count: only the balance after all of a day's
// trades settle can set a new high. It never goes below startingBalance and
// is startingBalance when there is no start date.
func AccountHigh(startingBalance decimal.Decimal, trades []Trade, startDate *time.Time) decimal.Decimal {
	high := Round(startingBalance)
	if startDate == nil {
		return high
	}
	for _, d := range DailyEndBalances(startingBalance, trades, *startDate) {
		if d.Balance.GreaterThan(high) {
			high = d.Balance
		}
	}
	return high
}

// sameDay reports whether t falls on the UTC calendar day of ref.
func sameDay(t, ref time.Time) bool {
	return DayOf(t).Equal(DayOf(ref))
}

// DailyPnL sums the net P&L of settled trades entered on ref's UTC day.
func DailyPnL(trades []Trade, startDate *time.Time, ref time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, t := range settledSince(trades, startDate) {
		if sameDay(t.EntryDate, ref) {
			total = Add(total, t.NetPnL.Decimal)
		}
	}
	return total
}
