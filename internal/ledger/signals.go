package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"kitty/internal/core"
)

// DefaultLowBalanceRatio is the share of the collected total under which the
// remaining pooled balance is considered low.
const DefaultLowBalanceRatio = 0.10

// AverageDailySpend divides total by days, rounding half away from zero to
// the cent. Zero or negative days yield zero.
func AverageDailySpend(total core.Money, days int) core.Money {
	if days <= 0 {
		return core.Money{}
	}
	avg := decimal.NewFromInt(total.Cents).Div(decimal.NewFromInt(int64(days))).Round(0)
	return core.Money{Cents: avg.IntPart()}
}

// LowBalanceSignal reports whether remaining < collected * ratio, compared
// exactly. With nothing collected the threshold is zero, so any non-positive
// remaining balance trips the signal.
func LowBalanceSignal(remaining, collected core.Money, ratio float64) bool {
	threshold := decimal.NewFromInt(collected.Cents).Mul(decimal.NewFromFloat(ratio))
	return decimal.NewFromInt(remaining.Cents).LessThan(threshold)
}

// DaysElapsed is the number of days of month that have passed at now: the
// whole month once it is over, today's day number during it, zero before it.
func DaysElapsed(month core.Month, now time.Time) int {
	current := core.MonthOf(now)
	switch {
	case month.Before(current):
		return month.Days()
	case month == current:
		return now.Day()
	default:
		return 0
	}
}

// Summarize computes the group-level aggregates of month. Only the attributable records
// that fall in month are considered.
func Summarize(group core.Group, members []core.Member, contributions []core.Contribution, expenses []core.Expense, month core.Month, now time.Time, ratio float64) core.MonthSummary {
	monthContributions := InMonth(contributions, month)
	monthExpenses := SpentIn(expenses, month)

	collected := TotalAmount(monthContributions)
	collectedSpend, pocketSpend := SplitBySource(monthExpenses)
	total := collectedSpend.Add(pocketSpend)
	remaining := collected.Sub(collectedSpend)
	days := DaysElapsed(month, now)

	s := core.MonthSummary{
		Month:          month,
		Collected:      collected,
		CollectedSpend: collectedSpend,
		PocketSpend:    pocketSpend,
		TotalSpend:     total,
		Remaining:      remaining,
		LowBalance:     LowBalanceSignal(remaining, collected, ratio),
		DaysElapsed:    days,
		AverageDaily:   AverageDailySpend(total, days),
	}

	if group.HasTarget() {
		s.ExpectedTotal = group.MonthlyTarget.Mul(int64(len(members)))
		if short := s.ExpectedTotal.Sub(collected); short.IsPositive() {
			s.Shortfall = short
		}
	}
	return s
}
