// Package ledger is the aggregation engine: pure functions that turn already
// materialised contribution and expense records into totals, breakdowns and
// monthly series.
//
// Nothing here performs I/O, keeps state or returns errors. Empty input
// yields zero-valued aggregates.
//
// TotalAmount sums whatever it is given. Every other operation skips records
// that cannot be attributed: contributions with member id 0, and expenses
// with member id 0 or a source other than COLLECTED or POCKET. Month-scoped
// operations also skip expenses without a date. Per-member operations
// further ignore members missing from the roster, so group totals equal the
// per-member totals whenever the roster covers every recorded member, and
// TotalSpend is always CollectedSpend + PocketSpend. Records that reach this package are
// expected to have been validated at the boundary. Negative amounts are
// summed as given; sums are int64 cents and the boundary keeps single
// amounts small enough that realistic totals cannot overflow.
package ledger

import (
	"sort"

	"kitty/internal/core"
)

// Record is anything carrying a monetary value.
type Record interface {
	Value() core.Money
}

// Owned is a record attributable to one member.
type Owned interface {
	Record
	Owner() int64
}

// attributable reports whether a contribution can be credited to a member.
func attributable(c core.Contribution) bool {
	return c.MemberID != 0
}

// attributableExpense reports whether an expense can be charged to a member
// and to one of the two funding sources.
func attributableExpense(e core.Expense) bool {
	return e.MemberID != 0 && e.Source.IsValid()
}

// TotalAmount sums the values of records. The result does not depend on the
// order of the input.
func TotalAmount[R Record](records []R) core.Money {
	var total int64
	for _, r := range records {
		total += r.Value().Cents
	}
	return core.Money{Cents: total}
}

// BreakdownByCategory sums expenses per category. Categories without
// expenses in the input are omitted; the result is sorted by name.
func BreakdownByCategory(expenses []core.Expense) []core.CategoryAmount {
	sums := make(map[string]int64)
	for _, e := range expenses {
		if !attributableExpense(e) {
			continue
		}
		sums[e.Category] += e.Amount.Cents
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BreakdownByMember returns one total per roster member, in roster order,
// including members without any record. Records of members missing from the
// roster are ignored.
func BreakdownByMember[R Owned](records []R, members []core.Member) []core.MemberTotal {
	sums := make(map[int64]int64, len(members))
	for _, m := range members {
		sums[m.ID] = 0
	}
	for _, r := range records {
		id := r.Owner()
		if _, ok := sums[id]; !ok {
			continue
		}
		sums[id] += r.Value().Cents
	}

	out := make([]core.MemberTotal, 0, len(members))
	for _, m := range members {
		out = append(out, core.MemberTotal{MemberID: m.ID, Name: m.Name, Total: core.Money{Cents: sums[m.ID]}})
	}
	return out
}

// SplitBySource returns the totals of COLLECTED and POCKET expenses.
// Unattributable expenses count toward neither.
func SplitBySource(expenses []core.Expense) (collected, pocket core.Money) {
	for _, e := range expenses {
		if e.MemberID == 0 {
			continue
		}
		switch e.Source {
		case core.SourceCollected:
			collected.Cents += e.Amount.Cents
		case core.SourcePocket:
			pocket.Cents += e.Amount.Cents
		}
	}
	return collected, pocket
}

// ContributionMonth is the month a contribution counts toward: its label, or
// the month it was created in when the label is unset.
func ContributionMonth(c core.Contribution) core.Month {
	return c.Period()
}

// InMonth keeps the attributable contributions that count toward month.
func InMonth(contributions []core.Contribution, month core.Month) []core.Contribution {
	var out []core.Contribution
	for _, c := range contributions {
		if attributable(c) && ContributionMonth(c) == month {
			out = append(out, c)
		}
	}
	return out
}

// SpentIn keeps the attributable expenses dated in month.
func SpentIn(expenses []core.Expense, month core.Month) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if attributableExpense(e) && !e.Date.IsZero() && month.Contains(e.Date.Time) {
			out = append(out, e)
		}
	}
	return out
}

// MonthlySeries computes, for each month in the caller's order, the
// contributions collected and the expenses spent in that month.
func MonthlySeries(contributions []core.Contribution, expenses []core.Expense, months []core.Month) []core.MonthPoint {
	collected := make(map[core.Month]int64, len(months))
	spent := make(map[core.Month]int64, len(months))

	for _, c := range contributions {
		if !attributable(c) {
			continue
		}
		if m := ContributionMonth(c); !m.IsZero() {
			collected[m] += c.Amount.Cents
		}
	}
	for _, e := range expenses {
		if !attributableExpense(e) || e.Date.IsZero() {
			continue
		}
		spent[core.MonthOf(e.Date.Time)] += e.Amount.Cents
	}

	out := make([]core.MonthPoint, 0, len(months))
	for _, m := range months {
		out = append(out, core.MonthPoint{
			Month:     m,
			Collected: core.Money{Cents: collected[m]},
			Expenses:  core.Money{Cents: spent[m]},
		})
	}
	return out
}

// ContributionStatuses reports, per roster member, what was paid toward month
// and whether it counts as PAID. A member is PAID iff at least one record with
// a positive amount exists for that month; no record and a zero record are
// both PENDING.
func ContributionStatuses(contributions []core.Contribution, members []core.Member, month core.Month) []core.MemberStatus {
	paid := make(map[int64]int64, len(members))
	positive := make(map[int64]bool, len(members))
	for _, c := range contributions {
		if ContributionMonth(c) != month {
			continue
		}
		paid[c.MemberID] += c.Amount.Cents
		if c.Amount.IsPositive() {
			positive[c.MemberID] = true
		}
	}

	out := make([]core.MemberStatus, 0, len(members))
	for _, m := range members {
		status := core.StatusPending
		if positive[m.ID] {
			status = core.StatusPaid
		}
		out = append(out, core.MemberStatus{
			MemberID: m.ID,
			Name:     m.Name,
			Paid:     core.Money{Cents: paid[m.ID]},
			Status:   status,
		})
	}
	return out
}
