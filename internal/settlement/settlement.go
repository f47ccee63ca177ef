// Package settlement derives each member's net position for a period and
// classifies it as owed, owing or balanced.
package settlement

import (
	"kitty/internal/core"
	"kitty/internal/ledger"
)

// Input is one member's totals for the settled period.
type Input struct {
	MemberID       int64
	Name           string
	Contribution   core.Money
	CollectedSpend core.Money
	PocketSpend    core.Money
}

// Settle computes balance = contribution - (collected + pocket spend) per
// input and classifies it. Entries keep the input order. TotalOwed and
// TotalOwes are summed independently and are not forced to match.
func Settle(inputs []Input) core.SettlementPlan {
	plan := core.SettlementPlan{Entries: make([]core.SettlementEntry, 0, len(inputs))}

	for _, in := range inputs {
		spent := in.CollectedSpend.Add(in.PocketSpend)
		balance := in.Contribution.Sub(spent)

		entry := core.SettlementEntry{
			MemberID:       in.MemberID,
			Name:           in.Name,
			Contribution:   in.Contribution,
			CollectedSpend: in.CollectedSpend,
			PocketSpend:    in.PocketSpend,
			TotalSpent:     spent,
			Balance:        balance,
			Status:         core.SettlementBalanced,
		}
		switch {
		case balance.IsPositive():
			entry.Owed = balance
			entry.Status = core.SettlementOwed
		case balance.IsNegative():
			entry.Owes = balance.Abs()
			entry.Status = core.SettlementOwes
		}

		plan.TotalOwed = plan.TotalOwed.Add(entry.Owed)
		plan.TotalOwes = plan.TotalOwes.Add(entry.Owes)
		plan.Entries = append(plan.Entries, entry)
	}
	return plan
}

// Inputs aggregates the records of one period into per-member inputs, in
// roster order. Records are expected to be already scoped to the period.
func Inputs(members []core.Member, contributions []core.Contribution, expenses []core.Expense) []Input {
	var collected, pocket []core.Expense
	for _, e := range expenses {
		switch e.Source {
		case core.SourceCollected:
			collected = append(collected, e)
		case core.SourcePocket:
			pocket = append(pocket, e)
		}
	}

	paid := ledger.BreakdownByMember(contributions, members)
	fromPool := ledger.BreakdownByMember(collected, members)
	personal := ledger.BreakdownByMember(pocket, members)

	inputs := make([]Input, len(members))
	for i, m := range members {
		inputs[i] = Input{
			MemberID:       m.ID,
			Name:           m.Name,
			Contribution:   paid[i].Total,
			CollectedSpend: fromPool[i].Total,
			PocketSpend:    personal[i].Total,
		}
	}
	return inputs
}

// FromRecords settles the given period records for the roster.
func FromRecords(members []core.Member, contributions []core.Contribution, expenses []core.Expense) core.SettlementPlan {
	return Settle(Inputs(members, contributions, expenses))
}

// Transfers suggests payments from members who owe to members who are owed,
// matching both lists greedily in entry order. The suggested amounts add up
// to the smaller of TotalOwed and TotalOwes; any remainder is settled against
// the pool.
func Transfers(plan core.SettlementPlan) []core.Transfer {
	type position struct {
		entry     core.SettlementEntry
		remaining int64
	}
	var debtors, creditors []*position
	for _, e := range plan.Entries {
		switch e.Status {
		case core.SettlementOwes:
			debtors = append(debtors, &position{entry: e, remaining: e.Owes.Cents})
		case core.SettlementOwed:
			creditors = append(creditors, &position{entry: e, remaining: e.Owed.Cents})
		}
	}

	var out []core.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		from, to := debtors[i], creditors[j]
		amount := min(from.remaining, to.remaining)

		out = append(out, core.Transfer{
			FromMemberID: from.entry.MemberID,
			FromName:     from.entry.Name,
			ToMemberID:   to.entry.MemberID,
			ToName:       to.entry.Name,
			Amount:       core.Money{Cents: amount},
		})

		from.remaining -= amount
		to.remaining -= amount
		if from.remaining == 0 {
			i++
		}
		if to.remaining == 0 {
			j++
		}
	}
	return out
}
