package google

import (
	"kitty/internal/core"
)

// reportWidth is the widest table of the layout (the settlement table).
const reportWidth = 7

// reportRows lays a report out as a values matrix: a summary block, the
// category breakdown, the contribution statuses, the settlement table and
// the suggested transfers, separated by blank rows. Amounts are plain
// decimal strings so the sheet parses them as numbers.
func reportRows(r core.Report) [][]any {
	s := r.Summary
	rows := [][]any{
		{"Group", r.Group.Name},
		{"Month", r.Month.String()},
		{"Collected", s.Collected.String()},
		{"Spent from pool", s.CollectedSpend.String()},
		{"Spent out of pocket", s.PocketSpend.String()},
		{"Total spent", s.TotalSpend.String()},
		{"Remaining", s.Remaining.String()},
		{"Low balance", yesNo(s.LowBalance)},
		{"Average daily spend", s.AverageDaily.String()},
	}
	if r.Group.HasTarget() {
		rows = append(rows,
			[]any{"Expected", s.ExpectedTotal.String()},
			[]any{"Shortfall", s.Shortfall.String()},
		)
	}

	rows = append(rows, []any{}, []any{"Category", "Amount"})
	for _, c := range r.Categories {
		rows = append(rows, []any{c.Name, c.Amount.String()})
	}

	rows = append(rows, []any{}, []any{"Member", "Paid", "Status"})
	for _, st := range r.Statuses {
		rows = append(rows, []any{st.Name, st.Paid.String(), string(st.Status)})
	}

	rows = append(rows, []any{}, []any{"Member", "Contribution", "From pool", "Out of pocket", "Balance", "Status", "Amount"})
	for _, e := range r.Settlement.Entries {
		amount := e.Owed
		if e.Status == core.SettlementOwes {
			amount = e.Owes
		}
		rows = append(rows, []any{
			e.Name,
			e.Contribution.String(),
			e.CollectedSpend.String(),
			e.PocketSpend.String(),
			e.Balance.String(),
			string(e.Status),
			amount.String(),
		})
	}
	rows = append(rows, []any{"Total owed", r.Settlement.TotalOwed.String()})
	rows = append(rows, []any{"Total owes", r.Settlement.TotalOwes.String()})

	if len(r.Transfers) > 0 {
		rows = append(rows, []any{}, []any{"From", "To", "Amount"})
		for _, t := range r.Transfers {
			rows = append(rows, []any{t.FromName, t.ToName, t.Amount.String()})
		}
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// column converts a 1-based column index to its A1 letter form.
func column(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
