package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kitty/internal/core"
)

func TestFilterMatchExpense(t *testing.T) {
	e := core.Expense{
		GroupID:  1,
		MemberID: 2,
		Category: "Groceries",
		Date:     core.NewDate(2025, time.March, 31),
	}
	mar := core.MustParseMonth("2025-03")

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"group", Filter{GroupID: 1}, true},
		{"other group", Filter{GroupID: 2}, false},
		{"member", Filter{MemberID: 2}, true},
		{"other member", Filter{MemberID: 3}, false},
		{"category case-insensitive", Filter{Category: "groceries"}, true},
		{"other category", Filter{Category: "Rent"}, false},
		{"single month", MonthFilter(1, mar), true},
		{"previous month", MonthFilter(1, mar.AddMonths(-1)), false},
		{"open start", Filter{To: mar}, true},
		{"open end", Filter{From: mar.AddMonths(1)}, false},
		{"range", Filter{From: mar.AddMonths(-2), To: mar}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.MatchExpense(e))
		})
	}
}

func TestFilterUndatedExpenseOnlyMatchesUnboundedRange(t *testing.T) {
	e := core.Expense{GroupID: 1}
	assert.True(t, Filter{GroupID: 1}.MatchExpense(e))
	assert.False(t, MonthFilter(1, core.MustParseMonth("2025-01")).MatchExpense(e))
}

func TestFilterMatchContribution(t *testing.T) {
	jan := core.MustParseMonth("2025-01")
	labelled := core.Contribution{GroupID: 1, MemberID: 1, Month: jan}
	unlabelled := core.Contribution{GroupID: 1, MemberID: 1, CreatedAt: time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)}

	assert.True(t, MonthFilter(1, jan).MatchContribution(labelled))
	assert.False(t, MonthFilter(1, jan).MatchContribution(unlabelled))
	assert.True(t, MonthFilter(1, jan.AddMonths(1)).MatchContribution(unlabelled))
	assert.True(t, Filter{GroupID: 1, Category: "Rent"}.MatchContribution(labelled), "category does not apply to contributions")
	assert.False(t, Filter{GroupID: 1, MemberID: 9}.MatchContribution(labelled))
}
