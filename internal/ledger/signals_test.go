package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kitty/internal/core"
)

func TestAverageDailySpend(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		days  int
		want  int64
	}{
		{"zero days", 1000, 0, 0},
		{"negative days", 1000, -3, 0},
		{"exact", 3000, 30, 100},
		{"rounds half up", 5, 2, 3},
		{"rounds down", 10, 3, 3},
		{"empty month", 0, 31, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, core.Cents(tt.want), AverageDailySpend(core.Cents(tt.total), tt.days))
		})
	}
}

func TestLowBalanceSignal(t *testing.T) {
	tests := []struct {
		remaining, collected int64
		want                 bool
	}{
		{0, 100, true},   // 0 < 10
		{10, 100, false}, // 10 is not < 10
		{9, 100, true},
		{-1, 0, true}, // threshold is 0 when nothing was collected
		{0, 0, false},
		{1, 0, false},
		{1199, 12000, true},
		{1200, 12000, false},
	}
	for _, tt := range tests {
		got := LowBalanceSignal(core.Cents(tt.remaining), core.Cents(tt.collected), DefaultLowBalanceRatio)
		assert.Equal(t, tt.want, got, "remaining=%d collected=%d", tt.remaining, tt.collected)
	}

	assert.True(t, LowBalanceSignal(core.Cents(2400), core.Cents(10000), 0.25))
	assert.False(t, LowBalanceSignal(core.Cents(2500), core.Cents(10000), 0.25))
}

func TestDaysElapsed(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 28, DaysElapsed(core.MustParseMonth("2025-02"), now))
	assert.Equal(t, 31, DaysElapsed(core.MustParseMonth("2024-12"), now))
	assert.Equal(t, 15, DaysElapsed(core.MustParseMonth("2025-03"), now))
	assert.Equal(t, 0, DaysElapsed(core.MustParseMonth("2025-04"), now))
}

func TestSummarize(t *testing.T) {
	group := core.Group{ID: 1, Name: "Flat 4B", MonthlyTarget: core.Cents(12000)}
	members := []core.Member{ahmed, fatima, zara}
	contributions := []core.Contribution{
		contribution(1, 12000, jan),
		contribution(2, 12000, jan),
		contribution(3, 12000, feb),
	}
	expenses := []core.Expense{
		expense(1, 12500, "Rent", core.NewDate(2025, time.January, 2), core.SourceCollected),
		expense(2, 9500, "Groceries", core.NewDate(2025, time.January, 20), core.SourceCollected),
		expense(2, 2000, "Dining", core.NewDate(2025, time.January, 21), core.SourcePocket),
		expense(2, 4000, "Dining", core.NewDate(2025, time.February, 1), core.SourcePocket),
	}
	now := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	s := Summarize(group, members, contributions, expenses, jan, now, DefaultLowBalanceRatio)

	assert.Equal(t, jan, s.Month)
	assert.Equal(t, core.Cents(24000), s.Collected)
	assert.Equal(t, core.Cents(22000), s.CollectedSpend)
	assert.Equal(t, core.Cents(2000), s.PocketSpend)
	assert.Equal(t, core.Cents(24000), s.TotalSpend)
	assert.Equal(t, core.Cents(2000), s.Remaining, "pocket expenses do not reduce the collected balance")
	assert.True(t, s.LowBalance, "2000 < 2400")
	assert.Equal(t, 31, s.DaysElapsed)
	assert.Equal(t, core.Cents(774), s.AverageDaily) // 24000/31 = 774.19
	assert.Equal(t, core.Cents(36000), s.ExpectedTotal)
	assert.Equal(t, core.Cents(12000), s.Shortfall)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(core.Group{ID: 1}, nil, nil, nil, jan, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), DefaultLowBalanceRatio)

	assert.Equal(t, core.MonthSummary{Month: jan, DaysElapsed: 1}, s)
	assert.False(t, s.LowBalance, "0 is not < 0")
}
