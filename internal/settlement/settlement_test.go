package settlement

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitty/internal/core"
)

func TestSettleTwoMembers(t *testing.T) {
	plan := Settle([]Input{
		{MemberID: 1, Name: "Ahmed", Contribution: core.Cents(12000), CollectedSpend: core.Cents(12500)},
		{MemberID: 2, Name: "Fatima", Contribution: core.Cents(12000), CollectedSpend: core.Cents(11500)},
	})

	require.Len(t, plan.Entries, 2)

	ahmed := plan.Entries[0]
	assert.Equal(t, int64(1), ahmed.MemberID)
	assert.Equal(t, core.Cents(-500), ahmed.Balance)
	assert.Equal(t, core.Cents(500), ahmed.Owes)
	assert.True(t, ahmed.Owed.IsZero())
	assert.Equal(t, core.SettlementOwes, ahmed.Status)

	fatima := plan.Entries[1]
	assert.Equal(t, core.Cents(500), fatima.Balance)
	assert.Equal(t, core.Cents(500), fatima.Owed)
	assert.True(t, fatima.Owes.IsZero())
	assert.Equal(t, core.SettlementOwed, fatima.Status)

	assert.Equal(t, core.Cents(500), plan.TotalOwed)
	assert.Equal(t, core.Cents(500), plan.TotalOwes)
}

func TestSettleInactiveMemberIsBalanced(t *testing.T) {
	plan := Settle([]Input{{MemberID: 3, Name: "Zara"}})

	require.Len(t, plan.Entries, 1)
	e := plan.Entries[0]
	assert.True(t, e.Balance.IsZero())
	assert.True(t, e.Owes.IsZero())
	assert.True(t, e.Owed.IsZero())
	assert.Equal(t, core.SettlementBalanced, e.Status)
}

func TestSettleEmpty(t *testing.T) {
	plan := Settle(nil)
	assert.Empty(t, plan.Entries)
	assert.True(t, plan.TotalOwed.IsZero())
	assert.True(t, plan.TotalOwes.IsZero())
}

func TestSettlePocketCountsTowardSpend(t *testing.T) {
	plan := Settle([]Input{
		{MemberID: 1, Contribution: core.Cents(10000), CollectedSpend: core.Cents(4000), PocketSpend: core.Cents(7000)},
	})
	e := plan.Entries[0]
	assert.Equal(t, core.Cents(11000), e.TotalSpent)
	assert.Equal(t, core.Cents(1000), e.Owes)
}

func TestSettleTotalsAreIndependent(t *testing.T) {
	plan := Settle([]Input{
		{MemberID: 1, Contribution: core.Cents(5000)},
		{MemberID: 2, Contribution: core.Cents(5000), CollectedSpend: core.Cents(2000)},
	})
	assert.Equal(t, core.Cents(8000), plan.TotalOwed)
	assert.True(t, plan.TotalOwes.IsZero())
}

func TestSettleBalanceIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 100; round++ {
		inputs := make([]Input, rng.Intn(8)+1)
		for i := range inputs {
			inputs[i] = Input{
				MemberID:       int64(i + 1),
				Contribution:   core.Cents(rng.Int63n(20000)),
				CollectedSpend: core.Cents(rng.Int63n(15000)),
				PocketSpend:    core.Cents(rng.Int63n(5000)),
			}
		}

		plan := Settle(inputs)
		require.Len(t, plan.Entries, len(inputs))

		var owed, owes int64
		for i, e := range plan.Entries {
			require.Equal(t, inputs[i].MemberID, e.MemberID, "input order is preserved")
			require.Equal(t, e.Balance, e.Owed.Sub(e.Owes))

			held := 0
			if e.Owed.IsPositive() {
				held++
			}
			if e.Owes.IsPositive() {
				held++
			}
			if e.Status == core.SettlementBalanced {
				held++
				require.True(t, e.Balance.IsZero())
			}
			require.Equal(t, 1, held, "exactly one classification holds for %+v", e)

			owed += e.Owed.Cents
			owes += e.Owes.Cents
		}
		require.Equal(t, owed, plan.TotalOwed.Cents)
		require.Equal(t, owes, plan.TotalOwes.Cents)
	}
}

func TestFromRecords(t *testing.T) {
	members := []core.Member{
		{ID: 1, Name: "Ahmed", Role: core.RoleAdmin},
		{ID: 2, Name: "Fatima", Role: core.RoleMember},
		{ID: 3, Name: "Zara", Role: core.RoleMember},
	}
	jan := core.MustParseMonth("2025-01")
	day := core.NewDate(2025, time.January, 12)

	contributions := []core.Contribution{
		{MemberID: 1, Amount: core.Cents(12000), Month: jan},
		{MemberID: 2, Amount: core.Cents(12000), Month: jan},
	}
	expenses := []core.Expense{
		{MemberID: 1, Amount: core.Cents(10000), Category: "Rent", Date: day, Source: core.SourceCollected},
		{MemberID: 1, Amount: core.Cents(2500), Category: "Groceries", Date: day, Source: core.SourceCollected},
		{MemberID: 2, Amount: core.Cents(11000), Category: "Utilities", Date: day, Source: core.SourceCollected},
		{MemberID: 2, Amount: core.Cents(500), Category: "Dining", Date: day, Source: core.SourcePocket},
	}

	plan := FromRecords(members, contributions, expenses)
	require.Len(t, plan.Entries, 3)

	assert.Equal(t, core.SettlementOwes, plan.Entries[0].Status)
	assert.Equal(t, core.Cents(500), plan.Entries[0].Owes)
	assert.Equal(t, core.SettlementOwed, plan.Entries[1].Status)
	assert.Equal(t, core.Cents(500), plan.Entries[1].Owed)
	assert.Equal(t, core.Cents(11000), plan.Entries[1].CollectedSpend)
	assert.Equal(t, core.Cents(500), plan.Entries[1].PocketSpend)
	assert.Equal(t, core.SettlementBalanced, plan.Entries[2].Status)
}

func TestTransfers(t *testing.T) {
	plan := Settle([]Input{
		{MemberID: 1, Name: "Ahmed", CollectedSpend: core.Cents(700)},
		{MemberID: 2, Name: "Fatima", Contribution: core.Cents(400)},
		{MemberID: 3, Name: "Zara"},
		{MemberID: 4, Name: "Omar", Contribution: core.Cents(500)},
		{MemberID: 5, Name: "Lina", PocketSpend: core.Cents(100)},
	})

	got := Transfers(plan)
	assert.Equal(t, []core.Transfer{
		{FromMemberID: 1, FromName: "Ahmed", ToMemberID: 2, ToName: "Fatima", Amount: core.Cents(400)},
		{FromMemberID: 1, FromName: "Ahmed", ToMemberID: 4, ToName: "Omar", Amount: core.Cents(300)},
		{FromMemberID: 5, FromName: "Lina", ToMemberID: 4, ToName: "Omar", Amount: core.Cents(100)},
	}, got)
}

func TestTransfersCoverSmallerTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 100; round++ {
		inputs := make([]Input, rng.Intn(10))
		for i := range inputs {
			inputs[i] = Input{
				MemberID:       int64(i + 1),
				Contribution:   core.Cents(rng.Int63n(10000)),
				CollectedSpend: core.Cents(rng.Int63n(10000)),
			}
		}
		plan := Settle(inputs)

		var moved int64
		for _, tr := range Transfers(plan) {
			require.True(t, tr.Amount.IsPositive())
			require.NotEqual(t, tr.FromMemberID, tr.ToMemberID)
			moved += tr.Amount.Cents
		}
		require.Equal(t, min(plan.TotalOwed.Cents, plan.TotalOwes.Cents), moved)
	}
}

func TestTransfersNoneWhenBalanced(t *testing.T) {
	assert.Empty(t, Transfers(Settle([]Input{{MemberID: 1}, {MemberID: 2}})))
}
