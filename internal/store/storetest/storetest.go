// Package storetest holds the behaviour every Ledger Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitty/internal/core"
	"kitty/internal/store"
)

// Run exercises a fresh store returned by open. open is called once per
// subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("users and groups", func(t *testing.T) { testUsersAndGroups(t, open(t)) })
	t.Run("membership", func(t *testing.T) { testMembership(t, open(t)) })
	t.Run("contributions", func(t *testing.T) { testContributions(t, open(t)) })
	t.Run("expenses", func(t *testing.T) { testExpenses(t, open(t)) })
	t.Run("categories", func(t *testing.T) { testCategories(t, open(t)) })
}

// Fixture is a group with two members: Ahmed (ADMIN) and Fatima (MEMBER).
type Fixture struct {
	Group  core.Group
	Ahmed  core.Member
	Fatima core.Member
}

// Seed creates the fixture group in s.
func Seed(t *testing.T, s store.Store) Fixture {
	t.Helper()
	ctx := context.Background()

	ahmed, err := s.CreateUser(ctx, core.User{Name: "Ahmed", Email: "ahmed@example.com"})
	require.NoError(t, err)
	fatima, err := s.CreateUser(ctx, core.User{Name: "Fatima", Email: "fatima@example.com"})
	require.NoError(t, err)

	g, err := s.CreateGroup(ctx, core.Group{Name: "Flat 4B", MonthlyTarget: core.Cents(12000)})
	require.NoError(t, err)

	joined := time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)
	a, err := s.AddMember(ctx, core.Member{ID: ahmed.ID, GroupID: g.ID, Role: core.RoleAdmin, JoinedAt: joined})
	require.NoError(t, err)
	f, err := s.AddMember(ctx, core.Member{ID: fatima.ID, GroupID: g.ID, Role: core.RoleMember, JoinedAt: joined.Add(time.Hour)})
	require.NoError(t, err)

	return Fixture{Group: g, Ahmed: a, Fatima: f}
}

func testUsersAndGroups(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()

	u, err := s.CreateUser(ctx, core.User{Name: "Zara", Email: "zara@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = s.CreateUser(ctx, core.User{Name: "Zara again", Email: "zara@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zara", got.Name)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	g1, err := s.CreateGroup(ctx, core.Group{Name: "Flat"})
	require.NoError(t, err)
	_, err = s.CreateGroup(ctx, core.Group{Name: "Trip", MonthlyTarget: core.Cents(5000)})
	require.NoError(t, err)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, g1.ID, groups[0].ID)
	assert.Equal(t, core.Cents(5000), groups[1].MonthlyTarget)

	require.NoError(t, s.SetMonthlyTarget(ctx, g1.ID, core.Cents(7500)))
	g, err := s.GetGroup(ctx, g1.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(7500), g.MonthlyTarget)

	assert.ErrorIs(t, s.SetMonthlyTarget(ctx, 999, core.Cents(1)), store.ErrNotFound)
	_, err = s.GetGroup(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testMembership(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()
	fx := Seed(t, s)

	members, err := s.ListMembers(ctx, fx.Group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Ahmed", members[0].Name)
	assert.Equal(t, core.RoleAdmin, members[0].Role)
	assert.Equal(t, "Fatima", members[1].Name)

	_, err = s.AddMember(ctx, core.Member{ID: fx.Ahmed.ID, GroupID: fx.Group.ID, Role: core.RoleMember})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.AddMember(ctx, core.Member{ID: 999, GroupID: fx.Group.ID, Role: core.RoleMember})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetRole(ctx, fx.Group.ID, fx.Fatima.ID, core.RoleAdmin))
	m, err := s.GetMember(ctx, fx.Group.ID, fx.Fatima.ID)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, m.Role)

	_, err = s.GetMember(ctx, fx.Group.ID, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.ListMembers(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testContributions(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()
	fx := Seed(t, s)
	jan := core.MustParseMonth("2025-01")
	feb := core.MustParseMonth("2025-02")

	add := func(member int64, cents int64, m core.Month) core.Contribution {
		t.Helper()
		c, err := s.AddContribution(ctx, core.Contribution{GroupID: fx.Group.ID, MemberID: member, Amount: core.Cents(cents), Month: m, Note: "rent share"})
		require.NoError(t, err)
		return c
	}
	c1 := add(fx.Ahmed.ID, 12000, feb)
	add(fx.Fatima.ID, 12000, jan)
	add(fx.Fatima.ID, 0, feb)

	all, err := s.ListContributions(ctx, store.Filter{GroupID: fx.Group.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, jan, all[0].Month, "ordered by month")
	assert.Equal(t, "rent share", all[0].Note)

	inFeb, err := s.ListContributions(ctx, store.MonthFilter(fx.Group.ID, feb))
	require.NoError(t, err)
	require.Len(t, inFeb, 2)
	assert.Equal(t, c1.ID, inFeb[0].ID)
	assert.Equal(t, core.Cents(12000), inFeb[0].Amount)

	mine, err := s.ListContributions(ctx, store.Filter{GroupID: fx.Group.ID, MemberID: fx.Fatima.ID, To: jan})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = s.AddContribution(ctx, core.Contribution{GroupID: fx.Group.ID, MemberID: 999, Amount: core.Cents(1), Month: jan})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetContribution(ctx, fx.Group.ID, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.Ahmed.ID, got.MemberID)

	require.NoError(t, s.DeleteContribution(ctx, fx.Group.ID, c1.ID))
	assert.ErrorIs(t, s.DeleteContribution(ctx, fx.Group.ID, c1.ID), store.ErrNotFound)
	_, err = s.GetContribution(ctx, fx.Group.ID, c1.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testExpenses(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()
	fx := Seed(t, s)

	add := func(member int64, cents int64, category string, date core.Date, source core.PaymentSource) core.Expense {
		t.Helper()
		e, err := s.AddExpense(ctx, core.Expense{
			GroupID:  fx.Group.ID,
			MemberID: member,
			Title:    category,
			Amount:   core.Cents(cents),
			Category: category,
			Date:     date,
			Source:   source,
		})
		require.NoError(t, err)
		return e
	}
	rent := add(fx.Ahmed.ID, 10000, "Rent", core.NewDate(2025, time.January, 31), core.SourceCollected)
	add(fx.Fatima.ID, 2500, "Groceries", core.NewDate(2025, time.January, 3), core.SourcePocket)
	add(fx.Fatima.ID, 3000, "Groceries", core.NewDate(2025, time.February, 1), core.SourceCollected)

	jan, err := s.ListExpenses(ctx, store.MonthFilter(fx.Group.ID, core.MustParseMonth("2025-01")))
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "Groceries", jan[0].Category, "ordered by date")
	assert.Equal(t, core.SourcePocket, jan[0].Source)
	assert.Equal(t, "2025-01-03", jan[0].Date.String())
	assert.Equal(t, rent.ID, jan[1].ID)

	groceries, err := s.ListExpenses(ctx, store.Filter{GroupID: fx.Group.ID, Category: "groceries"})
	require.NoError(t, err)
	assert.Len(t, groceries, 2)

	got, err := s.GetExpense(ctx, fx.Group.ID, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Cents(10000), got.Amount)
	_, err = s.GetExpense(ctx, fx.Group.ID+1, rent.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteExpense(ctx, fx.Group.ID, rent.ID))
	assert.ErrorIs(t, s.DeleteExpense(ctx, fx.Group.ID, rent.ID), store.ErrNotFound)

	rest, err := s.ListExpenses(ctx, store.Filter{GroupID: fx.Group.ID})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func testCategories(t *testing.T, s store.Store) {
	ctx := context.Background()
	defer s.Close()
	fx := Seed(t, s)

	before, err := s.ListCategories(ctx, fx.Group.ID)
	require.NoError(t, err)
	assert.Len(t, before, len(core.DefaultCategories))

	c, err := s.AddCategory(ctx, core.Category{GroupID: fx.Group.ID, Name: "Internet"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	_, err = s.AddCategory(ctx, core.Category{GroupID: fx.Group.ID, Name: "rent"})
	assert.ErrorIs(t, err, store.ErrConflict, "clashes with a global default")

	after, err := s.ListCategories(ctx, fx.Group.ID)
	require.NoError(t, err)
	require.Len(t, after, len(core.DefaultCategories)+1)
	for i := 1; i < len(after); i++ {
		assert.Less(t, after[i-1].Name, after[i].Name)
	}

	other, err := s.ListCategories(ctx, fx.Group.ID+1)
	require.NoError(t, err)
	assert.Len(t, other, len(core.DefaultCategories), "group categories are private")
}
