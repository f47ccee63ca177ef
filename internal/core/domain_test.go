package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-31")
	assert.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.January, 31), d)
	assert.Equal(t, "2025-01-31", d.String())

	_, err = ParseDate("31/01/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		GroupID:  1,
		MemberID: 2,
		Title:    "Weekly shop",
		Amount:   Cents(4599),
		Category: "Groceries",
		Date:     NewDate(2025, time.January, 12),
		Source:   SourceCollected,
	}
	assert.NoError(t, good.Validate())

	zeroAmount := good
	zeroAmount.Amount = Cents(0)
	assert.NoError(t, zeroAmount.Validate())

	tests := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"missing group", func(e *Expense) { e.GroupID = 0 }, ErrMissingGroup},
		{"missing member", func(e *Expense) { e.MemberID = 0 }, ErrUnknownMember},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"empty title", func(e *Expense) { e.Title = "  " }, ErrEmptyTitle},
		{"long title", func(e *Expense) { e.Title = strings.Repeat("x", 201) }, ErrTitleTooLong},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrEmptyCategory},
		{"bad source", func(e *Expense) { e.Source = "CARD" }, ErrInvalidSource},
		{"negative amount", func(e *Expense) { e.Amount = Cents(-1) }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := good
			tt.mutate(&e)
			assert.ErrorIs(t, e.Validate(), tt.want)
		})
	}
}

func TestContributionValidate(t *testing.T) {
	c := Contribution{GroupID: 1, MemberID: 1, Amount: Cents(12000), Month: MustParseMonth("2025-01")}
	assert.NoError(t, c.Validate())

	c.Amount = Cents(0)
	assert.NoError(t, c.Validate(), "a recorded zero contribution is allowed")

	c.Amount = Cents(-100)
	assert.ErrorIs(t, c.Validate(), ErrInvalidAmount)

	c.Amount = Cents(100)
	c.Month = Month{}
	assert.ErrorIs(t, c.Validate(), ErrInvalidMonth)
}

func TestParsePaymentSource(t *testing.T) {
	src, err := ParsePaymentSource("pocket")
	assert.NoError(t, err)
	assert.Equal(t, SourcePocket, src)

	_, err = ParsePaymentSource("cash")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestRoleCapabilities(t *testing.T) {
	role, err := ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("owner")
	assert.ErrorIs(t, err, ErrInvalidRole)

	assert.True(t, RoleAdmin.CanManageMembers())
	assert.True(t, RoleAdmin.CanManageGroup())
	assert.True(t, RoleAdmin.CanRecordFor(1, 2))
	assert.True(t, RoleAdmin.CanDeleteRecord(1, 2))

	assert.False(t, RoleMember.CanManageMembers())
	assert.False(t, RoleMember.CanManageGroup())
	assert.True(t, RoleMember.CanRecordFor(2, 2))
	assert.False(t, RoleMember.CanRecordFor(2, 3))
	assert.False(t, RoleMember.CanDeleteRecord(2, 3))

	assert.False(t, Role("").CanRecordFor(1, 1))
}
