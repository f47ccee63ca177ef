// Package store declares the Ledger Store ports. Implementations live in
// store/memory and storage (SQLite); both hand back fully materialised
// slices, never cursors.
package store

import (
	"context"
	"errors"
	"strings"

	"kitty/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Filter narrows contribution and expense queries. Zero fields do not
// constrain the result: a zero From or To leaves that end of the month range
// open, an empty Category matches every expense.
type Filter struct {
	GroupID  int64
	MemberID int64
	From     core.Month
	To       core.Month
	Category string
}

// MonthFilter selects the records of one group in one month.
func MonthFilter(groupID int64, month core.Month) Filter {
	return Filter{GroupID: groupID, From: month, To: month}
}

func (f Filter) inRange(m core.Month) bool {
	if m.IsZero() {
		return f.From.IsZero() && f.To.IsZero()
	}
	if !f.From.IsZero() && m.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && m.After(f.To) {
		return false
	}
	return true
}

// MatchContribution reports whether c satisfies the filter. Contributions are
// placed by their period month; the category constraint does not apply.
func (f Filter) MatchContribution(c core.Contribution) bool {
	if f.GroupID != 0 && c.GroupID != f.GroupID {
		return false
	}
	if f.MemberID != 0 && c.MemberID != f.MemberID {
		return false
	}
	return f.inRange(c.Period())
}

// MatchExpense reports whether e satisfies the filter. Expenses are placed
// by the calendar month of their date; categories compare case-insensitively.
func (f Filter) MatchExpense(e core.Expense) bool {
	if f.GroupID != 0 && e.GroupID != f.GroupID {
		return false
	}
	if f.MemberID != 0 && e.MemberID != f.MemberID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, e.Category) {
		return false
	}
	var m core.Month
	if !e.Date.IsZero() {
		m = core.MonthOf(e.Date.Time)
	}
	return f.inRange(m)
}

type (
	// LedgerReader is the read side consumed by the report service.
	LedgerReader interface {
		GetGroup(ctx context.Context, id int64) (core.Group, error)
		ListGroups(ctx context.Context) ([]core.Group, error)
		// ListMembers returns the roster ordered by join time, then user id.
		ListMembers(ctx context.Context, groupID int64) ([]core.Member, error)
		GetMember(ctx context.Context, groupID, userID int64) (core.Member, error)
		// ListContributions returns matches ordered by month, then id.
		ListContributions(ctx context.Context, f Filter) ([]core.Contribution, error)
		// ListExpenses returns matches ordered by date, then id.
		ListExpenses(ctx context.Context, f Filter) ([]core.Expense, error)
		// ListCategories returns the global defaults plus the group's own
		// categories, ordered by name.
		ListCategories(ctx context.Context, groupID int64) ([]core.Category, error)
	}

	// LedgerWriter is the write side used by the ledger service.
	LedgerWriter interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		CreateGroup(ctx context.Context, g core.Group) (core.Group, error)
		SetMonthlyTarget(ctx context.Context, groupID int64, target core.Money) error
		AddMember(ctx context.Context, m core.Member) (core.Member, error)
		SetRole(ctx context.Context, groupID, userID int64, role core.Role) error
		AddContribution(ctx context.Context, c core.Contribution) (core.Contribution, error)
		GetContribution(ctx context.Context, groupID, id int64) (core.Contribution, error)
		DeleteContribution(ctx context.Context, groupID, id int64) error
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, groupID, id int64) (core.Expense, error)
		DeleteExpense(ctx context.Context, groupID, id int64) error
		AddCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	// Store is a complete Ledger Store.
	Store interface {
		LedgerReader
		LedgerWriter
		Close() error
	}
)
