package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceCollected PaymentSource = "COLLECTED"
	SourcePocket    PaymentSource = "POCKET"
)

const dateLayout = "2006-01-02"

type (
	// PaymentSource tells whether an expense was drawn from the pooled
	// contributions or paid personally by the member.
	PaymentSource string

	Date struct {
		time.Time
	}

	User struct {
		ID        int64
		Name      string
		Email     string
		CreatedAt time.Time
	}

	// Member is a user seen through one group membership.
	Member struct {
		ID       int64 // user id
		GroupID  int64
		Name     string
		Role     Role
		JoinedAt time.Time
	}

	Group struct {
		ID   int64
		Name string
		// MonthlyTarget is the expected contribution per member per month.
		// Zero means the group has no target.
		MonthlyTarget Money
		CreatedAt     time.Time
	}

	Contribution struct {
		ID        int64
		GroupID   int64
		MemberID  int64
		Amount    Money
		Month     Month
		Note      string
		CreatedAt time.Time
	}

	Expense struct {
		ID        int64
		GroupID   int64
		MemberID  int64
		Title     string
		Amount    Money
		Category  string
		Date      Date
		Source    PaymentSource
		CreatedAt time.Time
	}

	Category struct {
		ID      int64
		GroupID int64 // 0 for the global defaults
		Name    string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidSource = errors.New("invalid payment source")
	ErrInvalidRole   = errors.New("invalid role")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyCategory = errors.New("empty category")
	ErrMissingGroup  = errors.New("missing group id")
	ErrUnknownMember = errors.New("unknown member")
)

// DefaultCategories seed the category registry of every store.
var DefaultCategories = []string{
	"Groceries", "Rent", "Utilities", "Transport", "Dining", "Household", "Health", "Other",
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParsePaymentSource accepts COLLECTED or POCKET in any case.
func ParsePaymentSource(s string) (PaymentSource, error) {
	src := PaymentSource(strings.ToUpper(strings.TrimSpace(s)))
	if !src.IsValid() {
		return "", ErrInvalidSource
	}
	return src, nil
}

func (p PaymentSource) IsValid() bool {
	return p == SourceCollected || p == SourcePocket
}

func (p PaymentSource) String() string { return string(p) }

// Value returns the contribution amount.
func (c Contribution) Value() Money { return c.Amount }

// Owner returns the id of the member the contribution belongs to.
func (c Contribution) Owner() int64 { return c.MemberID }

// Value returns the expense amount.
func (e Expense) Value() Money { return e.Amount }

// Period is the month the contribution counts toward: its label, or the
// month it was created in when the label is unset.
func (c Contribution) Period() Month {
	if !c.Month.IsZero() {
		return c.Month
	}
	if c.CreatedAt.IsZero() {
		return Month{}
	}
	return MonthOf(c.CreatedAt)
}

// Owner returns the id of the member who recorded the expense.
func (e Expense) Owner() int64 { return e.MemberID }

// HasTarget reports whether the group defines a monthly contribution target.
func (g Group) HasTarget() bool {
	return g.MonthlyTarget.IsPositive()
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	return g.MonthlyTarget.Validate()
}

func (c Contribution) Validate() error {
	if c.GroupID == 0 {
		return ErrMissingGroup
	}
	if c.MemberID == 0 {
		return ErrUnknownMember
	}
	if c.Month.IsZero() {
		return ErrInvalidMonth
	}
	return c.Amount.Validate()
}

func (e Expense) Validate() error {
	if e.GroupID == 0 {
		return ErrMissingGroup
	}
	if e.MemberID == 0 {
		return ErrUnknownMember
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !e.Source.IsValid() {
		return ErrInvalidSource
	}
	return e.Amount.Validate()
}
