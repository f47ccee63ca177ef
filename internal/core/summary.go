package core

// ContributionStatus is the computed payment state of a member for a month.
type ContributionStatus string

const (
	StatusPaid    ContributionStatus = "PAID"
	StatusPending ContributionStatus = "PENDING"
)

// SettlementStatus classifies a member's net position.
type SettlementStatus string

const (
	SettlementOwed     SettlementStatus = "OWED"
	SettlementOwes     SettlementStatus = "OWES"
	SettlementBalanced SettlementStatus = "BALANCED"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MemberTotal is the sum of one member's records.
type MemberTotal struct {
	MemberID int64
	Name     string
	Total    Money
}

// MonthPoint is one entry of a monthly series.
type MonthPoint struct {
	Month     Month
	Collected Money
	Expenses  Money
}

// MemberStatus is a member's contribution state for one month.
type MemberStatus struct {
	MemberID int64
	Name     string
	Paid     Money
	Status   ContributionStatus
}

// MonthSummary holds the group-level aggregates of one month.
type MonthSummary struct {
	Month          Month
	Collected      Money // contributions
	CollectedSpend Money // expenses drawn from the pool
	PocketSpend    Money // expenses paid personally
	TotalSpend     Money
	Remaining      Money // Collected - CollectedSpend
	LowBalance     bool
	DaysElapsed    int
	AverageDaily   Money
	ExpectedTotal  Money // MonthlyTarget x members, zero without a target
	Shortfall      Money // ExpectedTotal - Collected, never negative
}

// SettlementEntry is the settlement position of one member.
type SettlementEntry struct {
	MemberID       int64
	Name           string
	Contribution   Money
	CollectedSpend Money
	PocketSpend    Money
	TotalSpent     Money
	Balance        Money
	Owes           Money
	Owed           Money
	Status         SettlementStatus
}

// SettlementPlan lists every member's position plus the group totals.
// TotalOwed and TotalOwes are only equal when the group's contributions
// equal its total spend.
type SettlementPlan struct {
	Entries   []SettlementEntry
	TotalOwed Money
	TotalOwes Money
}

// Transfer is a suggested payment from a member who owes to one who is owed.
type Transfer struct {
	FromMemberID int64
	FromName     string
	ToMemberID   int64
	ToName       string
	Amount       Money
}

// Report is the full month report handed to presentation layers.
type Report struct {
	Group      Group
	Month      Month
	Summary    MonthSummary
	Categories []CategoryAmount
	Members    []MemberTotal // contributions per member
	Statuses   []MemberStatus
	Settlement SettlementPlan
	Transfers  []Transfer
}

// EmptyReport is the zero-valued report shown when the data cannot be fetched.
func EmptyReport(group Group, month Month) Report {
	return Report{Group: group, Month: month, Summary: MonthSummary{Month: month}}
}
