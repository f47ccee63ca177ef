package google

import (
	"context"
	"strings"
	"testing"

	"kitty/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := newSheetsService(context.Background(), "", "")
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_UnreadableFile(t *testing.T) {
	_, err := newSheetsService(context.Background(), "", t.TempDir()+"/missing.json")
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
	if !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportReport_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", base: "Kitty"}

	_, err := c.ExportReport(context.Background(), core.Report{Month: core.MustParseMonth("2025-03")})
	if err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestSheetName(t *testing.T) {
	c := &Client{base: " Flat 4B "}
	if got := c.SheetName(core.MustParseMonth("2025-03")); got != "Flat 4B 2025-03" {
		t.Errorf("SheetName = %q", got)
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := map[string]string{
		"Kitty 2025-03":   "'Kitty 2025-03'",
		"Ahmed's 2025-03": "'Ahmed''s 2025-03'",
	}
	for in, want := range tests {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColumn(t *testing.T) {
	tests := map[int]string{1: "A", 7: "G", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for in, want := range tests {
		if got := column(in); got != want {
			t.Errorf("column(%d) = %q, want %q", in, got, want)
		}
	}
}

func sampleReport() core.Report {
	month := core.MustParseMonth("2025-03")
	plan := core.SettlementPlan{
		Entries: []core.SettlementEntry{
			{MemberID: 1, Name: "Ahmed", Contribution: core.Cents(10000), CollectedSpend: core.Cents(12000), Balance: core.Cents(-2000), Owes: core.Cents(2000), Status: core.SettlementOwes},
			{MemberID: 2, Name: "Fatima", Contribution: core.Cents(5000), PocketSpend: core.Cents(2000), Balance: core.Cents(3000), Owed: core.Cents(3000), Status: core.SettlementOwed},
		},
		TotalOwed: core.Cents(3000),
		TotalOwes: core.Cents(2000),
	}
	return core.Report{
		Group: core.Group{ID: 1, Name: "Flat 4B", MonthlyTarget: core.Cents(10000)},
		Month: month,
		Summary: core.MonthSummary{
			Month:     month,
			Collected: core.Cents(15000),
			Remaining: core.Cents(3000),
			Shortfall: core.Cents(5000),
		},
		Categories: []core.CategoryAmount{{Name: "Groceries", Amount: core.Cents(12000)}},
		Statuses: []core.MemberStatus{
			{MemberID: 1, Name: "Ahmed", Paid: core.Cents(10000), Status: core.StatusPaid},
			{MemberID: 2, Name: "Fatima", Status: core.StatusPending},
		},
		Settlement: plan,
		Transfers:  []core.Transfer{{FromMemberID: 1, FromName: "Ahmed", ToMemberID: 2, ToName: "Fatima", Amount: core.Cents(2000)}},
	}
}

func findRow(rows [][]any, label string) []any {
	for _, row := range rows {
		if len(row) > 0 && row[0] == label {
			return row
		}
	}
	return nil
}

func TestReportRows(t *testing.T) {
	rows := reportRows(sampleReport())

	if row := findRow(rows, "Collected"); row == nil || row[1] != "150.00" {
		t.Errorf("Collected row = %v", row)
	}
	if row := findRow(rows, "Shortfall"); row == nil || row[1] != "50.00" {
		t.Errorf("Shortfall row = %v", row)
	}
	if row := findRow(rows, "Groceries"); row == nil || row[1] != "120.00" {
		t.Errorf("Groceries row = %v", row)
	}

	var settlement []any
	for _, row := range rows {
		if len(row) == reportWidth && row[0] == "Ahmed" {
			settlement = row
		}
	}
	if settlement == nil {
		t.Fatal("settlement row for Ahmed missing")
	}
	if settlement[4] != "-20.00" || settlement[5] != "OWES" || settlement[6] != "20.00" {
		t.Errorf("settlement row = %v", settlement)
	}

	if row := findRow(rows, "From"); row == nil {
		t.Error("transfers header missing")
	}
	for _, row := range rows {
		if len(row) > reportWidth {
			t.Errorf("row wider than %d columns: %v", reportWidth, row)
		}
	}
}

func TestReportRowsWithoutTarget(t *testing.T) {
	r := sampleReport()
	r.Group.MonthlyTarget = core.Cents(0)
	r.Transfers = nil

	rows := reportRows(r)

	if findRow(rows, "Shortfall") != nil {
		t.Error("shortfall should be omitted without a target")
	}
	if findRow(rows, "From") != nil {
		t.Error("transfers table should be omitted without transfers")
	}
}
