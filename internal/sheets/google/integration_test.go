//go:build integration

package google

import (
	"context"
	"os"
	"testing"

	"kitty/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	jsonCreds := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	fileCreds := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if jsonCreds == "" && fileCreds == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, Config{
		SpreadsheetID:      spreadsheetID,
		SheetName:          "Kitty Integration",
		ServiceAccountJSON: jsonCreds,
		ServiceAccountFile: fileCreds,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	r := sampleReport()
	ref, err := client.ExportReport(ctx, r)
	if err != nil {
		t.Fatalf("Failed to export report: %v", err)
	}
	t.Logf("Exported report to %s", ref)

	// A second export replaces the tab contents instead of failing on the
	// existing sheet.
	r.Summary.Collected = core.Cents(1)
	if _, err := client.ExportReport(ctx, r); err != nil {
		t.Fatalf("Failed to re-export report: %v", err)
	}
}
