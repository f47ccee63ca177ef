package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitty/internal/config"
	"kitty/internal/core"
	"kitty/internal/services"
	"kitty/internal/store/memory"
)

// harness runs commands against one memory store shared across invocations.
type harness struct {
	t     *testing.T
	store *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_LEVEL", "error")
	return &harness{t: t, store: memory.New([]string{"Groceries", "Dining", "Other"})}
}

func (h *harness) open(_ context.Context, cfg *config.Config) (*app, error) {
	return &app{
		cfg:     cfg,
		ledger:  services.NewLedgerService(h.store, nil),
		reports: services.NewReportService(h.store),
	}, nil
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	root := newRootCmd(h.open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "kitty %v", args)
	return out
}

// seed creates Ahmed (admin, user 1) and Fatima (member, user 2) in group 1.
func (h *harness) seed() {
	h.mustRun("user", "add", "Ahmed")
	h.mustRun("user", "add", "Fatima", "--email", "fatima@example.com")
	h.mustRun("group", "create", "Flat 4B", "--target", "100", "--actor", "1")
	h.mustRun("member", "add", "1", "2", "--actor", "1")
}

func TestLedgerCommands(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("member", "list", "1")
	assert.Contains(t, out, "Ahmed")
	assert.Contains(t, out, "ADMIN")
	assert.Contains(t, out, "Fatima")

	out = h.mustRun("group", "list")
	assert.Contains(t, out, "Flat 4B")

	out = h.mustRun("category", "add", "1", "Utilities", "--actor", "1")
	assert.Contains(t, out, "Utilities")
	out = h.mustRun("category", "list", "1")
	assert.Contains(t, out, "Utilities")
	assert.Contains(t, out, "Groceries")

	_, err := h.run("category", "add", "1", "Pets", "--actor", "2")
	assert.ErrorIs(t, err, services.ErrForbidden)

	h.mustRun("member", "role", "1", "2", "admin", "--actor", "1")
	h.mustRun("member", "role", "1", "1", "MEMBER", "--actor", "2")
	_, err = h.run("member", "role", "1", "2", "MEMBER", "--actor", "2")
	assert.ErrorIs(t, err, services.ErrLastAdmin)
}

func TestWriteCommandsRequireActor(t *testing.T) {
	h := newHarness(t)
	h.seed()

	_, err := h.run("contribution", "add", "1", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--actor")

	_, err = h.run("contribution", "add", "x", "10", "--actor", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid group id")

	_, err = h.run("expense", "add", "1", "Lunch", "abc", "--actor", "1")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestRecordsAndReports(t *testing.T) {
	h := newHarness(t)
	h.seed()

	h.mustRun("contribution", "add", "1", "100", "--month", "2025-03", "--actor", "1")
	h.mustRun("contribution", "add", "1", "50", "--month", "2025-03", "--actor", "2")
	h.mustRun("expense", "add", "1", "Weekly shop", "120", "--category", "groceries",
		"--date", "2025-03-02", "--actor", "1")
	h.mustRun("expense", "add", "1", "Pizza", "20", "--category", "Dining",
		"--date", "2025-03-05", "--source", "POCKET", "--actor", "2")

	out := h.mustRun("--json", "report", "summary", "1", "--month", "2025-03")
	var r core.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, core.MustParseMonth("2025-03"), r.Month)
	assert.Equal(t, core.Cents(15000), r.Summary.Collected)
	assert.Equal(t, core.Cents(12000), r.Summary.CollectedSpend)
	assert.Equal(t, core.Cents(2000), r.Summary.PocketSpend)
	assert.Equal(t, core.Cents(3000), r.Summary.Remaining)
	require.Len(t, r.Categories, 2)
	assert.Equal(t, "Dining", r.Categories[0].Name)
	assert.Equal(t, "Groceries", r.Categories[1].Name)

	out = h.mustRun("report", "summary", "1", "--month", "2025-03")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "Groceries")

	out = h.mustRun("report", "settle", "1", "--month", "2025-03")
	assert.Contains(t, out, "Ahmed")
	assert.Contains(t, out, "Fatima")

	out = h.mustRun("report", "status", "1", "--month", "2025-03")
	assert.Contains(t, out, "PAID")

	out = h.mustRun("--json", "report", "series", "1", "--from", "2025-02", "--to", "2025-04")
	var points []core.MonthPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 3)
	assert.Equal(t, core.Cents(15000), points[1].Collected)
	assert.Equal(t, core.Cents(14000), points[1].Expenses)

	_, err := h.run("report", "series", "1", "--from", "2025-04", "--to", "2025-02")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)

	// Fatima cannot delete Ahmed's expense; Ahmed as admin can delete hers.
	_, err = h.run("expense", "delete", "1", "1", "--actor", "2")
	assert.ErrorIs(t, err, services.ErrForbidden)
	h.mustRun("expense", "delete", "1", "2", "--actor", "1")
	h.mustRun("contribution", "delete", "1", "2", "--actor", "2")

	out = h.mustRun("--json", "report", "summary", "1", "--month", "2025-03")
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, core.Cents(10000), r.Summary.Collected)
	assert.True(t, r.Summary.PocketSpend.IsZero())
}

func TestExportDisabled(t *testing.T) {
	h := newHarness(t)
	h.seed()

	_, err := h.run("export", "1", "--month", "2025-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export disabled")
}

func TestMigrateNeedsSQLite(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("migrate", "--status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BACKEND=sqlite")
}
