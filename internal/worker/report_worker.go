package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kitty/internal/amqp"
	"kitty/internal/core"
	"kitty/internal/log"
	"kitty/internal/sheets"
	"kitty/internal/store"
)

// Reports is the part of the report service the worker drives.
type Reports interface {
	MonthReport(ctx context.Context, groupID int64, month core.Month) (core.Report, error)
	Invalidate(groupID int64, month core.Month)
	InvalidateGroup(groupID int64) int
	Groups(ctx context.Context) ([]core.Group, error)
	Now() time.Time
}

// ReportWorker keeps computed reports fresh. It rebuilds a month report when
// the ledger changes, exports it when an exporter is configured, and sweeps
// every group's current month periodically for low balances and pending
// contributions.
type ReportWorker struct {
	reports  Reports
	exporter sheets.ReportExporter
	interval time.Duration

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReportWorker creates a worker. exporter may be nil.
func NewReportWorker(reports Reports, exporter sheets.ReportExporter, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		reports:  reports,
		exporter: exporter,
		interval: interval,
	}
}

// HandleLedgerChanged processes a single ledger change message from AMQP.
// A returned error asks the broker to redeliver it.
func (w *ReportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	ctx = log.WithTrace(ctx, msg.ID)
	logger := log.FromContext(ctx)
	logger.InfoContext(ctx, "Processing ledger change",
		"event_kind", msg.Kind,
		"group_id", msg.GroupID,
		"month", msg.Month.String())

	month := msg.Month
	if msg.GroupWide() {
		dropped := w.reports.InvalidateGroup(msg.GroupID)
		logger.DebugContext(ctx, "Invalidated group reports", "group_id", msg.GroupID, "count", dropped)
		month = core.MonthOf(w.reports.Now())
	} else {
		w.reports.Invalidate(msg.GroupID, month)
	}

	report, err := w.reports.MonthReport(ctx, msg.GroupID, month)
	if errors.Is(err, store.ErrNotFound) {
		logger.WarnContext(ctx, "Ledger change for unknown group, dropping", "group_id", msg.GroupID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("rebuild report: %w", err)
	}

	w.warn(ctx, report)

	if err := w.export(ctx, report); err != nil {
		return err
	}
	return nil
}

// CheckAll rebuilds every group's current month report and logs its
// warnings. Failures for one group do not stop the sweep.
func (w *ReportWorker) CheckAll(ctx context.Context) error {
	groups, err := w.reports.Groups(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}

	month := core.MonthOf(w.reports.Now())
	var errs []error
	flagged := 0
	for _, g := range groups {
		report, err := w.reports.MonthReport(ctx, g.ID, month)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to build report", "group_id", g.ID, "month", month.String(), "error", err)
			errs = append(errs, fmt.Errorf("group %d: %w", g.ID, err))
			continue
		}
		if w.warn(ctx, report) {
			flagged++
		}
	}

	slog.InfoContext(ctx, "Periodic ledger check completed",
		"groups", len(groups),
		"flagged", flagged,
		"errors", len(errs),
		"month", month.String())
	return errors.Join(errs...)
}

// warn logs the report's low-balance and pending-contribution warnings and
// reports whether there were any.
func (w *ReportWorker) warn(ctx context.Context, r core.Report) bool {
	flagged := false
	if r.Summary.LowBalance {
		flagged = true
		slog.WarnContext(ctx, "Low balance",
			"group_id", r.Group.ID,
			"month", r.Month.String(),
			"remaining", r.Summary.Remaining.String(),
			"collected", r.Summary.Collected.String())
	}

	var pending []string
	for _, st := range r.Statuses {
		if st.Status == core.StatusPending {
			pending = append(pending, st.Name)
		}
	}
	if len(pending) > 0 {
		flagged = true
		slog.WarnContext(ctx, "Pending contributions",
			"group_id", r.Group.ID,
			"month", r.Month.String(),
			"members", pending)
	}
	return flagged
}

func (w *ReportWorker) export(ctx context.Context, r core.Report) error {
	if w.exporter == nil {
		slog.DebugContext(ctx, "No report exporter configured, skipping export", "group_id", r.Group.ID)
		return nil
	}
	ref, err := w.exporter.ExportReport(ctx, r)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export report",
			"group_id", r.Group.ID,
			"month", r.Month.String(),
			"error", err)
		return fmt.Errorf("export report: %w", err)
	}
	slog.InfoContext(ctx, "Exported report", "group_id", r.Group.ID, "month", r.Month.String(), "ref", ref)
	return nil
}

// Start begins the periodic check loop. Returns an error if already running.
func (w *ReportWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", w.interval)
	}
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("report worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Report worker started", "check_interval", w.interval)
	return nil
}

// Stop gracefully stops the loop and waits for the current sweep to finish.
func (w *ReportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Report worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Report worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the periodic loop is active
func (w *ReportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReportWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Check immediately on startup
	w.check(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ReportWorker) check(ctx context.Context) {
	if err := w.CheckAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic ledger check failed", "error", err)
	}
}
