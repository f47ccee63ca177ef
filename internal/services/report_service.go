package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"kitty/internal/cache"
	"kitty/internal/core"
	"kitty/internal/ledger"
	"kitty/internal/log"
	"kitty/internal/settlement"
	"kitty/internal/store"
)

const (
	DefaultReportCacheSize = 128
	DefaultReportCacheTTL  = 5 * time.Minute
)

// ReportService reads ledger records through the store and runs the
// aggregation engine and settlement calculator over them.
type ReportService struct {
	reader store.LedgerReader
	cache  cache.Cache[core.Report]
	ratio  float64
	now    func() time.Time
}

type ReportOption func(*ReportService)

// WithLowBalanceRatio sets the fraction of collected funds under which the
// remaining balance is flagged as low.
func WithLowBalanceRatio(ratio float64) ReportOption {
	return func(s *ReportService) { s.ratio = ratio }
}

// WithCache replaces the default report cache.
func WithCache(c cache.Cache[core.Report]) ReportOption {
	return func(s *ReportService) { s.cache = c }
}

func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(reader store.LedgerReader, opts ...ReportOption) *ReportService {
	s := &ReportService{
		reader: reader,
		ratio:  ledger.DefaultLowBalanceRatio,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewLRUCache[core.Report](DefaultReportCacheSize, DefaultReportCacheTTL)
	}
	return s
}

func monthKey(groupID int64, month core.Month) string {
	return groupPrefix(groupID) + month.String()
}

// reportKey names the cached report of a group month. A report of the month
// in progress depends on the day, so its key carries the day.
func (s *ReportService) reportKey(groupID int64, month core.Month) string {
	key := monthKey(groupID, month)
	if now := s.now(); month == core.MonthOf(now) {
		key += ":" + strconv.Itoa(now.Day())
	}
	return key
}

func groupPrefix(groupID int64) string {
	return strconv.FormatInt(groupID, 10) + ":"
}

// MonthReport computes the report of one group for one month. Results are
// cached until invalidated or expired. The returned report shares slices
// with the cache and must not be modified.
func (s *ReportService) MonthReport(ctx context.Context, groupID int64, month core.Month) (core.Report, error) {
	if month.IsZero() {
		return core.Report{}, core.ErrInvalidMonth
	}
	start := time.Now()
	logger := log.NewStructuredLogger(log.FromContext(ctx))

	key := s.reportKey(groupID, month)
	if r, ok := s.cache.Get(key); ok {
		logger.LogReportBuilt(ctx, groupID, month.String(), time.Since(start), true)
		return r, nil
	}

	var (
		group         core.Group
		members       []core.Member
		contributions []core.Contribution
		expenses      []core.Expense
	)
	filter := store.MonthFilter(groupID, month)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = s.reader.GetGroup(gctx, groupID)
		if err != nil {
			return fmt.Errorf("get group: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = s.reader.ListMembers(gctx, groupID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		contributions, err = s.reader.ListContributions(gctx, filter)
		if err != nil {
			return fmt.Errorf("list contributions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.reader.ListExpenses(gctx, filter)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, fmt.Errorf("month report for group %d %s: %w", groupID, month, err)
	}

	plan := settlement.FromRecords(members, contributions, expenses)
	r := core.Report{
		Group:      group,
		Month:      month,
		Summary:    ledger.Summarize(group, members, contributions, expenses, month, s.now(), s.ratio),
		Categories: ledger.BreakdownByCategory(expenses),
		Members:    ledger.BreakdownByMember(contributions, members),
		Statuses:   ledger.ContributionStatuses(contributions, members, month),
		Settlement: plan,
		Transfers:  settlement.Transfers(plan),
	}
	s.cache.Set(key, r)

	logger.LogReportBuilt(ctx, groupID, month.String(), time.Since(start), false)
	return r, nil
}

// CurrentReport is MonthReport for the month containing the service clock.
func (s *ReportService) CurrentReport(ctx context.Context, groupID int64) (core.Report, error) {
	return s.MonthReport(ctx, groupID, core.MonthOf(s.now()))
}

// Series returns collected and spent totals for every month from from to to
// inclusive.
func (s *ReportService) Series(ctx context.Context, groupID int64, from, to core.Month) ([]core.MonthPoint, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, fmt.Errorf("series %s..%s: %w", from, to, core.ErrInvalidMonth)
	}
	if _, err := s.reader.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	filter := store.Filter{GroupID: groupID, From: from, To: to}
	var (
		contributions []core.Contribution
		expenses      []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contributions, err = s.reader.ListContributions(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.reader.ListExpenses(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("series for group %d: %w", groupID, err)
	}

	return ledger.MonthlySeries(contributions, expenses, core.MonthRange(from, to)), nil
}

// Invalidate drops the cached reports of one group month, whatever day
// they were built on.
func (s *ReportService) Invalidate(groupID int64, month core.Month) {
	base := monthKey(groupID, month)
	s.cache.DeleteFunc(func(key string) bool {
		return key == base || strings.HasPrefix(key, base+":")
	})
}

// InvalidateGroup drops every cached report of a group.
func (s *ReportService) InvalidateGroup(groupID int64) int {
	prefix := groupPrefix(groupID)
	return s.cache.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Groups lists every group known to the store.
func (s *ReportService) Groups(ctx context.Context) ([]core.Group, error) {
	return s.reader.ListGroups(ctx)
}

// Members returns the roster of an existing group.
func (s *ReportService) Members(ctx context.Context, groupID int64) ([]core.Member, error) {
	if _, err := s.reader.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return s.reader.ListMembers(ctx, groupID)
}

// Categories returns the default categories plus the group's own.
func (s *ReportService) Categories(ctx context.Context, groupID int64) ([]core.Category, error) {
	if _, err := s.reader.GetGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return s.reader.ListCategories(ctx, groupID)
}

// Now returns the service clock's current time.
func (s *ReportService) Now() time.Time {
	return s.now()
}
