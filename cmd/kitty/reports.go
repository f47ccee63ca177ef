package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"kitty/internal/backend"
	"kitty/internal/core"
)

func currentMonth() core.Month {
	return core.MonthOf(time.Now())
}

// reportArgs parses "<group-id>" plus the --month flag.
func reportArgs(cmd *cobra.Command, args []string) (int64, core.Month, error) {
	groupID, err := parseID(args[0], "group")
	if err != nil {
		return 0, core.Month{}, err
	}
	month, err := monthFlag(cmd, "month", currentMonth)
	if err != nil {
		return 0, core.Month{}, err
	}
	return groupID, month, nil
}

func reportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balances, settlements and history of a group",
	}

	summary := &cobra.Command{
		Use:   "summary <group-id>",
		Short: "Month totals, remaining balance and category breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, month, err := reportArgs(cmd, args)
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				r, err := a.reports.MonthReport(ctx, groupID, month)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), r, func(w io.Writer) error { return writeSummary(w, r) })
			})
		},
	}

	settle := &cobra.Command{
		Use:   "settle <group-id>",
		Short: "Who owes and who is owed for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, month, err := reportArgs(cmd, args)
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				r, err := a.reports.MonthReport(ctx, groupID, month)
				if err != nil {
					return err
				}
				v := struct {
					Settlement core.SettlementPlan
					Transfers  []core.Transfer
				}{r.Settlement, r.Transfers}
				return e.print(cmd.OutOrStdout(), v, func(w io.Writer) error { return writeSettlement(w, r) })
			})
		},
	}

	status := &cobra.Command{
		Use:   "status <group-id>",
		Short: "Contribution status of every member for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, month, err := reportArgs(cmd, args)
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				r, err := a.reports.MonthReport(ctx, groupID, month)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), r.Statuses, func(w io.Writer) error { return writeStatuses(w, r.Statuses) })
			})
		},
	}

	for _, c := range []*cobra.Command{summary, settle, status} {
		c.Flags().String("month", "", "month to report, YYYY-MM (default: current month)")
	}

	var from, to string
	series := &cobra.Command{
		Use:   "series <group-id>",
		Short: "Collected and spent totals month by month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			end := currentMonth()
			if to != "" {
				if end, err = core.ParseMonth(to); err != nil {
					return err
				}
			}
			start := end.AddMonths(-5)
			if from != "" {
				if start, err = core.ParseMonth(from); err != nil {
					return err
				}
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				points, err := a.reports.Series(ctx, groupID, start, end)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), points, func(out io.Writer) error {
					w := table(out)
					fmt.Fprintln(w, "MONTH\tCOLLECTED\tSPENT")
					for _, p := range points {
						fmt.Fprintf(w, "%s\t%s\t%s\n", p.Month, p.Collected, p.Expenses)
					}
					return w.Flush()
				})
			})
		},
	}
	series.Flags().StringVar(&from, "from", "", "first month, YYYY-MM (default: five months before --to)")
	series.Flags().StringVar(&to, "to", "", "last month, YYYY-MM (default: current month)")

	cmd.AddCommand(summary, settle, status, series)
	return cmd
}

func exportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <group-id>",
		Short: "Write a month report to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, month, err := reportArgs(cmd, args)
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				exporter, err := backend.CreateExporter(ctx, a.cfg)
				if err != nil {
					return err
				}
				if exporter == nil {
					return errors.New("export disabled: set GOOGLE_SPREADSHEET_ID")
				}
				r, err := a.reports.MonthReport(ctx, groupID, month)
				if err != nil {
					return err
				}
				ref, err := exporter.ExportReport(ctx, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s report of group %d to %s\n", month, groupID, ref)
				return nil
			})
		},
	}
	cmd.Flags().String("month", "", "month to export, YYYY-MM (default: current month)")
	return cmd
}

func writeSummary(out io.Writer, r core.Report) error {
	s := r.Summary
	w := table(out)
	fmt.Fprintf(w, "Group\t%s\n", r.Group.Name)
	fmt.Fprintf(w, "Month\t%s\n", r.Month)
	fmt.Fprintf(w, "Collected\t%s\n", s.Collected)
	fmt.Fprintf(w, "Spent from pool\t%s\n", s.CollectedSpend)
	fmt.Fprintf(w, "Spent out of pocket\t%s\n", s.PocketSpend)
	fmt.Fprintf(w, "Total spent\t%s\n", s.TotalSpend)
	remaining := s.Remaining.String()
	if s.LowBalance {
		remaining += "  (low balance)"
	}
	fmt.Fprintf(w, "Remaining\t%s\n", remaining)
	fmt.Fprintf(w, "Average daily spend\t%s over %d days\n", s.AverageDaily, s.DaysElapsed)
	if r.Group.HasTarget() {
		fmt.Fprintf(w, "Expected\t%s\n", s.ExpectedTotal)
		fmt.Fprintf(w, "Shortfall\t%s\n", s.Shortfall)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.Categories) == 0 {
		_, err := fmt.Fprintln(out, "\nNo expenses this month.")
		return err
	}
	fmt.Fprintln(out)
	w = table(out)
	fmt.Fprintln(w, "CATEGORY\tAMOUNT")
	for _, c := range r.Categories {
		fmt.Fprintf(w, "%s\t%s\n", c.Name, c.Amount)
	}
	return w.Flush()
}

func writeSettlement(out io.Writer, r core.Report) error {
	w := table(out)
	fmt.Fprintln(w, "MEMBER\tCONTRIBUTED\tFROM POOL\tOUT OF POCKET\tBALANCE\tSTATUS")
	for _, e := range r.Settlement.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Name, e.Contribution, e.CollectedSpend, e.PocketSpend, e.Balance, e.Status)
	}
	fmt.Fprintf(w, "\t\t\t\tOwed %s\tOwes %s\n", r.Settlement.TotalOwed, r.Settlement.TotalOwes)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(r.Transfers) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nSuggested transfers:")
	for _, t := range r.Transfers {
		fmt.Fprintf(out, "  %s -> %s: %s\n", t.FromName, t.ToName, t.Amount)
	}
	return nil
}

func writeStatuses(out io.Writer, statuses []core.MemberStatus) error {
	w := table(out)
	fmt.Fprintln(w, "MEMBER\tPAID\tSTATUS")
	for _, st := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Name, st.Paid, st.Status)
	}
	return w.Flush()
}
