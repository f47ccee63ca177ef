package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kitty/internal/core"
)

func contributionCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribution",
		Short: "Record contributions to the shared pool",
	}

	var (
		memberID int64
		month    string
		note     string
	)
	add := &cobra.Command{
		Use:   "add <group-id> <amount>",
		Short: "Record a contribution",
		Long: `Record a contribution to the group's pool. Without --member the actor is the
contributor; without --month the contribution counts toward the current month.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			c := core.Contribution{GroupID: groupID, MemberID: memberID, Amount: amount, Note: note}
			if month != "" {
				if c.Month, err = core.ParseMonth(month); err != nil {
					return err
				}
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				created, err := a.ledger.RecordContribution(ctx, actor, c)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), created, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Recorded contribution %d: %s for %s\n", created.ID, created.Amount, created.Month)
					return err
				})
			})
		},
	}
	add.Flags().Int64Var(&memberID, "member", 0, "contributing member (admins only; default: the actor)")
	add.Flags().StringVar(&month, "month", "", "month the contribution counts toward, YYYY-MM")
	add.Flags().StringVar(&note, "note", "", "free-form note")

	del := &cobra.Command{
		Use:   "delete <group-id> <contribution-id>",
		Short: "Delete a contribution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			id, err := parseID(args[1], "contribution")
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.DeleteContribution(ctx, actor, groupID, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted contribution %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

func expenseCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record shared expenses",
	}

	var (
		memberID int64
		category string
		date     string
		source   string
	)
	add := &cobra.Command{
		Use:   "add <group-id> <title> <amount>",
		Short: "Record an expense",
		Long: `Record an expense. --source COLLECTED (default) draws it from the pool,
POCKET means the member paid it personally.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return err
			}
			src, err := core.ParsePaymentSource(source)
			if err != nil {
				return err
			}
			ex := core.Expense{
				GroupID:  groupID,
				MemberID: memberID,
				Title:    args[1],
				Amount:   amount,
				Category: category,
				Source:   src,
			}
			if date != "" {
				if ex.Date, err = core.ParseDate(date); err != nil {
					return err
				}
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				created, err := a.ledger.RecordExpense(ctx, actor, ex)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), created, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Recorded expense %d: %q %s (%s, %s) on %s\n",
						created.ID, created.Title, created.Amount, created.Category, created.Source, created.Date)
					return err
				})
			})
		},
	}
	add.Flags().Int64Var(&memberID, "member", 0, "member who spent (admins only; default: the actor)")
	add.Flags().StringVar(&category, "category", "Other", "expense category")
	add.Flags().StringVar(&date, "date", "", "date of the expense, YYYY-MM-DD (default: today)")
	add.Flags().StringVar(&source, "source", string(core.SourceCollected), "COLLECTED or POCKET")

	del := &cobra.Command{
		Use:   "delete <group-id> <expense-id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			id, err := parseID(args[1], "expense")
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.DeleteExpense(ctx, actor, groupID, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}
