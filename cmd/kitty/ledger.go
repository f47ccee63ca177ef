package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kitty/internal/core"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func userCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var email string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.with(cmd, func(ctx context.Context, a *app) error {
				u, err := a.ledger.CreateUser(ctx, args[0], email)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), u, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Created user %q (ID: %d)\n", u.Name, u.ID)
					return err
				})
			})
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address, unique when set")

	cmd.AddCommand(add)
	return cmd
}

func groupCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}

	var target string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a group; the actor becomes its admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			amount := core.Money{}
			if target != "" {
				if amount, err = core.ParseAmount(target); err != nil {
					return fmt.Errorf("target: %w", err)
				}
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				g, err := a.ledger.CreateGroup(ctx, actor, args[0], amount)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), g, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Created group %q (ID: %d)\n", g.Name, g.ID)
					return err
				})
			})
		},
	}
	create.Flags().StringVar(&target, "target", "", "monthly contribution expected from each member, e.g. 150.00")

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.with(cmd, func(ctx context.Context, a *app) error {
				groups, err := a.reports.Groups(ctx)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), groups, func(out io.Writer) error {
					w := table(out)
					fmt.Fprintln(w, "ID\tNAME\tTARGET")
					for _, g := range groups {
						fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Name, g.MonthlyTarget)
					}
					return w.Flush()
				})
			})
		},
	}

	setTarget := &cobra.Command{
		Use:   "target <group-id> <amount>",
		Short: "Set the monthly contribution target (0 removes it)",
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
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.SetMonthlyTarget(ctx, actor, groupID, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Monthly target of group %d set to %s\n", groupID, amount)
				return nil
			})
		},
	}

	cmd.AddCommand(create, list, setTarget)
	return cmd
}

func memberCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage group members",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <group-id> <user-id>",
		Short: "Add a user to a group",
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
			userID, err := parseID(args[1], "user")
			if err != nil {
				return err
			}
			r, err := core.ParseRole(role)
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				m, err := a.ledger.AddMember(ctx, actor, groupID, userID, r)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), m, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Added %s to group %d as %s\n", m.Name, groupID, m.Role)
					return err
				})
			})
		},
	}
	add.Flags().StringVar(&role, "role", string(core.RoleMember), "ADMIN or MEMBER")

	list := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List the members of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				members, err := a.reports.Members(ctx, groupID)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), members, func(out io.Writer) error {
					w := table(out)
					fmt.Fprintln(w, "ID\tNAME\tROLE\tJOINED")
					for _, m := range members {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Role, m.JoinedAt.Format("2006-01-02"))
					}
					return w.Flush()
				})
			})
		},
	}

	setRole := &cobra.Command{
		Use:   "role <group-id> <user-id> <role>",
		Short: "Change a member's role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := e.actor()
			if err != nil {
				return err
			}
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			userID, err := parseID(args[1], "user")
			if err != nil {
				return err
			}
			r, err := core.ParseRole(args[2])
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				if err := a.ledger.SetRole(ctx, actor, groupID, userID, r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is now %s in group %d\n", userID, r, groupID)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, setRole)
	return cmd
}

func categoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage expense categories",
	}

	add := &cobra.Command{
		Use:   "add <group-id> <name>",
		Short: "Add a category to a group",
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
			return e.with(cmd, func(ctx context.Context, a *app) error {
				c, err := a.ledger.AddCategory(ctx, actor, groupID, args[1])
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), c, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Created category %q (ID: %d)\n", c.Name, c.ID)
					return err
				})
			})
		},
	}

	list := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List the categories available to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			return e.with(cmd, func(ctx context.Context, a *app) error {
				cats, err := a.reports.Categories(ctx, groupID)
				if err != nil {
					return err
				}
				return e.print(cmd.OutOrStdout(), cats, func(out io.Writer) error {
					w := table(out)
					fmt.Fprintln(w, "ID\tNAME\tSCOPE")
					for _, c := range cats {
						scope := "group"
						if c.GroupID == 0 {
							scope = "default"
						}
						fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, scope)
					}
					return w.Flush()
				})
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
