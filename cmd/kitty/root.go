package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kitty/internal/backend"
	"kitty/internal/cli"
	"kitty/internal/config"
	"kitty/internal/core"
	"kitty/internal/log"
	"kitty/internal/services"
)

// app is the wiring a command runs against.
type app struct {
	cfg     *config.Config
	ledger  *services.LedgerService
	reports *services.ReportService
	close   func() error
}

// opener builds the app for one command invocation.
type opener func(ctx context.Context, cfg *config.Config) (*app, error)

// openApp opens the configured backend.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(nil).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		ledger:  services.NewLedgerService(res.Store, res.Publisher()),
		reports: services.NewReportService(res.Store, services.WithLowBalanceRatio(cfg.LowBalanceRatio)),
		close:   res.Cleanup,
	}, nil
}

// env carries the global flags and the opener shared by every command.
type env struct {
	open    opener
	cfg     *config.Config
	asJSON  bool
	actorID int64
}

func newRootCmd(open opener) *cobra.Command {
	e := &env{open: open}

	root := &cobra.Command{
		Use:   "kitty",
		Short: "Shared-expense ledger",
		Long: `kitty records the contributions members pay into a shared pool and the
expenses paid from it or out of pocket, then reports balances and settlements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			cli.SetupLogger(cfg, log.ComponentCLI)
			e.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&e.asJSON, "json", false, "print JSON instead of tables")
	root.PersistentFlags().Int64Var(&e.actorID, "actor", 0, "id of the user performing the command")

	root.AddCommand(migrateCmd(e))
	root.AddCommand(userCmd(e))
	root.AddCommand(groupCmd(e))
	root.AddCommand(memberCmd(e))
	root.AddCommand(categoryCmd(e))
	root.AddCommand(contributionCmd(e))
	root.AddCommand(expenseCmd(e))
	root.AddCommand(reportCmd(e))
	root.AddCommand(exportCmd(e))

	return root
}

// with opens the app, runs fn and closes the app again.
func (e *env) with(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithTrace(ctx, log.NewTraceID())
	a, err := e.open(ctx, e.cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	if a.close != nil {
		if err := a.close(); err != nil {
			return errors.Join(runErr, fmt.Errorf("close backend: %w", err))
		}
	}
	return runErr
}

// actor returns the --actor flag, which write commands require.
func (e *env) actor() (int64, error) {
	if e.actorID <= 0 {
		return 0, errors.New("--actor is required")
	}
	return e.actorID, nil
}

// print writes v as indented JSON when --json is set, otherwise calls table.
func (e *env) print(w io.Writer, v any, table func(w io.Writer) error) error {
	if e.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table(w)
}

func monthFlag(cmd *cobra.Command, name string, now func() core.Month) (core.Month, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return now(), nil
	}
	return core.ParseMonth(s)
}
