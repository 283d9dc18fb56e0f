package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bar-quality/internal/app"
	"bar-quality/internal/application/quality"
	"bar-quality/internal/domain/dataquality"
	"bar-quality/internal/infrastructure/config"
	"bar-quality/internal/infrastructure/db"
	"bar-quality/internal/infrastructure/logging"
)

// RootOptions 保存所有子命令共用的旗標。
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand 建立 barcheck 命令樹。
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "barcheck",
		Short:         "Data-quality checks for daily stock/index bars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "barcheck.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log level (debug|info|warn|error)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newChecksCommand(opts))
	return cmd
}

func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.LoadFromFile(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

func newRunCommand(opts *RootOptions) *cobra.Command {
	var (
		reportDir string
		checks    []string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load the datasets, run the checks and write violation reports",
		Long: `Load the bar and index info datasets, run every check against the bars
and write one <check>.csv report per check. Exits non-zero when any check fails.

Examples:
  barcheck run
  barcheck run --config /etc/barcheck.yaml --report-dir out
  barcheck run --check test_high_ishigher_low --check test_changeratio_below_1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if reportDir != "" {
				cfg.Report.Dir = reportDir
			}
			log := logging.New(cfg.Log, cmd.ErrOrStderr())
			return runChecks(cmd.Context(), cmd.OutOrStdout(), cfg, log, checks)
		},
	}
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for report CSVs (default from config)")
	cmd.Flags().StringArrayVar(&checks, "check", nil, "run only the named check (repeatable)")
	return cmd
}

func runChecks(ctx context.Context, out io.Writer, cfg config.Config, log zerolog.Logger, checks []string) error {
	var pool *sql.DB
	if cfg.UsesPostgres() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		var err error
		if pool, err = db.Connect(connectCtx, cfg.DB); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if pool != nil {
			defer pool.Close()
		}
	}

	runner, err := app.ProvideRunner(cfg, pool, log)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx, checks...)
	if len(summary.Results) > 0 {
		printSummary(out, summary)
	}
	if err != nil {
		failures := dataquality.ValidationFailures(err)
		for _, vf := range failures {
			log.Error().Str("check", vf.Label).Int("rows", vf.Count).Msg(vf.Error())
		}
		if len(failures) == 0 {
			log.Error().Err(err).Msg("run failed")
		}
		return err
	}
	return nil
}

func printSummary(out io.Writer, s quality.Summary) {
	fmt.Fprintln(out, s.Text())
}

func newChecksCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List check labels in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			rules, err := cfg.DomainRules()
			if err != nil {
				return err
			}
			runner := quality.NewRunner(quality.Deps{Rules: rules, Log: zerolog.Nop()})
			for _, l := range runner.Labels() {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}
