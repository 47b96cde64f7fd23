// Package main implements the scry-words command: the HTTP server for
// vocabulary review sessions plus the migration and reminder sweep tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/platform/migrate"
	"github.com/spf13/cobra"
)

// ErrNoSchema is returned by migrate for the memory driver.
var ErrNoSchema = errors.New("the memory driver has no schema to migrate")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "scry-words",
		Short: "Spaced repetition vocabulary review service",
		Long: `scry-words keeps per-owner vocabulary cards, runs review sessions over
them and reminds owners when cards fall due.

Configuration is read from scry-words.yaml in the working directory (or the
file given by --config) and from SCRYWORDS_* environment variables,
e.g. SCRYWORDS_DATABASE_DRIVER=postgres.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./scry-words.yaml)")

	root.AddCommand(
		newServeCmd(&cfgFile),
		newMigrateCmd(&cfgFile),
		newSweepCmd(&cfgFile),
	)
	return root
}

// initializeApp loads configuration and sets up logging to w.
func initializeApp(cfgFile string, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cfg.Server, w)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("sweep_enabled", cfg.Sweep.Enabled),
		slog.Bool("webhook_configured", cfg.Notifier.WebhookURL != ""))

	return cfg, log, nil
}

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp(*cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list database migrations",
		Long:      "Runs the embedded migrations for the configured driver. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := initializeApp(*cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.Database.Driver == driverMemory {
				return ErrNoSchema
			}

			ctx := cmd.Context()
			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("failed to close database", slog.String("error", err.Error()))
				}
			}()

			migrator, err := migrate.New(db, cfg.Database.Driver, log)
			if err != nil {
				return err
			}

			if command != "status" {
				return migrator.Run(ctx, command)
			}

			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), statuses)
		},
	}
}

func printStatus(w io.Writer, statuses []migrate.Status) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		state, appliedAt := "pending", "-"
		if st.Applied {
			state, appliedAt = "applied", st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Version, state, appliedAt, st.Path)
	}
	return tw.Flush()
}

func newSweepCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one due-card reminder sweep and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp(*cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			report := app.sweeper.RunOnce(ctx, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "sweep %s: %d owners, %d notified, %d failed\n",
				report.RunID, report.Owners, report.Notified, report.Failed)

			if report.Failed > 0 {
				return fmt.Errorf("sweep finished with %d failures", report.Failed)
			}
			return nil
		},
	}
}
