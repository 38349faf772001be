// Command artifactpg serves, inspects and exports visualization artifacts.
//
// Usage:
//
//	artifactpg serve --config artifactpg.yaml
//	artifactpg table rows.json --filter north --sort revenue --dir desc --page 2
//	artifactpg export rows.json --format parquet -o out/
//	artifactpg extract reply.md
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/youssefsiam38/artifactpg"
	"github.com/youssefsiam38/artifactpg/internal/config"
	"github.com/youssefsiam38/artifactpg/internal/logging"
)

// app carries the state shared by every subcommand once the root command's
// pre-run has loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "artifactpg",
		Short:         "Interactive chart, table and diagram artifacts backed by PostgreSQL",
		Version:       artifactpg.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "artifactpg.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newIngestCmd(a),
		newTableCmd(a),
		newExportCmd(a),
		newExtractCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger, cleanup, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
