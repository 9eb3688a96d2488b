package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/beadinspect/internal/config"
	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/logging"
	"github.com/JonMunkholm/beadinspect/internal/report"
	"github.com/JonMunkholm/beadinspect/internal/store"
)

// app carries state shared by subcommands once the root has loaded config.
type app struct {
	configPath string
	envLoaded  bool
	cfg        *config.Config
}

func newRootCmd(envLoaded bool) *cobra.Command {
	a := &app{envLoaded: envLoaded}

	cmd := &cobra.Command{
		Use:           "beadinspect",
		Short:         "Validate BEAD challenge CSV datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			a.cfg = cfg

			slog.Debug("configuration loaded", "env_file", a.envLoaded, "config", cfg.String())
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (environment variables still win)")

	cmd.AddCommand(
		newValidateCmd(a),
		newServeCmd(a),
		newFormatsCmd(),
	)
	return cmd
}

// outputs holds the sinks a run writes to.
type outputs struct {
	sinks []core.Sink
	pg    *store.Postgres // nil without a database
}

// openOutputs builds the issue log sink, the report sink when withReport is
// set, and the Postgres sink when a database is configured.
func openOutputs(ctx context.Context, cfg *config.Config, withReport bool) (*outputs, error) {
	out := &outputs{sinks: []core.Sink{store.NewIssueLog()}}
	if withReport {
		out.sinks = append(out.sinks, report.NewWriter())
	}

	if !cfg.Database.Enabled() {
		return out, nil
	}
	pool, err := store.OpenPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	pg := store.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	out.pg = pg
	out.sinks = append(out.sinks, pg)
	return out, nil
}

// Close releases the database pool, if any.
func (o *outputs) Close() {
	if o.pg != nil {
		o.pg.Close()
	}
}
