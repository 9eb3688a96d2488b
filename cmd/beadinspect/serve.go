package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/beadinspect/internal/core"
	"github.com/JonMunkholm/beadinspect/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve past runs and start new ones over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			out, err := openOutputs(ctx, a.cfg, a.cfg.Inspector.WriteReport)
			if err != nil {
				return err
			}
			defer out.Close()

			var runs web.RunStore
			if out.pg != nil {
				runs = out.pg
			}

			slog.Info("formats registered", "count", core.FormatCount())
			server := web.NewServer(a.cfg, core.NewInspector(out.sinks...), runs)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: SERVER_PORT or 8080)")
	return cmd
}
