package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockdeck/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Start the HTTP API server. Serves REST endpoints under /api/v1, a
WebSocket tick feed at /ws, Prometheus metrics at /metrics, and a health
check at /healthz. Stops cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				app.Config.Server.Addr = addr
			}

			srv := server.New(app.Config.Server, server.Deps{
				Provider:   app.Provider,
				Indicators: app.Indicators,
				Strategies: app.Strategies,
				Advisor:    app.Advisor,
				Store:      app.Store,
				Hub:        app.Hub,
				Poller:     app.Poller,
				Monitor:    app.Monitor,
			}, app.Logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides config)")
	return cmd
}
