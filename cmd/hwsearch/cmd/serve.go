package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hwcatalog/hwsearch/internal/output"
	"github.com/hwcatalog/hwsearch/internal/server"
)

func newServeCmd() *cobra.Command {
	var dir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve index artifacts over HTTP",
		Long: `Serve a fragment directory as static files, the way a CDN or web
server would in production. Also exposes /healthz and Prometheus
metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Optimize.OutputDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			output.New(cmd.OutOrStdout()).Statusf("🌐", "serving %s on %s", dir, addr)
			return server.New(dir, addr, server.WithLogger(slog.Default())).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Fragment directory to serve (default from config)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}
