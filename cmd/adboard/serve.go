package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/api"
)

// poolStatsInterval is how often database pool gauges are refreshed.
const poolStatsInterval = 15 * time.Second

// newServeCmd runs the HTTP API
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `The serve sub-command loads a snapshot of the ledger and serves the
summary, detail, export and verification endpoints together with Prometheus
metrics. POST /api/v1/reload re-reads the source without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, b, err := loadService(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.cleanup()

			if zerolog.GlobalLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      api.NewRouter(api.NewHandler(svc, cfg.Detail.PreviewLimit)),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			if b.pgPool != nil {
				go reportPoolStats(ctx, b.pgPool.ReportStats)
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("http server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	bindFlags(cmd.Flags(), map[string]string{"server.addr": "addr"})
	return cmd
}

func reportPoolStats(ctx context.Context, report func()) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	report()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report()
		}
	}
}
