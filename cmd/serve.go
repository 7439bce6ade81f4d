package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/state-dashboard/internal/server"
)

var (
	servePort       int
	serveAQIRefresh time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map, summary and rankings over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initDashboard(ctx, "serve")
		if err != nil {
			return err
		}

		// Live readings patch the snapshot after the map is already being
		// served, so a slow feed never delays startup.
		go refreshAQI(ctx, env, serveAQIRefresh)

		srvHandler := server.New(env.Dashboard, server.Options{
			AllowedOrigins:  cfg.Server.AllowedOrigins,
			DefaultCategory: cfg.View.DefaultCategory,
			DefaultYear:     cfg.View.DefaultYear,
			Center:          cfg.View.Center,
			Zoom:            cfg.View.Zoom,
			Metrics:         env.Metrics,
		}).Handler()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srvHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("dataset_id", env.Dashboard.Snapshot().ID),
			zap.Bool("live_aqi", env.AQI != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// refreshAQI runs one enrichment pass and then, when every > 0, repeats it
// on a ticker. Passes never overlap.
func refreshAQI(ctx context.Context, env *dashboardEnv, every time.Duration) {
	if env.AQI == nil {
		return
	}
	env.enrich(ctx)
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			env.enrich(ctx)
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().DurationVar(&serveAQIRefresh, "aqi-refresh", 0, "re-fetch live AQI readings at this interval (0 = once at startup)")
	rootCmd.AddCommand(serveCmd)
}
