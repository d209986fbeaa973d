package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/callrecon/internal/adapters/http/api"
	"github.com/okian/callrecon/internal/adapters/http/site"
	"github.com/okian/callrecon/internal/adapters/http/swagger"
	app "github.com/okian/callrecon/internal/app"
	"github.com/okian/callrecon/internal/config"
	"github.com/okian/callrecon/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 60 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			return serve(cmd.Context(), c)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
	return cmd
}

func serve(ctx context.Context, c *cli) error {
	log := c.log.Named("server")

	svc := app.New(c.serviceOptions()...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           newHandler(ctx, svc, c.cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", c.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(serveErr))
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return serveErr
}

// newHandler registers every route of the service on a fresh mux.
func newHandler(ctx context.Context, svc *app.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes())).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes queue and store gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}
