package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	appointmenthandler "github.com/jwalitptl/frontdesk-scheduler/internal/handler/appointment"
	"github.com/jwalitptl/frontdesk-scheduler/internal/handler/doctor"
	"github.com/jwalitptl/frontdesk-scheduler/internal/handler/health"
	"github.com/jwalitptl/frontdesk-scheduler/internal/handler/patient"
	schedulehandler "github.com/jwalitptl/frontdesk-scheduler/internal/handler/schedule"
	"github.com/jwalitptl/frontdesk-scheduler/internal/middleware"
	"github.com/jwalitptl/frontdesk-scheduler/internal/router"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/worker"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the schedule web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configFile)
		},
	}
}

func runServer(ctx context.Context, configFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configFile, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := newRouter(a)
	if err != nil {
		return err
	}

	if a.cfg.Prefetch.Enabled && a.cache != nil {
		prefetcher, err := newPrefetcher(a)
		if err != nil {
			return err
		}
		go prefetcher.Start(ctx)
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    a.cfg.Server.ReadTimeout,
		WriteTimeout:   a.cfg.Server.WriteTimeout,
		MaxHeaderBytes: a.cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.logger.Info("Server exited properly")
	return nil
}

func newRouter(a *app) (*router.Router, error) {
	var limit rate.Limit
	if a.cfg.RateLimit.Enabled {
		limit = rate.Limit(a.cfg.RateLimit.RequestsPerSecond)
	}

	cors := middleware.DefaultCORSConfig()
	if len(a.cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = a.cfg.CORS.AllowedOrigins
	}
	if len(a.cfg.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = a.cfg.CORS.AllowedMethods
	}
	if len(a.cfg.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = a.cfg.CORS.AllowedHeaders
	}
	if a.cfg.CORS.MaxAge > 0 {
		cors.MaxAge = a.cfg.CORS.MaxAge
	}

	metricsPath := ""
	if a.cfg.Monitoring.PrometheusEnabled {
		metricsPath = a.cfg.Monitoring.MetricsPath
	}

	mode := a.cfg.Server.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}

	scheduleH := schedulehandler.NewHandler(a.schedules, a.appointments)
	r, err := router.NewRouter(router.RouterConfig{
		Mode:           mode,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		RateLimit:      limit,
		RateBurst:      a.cfg.RateLimit.Burst,
		CORSConfig:     cors,
		MetricsPrefix:  "scheduler",
		MetricsPath:    metricsPath,
		Registry:       a.registry,
	},
		scheduleH,
		health.NewHandler(a.checks...),
		doctor.NewHandler(a.appointments),
		patient.NewHandler(a.appointments),
		appointmenthandler.NewHandler(a.appointments),
		scheduleH,
	)
	if err != nil {
		return nil, err
	}
	r.Setup()
	return r, nil
}

func newPrefetcher(a *app) (*worker.Prefetcher, error) {
	return worker.NewPrefetcher(a.appointments, worker.PrefetchConfig{
		Interval:      a.cfg.Prefetch.Interval,
		RetryAttempts: a.cfg.Prefetch.RetryAttempts,
		RetryDelay:    a.cfg.Prefetch.RetryDelay,
	}, a.logger, a.metrics)
}
