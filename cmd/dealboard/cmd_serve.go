package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deal-board/internal/job"
	"deal-board/internal/metrics"
	"deal-board/internal/router"
	"deal-board/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP with Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// buildServer wires the board session, router and the pipeline metrics job.
// The scheduler is nil when metrics are disabled.
func (a *app) buildServer(ctx context.Context) (*http.Server, *cron.Cron, error) {
	cfg := a.cfg
	logger := a.logger

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(registry, logger)
	logger.Info("Metrics initialized")

	api := a.newClient(m)

	// Serve mode gets confirmation from the ?confirm=true query parameter
	controller := service.NewBoardController(api, a.controllerOptions(service.AlwaysConfirm), m, logger)
	if err := controller.LoadAll(ctx); err != nil {
		logger.Warn("Initial board load failed, serving an empty board until reload",
			zap.Error(err))
	} else {
		logger.Info("Board loaded",
			zap.Int("deals", len(controller.Deals())),
			zap.Int("customers", len(controller.Customers())),
		)
	}

	r := router.Setup(router.Config{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       registry,
		Session:        service.NewBoardSession(controller, logger),
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var scheduler *cron.Cron
	if cfg.Metrics.Enabled {
		metricsJob := job.NewPipelineMetricsJob(api, m, cfg.CRMAPI.Timeout, logger)
		var err error
		scheduler, err = job.Schedule(cfg.Metrics.Schedule, metricsJob, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid metrics schedule %q: %w", cfg.Metrics.Schedule, err)
		}
	}

	return srv, scheduler, nil
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger

	logger.Info("Starting Deal Board",
		zap.String("port", a.cfg.Server.Port),
		zap.String("mode", a.cfg.Server.Mode),
		zap.String("base_path", a.cfg.Server.BasePath),
		zap.String("crm_api_url", a.cfg.CRMAPI.BaseURL),
	)

	srv, scheduler, err := a.buildServer(ctx)
	if err != nil {
		return err
	}

	if scheduler != nil {
		scheduler.Start()
	}

	go func() {
		logger.Info("Deal Board started successfully", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
	return nil
}
