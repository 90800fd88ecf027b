package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solar-platform/internal/app"
	"solar-platform/internal/config"
	"solar-platform/internal/handlers"
	"solar-platform/internal/scheduler"
	"solar-platform/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	deps, err := app.New(cfg, "solar-api", "solar_platform")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	logger := deps.Logger
	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting solar platform API server", logging.Fields{
		"version":           app.Version,
		"server_host":       cfg.Server.Host,
		"server_port":       cfg.Server.Port,
		"db_enabled":        cfg.Database.Enabled,
		"data_dir":          cfg.Data.Dir,
		"scheduler_enabled": cfg.Scheduler.Enabled,
	})

	pipeline := deps.Pipeline()
	handler := handlers.NewSolarHandler(deps.Repo, pipeline, deps.Store, cfg.Location, logger, deps.Metrics)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(pipeline, deps.LocationRequest(), cfg.Scheduler.Interval, cfg.Scheduler.Timeout, logger)
		if err := sched.Start(); err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to start scheduler", logging.Fields{}, err)
		}
		defer sched.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
