package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"xcri-rankings/internal/config"
	"xcri-rankings/internal/github"
	"xcri-rankings/internal/handlers"
	"xcri-rankings/internal/ratelimit"
	"xcri-rankings/internal/repository"
	"xcri-rankings/internal/services"
	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

const (
	serviceName = "xcri-api"
	version     = "2.0.0"

	githubTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(serviceName, version, cfg.Logging.Options())
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting XCRI rankings API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Database,
	})

	metricsCollector := metrics.NewCollector("xcri", prometheus.DefaultRegisterer)

	db, err := database.NewPostgresDB(cfg.Database.Postgres(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Repositories
	athleteRepo := repository.NewAthleteRepository(db, logger, metricsCollector)
	teamRepo := repository.NewTeamRepository(db, logger, metricsCollector)
	componentRepo := repository.NewComponentRepository(db, logger, metricsCollector)
	metadataRepo := repository.NewMetadataRepository(db, logger, metricsCollector)
	snapshotRepo := repository.NewSnapshotRepository(db, logger, metricsCollector)
	knockoutRepo := repository.NewKnockoutRepository(db, logger, metricsCollector)
	healthRepo := repository.NewHealthRepository(db, logger, metricsCollector)

	// Feedback rate limiting and issue filing
	limiter, err := ratelimit.New(ctx, cfg.Feedback, cfg.Redis, logger)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to build feedback rate limiter", logging.Fields{
			"backend": cfg.Feedback.Backend,
		}, err)
	}
	defer limiter.Close()

	var issues services.IssueCreator
	if cfg.FeedbackConfigured() {
		issues = github.NewClient(cfg.Feedback.GitHubAPI, cfg.Feedback.GitHubRepo, cfg.Feedback.GitHubToken, githubTimeout)
	} else {
		logger.Warn(ctx, "[STARTUP] Feedback issue filing not configured", logging.Fields{
			"enabled": cfg.Feedback.Enabled,
		})
	}

	svc := handlers.Services{
		Athletes:   services.NewAthleteService(athleteRepo, logger, metricsCollector),
		Teams:      services.NewTeamService(teamRepo, logger, metricsCollector),
		Components: services.NewComponentService(componentRepo, logger, metricsCollector),
		Metadata:   services.NewMetadataService(metadataRepo, logger, metricsCollector),
		Snapshots:  services.NewSnapshotService(snapshotRepo, athleteRepo, teamRepo, logger, metricsCollector),
		Knockout:   services.NewKnockoutService(knockoutRepo, logger, metricsCollector),
		Health:     services.NewHealthService(healthRepo, version, logger, metricsCollector),
		Feedback:   services.NewFeedbackService(cfg.Feedback, limiter, issues, logger, metricsCollector),
	}

	handler := handlers.NewHandler(svc, cfg.Server, cfg.Query, version, logger, metricsCollector)
	router, err := handlers.NewRouter(handler, prometheus.DefaultGatherer)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to build router", logging.Fields{}, err)
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
			"address":            server.Addr,
			"rate_limit_backend": limiter.Backend(),
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
