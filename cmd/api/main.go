package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanhvu/jobradar/internal/api"
	"github.com/khanhvu/jobradar/internal/classify"
	"github.com/khanhvu/jobradar/internal/config"
	"github.com/khanhvu/jobradar/internal/logger"
	"github.com/khanhvu/jobradar/internal/normalize"
	"github.com/khanhvu/jobradar/internal/ratelimit"
	"github.com/khanhvu/jobradar/internal/repository"
	"github.com/khanhvu/jobradar/internal/scheduler"
	"github.com/khanhvu/jobradar/internal/source"
	"github.com/khanhvu/jobradar/internal/source/indeed"
	"github.com/khanhvu/jobradar/internal/source/linkedin"
)

func main() {
	// Initialize logger from environment (supports rotation and multi-output)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	withCron := flag.Bool("cron", false, "Also run ingestion on the configured schedule")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// CONFIG_PATH environment variable wins over the flag for deployments
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		*configPath = env
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	listingRepo := repository.NewListingRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	runRepo := repository.NewRunRepository(db)

	// Build the ingestion pipeline so manual triggers work from the API
	normalizer := normalize.New(companyRepo)
	classifier := classify.New(cfg.Classify.RelevanceTerms)

	sched := scheduler.New(
		scheduler.Config{
			Query: source.SearchQuery{
				Keywords: cfg.Scrape.Keywords,
				Location: cfg.Scrape.Location,
				MaxPages: cfg.Scrape.MaxPages,
			},
			MaxParallelSources: cfg.Scrape.MaxParallelSources,
			Workers:            cfg.Scrape.Workers,
			Backoff: ratelimit.Backoff{
				Base:        cfg.Scrape.RetryBase,
				Max:         30 * time.Second,
				MaxAttempts: cfg.Scrape.RetryCount,
			},
			CoolDown:        cfg.Scrape.CoolDown,
			RunTimeout:      cfg.Scrape.RunTimeout,
			StalenessWindow: cfg.Scrape.StalenessWindow,
		},
		normalizer,
		classifier,
		listingRepo,
		runRepo,
		listingRepo,
		appLogger,
	)

	if cfg.Sources.Indeed.Enabled {
		limiter := ratelimit.NewLimiter(cfg.Scrape.RequestInterval, cfg.Scrape.RequestJitter)
		sched.Register(indeed.NewAdapter(limiter, cfg.Scrape.RequestTimeout), limiter)
	}
	if cfg.Sources.LinkedIn.Enabled {
		limiter := ratelimit.NewLimiter(cfg.Scrape.RequestInterval, cfg.Scrape.RequestJitter)
		sched.Register(linkedin.NewAdapter(limiter, cfg.Scrape.RequestTimeout), limiter)
	}

	if *withCron {
		appLogger.WithField("schedule", cfg.Scrape.Schedule).Info("Enabling scheduled ingestion")
		if err := sched.StartCron(cfg.Scrape.Schedule); err != nil {
			appLogger.WithError(err).Fatal("Failed to start cron scheduler")
		}
		defer sched.StopCron()
	}

	// Setup router
	router := api.SetupRouter(api.Deps{
		DB:        db,
		Listings:  listingRepo,
		Companies: companyRepo,
		Runs:      runRepo,
		Scheduler: sched,
		Logger:    appLogger,
	}, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
