package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/khanhvu/jobradar/internal/classify"
	"github.com/khanhvu/jobradar/internal/config"
	"github.com/khanhvu/jobradar/internal/domain"
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
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "jobradar-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	daemon := flag.Bool("daemon", false, "Run on the configured cron schedule instead of once")
	sources := flag.String("sources", "", "Comma-separated subset of sources to run (default: all enabled)")
	pages := flag.Int("pages", 0, "Override max pages per source")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

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

	sched := buildScheduler(cfg, listingRepo, companyRepo, runRepo, appLogger)

	ctx, cancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	if *daemon {
		appLogger.WithField("schedule", cfg.Scrape.Schedule).Info("Starting scheduled ingestion")
		if err := sched.StartCron(cfg.Scrape.Schedule); err != nil {
			appLogger.WithError(err).Fatal("Failed to start cron scheduler")
		}
		<-ctx.Done()
		sched.StopCron()
		appLogger.Info("Scheduler stopped")
		return
	}

	opts := scheduler.Options{Trigger: "manual", MaxPages: *pages}
	if *sources != "" {
		opts.Sources = strings.Split(*sources, ",")
	}

	run, err := sched.Run(ctx, opts)
	if err != nil {
		appLogger.WithError(err).Fatal("Ingestion run failed to start")
	}
	appLogger.WithFields(logger.Fields{
		"run_id":    run.ID,
		"status":    string(run.Status),
		"fetched":   run.Fetched,
		"new":       run.New,
		"updated":   run.Updated,
		"unchanged": run.Unchanged,
		"duplicate": run.Duplicate,
		"errors":    run.Errors,
	}).Info("Ingestion completed")

	if run.Status == domain.RunStatusFailed {
		os.Exit(1)
	}
}

// buildScheduler wires adapters, limiters, and the pipeline from configuration.
func buildScheduler(
	cfg *config.Config,
	listingRepo *repository.ListingRepository,
	companyRepo *repository.CompanyRepository,
	runRepo *repository.RunRepository,
	appLogger *logger.Logger,
) *scheduler.Scheduler {
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

	return sched
}
