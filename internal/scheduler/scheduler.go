package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khanhvu/jobradar/internal/classify"
	"github.com/khanhvu/jobradar/internal/dedup"
	"github.com/khanhvu/jobradar/internal/domain"
	"github.com/khanhvu/jobradar/internal/logger"
	"github.com/khanhvu/jobradar/internal/normalize"
	"github.com/khanhvu/jobradar/internal/ratelimit"
	"github.com/khanhvu/jobradar/internal/source"
	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by Run when an ingestion cycle is already
// executing. Runs never overlap; a cron tick that fires mid-run is skipped.
var ErrRunInProgress = errors.New("ingestion run already in progress")

// RunStore persists run records across their lifecycle.
type RunStore interface {
	Create(ctx context.Context, run *domain.IngestRun) error
	Update(ctx context.Context, run *domain.IngestRun) error
}

// ListingSweeper deactivates listings no longer observed on a source.
type ListingSweeper interface {
	MarkInactiveNotSeenSince(ctx context.Context, source string, cutoff time.Time) (int64, error)
}

// Config holds the per-run orchestration knobs.
type Config struct {
	Query              source.SearchQuery
	MaxParallelSources int
	Workers            int // per-source pipeline workers
	Backoff            ratelimit.Backoff
	CoolDown           time.Duration // suspension applied on a block signal
	RunTimeout         time.Duration
	StalenessWindow    time.Duration // 0 disables the inactive sweep
}

// registeredSource pairs an adapter with its private limiter. The limiter
// outlives individual runs so a cool-down applied in one run still holds in
// the next.
type registeredSource struct {
	src     source.Source
	limiter *ratelimit.Limiter
}

// Scheduler orchestrates ingestion runs: fans out over sources, drives each
// source's page loop with retry and cool-down, and pushes every raw listing
// through normalize, classify, and dedup.
type Scheduler struct {
	cfg        Config
	sources    []registeredSource
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	listings   dedup.ListingStore
	runs       RunStore
	sweeper    ListingSweeper // may be nil
	logger     *logger.Logger

	mu      sync.Mutex
	running bool

	cron *cron.Cron
	now  func() time.Time
}

// New creates a Scheduler. The sweeper may be nil to disable the staleness
// sweep.
func New(
	cfg Config,
	normalizer *normalize.Normalizer,
	classifier *classify.Classifier,
	listings dedup.ListingStore,
	runs RunStore,
	sweeper ListingSweeper,
	log *logger.Logger,
) *Scheduler {
	if cfg.MaxParallelSources <= 0 {
		cfg.MaxParallelSources = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Scheduler{
		cfg:        cfg,
		normalizer: normalizer,
		classifier: classifier,
		listings:   listings,
		runs:       runs,
		sweeper:    sweeper,
		logger:     log,
		now:        time.Now,
	}
}

// Register adds a source with its own rate limiter. Sources are fetched in
// registration order when parallelism is constrained.
func (s *Scheduler) Register(src source.Source, limiter *ratelimit.Limiter) {
	s.sources = append(s.sources, registeredSource{src: src, limiter: limiter})
}

// Running reports whether an ingestion run is currently executing.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetClock overrides the time source for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Scheduler) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// sourceOutcome is the internal result of one source within a run.
type sourceOutcome struct {
	name   string
	result domain.SourceResult
}

// Options selects what a single run covers. The zero value runs every
// registered source with the configured page budget.
type Options struct {
	Trigger  string   // "cron" or "manual", recorded on the run
	Sources  []string // subset of registered sources; empty means all
	MaxPages int      // per-source page override; 0 uses the configured value
}

// Run executes one full ingestion cycle and returns the finalized run record.
// Parameters:
//   - ctx: context bounding the whole run; cancellation stops new fetches and
//     drains in-flight work.
//   - opts: trigger label and optional source/page overrides.
// Returns:
//   - *domain.IngestRun: finalized run record.
//   - error: ErrRunInProgress when a run is already executing, or a
//     persistence failure creating the run record.
func (s *Scheduler) Run(ctx context.Context, opts Options) (*domain.IngestRun, error) {
	run, selected, err := s.begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.release()
	return s.execute(ctx, run, selected, opts), nil
}

// Start begins an ingestion cycle in the background and returns the pending
// run record immediately. The caller's ctx bounds the whole run, so it must
// outlive the run (not be tied to an HTTP request).
func (s *Scheduler) Start(ctx context.Context, opts Options) (*domain.IngestRun, error) {
	run, selected, err := s.begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	pending := *run
	go func() {
		defer s.release()
		s.execute(ctx, run, selected, opts)
	}()
	return &pending, nil
}

// begin claims the single-run slot, resolves the source selection, and
// persists the pending run record.
func (s *Scheduler) begin(ctx context.Context, opts Options) (*domain.IngestRun, []registeredSource, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, nil, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()

	selected := s.selectSources(opts.Sources)
	names := make([]string, 0, len(selected))
	for _, reg := range selected {
		names = append(names, reg.src.Name())
	}

	run := &domain.IngestRun{
		ID:       uuid.New().String(),
		Sources:  names,
		Status:   domain.RunStatusPending,
		Trigger:  opts.Trigger,
		BySource: domain.SourceResults{},
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.release()
		return nil, nil, fmt.Errorf("failed to create run record: %w", err)
	}
	return run, selected, nil
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// selectSources resolves a requested subset against the registry; unknown
// names are ignored.
func (s *Scheduler) selectSources(names []string) []registeredSource {
	if len(names) == 0 {
		return s.sources
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var selected []registeredSource
	for _, reg := range s.sources {
		if wanted[reg.src.Name()] {
			selected = append(selected, reg)
		}
	}
	return selected
}

// execute drives the run to completion and finalizes its record.
func (s *Scheduler) execute(ctx context.Context, run *domain.IngestRun, selected []registeredSource, opts Options) *domain.IngestRun {
	ctx = logger.SetRunID(ctx, run.ID)

	query := s.cfg.Query
	if opts.MaxPages > 0 {
		query.MaxPages = opts.MaxPages
	}

	started := s.now()
	run.StartedAt = &started
	run.Status = domain.RunStatusRunning
	if err := s.runs.Update(ctx, run); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to persist run start")
	}

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	s.log(ctx).WithFields(logger.Fields{
		"sources": []string(run.Sources),
		"trigger": run.Trigger,
	}).Info("Starting ingestion run")

	// Deduper is per-run: its seen set defines the same-run duplicate window.
	deduper := dedup.New(s.listings)
	deduper.SetClock(s.now)

	sem := make(chan struct{}, s.cfg.MaxParallelSources)
	outcomes := make(chan sourceOutcome, len(selected))

	var wg sync.WaitGroup
	for _, reg := range selected {
		wg.Add(1)
		go func(reg registeredSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes <- sourceOutcome{
				name:   reg.src.Name(),
				result: s.runSource(ctx, reg, query, deduper),
			}
		}(reg)
	}
	wg.Wait()
	close(outcomes)

	var totals domain.RunCounters
	var failures []string
	succeeded := 0
	for outcome := range outcomes {
		run.BySource[outcome.name] = outcome.result
		totals.Add(outcome.result.Counters)
		if outcome.result.Status == domain.RunStatusSucceeded {
			succeeded++
			s.sweepStale(ctx, outcome.name)
		} else if outcome.result.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", outcome.name, outcome.result.Error))
		}
	}

	switch {
	case len(selected) == 0 || succeeded == len(selected):
		run.Status = domain.RunStatusSucceeded
	case succeeded == 0:
		run.Status = domain.RunStatusFailed
	default:
		run.Status = domain.RunStatusPartial
	}
	run.SetCounters(totals)
	run.ErrorLog = strings.Join(failures, "; ")
	completed := s.now()
	run.CompletedAt = &completed

	// The record must finalize even when the run context has expired.
	if err := s.runs.Update(context.WithoutCancel(ctx), run); err != nil {
		s.log(ctx).WithError(err).Error("Failed to finalize run record")
	}

	logger.With(logger.Fields{
		"status":    string(run.Status),
		"fetched":   totals.Fetched,
		"new":       totals.New,
		"updated":   totals.Updated,
		"unchanged": totals.Unchanged,
		"duplicate": totals.Duplicate,
		"errors":    totals.Errors,
	}).WithDuration(completed.Sub(started).Milliseconds()).Info(ctx, "Ingestion run completed")

	return run
}

// sweepStale deactivates listings from a source not seen within the staleness
// window. Only called for sources that completed successfully, so a blocked
// board cannot deactivate its own catalog.
func (s *Scheduler) sweepStale(ctx context.Context, sourceName string) {
	if s.sweeper == nil || s.cfg.StalenessWindow <= 0 {
		return
	}
	cutoff := s.now().Add(-s.cfg.StalenessWindow)
	swept, err := s.sweeper.MarkInactiveNotSeenSince(ctx, sourceName, cutoff)
	if err != nil {
		s.log(ctx).WithField("source", sourceName).WithError(err).Warn("Staleness sweep failed")
		return
	}
	if swept > 0 {
		s.log(ctx).WithFields(logger.Fields{
			"source": sourceName,
			"count":  swept,
		}).Info("Deactivated stale listings")
	}
}

// runSource drives one source through its page loop and pipeline workers.
func (s *Scheduler) runSource(ctx context.Context, reg registeredSource, query source.SearchQuery, deduper *dedup.Deduper) domain.SourceResult {
	name := reg.src.Name()
	ctx = logger.SetSource(ctx, name)

	if reg.limiter != nil && reg.limiter.Suspended() {
		s.log(ctx).Warn("Source is in cool-down, skipping")
		return domain.SourceResult{
			Status: domain.RunStatusFailed,
			Error:  "source in cool-down from a previous block signal",
		}
	}

	// The fetch loop stops on cancellation or a store failure. The workers
	// run on a context detached from cancellation: pages already fetched
	// still normalize and persist while the run winds down.
	fetchCtx, stopFetch := context.WithCancel(ctx)
	defer stopFetch()
	pipeCtx := context.WithoutCancel(ctx)

	rawChan := make(chan source.RawListing, s.cfg.Workers*2)
	counters := &sourceCounters{}

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pipelineWorker(pipeCtx, rawChan, deduper, counters, stopFetch)
		}()
	}

	result := s.fetchPages(fetchCtx, reg, query, rawChan, counters)

	close(rawChan)
	wg.Wait()

	if err := counters.storeFailure(); err != nil {
		result.Status = domain.RunStatusFailed
		result.Error = err.Error()
	}
	result.Counters = counters.snapshot()
	return result
}

// fetchPages runs the cursor loop with retry and cool-down handling. It owns
// the Fetched and Pages counts; listing-level outcomes accumulate in counters
// via the pipeline workers.
func (s *Scheduler) fetchPages(ctx context.Context, reg registeredSource, query source.SearchQuery, rawChan chan<- source.RawListing, counters *sourceCounters) domain.SourceResult {
	name := reg.src.Name()
	result := domain.SourceResult{Status: domain.RunStatusSucceeded}

	cursor := ""
	for {
		// Cancellation stops before the next fetch; queued listings drain.
		if err := ctx.Err(); err != nil {
			result.Status = domain.RunStatusFailed
			result.Error = err.Error()
			return result
		}

		listings, nextCursor, err := s.fetchWithRetry(ctx, reg, query, cursor)
		if err != nil {
			var blocked *source.BlockedError
			if errors.As(err, &blocked) {
				if reg.limiter != nil {
					reg.limiter.Suspend(s.cfg.CoolDown)
				}
				s.log(ctx).WithFields(logger.Fields{
					"reason":    blocked.Reason,
					"cool_down": s.cfg.CoolDown.String(),
				}).Warn("Source blocked, entering cool-down")
				result.Status = domain.RunStatusFailed
				result.Error = err.Error()
				return result
			}

			var parseErr *source.ParseError
			if errors.As(err, &parseErr) {
				// Page shape changed. Pagination cannot continue, but pages
				// already ingested stand.
				counters.addError()
				s.log(ctx).WithError(err).Error("Page parse failed, stopping pagination")
				if result.Pages == 0 {
					result.Status = domain.RunStatusFailed
					result.Error = err.Error()
				}
				return result
			}

			s.log(ctx).WithError(err).Error("Fetch failed after retries")
			result.Status = domain.RunStatusFailed
			result.Error = err.Error()
			return result
		}

		result.Pages++
		counters.addFetched(len(listings))

		// The page is already fetched, so its listings always reach the
		// workers; they drain rawChan until it closes, so this send cannot
		// block past the end of the source.
		for _, raw := range listings {
			rawChan <- raw
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	s.log(ctx).WithFields(logger.Fields{
		"source": name,
		"pages":  result.Pages,
	}).Info("Source pagination complete")
	return result
}

// fetchWithRetry attempts one page fetch, retrying transient failures with
// exponential backoff. Block and parse errors are never retried.
func (s *Scheduler) fetchWithRetry(ctx context.Context, reg registeredSource, query source.SearchQuery, cursor string) ([]source.RawListing, string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		listings, nextCursor, err := reg.src.FetchPage(ctx, query, cursor)
		if err == nil {
			return listings, nextCursor, nil
		}
		if source.IsBlocked(err) || source.IsParse(err) {
			return nil, "", err
		}
		lastErr = err
		if s.cfg.Backoff.Exhausted(attempt) {
			return nil, "", lastErr
		}
		delay := s.cfg.Backoff.Delay(attempt)
		s.log(ctx).WithFields(logger.Fields{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).WithError(err).Warn("Fetch failed, retrying")
		if err := ratelimit.Sleep(ctx, delay); err != nil {
			return nil, "", lastErr
		}
	}
}

// pipelineWorker consumes raw listings and applies normalize, classify, and
// dedup in order. Per-listing failures count as errors and never stop the
// worker; a store failure marks the whole source failed, stops its fetch
// loop, and drains the remaining queue without further writes.
func (s *Scheduler) pipelineWorker(ctx context.Context, rawChan <-chan source.RawListing, deduper *dedup.Deduper, counters *sourceCounters, stopFetch context.CancelFunc) {
	for raw := range rawChan {
		if counters.storeFailure() != nil {
			counters.addError()
			continue
		}

		listing, err := s.normalizer.Normalize(ctx, raw)
		if err != nil {
			counters.addError()
			var normErr *normalize.NormalizationError
			if errors.As(err, &normErr) {
				s.log(ctx).WithFields(logger.Fields{
					"field": normErr.Field,
					"url":   raw.URL,
				}).Debug("Dropped unnormalizable listing")
			} else {
				s.log(ctx).WithError(err).Warn("Normalization failed")
			}
			continue
		}

		s.classifier.Apply(listing)

		decision, err := deduper.Apply(ctx, listing)
		if err != nil {
			counters.addError()
			var storeErr *dedup.StoreError
			if errors.As(err, &storeErr) {
				counters.setStoreFailure(err)
				stopFetch()
				s.log(ctx).WithError(err).Error("Listing store unavailable, aborting source")
				continue
			}
			s.log(ctx).WithError(err).Error("Dedup failed")
			continue
		}
		counters.addDecision(decision)
	}
}

// sourceCounters accumulates per-source outcomes under a mutex; the snapshot
// is taken after all workers exit. The first store failure is latched and
// fails the whole source.
type sourceCounters struct {
	mu      sync.Mutex
	c       domain.RunCounters
	failure error
}

func (s *sourceCounters) setStoreFailure(err error) {
	s.mu.Lock()
	if s.failure == nil {
		s.failure = err
	}
	s.mu.Unlock()
}

func (s *sourceCounters) storeFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *sourceCounters) addFetched(n int) {
	s.mu.Lock()
	s.c.Fetched += n
	s.mu.Unlock()
}

func (s *sourceCounters) addError() {
	s.mu.Lock()
	s.c.Errors++
	s.mu.Unlock()
}

func (s *sourceCounters) addDecision(d dedup.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch d {
	case dedup.DecisionNew:
		s.c.New++
	case dedup.DecisionUpdated:
		s.c.Updated++
	case dedup.DecisionUnchanged:
		s.c.Unchanged++
	case dedup.DecisionDuplicate:
		s.c.Duplicate++
	}
}

func (s *sourceCounters) snapshot() domain.RunCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c
}

// StartCron schedules recurring runs with the given cron spec and starts the
// scheduler. A tick that lands while a run is still executing is skipped.
// Parameters:
//   - spec: cron expression or descriptor (e.g. "@every 24h").
// Returns:
//   - error: non-nil if the spec does not parse.
func (s *Scheduler) StartCron(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx := s.logger.WithContext(context.Background())
		if _, err := s.Run(ctx, Options{Trigger: "cron"}); err != nil {
			if errors.Is(err, ErrRunInProgress) {
				s.logger.Warn("Skipping cron tick, previous run still in progress")
				return
			}
			s.logger.WithError(err).Error("Scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// StopCron stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) StopCron() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
