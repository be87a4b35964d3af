// internal/service/analysis/runner.go

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
	"reelscope/internal/metrics"
)

// RunStore persists runs and their result documents
type RunStore interface {
	SaveRun(ctx context.Context, run *insight.Run) error
	GetRun(ctx context.Context, id string) (*insight.Run, error)
	ListRuns(ctx context.Context, limit int) ([]insight.Run, error)
	SaveResult(ctx context.Context, runID string, doc insight.ResultDocument) error
	GetResult(ctx context.Context, runID string) (*insight.ResultDocument, error)
}

// RunnerConfig holds the run orchestration settings
type RunnerConfig struct {
	EventsTopic      string
	MaxCompetitors   int
	FetchConcurrency int
	RunTimeout       time.Duration
	ListLimit        int
}

// DefaultRunnerConfig returns the standard orchestration settings
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		EventsTopic:      "analysis",
		MaxCompetitors:   15,
		FetchConcurrency: 4,
		RunTimeout:       5 * time.Minute,
		ListLimit:        20,
	}
}

// runEvent is the JSON payload published on the event bus for run updates
type runEvent struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Status     string    `json:"status,omitempty"`
	Competitor string    `json:"competitor,omitempty"`
	Fetched    int       `json:"fetched,omitempty"`
	TotalReels int       `json:"total_reels,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Runner coordinates analysis runs: it resolves competitors, fetches their
// posts, hands the records to the analyzer, persists the result document, and
// publishes lifecycle events. Runs execute asynchronously after StartRun
// returns.
type Runner struct {
	logger     zerolog.Logger
	source     post.Source
	discoverer post.Discoverer
	analyzer   insight.Analyzer
	formatter  insight.Formatter
	generator  insight.Generator
	store      RunStore
	eventBus   *nats.Conn
	metrics    *metrics.Metrics
	config     RunnerConfig
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewRunner creates a run coordinator. The discoverer, event bus, and
// generator may be nil; the matching features degrade quietly.
func NewRunner(
	logger zerolog.Logger,
	source post.Source,
	discoverer post.Discoverer,
	analyzer insight.Analyzer,
	formatter insight.Formatter,
	generator insight.Generator,
	store RunStore,
	eventBus *nats.Conn,
	m *metrics.Metrics,
	config RunnerConfig,
) *Runner {
	defaults := DefaultRunnerConfig()
	if config.EventsTopic == "" {
		config.EventsTopic = defaults.EventsTopic
	}
	if config.MaxCompetitors <= 0 {
		config.MaxCompetitors = defaults.MaxCompetitors
	}
	if config.FetchConcurrency <= 0 {
		config.FetchConcurrency = defaults.FetchConcurrency
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	if config.ListLimit <= 0 {
		config.ListLimit = defaults.ListLimit
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		logger:     logger.With().Str("component", "analysis_runner").Logger(),
		source:     source,
		discoverer: discoverer,
		analyzer:   analyzer,
		formatter:  formatter,
		generator:  generator,
		store:      store,
		eventBus:   eventBus,
		metrics:    m,
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// StartRun validates the options, records the run as queued, and executes it
// in the background.
func (r *Runner) StartRun(ctx context.Context, opts insight.RunOptions) (*insight.Run, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	run := &insight.Run{
		ID:        uuid.New().String(),
		Status:    insight.RunQueued,
		Options:   opts,
		Platform:  r.source.Platform(),
		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("error saving run: %w", err)
	}

	r.metrics.RunsStarted.Inc()
	r.publishEvent(runEvent{
		Type:   r.config.EventsTopic + ".started",
		RunID:  run.ID,
		Status: string(run.Status),
	})

	started := *run

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		runCtx, cancel := context.WithTimeout(r.ctx, r.config.RunTimeout)
		defer cancel()
		r.executeRun(runCtx, run)
	}()

	return &started, nil
}

// GetRun returns a run by ID
func (r *Runner) GetRun(ctx context.Context, id string) (*insight.Run, error) {
	return r.store.GetRun(ctx, id)
}

// ListRuns returns recent runs, newest first
func (r *Runner) ListRuns(ctx context.Context, limit int) ([]insight.Run, error) {
	if limit <= 0 {
		limit = r.config.ListLimit
	}
	return r.store.ListRuns(ctx, limit)
}

// GetResult returns the result document of a completed run
func (r *Runner) GetResult(ctx context.Context, id string) (*insight.ResultDocument, error) {
	return r.store.GetResult(ctx, id)
}

// Stop waits for in-flight runs to finish or the context to expire
func (r *Runner) Stop(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// executeRun drives one run from fetching through persistence
func (r *Runner) executeRun(ctx context.Context, run *insight.Run) {
	start := time.Now()

	now := start.UTC()
	run.Status = insight.RunRunning
	run.StartedAt = &now
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to persist running status")
	}

	handles, warnings := r.resolveCompetitors(ctx, run.Options)
	if len(handles) == 0 {
		r.failRun(ctx, run, fmt.Errorf("no competitors to analyze"))
		return
	}
	run.Competitors = handles

	records, fetchWarnings := r.fetchAll(ctx, run, handles)
	warnings = append(warnings, fetchWarnings...)

	agg, err := r.analyzer.Analyze(ctx, run.Options, records)
	if err != nil {
		r.failRun(ctx, run, err)
		return
	}
	agg.Warnings = append(warnings, agg.Warnings...)

	r.metrics.PostsAnalyzed.Add(float64(agg.TotalReels))
	r.metrics.RecordsSkipped.Add(float64(agg.SkippedRecords))

	doc := r.formatter.BuildDocument(agg)

	if run.Options.GenerateIdeas && r.generator != nil {
		payload, err := r.formatter.BuildPayload(agg)
		if err != nil {
			r.logger.Warn().Err(err).Str("run_id", run.ID).Msg("Skipping idea generation")
			doc.Warnings = append(doc.Warnings, insight.Warning{
				Code:    insight.WarnIncompletePayload,
				Message: "content idea generation skipped: " + err.Error(),
			})
		} else {
			ideas, err := r.generator.Generate(ctx, *payload)
			if err != nil {
				r.logger.Warn().Err(err).Str("run_id", run.ID).Msg("Idea generation failed")
			} else {
				doc.ContentIdeas = ideas
			}
		}
	}

	if err := r.store.SaveResult(ctx, run.ID, doc); err != nil {
		r.failRun(ctx, run, fmt.Errorf("error saving result: %w", err))
		return
	}

	finished := time.Now().UTC()
	run.Status = insight.RunCompleted
	run.TotalReels = agg.TotalReels
	run.FinishedAt = &finished
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.Error().Err(err).Str("run_id", run.ID).Msg("Failed to persist completed run")
	}

	r.metrics.RunsCompleted.Inc()
	r.metrics.RunDuration.Observe(time.Since(start).Seconds())

	r.publishEvent(runEvent{
		Type:       r.config.EventsTopic + ".completed",
		RunID:      run.ID,
		Status:     string(run.Status),
		TotalReels: run.TotalReels,
	})

	r.logger.Info().
		Str("run_id", run.ID).
		Int("competitors", len(handles)).
		Int("total_reels", run.TotalReels).
		Dur("duration", time.Since(start)).
		Msg("Run completed")
}

// resolveCompetitors normalizes the requested handles, optionally extends the
// list through discovery, and enforces the competitor cap.
func (r *Runner) resolveCompetitors(ctx context.Context, opts insight.RunOptions) ([]string, []insight.Warning) {
	var warnings []insight.Warning

	seen := make(map[string]struct{})
	var handles []string
	for _, raw := range opts.CompetitorUsernames {
		handle := normalizeHandle(raw)
		if handle == "" {
			continue
		}
		if _, ok := seen[handle]; ok {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}

	if opts.AutoDiscoverCompetitors && r.discoverer != nil && len(handles) < r.config.MaxCompetitors {
		seed := normalizeHandle(opts.SeedUsername)
		discovered, err := r.discoverer.DiscoverCompetitors(ctx, seed, r.config.MaxCompetitors)
		if err != nil {
			r.logger.Warn().Err(err).Str("seed", seed).Msg("Competitor discovery failed")
			warnings = append(warnings, insight.Warning{
				Code:    insight.WarnFetchFailed,
				Subject: seed,
				Message: fmt.Sprintf("competitor discovery from %s failed: %v", seed, err),
			})
		}
		for _, raw := range discovered {
			handle := normalizeHandle(raw)
			if handle == "" || handle == seed {
				continue
			}
			if _, ok := seen[handle]; ok {
				continue
			}
			seen[handle] = struct{}{}
			handles = append(handles, handle)
		}
	}

	if len(handles) > r.config.MaxCompetitors {
		warnings = append(warnings, insight.Warning{
			Code: insight.WarnTooManyCompetitors,
			Message: fmt.Sprintf("competitor list truncated from %d to the maximum of %d",
				len(handles), r.config.MaxCompetitors),
		})
		handles = handles[:r.config.MaxCompetitors]
	}

	return handles, warnings
}

// fetchAll retrieves posts for every handle concurrently. A failed fetch
// becomes a warning rather than a run failure, and its handle is left out of
// the record map.
func (r *Runner) fetchAll(ctx context.Context, run *insight.Run, handles []string) (map[string][]post.RawRecord, []insight.Warning) {
	type fetchResult struct {
		records []post.RawRecord
		err     error
	}

	results := make([]fetchResult, len(handles))

	g := new(errgroup.Group)
	g.SetLimit(r.config.FetchConcurrency)
	for i, handle := range handles {
		i, handle := i, handle
		g.Go(func() error {
			records, err := r.source.FetchPosts(ctx, handle, run.Options.ReelsPerCompetitor)
			results[i] = fetchResult{records: records, err: err}

			r.publishEvent(runEvent{
				Type:       r.config.EventsTopic + ".progress",
				RunID:      run.ID,
				Status:     string(insight.RunRunning),
				Competitor: handle,
				Fetched:    len(records),
			})
			return nil
		})
	}
	_ = g.Wait()

	records := make(map[string][]post.RawRecord, len(handles))
	var warnings []insight.Warning
	for i, handle := range handles {
		if results[i].err != nil {
			r.logger.Warn().Err(results[i].err).Str("handle", handle).Msg("Fetch failed")
			warnings = append(warnings, insight.Warning{
				Code:    insight.WarnFetchFailed,
				Subject: handle,
				Message: fmt.Sprintf("fetching posts for %s failed: %v", handle, results[i].err),
			})
			continue
		}
		records[handle] = results[i].records
	}

	return records, warnings
}

// failRun marks the run failed and publishes the failure
func (r *Runner) failRun(ctx context.Context, run *insight.Run, cause error) {
	finished := time.Now().UTC()
	run.Status = insight.RunFailed
	run.Error = cause.Error()
	run.FinishedAt = &finished

	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.Error().Err(err).Str("run_id", run.ID).Msg("Failed to persist failed run")
	}

	r.metrics.RunsFailed.Inc()
	r.publishEvent(runEvent{
		Type:   r.config.EventsTopic + ".failed",
		RunID:  run.ID,
		Status: string(run.Status),
		Error:  run.Error,
	})

	r.logger.Error().Err(cause).Str("run_id", run.ID).Msg("Run failed")
}

// publishEvent sends the event to the global topic and the per-run topic. A
// nil event bus disables publishing.
func (r *Runner) publishEvent(event runEvent) {
	if r.eventBus == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal run event")
		return
	}

	if err := r.eventBus.Publish(event.Type, data); err != nil {
		r.logger.Warn().Err(err).Str("topic", event.Type).Msg("Failed to publish run event")
	}

	perRun := fmt.Sprintf("%s.run.%s", r.config.EventsTopic, event.RunID)
	if err := r.eventBus.Publish(perRun, data); err != nil {
		r.logger.Warn().Err(err).Str("topic", perRun).Msg("Failed to publish run event")
	}
}

// normalizeHandle lowercases a handle and strips surrounding space and a
// leading @.
func normalizeHandle(raw string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
}
