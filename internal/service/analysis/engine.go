// internal/service/analysis/engine.go

package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

// topReelsPerSummary bounds the exemplar posts kept per competitor
const topReelsPerSummary = 5

// EngineConfig holds the analysis knobs that do not vary per run
type EngineConfig struct {
	Platform         string
	TopHashtags      int
	MinBucketSamples int
	MaxWorkers       int
	Weights          ScoreWeights
	Aggregation      AggregatorConfig
}

// DefaultEngineConfig returns the standard engine settings for a platform
func DefaultEngineConfig(platform string) EngineConfig {
	return EngineConfig{
		Platform:         platform,
		TopHashtags:      10,
		MinBucketSamples: 3,
		MaxWorkers:       4,
		Weights:          DefaultScoreWeights(),
	}
}

// Engine runs the full analysis pipeline: normalize, score, rank, extract
// patterns per competitor, then merge across competitors. It is stateless
// between calls and safe for concurrent use.
type Engine struct {
	logger     zerolog.Logger
	normalizer *Normalizer
	scorer     *Scorer
	aggregator *Aggregator
	config     EngineConfig
}

// NewEngine creates an analysis engine, filling zero config fields with defaults
func NewEngine(logger zerolog.Logger, config EngineConfig) *Engine {
	if config.TopHashtags <= 0 {
		config.TopHashtags = 10
	}
	if config.MinBucketSamples <= 0 {
		config.MinBucketSamples = 3
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}
	if config.Aggregation.MinBucketSamples <= 0 {
		config.Aggregation.MinBucketSamples = config.MinBucketSamples
	}

	return &Engine{
		logger:     logger.With().Str("component", "analysis_engine").Logger(),
		normalizer: NewNormalizer(),
		scorer:     NewScorer(config.Weights),
		aggregator: NewAggregator(config.Aggregation),
		config:     config,
	}
}

// Analyze processes the fetched records for every competitor and merges the
// results. Competitors are processed by a bounded worker pool; the output is
// deterministic for a given input because each competitor writes to its own
// slot and the merge orders by handle.
func (e *Engine) Analyze(ctx context.Context, opts insight.RunOptions, records map[string][]post.RawRecord) (*insight.Aggregate, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	handles := make([]string, 0, len(records))
	for handle := range records {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	summaries := make([]insight.CompetitorSummary, len(handles))

	workers := e.config.MaxWorkers
	if workers > len(handles) {
		workers = len(handles)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				handle := handles[idx]
				summaries[idx] = e.analyzeCompetitor(handle, records[handle], opts.ReelsPerCompetitor)
			}
		}()
	}

dispatch:
	for idx := range handles {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("error analyzing competitors: %w", err)
	}

	var warnings []insight.Warning
	if len(handles) < opts.MinCompetitors {
		warnings = append(warnings, insight.Warning{
			Code: insight.WarnTooFewCompetitors,
			Message: fmt.Sprintf("analysis covers %d competitors, below the recommended minimum of %d",
				len(handles), opts.MinCompetitors),
		})
	}

	agg := e.aggregator.Merge(e.config.Platform, summaries, warnings)
	agg.AnalysisDate = time.Now().UTC()

	e.logger.Info().
		Int("competitors", agg.CompetitorsAnalyzed).
		Int("total_reels", agg.TotalReels).
		Int("skipped_records", agg.SkippedRecords).
		Float64("avg_engagement_rate", agg.AvgEngagementRate).
		Msg("Analysis complete")

	return agg, nil
}

// analyzeCompetitor runs the single-competitor pipeline over raw records
func (e *Engine) analyzeCompetitor(handle string, records []post.RawRecord, limit int) insight.CompetitorSummary {
	normalized, skipped := e.normalizer.Normalize(handle, records)
	scored := e.scorer.ScoreAll(normalized)
	ranked := RankPosts(scored, limit)

	topReels := ranked
	if len(topReels) > topReelsPerSummary {
		topReels = topReels[:topReelsPerSummary]
	}

	durations := DurationBucketStats(ranked, e.config.MinBucketSamples)

	summary := insight.CompetitorSummary{
		Handle:                handle,
		ReelsCount:            len(ranked),
		AvgEngagementRate:     meanEngagement(ranked),
		TopReels:              topReels,
		HookPatterns:          AnalyzeHooks(handle, ranked),
		TopHashtags:           AnalyzeHashtags(ranked, e.config.TopHashtags),
		DayBuckets:            DayBuckets(ranked, e.config.MinBucketSamples),
		HourBuckets:           HourBuckets(ranked, e.config.MinBucketSamples),
		DurationBuckets:       durations,
		OptimalDurationBucket: BestBucketLabel(durations),
		Topics:                AnalyzeTopics(ranked, 0),
		CaptionTraits:         AnalyzeCaptionTraits(ranked),
		SkippedRecords:        skipped,
	}

	e.logger.Debug().
		Str("handle", handle).
		Int("analyzed", len(ranked)).
		Int("skipped", skipped).
		Msg("Competitor analyzed")

	return summary
}
