// internal/service/analysis/engine_test.go

package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

func testEngine(config EngineConfig) *Engine {
	return NewEngine(zerolog.Nop(), config)
}

func engineRecords() map[string][]post.RawRecord {
	return map[string][]post.RawRecord{
		"fitlife_anna": {
			{
				"id":               "a1",
				"caption_text":     "Did you know 90% of people fail at this?",
				"posted_at":        "2026-03-02T09:00:00Z",
				"like_count":       100,
				"comment_count":    10,
				"share_count":      5,
				"view_count":       1000,
				"duration_seconds": 20.0,
				"hashtags":         []interface{}{"#Fit"},
			},
			{
				"id":               "a2",
				"caption_text":     "My training log. More below",
				"posted_at":        "2026-03-03T13:00:00Z",
				"like_count":       50,
				"comment_count":    5,
				"share_count":      2,
				"view_count":       2000,
				"duration_seconds": 40.0,
			},
			{},
		},
		"gymcoach_ben": {
			{
				"id":               "b1",
				"caption_text":     "How do you structure deload weeks?",
				"posted_at":        "2026-03-02T09:30:00Z",
				"like_count":       200,
				"comment_count":    20,
				"share_count":      10,
				"view_count":       500,
				"duration_seconds": 10.0,
				"hashtags":         []interface{}{"fit"},
			},
			{
				"id":           "b2",
				"caption_text": "",
				"like_count":   0,
				"view_count":   100,
			},
		},
	}
}

func TestEngineAnalyze(t *testing.T) {
	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{
		CompetitorUsernames: []string{"fitlife_anna", "gymcoach_ben"},
		ReelsPerCompetitor:  20,
		MinCompetitors:      2,
	}

	agg, err := engine.Analyze(context.Background(), opts, engineRecords())

	require.NoError(t, err)
	require.NotNil(t, agg)

	assert.Equal(t, "instagram", agg.Platform)
	assert.False(t, agg.AnalysisDate.IsZero())
	assert.Equal(t, 2, agg.CompetitorsAnalyzed)
	assert.Equal(t, 4, agg.TotalReels)
	assert.Equal(t, 1, agg.SkippedRecords)
	assert.InDelta(t, 17.7, agg.AvgEngagementRate, 1e-9)
	assert.Empty(t, agg.Warnings)

	require.Len(t, agg.Competitors, 2)
	anna := agg.Competitors[0]
	ben := agg.Competitors[1]

	assert.Equal(t, "fitlife_anna", anna.Handle)
	assert.Equal(t, 2, anna.ReelsCount)
	assert.Equal(t, 1, anna.SkippedRecords)
	assert.InDelta(t, 8.4, anna.AvgEngagementRate, 1e-9)
	require.NotEmpty(t, anna.TopReels)
	assert.Equal(t, "a1", anna.TopReels[0].ID)
	assert.InDelta(t, 13.5, anna.TopReels[0].EngagementRate, 1e-9)

	assert.Equal(t, "gymcoach_ben", ben.Handle)
	assert.Equal(t, 2, ben.ReelsCount)
	assert.InDelta(t, 27.0, ben.AvgEngagementRate, 1e-9)
	assert.InDelta(t, 54.0, ben.TopReels[0].EngagementRate, 1e-9)

	require.NotEmpty(t, agg.TopHashtags)
	assert.Equal(t, "#fit", agg.TopHashtags[0].Hashtag)
	assert.Equal(t, 2, agg.TopHashtags[0].Frequency)
	assert.InDelta(t, 33.75, agg.TopHashtags[0].AvgEngagementRate, 1e-9)

	hooks := agg.HookPatterns
	assert.Equal(t, 3, hooks.TotalHooks)
	require.Len(t, hooks.TopHooks, 3)
	assert.Equal(t, "How do you structure deload weeks?", hooks.TopHooks[0].Hook)
	assert.Equal(t, insight.HookQuestion, hooks.TopHooks[0].Category)
	assert.Equal(t, "Did you know 90% of people fail at this?", hooks.TopHooks[1].Hook)
	assert.Equal(t, insight.HookStatistic, hooks.TopHooks[1].Category)
	assert.Empty(t, hooks.CommonStarters, "starters seen once across the run are dropped")

	require.NotEmpty(t, agg.PostingPatterns.BestDays)
	assert.Equal(t, "Monday", agg.PostingPatterns.BestDays[0].Label)
	assert.Equal(t, 2, agg.PostingPatterns.BestDays[0].PostCount)
	assert.True(t, agg.PostingPatterns.BestDays[0].LowConfidence)

	assert.Equal(t, "<15s", agg.OptimalDuration.BestBucket)
	assert.Empty(t, agg.TopicThemes, "no keyword repeats often enough to form a theme")

	assert.Equal(t, 4, agg.CaptionTraits.SampledPosts)
	assert.InDelta(t, 0.5, agg.CaptionTraits.QuestionShare, 1e-9)
}

func TestEngineAnalyzeWarnsBelowMinimumCompetitors(t *testing.T) {
	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{
		CompetitorUsernames: []string{"fitlife_anna", "gymcoach_ben"},
	}

	agg, err := engine.Analyze(context.Background(), opts, engineRecords())

	require.NoError(t, err)
	require.Len(t, agg.Warnings, 1)
	assert.Equal(t, insight.WarnTooFewCompetitors, agg.Warnings[0].Code)
	assert.Contains(t, agg.Warnings[0].Message, "below the recommended minimum of 3")
}

func TestEngineAnalyzeInvalidOptions(t *testing.T) {
	engine := testEngine(DefaultEngineConfig("instagram"))

	_, err := engine.Analyze(context.Background(), insight.RunOptions{}, nil)

	assert.ErrorIs(t, err, insight.ErrInvalidOptions)
}

func TestEngineAnalyzeZeroPostCompetitor(t *testing.T) {
	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{
		CompetitorUsernames: []string{"ghost"},
		MinCompetitors:      1,
	}

	agg, err := engine.Analyze(context.Background(), opts, map[string][]post.RawRecord{"ghost": nil})

	require.NoError(t, err)
	assert.Equal(t, 1, agg.CompetitorsAnalyzed)
	assert.Equal(t, 0, agg.TotalReels)
	assert.InDelta(t, 0.0, agg.AvgEngagementRate, 1e-9)

	require.Len(t, agg.Warnings, 1)
	assert.Equal(t, insight.WarnNoPosts, agg.Warnings[0].Code)
	assert.Equal(t, "ghost", agg.Warnings[0].Subject)
}

func TestEngineAnalyzeRespectsReelsLimit(t *testing.T) {
	records := map[string][]post.RawRecord{"alpha": {}}
	for i := 0; i < 6; i++ {
		records["alpha"] = append(records["alpha"], post.RawRecord{
			"id":         fmt.Sprintf("p%d", i),
			"like_count": (i + 1) * 10,
			"view_count": 1000,
		})
	}

	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{
		CompetitorUsernames: []string{"alpha"},
		ReelsPerCompetitor:  3,
		MinCompetitors:      1,
	}

	agg, err := engine.Analyze(context.Background(), opts, records)

	require.NoError(t, err)
	require.Len(t, agg.Competitors, 1)
	assert.Equal(t, 3, agg.Competitors[0].ReelsCount)
	assert.Equal(t, "p5", agg.Competitors[0].TopReels[0].ID)
	assert.InDelta(t, 5.0, agg.Competitors[0].AvgEngagementRate, 1e-9)
}

func TestEngineAnalyzeIdempotent(t *testing.T) {
	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{
		CompetitorUsernames: []string{"fitlife_anna", "gymcoach_ben"},
		MinCompetitors:      2,
	}

	first, err := engine.Analyze(context.Background(), opts, engineRecords())
	require.NoError(t, err)
	second, err := engine.Analyze(context.Background(), opts, engineRecords())
	require.NoError(t, err)

	first.AnalysisDate = time.Time{}
	second.AnalysisDate = time.Time{}
	assert.Equal(t, first, second)
}

func TestEngineAnalyzeDeterministicAcrossWorkerCounts(t *testing.T) {
	records := make(map[string][]post.RawRecord)
	for c := 0; c < 5; c++ {
		handle := fmt.Sprintf("competitor_%d", c)
		for i := 0; i < 4; i++ {
			records[handle] = append(records[handle], post.RawRecord{
				"id":           fmt.Sprintf("%s_p%d", handle, i),
				"caption_text": fmt.Sprintf("Why we train block %d with heavy compounds", i),
				"posted_at":    fmt.Sprintf("2026-03-%02dT0%d:00:00Z", c+2, i+1),
				"like_count":   (c + 1) * (i + 1) * 7,
				"view_count":   900 + c*100,
				"hashtags":     []interface{}{"training", "strength"},
			})
		}
	}

	opts := insight.RunOptions{MinCompetitors: 5}
	for c := 0; c < 5; c++ {
		opts.CompetitorUsernames = append(opts.CompetitorUsernames, fmt.Sprintf("competitor_%d", c))
	}

	pooled := testEngine(EngineConfig{Platform: "instagram", MaxWorkers: 4})
	serial := testEngine(EngineConfig{Platform: "instagram", MaxWorkers: 1})

	fromPool, err := pooled.Analyze(context.Background(), opts, records)
	require.NoError(t, err)
	fromSerial, err := serial.Analyze(context.Background(), opts, records)
	require.NoError(t, err)

	fromPool.AnalysisDate = time.Time{}
	fromSerial.AnalysisDate = time.Time{}
	assert.Equal(t, fromPool, fromSerial)
}

func TestEngineAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := testEngine(DefaultEngineConfig("instagram"))
	opts := insight.RunOptions{CompetitorUsernames: []string{"fitlife_anna"}, MinCompetitors: 1}

	_, err := engine.Analyze(ctx, opts, engineRecords())

	assert.ErrorIs(t, err, context.Canceled)
}
