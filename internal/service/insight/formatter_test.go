// internal/service/insight/formatter_test.go

package insight

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

func sampleAggregate() *insight.Aggregate {
	return &insight.Aggregate{
		Platform:            "instagram",
		AnalysisDate:        time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC),
		CompetitorsAnalyzed: 2,
		TotalReels:          3,
		AvgEngagementRate:   8.433333333333334,
		Competitors: []insight.CompetitorSummary{
			{
				Handle:            "fitlife_anna",
				ReelsCount:        2,
				AvgEngagementRate: 8.399999999,
				TopReels: []post.ScoredPost{
					{
						PostRecord: post.PostRecord{
							ID:       "a1",
							Caption:  "Did you know 90% of people fail at this?",
							PostedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
						},
						EngagementRate: 13.456789,
					},
					{
						PostRecord:     post.PostRecord{ID: "a2", Caption: "My training log"},
						EngagementRate: 3.3,
					},
				},
			},
			{
				Handle:            "gymcoach_ben",
				ReelsCount:        1,
				AvgEngagementRate: 54.129,
			},
		},
		TopHashtags: []insight.HashtagStat{
			{Hashtag: "#fit", Frequency: 2, AvgEngagementRate: 33.756},
		},
		HookPatterns: insight.HookPatterns{
			TotalHooks: 3,
			TopHooks: []insight.HookPattern{
				{Hook: "How do you structure deload weeks?", Category: insight.HookQuestion, EngagementRate: 54.129, Competitor: "gymcoach_ben"},
				{Hook: "Did you know 90% of people fail at this?", Category: insight.HookStatistic, EngagementRate: 13.5, Competitor: "fitlife_anna"},
				{Hook: "How do you recover?", Category: insight.HookQuestion, EngagementRate: 10, Competitor: "fitlife_anna"},
			},
			CommonStarters: []insight.HookStarter{
				{Starter: "how do you", Count: 2, AvgEngagementRate: 8.556, Examples: []string{"How do you structure deload weeks?"}},
			},
			Categories: []insight.HookCategoryStat{
				{Category: insight.HookQuestion, Count: 2, AvgEngagementRate: 8.6666},
			},
		},
		PostingPatterns: insight.PostingPatterns{
			BestDays: []insight.BucketStat{
				{Label: "Monday", PostCount: 2, AvgEngagementRate: 33.756, LowConfidence: true},
			},
		},
		OptimalDuration: insight.DurationPatterns{
			BestBucket: "<15s",
			Buckets: []insight.BucketStat{
				{Label: "<15s", PostCount: 1, AvgEngagementRate: 54.0, LowConfidence: true},
			},
		},
		TopicThemes: []insight.TopicTheme{
			{Theme: "protein", Frequency: 3, RelatedKeywords: []string{"intake", "shake"}},
		},
		CaptionTraits: insight.CaptionTraits{
			SampledPosts:     3,
			QuestionShare:    1.0 / 3,
			AvgCaptionLength: 24.666666,
			AvgLikes:         116.666666,
			AvgShares:        5.666666,
			LikeToShareRatio: 20.5882,
		},
		Warnings: []insight.Warning{
			{Code: insight.WarnTooFewCompetitors, Message: "analysis covers 2 competitors, below the recommended minimum of 3"},
		},
	}
}

func TestBuildDocument(t *testing.T) {
	agg := sampleAggregate()

	doc := NewFormatter().BuildDocument(agg)

	assert.Equal(t, insight.Summary{
		CompetitorsAnalyzed: 2,
		TotalReelsAnalyzed:  3,
		AnalysisDate:        "2026-03-10T12:30:00Z",
		Platform:            "instagram",
	}, doc.AnalysisSummary)

	require.Contains(t, doc.CompetitorData, "fitlife_anna")
	anna := doc.CompetitorData["fitlife_anna"]
	assert.Equal(t, 2, anna.ReelsCount)
	assert.InDelta(t, 8.4, anna.AvgEngagementRate, 1e-9)
	require.Len(t, anna.TopPerformingReels, 2)
	assert.Equal(t, "a1", anna.TopPerformingReels[0].ID)
	assert.InDelta(t, 13.46, anna.TopPerformingReels[0].EngagementRate, 1e-9)
	assert.Equal(t, "2026-03-02T09:00:00Z", anna.TopPerformingReels[0].PostedAt)
	assert.Empty(t, anna.TopPerformingReels[1].PostedAt)

	patterns := doc.PatternsAnalysis
	assert.Equal(t, 3, patterns.TotalReelsAnalyzed)
	assert.InDelta(t, 8.43, patterns.AvgEngagementRate, 1e-9)
	assert.InDelta(t, 33.76, patterns.TopHashtags[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 54.13, patterns.HookPatterns.TopHooks[0].EngagementRate, 1e-9)
	assert.InDelta(t, 8.56, patterns.HookPatterns.CommonStarters[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 8.67, patterns.HookPatterns.Categories[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 33.76, patterns.PostingPatterns.BestDays[0].AvgEngagementRate, 1e-9)
	assert.Equal(t, "<15s", patterns.OptimalDuration.BestBucket)
	assert.InDelta(t, 0.33, patterns.EngagementCharacteristics.QuestionShare, 1e-9)
	assert.InDelta(t, 24.67, patterns.EngagementCharacteristics.AvgCaptionLength, 1e-9)
	assert.Equal(t, agg.TopicThemes, patterns.TopicThemes)

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, insight.WarnTooFewCompetitors, doc.Warnings[0].Code)
	assert.Nil(t, doc.ContentIdeas)
}

func TestBuildDocumentLeavesAggregateUnrounded(t *testing.T) {
	agg := sampleAggregate()

	NewFormatter().BuildDocument(agg)

	assert.InDelta(t, 33.756, agg.TopHashtags[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 54.129, agg.HookPatterns.TopHooks[0].EngagementRate, 1e-9)
	assert.InDelta(t, 8.556, agg.HookPatterns.CommonStarters[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 33.756, agg.PostingPatterns.BestDays[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 1.0/3, agg.CaptionTraits.QuestionShare, 1e-9)
}

func TestBuildDocumentJSONContract(t *testing.T) {
	doc := NewFormatter().BuildDocument(sampleAggregate())

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.Contains(t, top, "analysis_summary")
	assert.Contains(t, top, "competitor_data")
	assert.Contains(t, top, "patterns_analysis")
	assert.Contains(t, top, "warnings")
	assert.NotContains(t, top, "content_ideas")

	var summary map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(top["analysis_summary"], &summary))
	assert.Contains(t, summary, "competitors_analyzed")
	assert.Contains(t, summary, "total_reels_analyzed")
	assert.Contains(t, summary, "analysis_date")
	assert.Contains(t, summary, "platform")

	var patterns map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(top["patterns_analysis"], &patterns))
	for _, key := range []string{
		"total_reels_analyzed", "avg_engagement_rate", "top_hashtags", "hook_patterns",
		"optimal_duration", "posting_patterns", "topic_themes", "engagement_characteristics",
	} {
		assert.Contains(t, patterns, key)
	}

	var competitors map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(top["competitor_data"], &competitors))
	var entry map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(competitors["gymcoach_ben"], &entry))
	assert.Contains(t, entry, "reels_count")
	assert.Contains(t, entry, "avg_engagement_rate")
	assert.Contains(t, entry, "top_performing_reels")
}

func TestBuildDocumentOmitsEmptySections(t *testing.T) {
	agg := sampleAggregate()
	agg.Warnings = nil

	data, err := json.Marshal(NewFormatter().BuildDocument(agg))
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	assert.NotContains(t, top, "warnings")
	assert.NotContains(t, top, "content_ideas")
}

func TestBuildDocumentNilAggregate(t *testing.T) {
	doc := NewFormatter().BuildDocument(nil)

	assert.NotNil(t, doc.CompetitorData)
	assert.Empty(t, doc.CompetitorData)
	assert.Empty(t, doc.AnalysisSummary.AnalysisDate)
}

func TestBuildDocumentZeroAnalysisDate(t *testing.T) {
	agg := sampleAggregate()
	agg.AnalysisDate = time.Time{}

	doc := NewFormatter().BuildDocument(agg)

	assert.Empty(t, doc.AnalysisSummary.AnalysisDate)
}

func TestBuildPayload(t *testing.T) {
	payload, err := NewFormatter().BuildPayload(sampleAggregate())

	require.NoError(t, err)
	assert.Equal(t, "instagram", payload.Platform)
	assert.Equal(t, 2, payload.CompetitorsAnalyzed)
	assert.Equal(t, 3, payload.TotalReels)
	assert.InDelta(t, 8.43, payload.AvgEngagementRate, 1e-9)
	assert.InDelta(t, 33.76, payload.TopHashtags[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 8.67, payload.HookCategories[0].AvgEngagementRate, 1e-9)
	assert.InDelta(t, 8.56, payload.CommonStarters[0].AvgEngagementRate, 1e-9)
	assert.Equal(t, "<15s", payload.OptimalDuration)
	assert.Equal(t, "Monday", payload.BestPostingDays[0].Label)

	require.Len(t, payload.ExemplarHooks, 2, "one exemplar per category")
	assert.Equal(t, insight.HookQuestion, payload.ExemplarHooks[0].Category)
	assert.InDelta(t, 54.13, payload.ExemplarHooks[0].EngagementRate, 1e-9)
	assert.Equal(t, insight.HookStatistic, payload.ExemplarHooks[1].Category)
}

func TestBuildPayloadJSONKeys(t *testing.T) {
	payload, err := NewFormatter().BuildPayload(sampleAggregate())
	require.NoError(t, err)

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	for _, key := range []string{
		"platform", "competitors_analyzed", "total_reels_analyzed", "avg_engagement_rate",
		"top_hashtags", "hook_categories", "exemplar_hooks", "common_hook_starters",
		"best_posting_days", "best_posting_hours", "optimal_duration", "topic_themes",
	} {
		assert.Contains(t, top, key)
	}
}

func TestBuildPayloadRejectsEmptyAggregates(t *testing.T) {
	formatter := NewFormatter()

	tests := []struct {
		name string
		agg  *insight.Aggregate
	}{
		{"nil aggregate", nil},
		{"no competitors", &insight.Aggregate{}},
		{"no posts", &insight.Aggregate{CompetitorsAnalyzed: 2}},
		{"no patterns", &insight.Aggregate{CompetitorsAnalyzed: 2, TotalReels: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formatter.BuildPayload(tt.agg)
			assert.ErrorIs(t, err, insight.ErrIncompletePayload)
		})
	}
}
