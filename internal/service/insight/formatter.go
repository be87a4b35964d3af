// internal/service/insight/formatter.go

package insight

import (
	"fmt"
	"math"
	"time"

	"reelscope/internal/domain/insight"
)

// Formatter shapes aggregates into the documented output structures. Rounding
// to two decimals happens here and only here, so the analysis core keeps full
// precision.
type Formatter struct{}

// NewFormatter creates a formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// BuildDocument assembles the result document for a finished analysis
func (f *Formatter) BuildDocument(agg *insight.Aggregate) insight.ResultDocument {
	if agg == nil {
		return insight.ResultDocument{CompetitorData: map[string]insight.CompetitorEntry{}}
	}

	competitorData := make(map[string]insight.CompetitorEntry, len(agg.Competitors))
	for _, s := range agg.Competitors {
		exemplars := make([]insight.ReelExemplar, 0, len(s.TopReels))
		for _, reel := range s.TopReels {
			exemplar := insight.ReelExemplar{
				ID:             reel.ID,
				Caption:        reel.Caption,
				EngagementRate: round2(reel.EngagementRate),
			}
			if reel.HasTimestamp() {
				exemplar.PostedAt = reel.PostedAt.Format(time.RFC3339)
			}
			exemplars = append(exemplars, exemplar)
		}

		competitorData[s.Handle] = insight.CompetitorEntry{
			ReelsCount:         s.ReelsCount,
			AvgEngagementRate:  round2(s.AvgEngagementRate),
			TopPerformingReels: exemplars,
		}
	}

	var analysisDate string
	if !agg.AnalysisDate.IsZero() {
		analysisDate = agg.AnalysisDate.Format(time.RFC3339)
	}

	return insight.ResultDocument{
		AnalysisSummary: insight.Summary{
			CompetitorsAnalyzed: agg.CompetitorsAnalyzed,
			TotalReelsAnalyzed:  agg.TotalReels,
			AnalysisDate:        analysisDate,
			Platform:            agg.Platform,
		},
		CompetitorData: competitorData,
		PatternsAnalysis: insight.PatternsAnalysis{
			TotalReelsAnalyzed: agg.TotalReels,
			AvgEngagementRate:  round2(agg.AvgEngagementRate),
			TopHashtags:        roundedHashtags(agg.TopHashtags),
			HookPatterns:       roundedHookPatterns(agg.HookPatterns),
			OptimalDuration: insight.DurationPatterns{
				BestBucket: agg.OptimalDuration.BestBucket,
				Buckets:    roundedBuckets(agg.OptimalDuration.Buckets),
			},
			PostingPatterns: insight.PostingPatterns{
				BestDays:  roundedBuckets(agg.PostingPatterns.BestDays),
				BestHours: roundedBuckets(agg.PostingPatterns.BestHours),
			},
			TopicThemes:               agg.TopicThemes,
			EngagementCharacteristics: roundedTraits(agg.CaptionTraits),
		},
		Warnings: agg.Warnings,
	}
}

// BuildPayload assembles the prompt payload for content idea generation. It
// fails when the aggregate has nothing to prompt with.
func (f *Formatter) BuildPayload(agg *insight.Aggregate) (*insight.PromptPayload, error) {
	if agg == nil {
		return nil, fmt.Errorf("%w: aggregate is nil", insight.ErrIncompletePayload)
	}
	if agg.CompetitorsAnalyzed == 0 {
		return nil, fmt.Errorf("%w: no competitors analyzed", insight.ErrIncompletePayload)
	}
	if agg.TotalReels == 0 {
		return nil, fmt.Errorf("%w: no posts analyzed", insight.ErrIncompletePayload)
	}
	if len(agg.TopHashtags) == 0 && agg.HookPatterns.TotalHooks == 0 && len(agg.TopicThemes) == 0 {
		return nil, fmt.Errorf("%w: no patterns extracted", insight.ErrIncompletePayload)
	}

	return &insight.PromptPayload{
		Platform:            agg.Platform,
		CompetitorsAnalyzed: agg.CompetitorsAnalyzed,
		TotalReels:          agg.TotalReels,
		AvgEngagementRate:   round2(agg.AvgEngagementRate),
		TopHashtags:         roundedHashtags(agg.TopHashtags),
		HookCategories:      roundedCategories(agg.HookPatterns.Categories),
		ExemplarHooks:       exemplarHooks(agg.HookPatterns.TopHooks),
		CommonStarters:      roundedStarters(agg.HookPatterns.CommonStarters),
		BestPostingDays:     roundedBuckets(agg.PostingPatterns.BestDays),
		BestPostingHours:    roundedBuckets(agg.PostingPatterns.BestHours),
		OptimalDuration:     agg.OptimalDuration.BestBucket,
		TopicThemes:         agg.TopicThemes,
	}, nil
}

// exemplarHooks keeps the best hook of each category, in rank order
func exemplarHooks(hooks []insight.HookPattern) []insight.HookPattern {
	seen := make(map[insight.HookCategory]struct{})
	var exemplars []insight.HookPattern
	for _, hook := range hooks {
		if _, ok := seen[hook.Category]; ok {
			continue
		}
		seen[hook.Category] = struct{}{}
		hook.EngagementRate = round2(hook.EngagementRate)
		exemplars = append(exemplars, hook)
	}
	return exemplars
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundedHashtags(stats []insight.HashtagStat) []insight.HashtagStat {
	out := make([]insight.HashtagStat, len(stats))
	for i, stat := range stats {
		stat.AvgEngagementRate = round2(stat.AvgEngagementRate)
		out[i] = stat
	}
	return out
}

func roundedBuckets(stats []insight.BucketStat) []insight.BucketStat {
	out := make([]insight.BucketStat, len(stats))
	for i, stat := range stats {
		stat.AvgEngagementRate = round2(stat.AvgEngagementRate)
		out[i] = stat
	}
	return out
}

func roundedCategories(stats []insight.HookCategoryStat) []insight.HookCategoryStat {
	out := make([]insight.HookCategoryStat, len(stats))
	for i, stat := range stats {
		stat.AvgEngagementRate = round2(stat.AvgEngagementRate)
		out[i] = stat
	}
	return out
}

func roundedStarters(stats []insight.HookStarter) []insight.HookStarter {
	out := make([]insight.HookStarter, len(stats))
	for i, stat := range stats {
		stat.AvgEngagementRate = round2(stat.AvgEngagementRate)
		out[i] = stat
	}
	return out
}

func roundedHookPatterns(patterns insight.HookPatterns) insight.HookPatterns {
	hooks := make([]insight.HookPattern, len(patterns.TopHooks))
	for i, hook := range patterns.TopHooks {
		hook.EngagementRate = round2(hook.EngagementRate)
		hooks[i] = hook
	}

	return insight.HookPatterns{
		TotalHooks:     patterns.TotalHooks,
		TopHooks:       hooks,
		CommonStarters: roundedStarters(patterns.CommonStarters),
		Categories:     roundedCategories(patterns.Categories),
	}
}

func roundedTraits(traits insight.CaptionTraits) insight.CaptionTraits {
	traits.QuestionShare = round2(traits.QuestionShare)
	traits.EmojiShare = round2(traits.EmojiShare)
	traits.MultiParagraphShare = round2(traits.MultiParagraphShare)
	traits.AvgCaptionLength = round2(traits.AvgCaptionLength)
	traits.AvgLikes = round2(traits.AvgLikes)
	traits.AvgShares = round2(traits.AvgShares)
	traits.LikeToShareRatio = round2(traits.LikeToShareRatio)
	return traits
}
