// internal/service/analysis/aggregator.go

package analysis

import (
	"fmt"
	"sort"

	"reelscope/internal/domain/insight"
)

// AggregatorConfig bounds the cross-competitor result lists
type AggregatorConfig struct {
	GlobalTopHashtags int
	GlobalTopHooks    int
	GlobalTopStarters int
	GlobalTopThemes   int
	BestHours         int
	MinThemeFrequency int
	MinBucketSamples  int
}

// DefaultAggregatorConfig returns the standard aggregation bounds
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		GlobalTopHashtags: 15,
		GlobalTopHooks:    10,
		GlobalTopStarters: 10,
		GlobalTopThemes:   15,
		BestHours:         5,
		MinThemeFrequency: 2,
		MinBucketSamples:  3,
	}
}

// Aggregator merges per-competitor summaries into one run-level result. Every
// mean is recomputed from sample-size-weighted sums, so the merged figures
// equal the figures a single pass over all posts would produce.
type Aggregator struct {
	config AggregatorConfig
}

// NewAggregator creates an aggregator, filling zero config fields with defaults
func NewAggregator(config AggregatorConfig) *Aggregator {
	defaults := DefaultAggregatorConfig()
	if config.GlobalTopHashtags <= 0 {
		config.GlobalTopHashtags = defaults.GlobalTopHashtags
	}
	if config.GlobalTopHooks <= 0 {
		config.GlobalTopHooks = defaults.GlobalTopHooks
	}
	if config.GlobalTopStarters <= 0 {
		config.GlobalTopStarters = defaults.GlobalTopStarters
	}
	if config.GlobalTopThemes <= 0 {
		config.GlobalTopThemes = defaults.GlobalTopThemes
	}
	if config.BestHours <= 0 {
		config.BestHours = defaults.BestHours
	}
	if config.MinThemeFrequency <= 0 {
		config.MinThemeFrequency = defaults.MinThemeFrequency
	}
	if config.MinBucketSamples <= 0 {
		config.MinBucketSamples = defaults.MinBucketSamples
	}
	return &Aggregator{config: config}
}

// Merge combines competitor summaries into an Aggregate. Competitors are
// ordered by handle, competitors without posts are kept and flagged with a
// warning, and the analysis date is left for the caller to stamp.
func (a *Aggregator) Merge(platform string, summaries []insight.CompetitorSummary, warnings []insight.Warning) *insight.Aggregate {
	ordered := make([]insight.CompetitorSummary, len(summaries))
	copy(ordered, summaries)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Handle < ordered[j].Handle
	})

	agg := &insight.Aggregate{
		Platform:            platform,
		CompetitorsAnalyzed: len(ordered),
		Competitors:         ordered,
		Warnings:            append([]insight.Warning{}, warnings...),
	}

	var rateSum float64
	for _, s := range ordered {
		if s.ReelsCount == 0 {
			agg.Warnings = append(agg.Warnings, insight.Warning{
				Code:    insight.WarnNoPosts,
				Subject: s.Handle,
				Message: fmt.Sprintf("no analyzable posts for %s", s.Handle),
			})
			continue
		}
		agg.TotalReels += s.ReelsCount
		rateSum += s.AvgEngagementRate * float64(s.ReelsCount)
	}
	if agg.TotalReels > 0 {
		agg.AvgEngagementRate = rateSum / float64(agg.TotalReels)
	}

	for _, s := range ordered {
		agg.SkippedRecords += s.SkippedRecords
	}

	agg.TopHashtags = a.mergeHashtags(ordered)
	agg.HookPatterns = a.mergeHooks(ordered)
	agg.PostingPatterns, agg.OptimalDuration = a.mergeTiming(ordered)
	agg.TopicThemes = a.mergeTopics(ordered)
	agg.CaptionTraits = mergeCaptionTraits(ordered)

	return agg
}

func (a *Aggregator) mergeHashtags(summaries []insight.CompetitorSummary) []insight.HashtagStat {
	tags := make(map[string]*hashtagAgg)
	for _, s := range summaries {
		for _, stat := range s.TopHashtags {
			agg, ok := tags[stat.Hashtag]
			if !ok {
				agg = &hashtagAgg{}
				tags[stat.Hashtag] = agg
			}
			agg.count += stat.Frequency
			agg.rateSum += stat.AvgEngagementRate * float64(stat.Frequency)
		}
	}

	stats := make([]insight.HashtagStat, 0, len(tags))
	for tag, agg := range tags {
		stats = append(stats, insight.HashtagStat{
			Hashtag:           tag,
			Frequency:         agg.count,
			AvgEngagementRate: agg.rateSum / float64(agg.count),
		})
	}

	sortHashtagStats(stats)

	if len(stats) > a.config.GlobalTopHashtags {
		stats = stats[:a.config.GlobalTopHashtags]
	}

	return stats
}

func (a *Aggregator) mergeHooks(summaries []insight.CompetitorSummary) insight.HookPatterns {
	var allHooks []insight.HookPattern
	starters := make(map[string]*starterAgg)
	categories := make(map[insight.HookCategory]*categoryAgg)
	total := 0

	for _, s := range summaries {
		total += s.HookPatterns.TotalHooks
		allHooks = append(allHooks, s.HookPatterns.TopHooks...)

		for _, stat := range s.HookPatterns.CommonStarters {
			agg, ok := starters[stat.Starter]
			if !ok {
				agg = &starterAgg{}
				starters[stat.Starter] = agg
			}
			agg.count += stat.Count
			agg.rateSum += stat.AvgEngagementRate * float64(stat.Count)
			for _, example := range stat.Examples {
				if len(agg.examples) >= maxStarterExamples {
					break
				}
				if !containsString(agg.examples, example) {
					agg.examples = append(agg.examples, example)
				}
			}
		}

		for _, stat := range s.HookPatterns.Categories {
			agg, ok := categories[stat.Category]
			if !ok {
				agg = &categoryAgg{}
				categories[stat.Category] = agg
			}
			agg.count += stat.Count
			agg.rateSum += stat.AvgEngagementRate * float64(stat.Count)
		}
	}

	// A starter seen once carries no repeatable pattern.
	for starter, agg := range starters {
		if agg.count <= 1 {
			delete(starters, starter)
		}
	}

	return insight.HookPatterns{
		TotalHooks:     total,
		TopHooks:       rankHooks(allHooks, a.config.GlobalTopHooks),
		CommonStarters: rankStarters(starters, a.config.GlobalTopStarters),
		Categories:     rankCategories(categories),
	}
}

func (a *Aggregator) mergeTiming(summaries []insight.CompetitorSummary) (insight.PostingPatterns, insight.DurationPatterns) {
	days := make(map[string]*bucketAgg)
	hours := make(map[string]*bucketAgg)
	durations := make(map[string]*bucketAgg)

	for _, s := range summaries {
		mergeBuckets(days, s.DayBuckets)
		mergeBuckets(hours, s.HourBuckets)
		mergeBuckets(durations, s.DurationBuckets)
	}

	bestHours := sortBuckets(hours, a.config.MinBucketSamples)
	if len(bestHours) > a.config.BestHours {
		bestHours = bestHours[:a.config.BestHours]
	}

	posting := insight.PostingPatterns{
		BestDays:  sortBuckets(days, a.config.MinBucketSamples),
		BestHours: bestHours,
	}

	durationStats := sortBuckets(durations, a.config.MinBucketSamples)
	duration := insight.DurationPatterns{
		BestBucket: BestBucketLabel(durationStats),
		Buckets:    durationStats,
	}

	return posting, duration
}

func mergeBuckets(into map[string]*bucketAgg, stats []insight.BucketStat) {
	for _, stat := range stats {
		agg, ok := into[stat.Label]
		if !ok {
			agg = &bucketAgg{}
			into[stat.Label] = agg
		}
		agg.count += stat.PostCount
		agg.rateSum += stat.AvgEngagementRate * float64(stat.PostCount)
	}
}

func (a *Aggregator) mergeTopics(summaries []insight.CompetitorSummary) []insight.TopicTheme {
	type themeAgg struct {
		count   int
		related map[string]struct{}
	}

	themes := make(map[string]*themeAgg)
	for _, s := range summaries {
		for _, theme := range s.Topics {
			agg, ok := themes[theme.Theme]
			if !ok {
				agg = &themeAgg{related: make(map[string]struct{})}
				themes[theme.Theme] = agg
			}
			agg.count += theme.Frequency
			for _, keyword := range theme.RelatedKeywords {
				agg.related[keyword] = struct{}{}
			}
		}
	}

	merged := make([]insight.TopicTheme, 0, len(themes))
	for theme, agg := range themes {
		if agg.count <= a.config.MinThemeFrequency {
			continue
		}

		related := make([]string, 0, len(agg.related))
		for keyword := range agg.related {
			related = append(related, keyword)
		}
		sort.Strings(related)
		if len(related) > maxRelatedKeywords {
			related = related[:maxRelatedKeywords]
		}

		merged = append(merged, insight.TopicTheme{
			Theme:           theme,
			Frequency:       agg.count,
			RelatedKeywords: related,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Frequency != merged[j].Frequency {
			return merged[i].Frequency > merged[j].Frequency
		}
		return merged[i].Theme < merged[j].Theme
	})

	if len(merged) > a.config.GlobalTopThemes {
		merged = merged[:a.config.GlobalTopThemes]
	}

	return merged
}

func mergeCaptionTraits(summaries []insight.CompetitorSummary) insight.CaptionTraits {
	var (
		sampled    int
		questions  float64
		emoji      float64
		paragraphs float64
		runeTotal  float64
		likeTotal  float64
		shareTotal float64
	)

	for _, s := range summaries {
		t := s.CaptionTraits
		if t.SampledPosts == 0 {
			continue
		}
		n := float64(t.SampledPosts)
		sampled += t.SampledPosts
		questions += t.QuestionShare * n
		emoji += t.EmojiShare * n
		paragraphs += t.MultiParagraphShare * n
		runeTotal += t.AvgCaptionLength * n
		likeTotal += t.AvgLikes * n
		shareTotal += t.AvgShares * n
	}

	if sampled == 0 {
		return insight.CaptionTraits{}
	}

	n := float64(sampled)
	shareFloor := shareTotal
	if shareFloor < 1 {
		shareFloor = 1
	}

	return insight.CaptionTraits{
		SampledPosts:        sampled,
		QuestionShare:       questions / n,
		EmojiShare:          emoji / n,
		MultiParagraphShare: paragraphs / n,
		AvgCaptionLength:    runeTotal / n,
		AvgLikes:            likeTotal / n,
		AvgShares:           shareTotal / n,
		LikeToShareRatio:    likeTotal / shareFloor,
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
