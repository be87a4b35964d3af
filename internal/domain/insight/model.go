// internal/domain/insight/model.go

package insight

import (
	"time"

	"reelscope/internal/domain/post"
)

// HookCategory classifies the opening phrase of a caption
type HookCategory string

const (
	HookStatistic   HookCategory = "statistic"
	HookQuestion    HookCategory = "question"
	HookStoryOpener HookCategory = "story-opener"
	HookBoldClaim   HookCategory = "bold-claim"
	HookOther       HookCategory = "other"
)

// HookPattern is one extracted caption hook with its performance
type HookPattern struct {
	Hook           string       `json:"hook"`
	Category       HookCategory `json:"category"`
	EngagementRate float64      `json:"engagement_rate"`
	Competitor     string       `json:"competitor"`
}

// HookCategoryStat aggregates hooks of one category
type HookCategoryStat struct {
	Category          HookCategory `json:"category"`
	Count             int          `json:"count"`
	AvgEngagementRate float64      `json:"avg_engagement_rate"`
}

// HookStarter aggregates hooks sharing the same opening words
type HookStarter struct {
	Starter           string   `json:"starter"`
	Count             int      `json:"count"`
	AvgEngagementRate float64  `json:"avg_engagement_rate"`
	Examples          []string `json:"examples,omitempty"`
}

// HookPatterns groups every hook-level statistic for a competitor or a whole run
type HookPatterns struct {
	TotalHooks     int                `json:"total_hooks_analyzed"`
	TopHooks       []HookPattern      `json:"top_performing_hooks"`
	CommonStarters []HookStarter      `json:"common_hook_starters"`
	Categories     []HookCategoryStat `json:"category_breakdown"`
}

// HashtagStat is one hashtag with usage frequency and mean engagement
type HashtagStat struct {
	Hashtag           string  `json:"hashtag"`
	Frequency         int     `json:"frequency"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
}

// BucketStat is one discretized bucket (weekday, hour, or duration range) with
// its sample size and mean engagement. Buckets below the sample-size threshold
// are flagged low-confidence rather than dropped.
type BucketStat struct {
	Label             string  `json:"label"`
	PostCount         int     `json:"post_count"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	LowConfidence     bool    `json:"low_confidence"`
}

// PostingPatterns reports the best-performing posting times
type PostingPatterns struct {
	BestDays  []BucketStat `json:"best_days"`
	BestHours []BucketStat `json:"best_hours"`
}

// DurationPatterns reports the best-performing video length range
type DurationPatterns struct {
	BestBucket string       `json:"best_bucket,omitempty"`
	Buckets    []BucketStat `json:"buckets"`
}

// TopicTheme is one recurring caption theme with its co-occurring keywords
type TopicTheme struct {
	Theme           string   `json:"theme"`
	Frequency       int      `json:"frequency"`
	RelatedKeywords []string `json:"related_keywords,omitempty"`
}

// CaptionTraits summarizes surface characteristics of the analyzed captions
type CaptionTraits struct {
	SampledPosts        int     `json:"sampled_posts"`
	QuestionShare       float64 `json:"question_share"`
	EmojiShare          float64 `json:"emoji_share"`
	MultiParagraphShare float64 `json:"multi_paragraph_share"`
	AvgCaptionLength    float64 `json:"avg_caption_length"`
	AvgLikes            float64 `json:"avg_likes"`
	AvgShares           float64 `json:"avg_shares"`
	LikeToShareRatio    float64 `json:"like_to_share_ratio"`
}

// CompetitorSummary holds every per-competitor analysis result. The handle is
// the natural key; the value is immutable once computed.
type CompetitorSummary struct {
	Handle                string            `json:"handle"`
	ReelsCount            int               `json:"reels_count"`
	AvgEngagementRate     float64           `json:"avg_engagement_rate"`
	TopReels              []post.ScoredPost `json:"top_performing_reels"`
	HookPatterns          HookPatterns      `json:"hook_patterns"`
	TopHashtags           []HashtagStat     `json:"top_hashtags"`
	DayBuckets            []BucketStat      `json:"posting_day_distribution"`
	HourBuckets           []BucketStat      `json:"posting_hour_distribution"`
	DurationBuckets       []BucketStat      `json:"duration_distribution"`
	OptimalDurationBucket string            `json:"optimal_duration_bucket,omitempty"`
	Topics                []TopicTheme      `json:"topic_themes"`
	CaptionTraits         CaptionTraits     `json:"caption_traits"`
	SkippedRecords        int               `json:"skipped_records,omitempty"`
}

// Aggregate merges all competitor summaries for one run. Exactly one instance
// exists per run and it is only read after construction.
type Aggregate struct {
	Platform            string              `json:"platform"`
	AnalysisDate        time.Time           `json:"analysis_date"`
	CompetitorsAnalyzed int                 `json:"competitors_analyzed"`
	TotalReels          int                 `json:"total_reels_analyzed"`
	AvgEngagementRate   float64             `json:"avg_engagement_rate"`
	Competitors         []CompetitorSummary `json:"competitors"`
	TopHashtags         []HashtagStat       `json:"top_hashtags"`
	HookPatterns        HookPatterns        `json:"hook_patterns"`
	PostingPatterns     PostingPatterns     `json:"posting_patterns"`
	OptimalDuration     DurationPatterns    `json:"optimal_duration"`
	TopicThemes         []TopicTheme        `json:"topic_themes"`
	CaptionTraits       CaptionTraits       `json:"engagement_characteristics"`
	SkippedRecords      int                 `json:"skipped_records"`
	Warnings            []Warning           `json:"warnings,omitempty"`
}

// Warning codes surfaced in run output
const (
	WarnTooFewCompetitors  = "too_few_competitors"
	WarnTooManyCompetitors = "too_many_competitors"
	WarnNoPosts            = "no_posts"
	WarnFetchFailed        = "fetch_failed"
	WarnIncompletePayload  = "incomplete_payload"
)

// Warning is a structured degradation notice. Warnings accompany results
// instead of failing a run, so partial insight generation can proceed.
type Warning struct {
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}
