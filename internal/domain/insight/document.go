// internal/domain/insight/document.go

package insight

// Summary is the analysis_summary section of a result document
type Summary struct {
	CompetitorsAnalyzed int    `json:"competitors_analyzed"`
	TotalReelsAnalyzed  int    `json:"total_reels_analyzed"`
	AnalysisDate        string `json:"analysis_date"`
	Platform            string `json:"platform"`
}

// ReelExemplar is a literal top post included in output to illustrate a pattern
type ReelExemplar struct {
	ID             string  `json:"id"`
	Caption        string  `json:"caption"`
	EngagementRate float64 `json:"engagement_rate"`
	PostedAt       string  `json:"posted_at,omitempty"`
}

// CompetitorEntry is one competitor_data value in a result document
type CompetitorEntry struct {
	ReelsCount         int            `json:"reels_count"`
	AvgEngagementRate  float64        `json:"avg_engagement_rate"`
	TopPerformingReels []ReelExemplar `json:"top_performing_reels"`
}

// PatternsAnalysis is the patterns_analysis section of a result document
type PatternsAnalysis struct {
	TotalReelsAnalyzed        int              `json:"total_reels_analyzed"`
	AvgEngagementRate         float64          `json:"avg_engagement_rate"`
	TopHashtags               []HashtagStat    `json:"top_hashtags"`
	HookPatterns              HookPatterns     `json:"hook_patterns"`
	OptimalDuration           DurationPatterns `json:"optimal_duration"`
	PostingPatterns           PostingPatterns  `json:"posting_patterns"`
	TopicThemes               []TopicTheme     `json:"topic_themes"`
	EngagementCharacteristics CaptionTraits    `json:"engagement_characteristics"`
}

// ContentIdeas is the generated (or fallback) content suggestion set
type ContentIdeas struct {
	ReelIdeas        []string `json:"reel_ideas"`
	HookIdeas        []string `json:"hook_ideas"`
	StrategyInsights []string `json:"strategy_insights"`
	GenerationSource string   `json:"generation_source"`
}

// ResultDocument is the serialized output of one run. Field names and nesting
// are part of the documented output contract.
type ResultDocument struct {
	AnalysisSummary  Summary                    `json:"analysis_summary"`
	CompetitorData   map[string]CompetitorEntry `json:"competitor_data"`
	PatternsAnalysis PatternsAnalysis           `json:"patterns_analysis"`
	ContentIdeas     *ContentIdeas              `json:"content_ideas,omitempty"`
	Warnings         []Warning                  `json:"warnings,omitempty"`
}

// PromptPayload is the structured input handed to the generative-model client.
// It carries the cross-competitor statistics plus one exemplar hook per
// category, nothing free-form.
type PromptPayload struct {
	Platform            string             `json:"platform"`
	CompetitorsAnalyzed int                `json:"competitors_analyzed"`
	TotalReels          int                `json:"total_reels_analyzed"`
	AvgEngagementRate   float64            `json:"avg_engagement_rate"`
	TopHashtags         []HashtagStat      `json:"top_hashtags"`
	HookCategories      []HookCategoryStat `json:"hook_categories"`
	ExemplarHooks       []HookPattern      `json:"exemplar_hooks"`
	CommonStarters      []HookStarter      `json:"common_hook_starters"`
	BestPostingDays     []BucketStat       `json:"best_posting_days"`
	BestPostingHours    []BucketStat       `json:"best_posting_hours"`
	OptimalDuration     string             `json:"optimal_duration,omitempty"`
	TopicThemes         []TopicTheme       `json:"topic_themes"`
}
