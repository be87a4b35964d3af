// internal/service/analysis/hooks.go

package analysis

import (
	"regexp"
	"sort"
	"strings"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

// maxHookLength bounds the extracted hook phrase in characters
const maxHookLength = 100

// maxStarterExamples bounds the example hooks kept per starter
const maxStarterExamples = 3

// topHooksPerCompetitor bounds the ranked hook list kept per competitor
const topHooksPerCompetitor = 10

// statisticPattern matches a number followed by a percent sign or a unit, or a
// currency-prefixed number.
var statisticPattern = regexp.MustCompile(`(?i)\d+(\.\d+)?\s*(%|x\b|k\b|m\b|days?\b|hours?\b|minutes?\b|weeks?\b|months?\b|years?\b)|[$€£]\s?\d`)

var questionStarters = []string{
	"how ", "why ", "what ", "when ", "did you", "do you", "have you", "ever wonder",
}

var storyOpenerPronouns = map[string]struct{}{
	"i": {}, "my": {}, "we": {}, "pov": {},
}

var pastTenseCues = map[string]struct{}{
	"learned": {}, "made": {}, "built": {}, "lost": {}, "quit": {}, "spent": {},
	"tried": {}, "started": {}, "failed": {}, "grew": {}, "went": {}, "found": {},
	"wish": {}, "was": {}, "were": {}, "had": {},
}

var boldClaimCues = []string{
	"unpopular opinion", "hot take", "harsh truth", "the truth about",
	"nobody tells you", "nobody talks about", "everyone gets this wrong",
	"biggest mistake", "biggest lie", "stop doing", "never do", "the secret",
}

// ExtractHook returns the leading phrase of a caption. It cuts at the first
// sentence boundary within maxHookLength characters, keeping a question mark
// because it carries the question signal, and falls back to a hard cut when no
// boundary occurs in bound.
func ExtractHook(caption string) string {
	text := strings.TrimSpace(caption)
	if text == "" {
		return ""
	}

	runes := []rune(text)
	bound := len(runes)
	if bound > maxHookLength {
		bound = maxHookLength
	}

	for i := 0; i < bound; i++ {
		switch runes[i] {
		case '?':
			return strings.TrimSpace(string(runes[:i+1]))
		case '.', ':', '!', '\n':
			return strings.TrimSpace(string(runes[:i]))
		}
	}

	return strings.TrimSpace(string(runes[:bound]))
}

// ClassifyHook assigns a hook to its taxonomy category. When several patterns
// match, the fixed priority order decides: statistic, question, story-opener,
// bold-claim, other. "Did you know 90% of people fail at this?" is therefore a
// statistic even though it reads as a question.
func ClassifyHook(hook string) insight.HookCategory {
	text := strings.ToLower(strings.TrimSpace(hook))
	if text == "" {
		return insight.HookOther
	}

	if statisticPattern.MatchString(text) {
		return insight.HookStatistic
	}

	if strings.HasSuffix(text, "?") || hasAnyPrefix(text, questionStarters) {
		return insight.HookQuestion
	}

	if isStoryOpener(text) {
		return insight.HookStoryOpener
	}

	for _, cue := range boldClaimCues {
		if strings.Contains(text, cue) {
			return insight.HookBoldClaim
		}
	}

	return insight.HookOther
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// isStoryOpener reports whether the hook starts with a first-person pronoun
// and contains a past-tense verb cue.
func isStoryOpener(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}

	first := strings.Trim(words[0], ".,:;!?\"'")
	if _, ok := storyOpenerPronouns[first]; !ok {
		return false
	}

	for _, word := range words[1:] {
		word = strings.Trim(word, ".,:;!?\"'")
		if _, ok := pastTenseCues[word]; ok {
			return true
		}
	}

	return false
}

// hookStarter returns the lowercased first two or three words of a hook, or an
// empty string when the hook is a single word.
func hookStarter(hook string) string {
	words := strings.Fields(strings.ToLower(hook))
	switch {
	case len(words) >= 3:
		return strings.Join(words[:3], " ")
	case len(words) == 2:
		return strings.Join(words, " ")
	default:
		return ""
	}
}

type starterAgg struct {
	count    int
	rateSum  float64
	examples []string
}

type categoryAgg struct {
	count   int
	rateSum float64
}

// AnalyzeHooks extracts and classifies hooks for one competitor's ranked
// posts, producing per-category frequencies, an engagement-ranked hook list,
// and starter-phrase statistics.
func AnalyzeHooks(handle string, posts []post.ScoredPost) insight.HookPatterns {
	var hooks []insight.HookPattern
	categories := make(map[insight.HookCategory]*categoryAgg)
	starters := make(map[string]*starterAgg)

	for _, p := range posts {
		hook := ExtractHook(p.Caption)
		if hook == "" {
			continue
		}

		category := ClassifyHook(hook)
		hooks = append(hooks, insight.HookPattern{
			Hook:           hook,
			Category:       category,
			EngagementRate: p.EngagementRate,
			Competitor:     handle,
		})

		agg, ok := categories[category]
		if !ok {
			agg = &categoryAgg{}
			categories[category] = agg
		}
		agg.count++
		agg.rateSum += p.EngagementRate

		if starter := hookStarter(hook); starter != "" {
			s, ok := starters[starter]
			if !ok {
				s = &starterAgg{}
				starters[starter] = s
			}
			s.count++
			s.rateSum += p.EngagementRate
			if len(s.examples) < maxStarterExamples {
				s.examples = append(s.examples, hook)
			}
		}
	}

	return insight.HookPatterns{
		TotalHooks:     len(hooks),
		TopHooks:       rankHooks(hooks, topHooksPerCompetitor),
		CommonStarters: rankStarters(starters, 0),
		Categories:     rankCategories(categories),
	}
}

// rankHooks orders hooks by engagement rate descending with deterministic
// tie-breaks, optionally cut to limit.
func rankHooks(hooks []insight.HookPattern, limit int) []insight.HookPattern {
	ranked := make([]insight.HookPattern, len(hooks))
	copy(ranked, hooks)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EngagementRate != ranked[j].EngagementRate {
			return ranked[i].EngagementRate > ranked[j].EngagementRate
		}
		if ranked[i].Hook != ranked[j].Hook {
			return ranked[i].Hook < ranked[j].Hook
		}
		return ranked[i].Competitor < ranked[j].Competitor
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// rankStarters orders starter stats by mean engagement descending, then count,
// then starter text, optionally cut to limit.
func rankStarters(starters map[string]*starterAgg, limit int) []insight.HookStarter {
	stats := make([]insight.HookStarter, 0, len(starters))
	for starter, agg := range starters {
		stats = append(stats, insight.HookStarter{
			Starter:           starter,
			Count:             agg.count,
			AvgEngagementRate: agg.rateSum / float64(agg.count),
			Examples:          agg.examples,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgEngagementRate != stats[j].AvgEngagementRate {
			return stats[i].AvgEngagementRate > stats[j].AvgEngagementRate
		}
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Starter < stats[j].Starter
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}

	return stats
}

// rankCategories orders category stats by mean engagement descending, then
// count, then category name.
func rankCategories(categories map[insight.HookCategory]*categoryAgg) []insight.HookCategoryStat {
	stats := make([]insight.HookCategoryStat, 0, len(categories))
	for category, agg := range categories {
		stats = append(stats, insight.HookCategoryStat{
			Category:          category,
			Count:             agg.count,
			AvgEngagementRate: agg.rateSum / float64(agg.count),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgEngagementRate != stats[j].AvgEngagementRate {
			return stats[i].AvgEngagementRate > stats[j].AvgEngagementRate
		}
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})

	return stats
}
