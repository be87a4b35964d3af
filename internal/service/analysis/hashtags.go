// internal/service/analysis/hashtags.go

package analysis

import (
	"sort"
	"strings"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

type hashtagAgg struct {
	count   int
	rateSum float64
}

// AnalyzeHashtags counts hashtag usage across posts, case-insensitively, and
// ranks tags by frequency with engagement and lexicographic tie-breaks. A
// positive topK cuts the result.
func AnalyzeHashtags(posts []post.ScoredPost, topK int) []insight.HashtagStat {
	tags := make(map[string]*hashtagAgg)
	for _, p := range posts {
		for _, raw := range p.Hashtags {
			tag := normalizeHashtag(raw)
			if tag == "#" {
				continue
			}
			agg, ok := tags[tag]
			if !ok {
				agg = &hashtagAgg{}
				tags[tag] = agg
			}
			agg.count++
			agg.rateSum += p.EngagementRate
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

	if topK > 0 && len(stats) > topK {
		stats = stats[:topK]
	}

	return stats
}

func normalizeHashtag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

// sortHashtagStats orders tags by frequency descending, then mean engagement,
// then tag text.
func sortHashtagStats(stats []insight.HashtagStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		if stats[i].AvgEngagementRate != stats[j].AvgEngagementRate {
			return stats[i].AvgEngagementRate > stats[j].AvgEngagementRate
		}
		return stats[i].Hashtag < stats[j].Hashtag
	})
}
