// internal/service/analysis/ranking.go

package analysis

import (
	"sort"

	"reelscope/internal/domain/post"
)

// RankPosts returns the top limit posts by engagement rate, descending. Ties
// prefer the more recent posted_at, then the lexicographically smaller id, so
// the order is total and re-running on identical input reproduces it. Fewer
// available posts than limit is not an error; the input is never mutated.
func RankPosts(posts []post.ScoredPost, limit int) []post.ScoredPost {
	ranked := make([]post.ScoredPost, len(posts))
	copy(ranked, posts)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].EngagementRate != ranked[j].EngagementRate {
			return ranked[i].EngagementRate > ranked[j].EngagementRate
		}
		if !ranked[i].PostedAt.Equal(ranked[j].PostedAt) {
			return ranked[i].PostedAt.After(ranked[j].PostedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// meanEngagement returns the unweighted mean rate of a post sequence
func meanEngagement(posts []post.ScoredPost) float64 {
	if len(posts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range posts {
		sum += p.EngagementRate
	}
	return sum / float64(len(posts))
}
