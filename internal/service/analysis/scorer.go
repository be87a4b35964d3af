// internal/service/analysis/scorer.go

package analysis

import (
	"reelscope/internal/domain/post"
)

// ScoreWeights sets the relative weight of each engagement counter. Comments
// and shares weigh more than likes because they signal stronger engagement.
type ScoreWeights struct {
	Comment float64
	Share   float64
}

// DefaultScoreWeights returns the standard engagement weighting
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Comment: 2.0,
		Share:   3.0,
	}
}

// Scorer computes per-post engagement rates
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a new scorer
func NewScorer(weights ScoreWeights) *Scorer {
	if weights.Comment == 0 && weights.Share == 0 {
		weights = DefaultScoreWeights()
	}
	return &Scorer{weights: weights}
}

// Score computes the engagement rate for a single post:
//
//	(likes + comments*Wc + shares*Ws) / max(views, 1) * 100
//
// A missing or zero view count scores against an assumed minimal reach of one
// view. That inflates the rate for viewless posts; it is a documented
// distortion, not an error.
func (s *Scorer) Score(p post.PostRecord) post.ScoredPost {
	views := p.ViewCount
	if views < 1 {
		views = 1
	}

	weighted := float64(p.LikeCount) +
		float64(p.CommentCount)*s.weights.Comment +
		float64(p.ShareCount)*s.weights.Share

	return post.ScoredPost{
		PostRecord:     p,
		EngagementRate: weighted / float64(views) * 100,
	}
}

// ScoreAll scores a sequence of posts, preserving order
func (s *Scorer) ScoreAll(posts []post.PostRecord) []post.ScoredPost {
	scored := make([]post.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, s.Score(p))
	}
	return scored
}
