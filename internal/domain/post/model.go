// internal/domain/post/model.go

package post

import (
	"time"
)

// RawRecord is a single post as returned by a data source. Sources disagree on
// field names and types, so the shape is unspecified until normalization.
type RawRecord map[string]interface{}

// PostRecord is the canonical form of a short-form post. It is built once by
// the normalizer and never mutated afterwards.
type PostRecord struct {
	ID               string    `json:"id"`
	CompetitorHandle string    `json:"competitor_handle"`
	Caption          string    `json:"caption_text"`
	Hashtags         []string  `json:"hashtags,omitempty"`
	PostedAt         time.Time `json:"posted_at,omitempty"`
	DurationSeconds  *float64  `json:"duration_seconds,omitempty"`
	LikeCount        int       `json:"like_count"`
	CommentCount     int       `json:"comment_count"`
	ShareCount       int       `json:"share_count"`
	ViewCount        int       `json:"view_count"`
}

// HasTimestamp reports whether the post carries a usable posting time.
func (p PostRecord) HasTimestamp() bool {
	return !p.PostedAt.IsZero()
}

// ScoredPost pairs a PostRecord with its derived engagement rate.
type ScoredPost struct {
	PostRecord
	EngagementRate float64 `json:"engagement_rate"`
}
