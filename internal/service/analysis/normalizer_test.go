// internal/service/analysis/normalizer_test.go

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscope/internal/domain/post"
)

func TestNormalizeCanonicalRecord(t *testing.T) {
	records := []post.RawRecord{{
		"id":               "reel-1",
		"caption_text":     "Morning routine that changed my training #Fitness",
		"posted_at":        "2026-03-02T08:30:00Z",
		"like_count":       120,
		"comment_count":    14,
		"share_count":      9,
		"view_count":       4800,
		"duration_seconds": 27.5,
		"hashtags":         []interface{}{"gym"},
	}}

	posts, skipped := NewNormalizer().Normalize("fitlife_anna", records)

	require.Len(t, posts, 1)
	assert.Equal(t, 0, skipped)

	p := posts[0]
	assert.Equal(t, "reel-1", p.ID)
	assert.Equal(t, "fitlife_anna", p.CompetitorHandle)
	assert.Equal(t, "Morning routine that changed my training #Fitness", p.Caption)
	assert.Equal(t, []string{"#fitness", "#gym"}, p.Hashtags)
	assert.True(t, p.PostedAt.Equal(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)))
	assert.True(t, p.HasTimestamp())
	assert.Equal(t, 120, p.LikeCount)
	assert.Equal(t, 14, p.CommentCount)
	assert.Equal(t, 9, p.ShareCount)
	assert.Equal(t, 4800, p.ViewCount)
	require.NotNil(t, p.DurationSeconds)
	assert.InDelta(t, 27.5, *p.DurationSeconds, 1e-9)
}

func TestNormalizeFieldAliases(t *testing.T) {
	tests := []struct {
		name         string
		record       post.RawRecord
		wantID       string
		wantCaption  string
		wantLikes    int
		wantComments int
		wantShares   int
		wantViews    int
	}{
		{
			name: "twitter shape",
			record: post.RawRecord{
				"id":          "1881234567890",
				"text":        "Why nobody talks about recovery weeks",
				"likes":       240,
				"replies":     31,
				"retweets":    12,
				"quotes":      5,
				"impressions": 19000,
			},
			wantID:       "1881234567890",
			wantCaption:  "Why nobody talks about recovery weeks",
			wantLikes:    240,
			wantComments: 31,
			wantShares:   17,
			wantViews:    19000,
		},
		{
			name: "alternate snake case keys",
			record: post.RawRecord{
				"post_id":  "p-77",
				"caption":  "Meal prep in under an hour",
				"likes":    80,
				"comments": 9,
				"shares":   4,
				"plays":    3100,
			},
			wantID:       "p-77",
			wantCaption:  "Meal prep in under an hour",
			wantLikes:    80,
			wantComments: 9,
			wantShares:   4,
			wantViews:    3100,
		},
		{
			name: "reply count and views",
			record: post.RawRecord{
				"tweet_id":    "t-9",
				"text":        "POV: you skipped warmups",
				"like_count":  55,
				"reply_count": 6,
				"share_count": 2,
				"views":       1200,
			},
			wantID:       "t-9",
			wantCaption:  "POV: you skipped warmups",
			wantLikes:    55,
			wantComments: 6,
			wantShares:   2,
			wantViews:    1200,
		},
		{
			name: "numeric strings",
			record: post.RawRecord{
				"id":            "s-1",
				"caption_text":  "How to build a home gym",
				"like_count":    "1200",
				"comment_count": "90",
				"share_count":   "45",
				"view_count":    "20000",
			},
			wantID:       "s-1",
			wantCaption:  "How to build a home gym",
			wantLikes:    1200,
			wantComments: 90,
			wantShares:   45,
			wantViews:    20000,
		},
	}

	normalizer := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, skipped := normalizer.Normalize("rival", []post.RawRecord{tt.record})

			require.Len(t, posts, 1)
			assert.Equal(t, 0, skipped)
			assert.Equal(t, tt.wantID, posts[0].ID)
			assert.Equal(t, tt.wantCaption, posts[0].Caption)
			assert.Equal(t, tt.wantLikes, posts[0].LikeCount)
			assert.Equal(t, tt.wantComments, posts[0].CommentCount)
			assert.Equal(t, tt.wantShares, posts[0].ShareCount)
			assert.Equal(t, tt.wantViews, posts[0].ViewCount)
		})
	}
}

func TestNormalizeExplicitSharesWinOverRetweetSum(t *testing.T) {
	records := []post.RawRecord{
		{"id": "a", "shares": 0, "retweets": 7, "quotes": 3},
		{"id": "b", "share_count": 4, "retweets": 7, "quotes": 3},
		{"id": "c", "retweets": 7, "quotes": 3},
	}

	posts, skipped := NewNormalizer().Normalize("rival", records)

	require.Len(t, posts, 3)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, posts[0].ShareCount)
	assert.Equal(t, 4, posts[1].ShareCount)
	assert.Equal(t, 10, posts[2].ShareCount)
}

func TestNormalizeSkipsUnusableRecords(t *testing.T) {
	records := []post.RawRecord{
		nil,
		{"likes": 10, "views": 500},
		{"id": "", "caption_text": "   "},
		{"id": "keep-1"},
		{"caption_text": "Caption only, still analyzable"},
	}

	posts, skipped := NewNormalizer().Normalize("rival", records)

	assert.Equal(t, 3, skipped)
	require.Len(t, posts, 2)
	assert.Equal(t, "keep-1", posts[0].ID)
	assert.Equal(t, "", posts[1].ID)
	assert.Equal(t, "Caption only, still analyzable", posts[1].Caption)
}

func TestNormalizeHashtagMerging(t *testing.T) {
	t.Run("explicit list merged with caption tags", func(t *testing.T) {
		records := []post.RawRecord{{
			"id":           "a",
			"caption_text": "Leg day #GymLife with @coach https://example.com/clip #gymlife",
			"hashtags":     []interface{}{"Nutrition", "#gymlife", 42},
		}}

		posts, _ := NewNormalizer().Normalize("rival", records)

		require.Len(t, posts, 1)
		assert.Equal(t, []string{"#gymlife", "#nutrition"}, posts[0].Hashtags)
	})

	t.Run("string slice accepted", func(t *testing.T) {
		records := []post.RawRecord{{
			"id":       "b",
			"hashtags": []string{"FatLoss", "fatloss", " #Cardio "},
		}}

		posts, _ := NewNormalizer().Normalize("rival", records)

		require.Len(t, posts, 1)
		assert.Equal(t, []string{"#cardio", "#fatloss"}, posts[0].Hashtags)
	})

	t.Run("no tags yields nil", func(t *testing.T) {
		records := []post.RawRecord{{"id": "c", "caption_text": "plain caption"}}

		posts, _ := NewNormalizer().Normalize("rival", records)

		require.Len(t, posts, 1)
		assert.Nil(t, posts[0].Hashtags)
	})
}

func TestNormalizeTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		record  post.RawRecord
		want    time.Time
		wantSet bool
	}{
		{
			name:    "rfc3339",
			record:  post.RawRecord{"id": "a", "posted_at": "2026-03-02T08:30:00Z"},
			want:    time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
			wantSet: true,
		},
		{
			name:    "rfc3339 with fraction",
			record:  post.RawRecord{"id": "b", "created_at": "2026-03-02T08:30:00.250Z"},
			want:    time.Date(2026, 3, 2, 8, 30, 0, 250_000_000, time.UTC),
			wantSet: true,
		},
		{
			name:    "space separated",
			record:  post.RawRecord{"id": "c", "timestamp": "2026-03-02 08:30:00"},
			want:    time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC),
			wantSet: true,
		},
		{
			name:    "date only",
			record:  post.RawRecord{"id": "d", "posted_at": "2026-03-02"},
			want:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			wantSet: true,
		},
		{
			name:    "epoch seconds as int",
			record:  post.RawRecord{"id": "e", "timestamp": int64(1764675000)},
			want:    time.Unix(1764675000, 0).UTC(),
			wantSet: true,
		},
		{
			name:    "epoch seconds as json number",
			record:  post.RawRecord{"id": "f", "timestamp": float64(1764675000)},
			want:    time.Unix(1764675000, 0).UTC(),
			wantSet: true,
		},
		{
			name:    "unparsable string",
			record:  post.RawRecord{"id": "g", "posted_at": "yesterday"},
			wantSet: false,
		},
		{
			name:    "missing",
			record:  post.RawRecord{"id": "h"},
			wantSet: false,
		},
	}

	normalizer := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, _ := normalizer.Normalize("rival", []post.RawRecord{tt.record})

			require.Len(t, posts, 1)
			assert.Equal(t, tt.wantSet, posts[0].HasTimestamp())
			if tt.wantSet {
				assert.True(t, posts[0].PostedAt.Equal(tt.want), "got %s", posts[0].PostedAt)
			}
		})
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		name   string
		record post.RawRecord
		want   *float64
	}{
		{"float seconds", post.RawRecord{"id": "a", "duration_seconds": 27.5}, ptrFloat(27.5)},
		{"int seconds", post.RawRecord{"id": "b", "duration": 45}, ptrFloat(45)},
		{"string seconds", post.RawRecord{"id": "c", "video_duration": "30"}, ptrFloat(30)},
		{"zero is valid", post.RawRecord{"id": "d", "duration_seconds": 0}, ptrFloat(0)},
		{"negative dropped", post.RawRecord{"id": "e", "duration_seconds": -2.0}, nil},
		{"missing", post.RawRecord{"id": "f"}, nil},
	}

	normalizer := NewNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, _ := normalizer.Normalize("rival", []post.RawRecord{tt.record})

			require.Len(t, posts, 1)
			if tt.want == nil {
				assert.Nil(t, posts[0].DurationSeconds)
				return
			}
			require.NotNil(t, posts[0].DurationSeconds)
			assert.InDelta(t, *tt.want, *posts[0].DurationSeconds, 1e-9)
		})
	}
}

func ptrFloat(v float64) *float64 {
	return &v
}
