// internal/service/analysis/ranking_test.go

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscope/internal/domain/post"
)

func scored(id string, rate float64, postedAt time.Time) post.ScoredPost {
	return post.ScoredPost{
		PostRecord:     post.PostRecord{ID: id, PostedAt: postedAt},
		EngagementRate: rate,
	}
}

func TestRankPostsOrdersByEngagementRate(t *testing.T) {
	day := time.Date(2026, 7, 6, 12, 0, 0, 0, time.UTC)
	posts := []post.ScoredPost{
		scored("post1", 13.5, day),
		scored("post2", 3.3, day),
		scored("post3", 54.0, day),
	}

	ranked := RankPosts(posts, 0)

	require.Len(t, ranked, 3)
	assert.Equal(t, "post3", ranked[0].ID)
	assert.Equal(t, "post1", ranked[1].ID)
	assert.Equal(t, "post2", ranked[2].ID)
}

func TestRankPostsTieBreaksOnRecencyThenID(t *testing.T) {
	older := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 7, 5, 9, 0, 0, 0, time.UTC)

	posts := []post.ScoredPost{
		scored("b", 10, older),
		scored("a", 10, newer),
		scored("c", 10, newer),
	}

	ranked := RankPosts(posts, 0)

	require.Len(t, ranked, 3)
	// Same rate: the newer post wins, then the lexicographically smaller ID
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "c", ranked[1].ID)
	assert.Equal(t, "b", ranked[2].ID)
}

func TestRankPostsLimit(t *testing.T) {
	day := time.Date(2026, 7, 6, 12, 0, 0, 0, time.UTC)
	posts := []post.ScoredPost{
		scored("a", 1, day),
		scored("b", 2, day),
		scored("c", 3, day),
		scored("d", 4, day),
	}

	ranked := RankPosts(posts, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "d", ranked[0].ID)
	assert.Equal(t, "c", ranked[1].ID)
}

func TestRankPostsDoesNotMutateInput(t *testing.T) {
	day := time.Date(2026, 7, 6, 12, 0, 0, 0, time.UTC)
	posts := []post.ScoredPost{
		scored("a", 1, day),
		scored("b", 2, day),
	}

	_ = RankPosts(posts, 0)

	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "b", posts[1].ID)
}

func TestRankPostsEmpty(t *testing.T) {
	assert.Empty(t, RankPosts(nil, 5))
}
