// internal/service/analysis/hashtags_test.go

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscope/internal/domain/post"
)

func tagged(rate float64, tags ...string) post.ScoredPost {
	return post.ScoredPost{
		PostRecord:     post.PostRecord{Hashtags: tags},
		EngagementRate: rate,
	}
}

func TestAnalyzeHashtagsFoldsCase(t *testing.T) {
	posts := []post.ScoredPost{
		tagged(10, "#fit"),
		tagged(6, "#FIT", "#gym"),
	}

	stats := AnalyzeHashtags(posts, 0)

	require.Len(t, stats, 2)

	assert.Equal(t, "#fit", stats[0].Hashtag)
	assert.Equal(t, 2, stats[0].Frequency)
	assert.InDelta(t, 8.0, stats[0].AvgEngagementRate, 1e-9)

	assert.Equal(t, "#gym", stats[1].Hashtag)
	assert.Equal(t, 1, stats[1].Frequency)
	assert.InDelta(t, 6.0, stats[1].AvgEngagementRate, 1e-9)
}

func TestAnalyzeHashtagsTieBreaks(t *testing.T) {
	posts := []post.ScoredPost{
		tagged(9, "#alpha"),
		tagged(5, "#bravo"),
		tagged(5, "#delta", "#charlie"),
	}

	stats := AnalyzeHashtags(posts, 0)

	require.Len(t, stats, 4)
	assert.Equal(t, "#alpha", stats[0].Hashtag)
	assert.Equal(t, "#bravo", stats[1].Hashtag)
	assert.Equal(t, "#charlie", stats[2].Hashtag)
	assert.Equal(t, "#delta", stats[3].Hashtag)
}

func TestAnalyzeHashtagsTopKCut(t *testing.T) {
	posts := []post.ScoredPost{
		tagged(4, "#a", "#b", "#c", "#d", "#e"),
		tagged(8, "#a", "#b"),
	}

	stats := AnalyzeHashtags(posts, 2)

	require.Len(t, stats, 2)
	assert.Equal(t, "#a", stats[0].Hashtag)
	assert.Equal(t, 2, stats[0].Frequency)
	assert.Equal(t, "#b", stats[1].Hashtag)
}

func TestAnalyzeHashtagsNormalizesBareTags(t *testing.T) {
	posts := []post.ScoredPost{
		tagged(5, "protein", " #Cardio ", "#", ""),
	}

	stats := AnalyzeHashtags(posts, 0)

	require.Len(t, stats, 2)
	assert.Equal(t, "#cardio", stats[0].Hashtag)
	assert.Equal(t, "#protein", stats[1].Hashtag)
}

func TestAnalyzeHashtagsEmpty(t *testing.T) {
	assert.Empty(t, AnalyzeHashtags(nil, 10))
	assert.Empty(t, AnalyzeHashtags([]post.ScoredPost{{EngagementRate: 3}}, 10))
}
