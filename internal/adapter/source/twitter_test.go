// internal/adapter/source/twitter_test.go

package source

import (
	"net/http"
	"net/http/httptest"
	"testing"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetRecordMapsAllFields(t *testing.T) {
	tweet := &twitter.TweetObj{
		ID:        "1811000000000000001",
		Text:      "The protein math nobody shows you #nutrition",
		CreatedAt: "2026-07-07T15:30:00Z",
		PublicMetrics: &twitter.TweetMetricsObj{
			Likes:       3200,
			Replies:     280,
			Retweets:    410,
			Quotes:      90,
			Impressions: 88000,
		},
		Entities: &twitter.EntitiesObj{
			HashTags: []twitter.EntityTagObj{{Tag: "nutrition"}},
		},
	}

	record := tweetRecord(tweet)

	assert.Equal(t, "1811000000000000001", record["id"])
	assert.Equal(t, "The protein math nobody shows you #nutrition", record["text"])
	assert.Equal(t, "2026-07-07T15:30:00Z", record["created_at"])
	assert.Equal(t, 3200, record["likes"])
	assert.Equal(t, 280, record["replies"])
	assert.Equal(t, 410, record["retweets"])
	assert.Equal(t, 90, record["quotes"])
	assert.Equal(t, 88000, record["impressions"])
	assert.Equal(t, []string{"nutrition"}, record["hashtags"])
}

func TestTweetRecordWithoutOptionalFields(t *testing.T) {
	record := tweetRecord(&twitter.TweetObj{ID: "42", Text: "plain post"})

	assert.Equal(t, "42", record["id"])
	assert.Equal(t, "plain post", record["text"])
	assert.NotContains(t, record, "created_at")
	assert.NotContains(t, record, "likes")
	assert.NotContains(t, record, "hashtags")
}

func TestTweetRecordEmptyEntities(t *testing.T) {
	record := tweetRecord(&twitter.TweetObj{
		ID:       "43",
		Text:     "no tags here",
		Entities: &twitter.EntitiesObj{},
	})

	assert.NotContains(t, record, "hashtags")
}

func TestAuthorizerAddsBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.twitter.com/2/users", nil)

	authorizer{token: "tok-123"}.Add(req)

	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
}

func TestAuthorizerEmptyTokenLeavesRequestAlone(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://api.twitter.com/2/users", nil)

	authorizer{}.Add(req)

	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewTwitterSourceCredentialModes(t *testing.T) {
	tests := []struct {
		name    string
		config  TwitterConfig
		wantErr bool
	}{
		{
			name:    "bearer token only",
			config:  TwitterConfig{BearerToken: "bearer"},
			wantErr: false,
		},
		{
			name: "full oauth1 set",
			config: TwitterConfig{
				ConsumerKey:    "ck",
				ConsumerSecret: "cs",
				AccessToken:    "at",
				AccessSecret:   "as",
			},
			wantErr: false,
		},
		{
			name:    "no credentials",
			config:  TwitterConfig{},
			wantErr: true,
		},
		{
			name:    "partial oauth1 without bearer",
			config:  TwitterConfig{ConsumerKey: "ck", ConsumerSecret: "cs"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewTwitterSource(zerolog.Nop(), tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "twitter credentials missing")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "twitter", s.Platform())
		})
	}
}

func TestNewTwitterSourceFillsDefaults(t *testing.T) {
	s, err := NewTwitterSource(zerolog.Nop(), TwitterConfig{BearerToken: "bearer"})

	require.NoError(t, err)
	assert.Equal(t, maxTimelinePage, s.config.PageSize)
	assert.InDelta(t, 1.0, s.config.RequestsPerSecond, 1e-9)
}
