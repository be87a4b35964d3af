// internal/adapter/source/twitter.go

// Package source provides post.Source implementations for the supported
// platforms.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"reelscope/internal/domain/post"
)

const (
	twitterHost        = "https://api.twitter.com"
	minTimelinePage    = 5
	maxTimelinePage    = 100
	maxFollowingLookup = 100
)

// authorizer sets the bearer token on outgoing requests. It stays empty when
// an OAuth1 client signs the requests instead.
type authorizer struct {
	token string
}

func (a authorizer) Add(req *http.Request) {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
}

// TwitterConfig holds the Twitter API credentials and fetch settings. Either
// the bearer token or the full OAuth1 credential set must be present.
type TwitterConfig struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessSecret      string
	PageSize          int
	RequestsPerSecond float64
}

// TwitterSource fetches recent posts from the Twitter v2 API. All requests
// pass through a shared rate limiter sized for the API's per-app quota.
type TwitterSource struct {
	logger  zerolog.Logger
	client  *twitter.Client
	limiter *rate.Limiter
	config  TwitterConfig
}

// NewTwitterSource creates a Twitter-backed post source
func NewTwitterSource(logger zerolog.Logger, config TwitterConfig) (*TwitterSource, error) {
	if config.PageSize <= 0 {
		config.PageSize = maxTimelinePage
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1
	}

	httpClient := http.DefaultClient
	auth := authorizer{token: config.BearerToken}

	switch {
	case config.ConsumerKey != "" && config.ConsumerSecret != "" && config.AccessToken != "" && config.AccessSecret != "":
		oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
		token := oauth1.NewToken(config.AccessToken, config.AccessSecret)
		httpClient = oauthConfig.Client(oauth1.NoContext, token)
		auth = authorizer{}
	case config.BearerToken != "":
	default:
		return nil, fmt.Errorf("twitter credentials missing: set a bearer token or the OAuth1 key set")
	}

	return &TwitterSource{
		logger: logger.With().Str("component", "twitter_source").Logger(),
		client: &twitter.Client{
			Authorizer: auth,
			Client:     httpClient,
			Host:       twitterHost,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		config:  config,
	}, nil
}

// Platform identifies this source's platform
func (s *TwitterSource) Platform() string {
	return "twitter"
}

// FetchPosts returns up to limit recent original posts for a handle, paging
// through the user timeline. Retweets and replies are excluded at the API.
func (s *TwitterSource) FetchPosts(ctx context.Context, handle string, limit int) ([]post.RawRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	userID, err := s.lookupUserID(ctx, handle)
	if err != nil {
		return nil, err
	}

	pageSize := limit
	if pageSize > s.config.PageSize {
		pageSize = s.config.PageSize
	}
	if pageSize > maxTimelinePage {
		pageSize = maxTimelinePage
	}
	if pageSize < minTimelinePage {
		pageSize = minTimelinePage
	}

	var records []post.RawRecord
	paginationToken := ""

	for len(records) < limit {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		opts := twitter.UserTweetTimelineOpts{
			MaxResults: pageSize,
			Excludes:   []twitter.Exclude{twitter.ExcludeRetweets, twitter.ExcludeReplies},
			TweetFields: []twitter.TweetField{
				twitter.TweetFieldPublicMetrics,
				twitter.TweetFieldCreatedAt,
				twitter.TweetFieldEntities,
			},
			PaginationToken: paginationToken,
		}

		timeline, err := s.client.UserTweetTimeline(ctx, userID, opts)
		if err != nil {
			return nil, fmt.Errorf("error fetching timeline for %s: %w", handle, err)
		}
		if timeline.Raw == nil || len(timeline.Raw.Tweets) == 0 {
			break
		}

		for _, tweet := range timeline.Raw.Tweets {
			records = append(records, tweetRecord(tweet))
		}

		if timeline.Meta == nil || timeline.Meta.NextToken == "" {
			break
		}
		paginationToken = timeline.Meta.NextToken
	}

	if len(records) > limit {
		records = records[:limit]
	}

	s.logger.Debug().Str("handle", handle).Int("fetched", len(records)).Msg("Timeline fetched")

	return records, nil
}

// DiscoverCompetitors returns handles the seed account follows
func (s *TwitterSource) DiscoverCompetitors(ctx context.Context, seedHandle string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	userID, err := s.lookupUserID(ctx, seedHandle)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	maxResults := limit
	if maxResults > maxFollowingLookup {
		maxResults = maxFollowingLookup
	}

	following, err := s.client.UserFollowingLookup(ctx, userID, twitter.UserFollowingLookupOpts{
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching accounts followed by %s: %w", seedHandle, err)
	}
	if following.Raw == nil {
		return nil, nil
	}

	handles := make([]string, 0, len(following.Raw.Users))
	for _, user := range following.Raw.Users {
		if user == nil || user.UserName == "" {
			continue
		}
		handles = append(handles, strings.ToLower(user.UserName))
		if len(handles) >= limit {
			break
		}
	}

	return handles, nil
}

// lookupUserID resolves a handle to the numeric user ID
func (s *TwitterSource) lookupUserID(ctx context.Context, handle string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	lookup, err := s.client.UserNameLookup(ctx, []string{handle}, twitter.UserLookupOpts{})
	if err != nil {
		return "", fmt.Errorf("error looking up user %s: %w", handle, err)
	}
	if lookup.Raw == nil || len(lookup.Raw.Users) == 0 || lookup.Raw.Users[0].ID == "" {
		return "", fmt.Errorf("user %s not found", handle)
	}

	return lookup.Raw.Users[0].ID, nil
}

// tweetRecord maps one tweet into the neutral raw record shape the normalizer
// accepts. Retweet and quote counts are carried separately so normalization
// can sum them into shares.
func tweetRecord(tweet *twitter.TweetObj) post.RawRecord {
	record := post.RawRecord{
		"id":   tweet.ID,
		"text": tweet.Text,
	}

	if tweet.CreatedAt != "" {
		record["created_at"] = tweet.CreatedAt
	}

	if tweet.PublicMetrics != nil {
		record["likes"] = tweet.PublicMetrics.Likes
		record["replies"] = tweet.PublicMetrics.Replies
		record["retweets"] = tweet.PublicMetrics.Retweets
		record["quotes"] = tweet.PublicMetrics.Quotes
		record["impressions"] = tweet.PublicMetrics.Impressions
	}

	if tweet.Entities != nil && len(tweet.Entities.HashTags) > 0 {
		tags := make([]string, 0, len(tweet.Entities.HashTags))
		for _, tag := range tweet.Entities.HashTags {
			tags = append(tags, tag.Tag)
		}
		record["hashtags"] = tags
	}

	return record
}
