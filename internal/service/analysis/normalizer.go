// internal/service/analysis/normalizer.go

package analysis

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"reelscope/internal/domain/post"
)

// Normalizer coerces raw source records into canonical PostRecords. It is the
// single place that deals with inconsistent field names and types; everything
// downstream sees the fixed schema.
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

var captionTagPattern = regexp.MustCompile(`#\w+`)

// Normalize converts one competitor's raw records into PostRecords. Records
// with no usable identity (no id and no caption) are dropped and counted, not
// treated as errors.
func (n *Normalizer) Normalize(handle string, records []post.RawRecord) ([]post.PostRecord, int) {
	posts := make([]post.PostRecord, 0, len(records))
	skipped := 0

	for _, record := range records {
		if record == nil {
			skipped++
			continue
		}

		id := stringField(record, "id", "post_id", "tweet_id")
		caption := stringField(record, "caption_text", "caption", "text")
		if id == "" && strings.TrimSpace(caption) == "" {
			skipped++
			continue
		}

		p := post.PostRecord{
			ID:               id,
			CompetitorHandle: handle,
			Caption:          caption,
			Hashtags:         collectHashtags(record, caption),
			PostedAt:         timeField(record, "posted_at", "created_at", "timestamp"),
			LikeCount:        intField(record, "like_count", "likes"),
			CommentCount:     intField(record, "comment_count", "comments", "replies", "reply_count"),
			ViewCount:        intField(record, "view_count", "views", "impressions", "plays"),
		}

		// Retweets and quote posts both count as shares when no explicit
		// share counter is present.
		if shares, ok := lookupInt(record, "share_count", "shares"); ok {
			p.ShareCount = shares
		} else {
			p.ShareCount = intField(record, "retweets") + intField(record, "quotes")
		}

		if d, ok := lookupFloat(record, "duration_seconds", "duration", "video_duration"); ok && d >= 0 {
			duration := d
			p.DurationSeconds = &duration
		}

		posts = append(posts, p)
	}

	return posts, skipped
}

// collectHashtags merges an explicit tag list with tags harvested from the
// caption, lowercased, deduplicated, and sorted.
func collectHashtags(record post.RawRecord, caption string) []string {
	seen := make(map[string]struct{})

	if raw, ok := record["hashtags"]; ok {
		switch tags := raw.(type) {
		case []string:
			for _, tag := range tags {
				addHashtag(seen, tag)
			}
		case []interface{}:
			for _, item := range tags {
				if tag, ok := item.(string); ok {
					addHashtag(seen, tag)
				}
			}
		}
	}

	for _, tag := range captionTagPattern.FindAllString(caption, -1) {
		addHashtag(seen, tag)
	}

	if len(seen) == 0 {
		return nil
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

func addHashtag(seen map[string]struct{}, tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.TrimPrefix(tag, "#")
	if tag == "" {
		return
	}
	seen["#"+tag] = struct{}{}
}

// Field coercion helpers. JSON decoding yields float64 for numbers, but
// sources also hand us ints and numeric strings.

func stringField(record post.RawRecord, keys ...string) string {
	for _, key := range keys {
		if raw, ok := record[key]; ok {
			if value, ok := raw.(string); ok && value != "" {
				return value
			}
		}
	}
	return ""
}

func lookupInt(record post.RawRecord, keys ...string) (int, bool) {
	if value, ok := lookupFloat(record, keys...); ok {
		return int(value), true
	}
	return 0, false
}

func intField(record post.RawRecord, keys ...string) int {
	value, _ := lookupInt(record, keys...)
	return value
}

func lookupFloat(record post.RawRecord, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := record[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case float64:
			return value, true
		case float32:
			return float64(value), true
		case int:
			return float64(value), true
		case int64:
			return float64(value), true
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeField parses the first recognizable timestamp. A zero time means the
// record is excluded from timing analysis but kept for everything else.
func timeField(record post.RawRecord, keys ...string) time.Time {
	for _, key := range keys {
		raw, ok := record[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case time.Time:
			return value
		case string:
			for _, layout := range timeLayouts {
				if parsed, err := time.Parse(layout, value); err == nil {
					return parsed
				}
			}
		case float64:
			if value > 0 {
				return time.Unix(int64(value), 0).UTC()
			}
		case int64:
			if value > 0 {
				return time.Unix(value, 0).UTC()
			}
		}
	}
	return time.Time{}
}
