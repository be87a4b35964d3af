// internal/service/analysis/timing.go

package analysis

import (
	"fmt"
	"sort"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

// durationBucket is one duration range with an inclusive lower bound and an
// exclusive upper bound in seconds. A zero upper bound means unbounded.
type durationBucket struct {
	label string
	lower float64
	upper float64
}

var durationBuckets = []durationBucket{
	{label: "<15s", lower: 0, upper: 15},
	{label: "15-30s", lower: 15, upper: 30},
	{label: "30-60s", lower: 30, upper: 60},
	{label: ">60s", lower: 60, upper: 0},
}

type bucketAgg struct {
	count   int
	rateSum float64
}

// DayBuckets groups posts by weekday of their posting timestamp. Posts with no
// timestamp are left out. Buckets under minSamples posts are flagged rather
// than dropped.
func DayBuckets(posts []post.ScoredPost, minSamples int) []insight.BucketStat {
	buckets := make(map[string]*bucketAgg)
	for _, p := range posts {
		if !p.HasTimestamp() {
			continue
		}
		addToBucket(buckets, p.PostedAt.Weekday().String(), p.EngagementRate)
	}
	return sortBuckets(buckets, minSamples)
}

// HourBuckets groups posts by the hour of day of their posting timestamp,
// labelled "13:00" style. Posts with no timestamp are left out.
func HourBuckets(posts []post.ScoredPost, minSamples int) []insight.BucketStat {
	buckets := make(map[string]*bucketAgg)
	for _, p := range posts {
		if !p.HasTimestamp() {
			continue
		}
		addToBucket(buckets, fmt.Sprintf("%02d:00", p.PostedAt.Hour()), p.EngagementRate)
	}
	return sortBuckets(buckets, minSamples)
}

// DurationBucketStats groups posts into the fixed duration ranges. Posts
// without a known duration are left out.
func DurationBucketStats(posts []post.ScoredPost, minSamples int) []insight.BucketStat {
	buckets := make(map[string]*bucketAgg)
	for _, p := range posts {
		if p.DurationSeconds == nil {
			continue
		}
		addToBucket(buckets, durationLabel(*p.DurationSeconds), p.EngagementRate)
	}
	return sortBuckets(buckets, minSamples)
}

func durationLabel(seconds float64) string {
	for _, b := range durationBuckets {
		if seconds >= b.lower && (b.upper == 0 || seconds < b.upper) {
			return b.label
		}
	}
	return durationBuckets[len(durationBuckets)-1].label
}

func addToBucket(buckets map[string]*bucketAgg, label string, rate float64) {
	agg, ok := buckets[label]
	if !ok {
		agg = &bucketAgg{}
		buckets[label] = agg
	}
	agg.count++
	agg.rateSum += rate
}

// sortBuckets orders bucket stats by mean engagement descending, then post
// count, then label, flagging buckets under minSamples as low confidence.
func sortBuckets(buckets map[string]*bucketAgg, minSamples int) []insight.BucketStat {
	stats := make([]insight.BucketStat, 0, len(buckets))
	for label, agg := range buckets {
		stats = append(stats, insight.BucketStat{
			Label:             label,
			PostCount:         agg.count,
			AvgEngagementRate: agg.rateSum / float64(agg.count),
			LowConfidence:     agg.count < minSamples,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgEngagementRate != stats[j].AvgEngagementRate {
			return stats[i].AvgEngagementRate > stats[j].AvgEngagementRate
		}
		if stats[i].PostCount != stats[j].PostCount {
			return stats[i].PostCount > stats[j].PostCount
		}
		return stats[i].Label < stats[j].Label
	})

	return stats
}

// BestBucketLabel returns the label of the best bucket with enough samples,
// falling back to the overall best when every bucket is low confidence.
func BestBucketLabel(buckets []insight.BucketStat) string {
	for _, b := range buckets {
		if !b.LowConfidence {
			return b.Label
		}
	}
	if len(buckets) > 0 {
		return buckets[0].Label
	}
	return ""
}
