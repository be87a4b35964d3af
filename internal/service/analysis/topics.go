// internal/service/analysis/topics.go

package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

// maxRelatedKeywords bounds the co-occurring keywords attached to a theme
const maxRelatedKeywords = 4

// minKeywordLength is the shortest token counted as a keyword, in runes
const minKeywordLength = 4

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	taggedPattern  = regexp.MustCompile(`[#@]\w+`)
	topicStopwords = map[string]struct{}{
		"this": {}, "that": {}, "these": {}, "those": {}, "what": {}, "when": {},
		"where": {}, "which": {}, "while": {}, "with": {}, "without": {}, "would": {},
		"could": {}, "should": {}, "about": {}, "after": {}, "again": {}, "against": {},
		"because": {}, "been": {}, "before": {}, "being": {}, "between": {}, "both": {},
		"down": {}, "during": {}, "each": {}, "from": {}, "have": {}, "having": {},
		"here": {}, "into": {}, "just": {}, "more": {}, "most": {}, "only": {},
		"other": {}, "over": {}, "same": {}, "some": {}, "such": {}, "than": {},
		"then": {}, "there": {}, "they": {}, "them": {}, "their": {}, "through": {},
		"under": {}, "until": {}, "very": {}, "were": {}, "your": {}, "yours": {},
		"ours": {}, "will": {}, "wont": {}, "dont": {}, "doesnt": {}, "didnt": {},
		"cant": {}, "youre": {}, "youve": {}, "theyre": {}, "weve": {}, "thats": {},
		"like": {}, "make": {}, "made": {}, "want": {}, "need": {}, "know": {},
		"really": {}, "going": {}, "every": {}, "everyone": {}, "people": {},
		"things": {}, "thing": {}, "does": {}, "doing": {}, "done": {},
	}
)

// captionKeywords returns the distinct keywords of one caption, lowercased,
// with URLs, hashtags, and mentions stripped and stopwords dropped.
func captionKeywords(caption string) []string {
	text := urlPattern.ReplaceAllString(caption, " ")
	text = taggedPattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	var keywords []string
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < minKeywordLength {
			continue
		}
		if _, ok := topicStopwords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

// AnalyzeTopics clusters caption keywords into themes. Keywords are counted
// once per post, the most frequent unclaimed keyword seeds each theme, and its
// strongest co-occurring keywords are folded in as related terms so they do
// not surface as separate themes. A positive maxThemes cuts the result.
func AnalyzeTopics(posts []post.ScoredPost, maxThemes int) []insight.TopicTheme {
	wordCounts := make(map[string]int)
	pairCounts := make(map[string]map[string]int)

	for _, p := range posts {
		keywords := captionKeywords(p.Caption)
		for _, word := range keywords {
			wordCounts[word]++
		}
		for i, a := range keywords {
			for _, b := range keywords[i+1:] {
				addPair(pairCounts, a, b)
				addPair(pairCounts, b, a)
			}
		}
	}

	order := make([]string, 0, len(wordCounts))
	for word := range wordCounts {
		order = append(order, word)
	}
	sort.Slice(order, func(i, j int) bool {
		if wordCounts[order[i]] != wordCounts[order[j]] {
			return wordCounts[order[i]] > wordCounts[order[j]]
		}
		return order[i] < order[j]
	})

	claimed := make(map[string]struct{})
	var themes []insight.TopicTheme
	for _, word := range order {
		if _, ok := claimed[word]; ok {
			continue
		}
		claimed[word] = struct{}{}

		related := relatedKeywords(pairCounts[word], claimed)
		for _, keyword := range related {
			claimed[keyword] = struct{}{}
		}

		themes = append(themes, insight.TopicTheme{
			Theme:           word,
			Frequency:       wordCounts[word],
			RelatedKeywords: related,
		})

		if maxThemes > 0 && len(themes) >= maxThemes {
			break
		}
	}

	return themes
}

func addPair(pairCounts map[string]map[string]int, a, b string) {
	pairs, ok := pairCounts[a]
	if !ok {
		pairs = make(map[string]int)
		pairCounts[a] = pairs
	}
	pairs[b]++
}

// relatedKeywords picks the strongest unclaimed co-occurring keywords, by pair
// count then lexicographically.
func relatedKeywords(pairs map[string]int, claimed map[string]struct{}) []string {
	candidates := make([]string, 0, len(pairs))
	for word := range pairs {
		if _, ok := claimed[word]; ok {
			continue
		}
		candidates = append(candidates, word)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if pairs[candidates[i]] != pairs[candidates[j]] {
			return pairs[candidates[i]] > pairs[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > maxRelatedKeywords {
		candidates = candidates[:maxRelatedKeywords]
	}

	return candidates
}
