// internal/service/analysis/characteristics.go

package analysis

import (
	"strings"
	"unicode/utf8"

	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
)

// containsEmoji reports whether the text holds at least one rune in the emoji
// blocks, covering pictographs and the dingbat and symbol ranges.
func containsEmoji(text string) bool {
	for _, r := range text {
		if (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) {
			return true
		}
	}
	return false
}

// AnalyzeCaptionTraits profiles the writing style and raw interaction counts
// of a post set.
func AnalyzeCaptionTraits(posts []post.ScoredPost) insight.CaptionTraits {
	if len(posts) == 0 {
		return insight.CaptionTraits{}
	}

	var (
		questions      int
		withEmoji      int
		multiParagraph int
		runeTotal      int
		likeTotal      int
		shareTotal     int
	)

	for _, p := range posts {
		if strings.Contains(p.Caption, "?") {
			questions++
		}
		if containsEmoji(p.Caption) {
			withEmoji++
		}
		if strings.Contains(p.Caption, "\n\n") {
			multiParagraph++
		}
		runeTotal += utf8.RuneCountInString(p.Caption)
		likeTotal += p.LikeCount
		shareTotal += p.ShareCount
	}

	n := float64(len(posts))
	shareFloor := shareTotal
	if shareFloor < 1 {
		shareFloor = 1
	}

	return insight.CaptionTraits{
		SampledPosts:        len(posts),
		QuestionShare:       float64(questions) / n,
		EmojiShare:          float64(withEmoji) / n,
		MultiParagraphShare: float64(multiParagraph) / n,
		AvgCaptionLength:    float64(runeTotal) / n,
		AvgLikes:            float64(likeTotal) / n,
		AvgShares:           float64(shareTotal) / n,
		LikeToShareRatio:    float64(likeTotal) / float64(shareFloor),
	}
}
