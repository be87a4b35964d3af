// internal/service/insight/ideas.go

package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"reelscope/internal/domain/insight"
)

// CompletionClient is the consumer-side contract for a generative model. A
// single prompt goes in, the raw completion text comes out.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IdeaService turns a prompt payload into content ideas. When no model client
// is configured, or the model output cannot be parsed, it falls back to ideas
// templated from the extracted patterns so a run always produces suggestions.
type IdeaService struct {
	logger zerolog.Logger
	client CompletionClient
}

// NewIdeaService creates an idea service. A nil client selects the fallback.
func NewIdeaService(logger zerolog.Logger, client CompletionClient) *IdeaService {
	return &IdeaService{
		logger: logger.With().Str("component", "idea_service").Logger(),
		client: client,
	}
}

// Generate returns content ideas for the payload
func (s *IdeaService) Generate(ctx context.Context, payload insight.PromptPayload) (*insight.ContentIdeas, error) {
	if s.client == nil {
		return s.fallbackIdeas(payload), nil
	}

	prompt, err := buildPrompt(payload)
	if err != nil {
		return nil, fmt.Errorf("error building prompt: %w", err)
	}

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("Model request failed, using fallback ideas")
		return s.fallbackIdeas(payload), nil
	}

	ideas, err := parseIdeas(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Model output unusable, using fallback ideas")
		return s.fallbackIdeas(payload), nil
	}

	ideas.GenerationSource = "model"
	return ideas, nil
}

// buildPrompt renders the instruction block with the payload as JSON
func buildPrompt(payload insight.PromptPayload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a short-form video strategist. The JSON below summarizes engagement patterns ")
	b.WriteString("extracted from competitor accounts on ")
	b.WriteString(payload.Platform)
	b.WriteString(".\n\n")
	b.Write(data)
	b.WriteString("\n\nUsing these patterns, respond with a single JSON object and nothing else, shaped as:\n")
	b.WriteString(`{"reel_ideas": ["..."], "hook_ideas": ["..."], "strategy_insights": ["..."]}`)
	b.WriteString("\n\nProvide 8 reel_ideas (concrete video concepts), 6 hook_ideas (opening lines ready to use), ")
	b.WriteString("and 4 strategy_insights (posting and format recommendations grounded in the data).")

	return b.String(), nil
}

// parseIdeas extracts the JSON object from a model completion, tolerating
// surrounding prose and markdown fences.
func parseIdeas(raw string) (*insight.ContentIdeas, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion")
	}

	var parsed struct {
		ReelIdeas        []string `json:"reel_ideas"`
		HookIdeas        []string `json:"hook_ideas"`
		StrategyInsights []string `json:"strategy_insights"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("error parsing completion: %w", err)
	}

	if len(parsed.ReelIdeas) == 0 && len(parsed.HookIdeas) == 0 && len(parsed.StrategyInsights) == 0 {
		return nil, fmt.Errorf("completion contains no ideas")
	}

	return &insight.ContentIdeas{
		ReelIdeas:        parsed.ReelIdeas,
		HookIdeas:        parsed.HookIdeas,
		StrategyInsights: parsed.StrategyInsights,
	}, nil
}

// fallbackIdeas templates suggestions directly from the extracted patterns
func (s *IdeaService) fallbackIdeas(payload insight.PromptPayload) *insight.ContentIdeas {
	topHashtag := "#trending"
	if len(payload.TopHashtags) > 0 {
		topHashtag = payload.TopHashtags[0].Hashtag
	}

	theme := "your niche"
	if len(payload.TopicThemes) > 0 {
		theme = payload.TopicThemes[0].Theme
	}

	duration := payload.OptimalDuration
	if duration == "" {
		duration = "15-30s"
	}

	bestDay := "weekdays"
	if len(payload.BestPostingDays) > 0 {
		bestDay = payload.BestPostingDays[0].Label
	}

	bestHour := "peak hours"
	if len(payload.BestPostingHours) > 0 {
		bestHour = payload.BestPostingHours[0].Label
	}

	ideas := &insight.ContentIdeas{
		ReelIdeas: []string{
			fmt.Sprintf("A %s breakdown of the biggest misconception about %s", duration, theme),
			fmt.Sprintf("Before-and-after results story built around %s, tagged %s", theme, topHashtag),
			fmt.Sprintf("Three rapid-fire tips on %s, one per scene cut", theme),
			fmt.Sprintf("Reply to the most common audience question about %s on camera", theme),
			fmt.Sprintf("A day-in-the-life clip showing how %s fits into a real routine", theme),
			fmt.Sprintf("Side-by-side comparison of two approaches to %s with a clear winner", theme),
			fmt.Sprintf("React to a trending take on %s and give your counterpoint", theme),
			fmt.Sprintf("Show one surprising statistic about %s and unpack it in %s", theme, duration),
		},
		HookIdeas: []string{
			fmt.Sprintf("Most people get %s completely wrong", theme),
			fmt.Sprintf("I tried %s every day for 30 days", theme),
			fmt.Sprintf("The one thing nobody tells you about %s", theme),
			fmt.Sprintf("Stop doing this if you care about %s", theme),
			fmt.Sprintf("How I turned %s into my biggest win this year", theme),
			fmt.Sprintf("3 signs you are doing %s wrong", theme),
		},
		StrategyInsights: []string{
			fmt.Sprintf("Videos in the %s range carry the strongest engagement, so plan scripts to that length", duration),
			fmt.Sprintf("%s around %s is the highest-engagement posting window in this data", bestDay, bestHour),
			"Lead captions with a question or a concrete number, the strongest hook categories in this analysis",
			fmt.Sprintf("Keep %s in rotation, it is the most used tag among the analyzed accounts", topHashtag),
		},
		GenerationSource: "fallback",
	}

	return ideas
}
