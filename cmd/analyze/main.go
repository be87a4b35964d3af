// cmd/analyze/main.go

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"reelscope/internal/adapter/llm"
	"reelscope/internal/adapter/source"
	"reelscope/internal/config"
	"reelscope/internal/domain/insight"
	"reelscope/internal/domain/post"
	"reelscope/internal/service/analysis"
	insightService "reelscope/internal/service/insight"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "sample data JSON file; uses the Twitter API when empty")
		competitors = flag.String("competitors", "", "comma-separated competitor handles")
		seed        = flag.String("seed", "", "seed handle for competitor discovery")
		discover    = flag.Bool("discover", false, "extend the competitor list from accounts the seed follows")
		reels       = flag.Int("reels", 20, "posts to analyze per competitor")
		minCount    = flag.Int("min", 3, "competitor count below which the result carries a warning")
		outputPath  = flag.String("output", "-", "output file, - for stdout")
		ideas       = flag.Bool("ideas", false, "generate content ideas from the extracted patterns")
		pretty      = flag.Bool("pretty", false, "indent the output JSON")
		timeout     = flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, logger, runParams{
		inputPath:   *inputPath,
		competitors: *competitors,
		seed:        *seed,
		discover:    *discover,
		reels:       *reels,
		minCount:    *minCount,
		outputPath:  *outputPath,
		ideas:       *ideas,
		pretty:      *pretty,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Analysis failed")
	}
}

type runParams struct {
	inputPath   string
	competitors string
	seed        string
	discover    bool
	reels       int
	minCount    int
	outputPath  string
	ideas       bool
	pretty      bool
}

func run(ctx context.Context, logger zerolog.Logger, params runParams) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	postSource, discoverer, err := selectSource(logger, &cfg, params.inputPath)
	if err != nil {
		return err
	}

	handles, err := resolveHandles(ctx, postSource, discoverer, params)
	if err != nil {
		return err
	}
	logger.Info().Strs("handles", handles).Str("platform", postSource.Platform()).Msg("Analyzing competitors")

	records := make(map[string][]post.RawRecord, len(handles))
	for _, handle := range handles {
		fetched, err := postSource.FetchPosts(ctx, handle, params.reels)
		if err != nil {
			logger.Warn().Err(err).Str("handle", handle).Msg("Fetch failed, competitor excluded")
			continue
		}
		records[handle] = fetched
	}

	engine := analysis.NewEngine(logger, analysis.EngineConfig{
		Platform:         postSource.Platform(),
		TopHashtags:      cfg.Analysis.TopHashtags,
		MinBucketSamples: cfg.Analysis.MinBucketSamples,
		MaxWorkers:       cfg.Analysis.MaxWorkers,
		Weights: analysis.ScoreWeights{
			Comment: cfg.Analysis.CommentWeight,
			Share:   cfg.Analysis.ShareWeight,
		},
	})

	opts := insight.RunOptions{
		CompetitorUsernames: handles,
		ReelsPerCompetitor:  params.reels,
		MinCompetitors:      params.minCount,
		GenerateIdeas:       params.ideas,
	}

	agg, err := engine.Analyze(ctx, opts, records)
	if err != nil {
		return err
	}

	formatter := insightService.NewFormatter()
	doc := formatter.BuildDocument(agg)

	if params.ideas {
		var completionClient insightService.CompletionClient
		if cfg.Generator.APIKey != "" {
			completionClient = llm.NewClient(logger, llm.Config{
				APIKey:      cfg.Generator.APIKey,
				BaseURL:     cfg.Generator.BaseURL,
				Model:       cfg.Generator.Model,
				MaxTokens:   cfg.Generator.MaxTokens,
				Temperature: cfg.Generator.Temperature,
				Timeout:     cfg.Generator.Timeout,
			})
		}

		payload, err := formatter.BuildPayload(agg)
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping idea generation")
		} else {
			ideaService := insightService.NewIdeaService(logger, completionClient)
			generated, err := ideaService.Generate(ctx, *payload)
			if err != nil {
				logger.Warn().Err(err).Msg("Idea generation failed")
			} else {
				doc.ContentIdeas = generated
			}
		}
	}

	return writeDocument(doc, params.outputPath, params.pretty)
}

// selectSource picks the file source when an input path is given, the Twitter
// API otherwise.
func selectSource(logger zerolog.Logger, cfg *config.Config, inputPath string) (post.Source, post.Discoverer, error) {
	if inputPath != "" {
		fileSource, err := source.NewFileSource(inputPath)
		if err != nil {
			return nil, nil, err
		}
		return fileSource, fileSource, nil
	}

	if !cfg.Twitter.HasBearerAuth() && !cfg.Twitter.HasUserAuth() {
		return nil, nil, fmt.Errorf("no Twitter credentials configured, pass -input to analyze a sample file")
	}

	twitterSource, err := source.NewTwitterSource(logger, source.TwitterConfig{
		BearerToken:       cfg.Twitter.BearerToken,
		ConsumerKey:       cfg.Twitter.ConsumerKey,
		ConsumerSecret:    cfg.Twitter.ConsumerSecret,
		AccessToken:       cfg.Twitter.AccessToken,
		AccessSecret:      cfg.Twitter.AccessSecret,
		PageSize:          cfg.Twitter.PageSize,
		RequestsPerSecond: cfg.Twitter.RequestsPerSecond,
	})
	if err != nil {
		return nil, nil, err
	}

	return twitterSource, twitterSource, nil
}

// resolveHandles builds the competitor list from the flags, the source's own
// inventory, and discovery.
func resolveHandles(ctx context.Context, postSource post.Source, discoverer post.Discoverer, params runParams) ([]string, error) {
	seen := make(map[string]struct{})
	var handles []string

	add := func(raw string) {
		handle := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
		if handle == "" {
			return
		}
		if _, ok := seen[handle]; ok {
			return
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}

	for _, raw := range strings.Split(params.competitors, ",") {
		add(raw)
	}

	if params.discover && discoverer != nil && params.seed != "" {
		discovered, err := discoverer.DiscoverCompetitors(ctx, params.seed, 15)
		if err != nil {
			return nil, fmt.Errorf("error discovering competitors: %w", err)
		}
		for _, handle := range discovered {
			add(handle)
		}
	}

	// A file source can analyze its whole inventory when nothing was requested
	if len(handles) == 0 {
		if fileSource, ok := postSource.(*source.FileSource); ok {
			handles = fileSource.Handles()
		}
	}

	if len(handles) == 0 {
		return nil, fmt.Errorf("no competitors: pass -competitors or -seed with -discover")
	}

	return handles, nil
}

// writeDocument serializes the result to the output target
func writeDocument(doc insight.ResultDocument, outputPath string, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "-" || outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	return nil
}
