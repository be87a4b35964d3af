// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"reelscope/internal/adapter/llm"
	"reelscope/internal/adapter/source"
	"reelscope/internal/adapter/storage"
	"reelscope/internal/config"
	"reelscope/internal/domain/post"
	"reelscope/internal/metrics"
	"reelscope/internal/server"
	"reelscope/internal/service/analysis"
	insightService "reelscope/internal/service/insight"
)

func main() {
	// Load .env if present, real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	natsConn, err := initNATS(logger, cfg.NATS)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer natsConn.Close()

	// Initialize the post source
	postSource, discoverer, err := initSource(logger, &cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize post source")
	}

	// Initialize storage adapters
	runStore := storage.NewRunStore(db)

	// Initialize metrics
	m := metrics.New()

	// Initialize the analysis engine
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

	// Initialize the formatter and idea generation
	formatter := insightService.NewFormatter()

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
	} else {
		logger.Warn().Msg("No generator API key configured, content ideas will use the static fallback")
	}
	ideaService := insightService.NewIdeaService(logger, completionClient)

	// Initialize the run coordinator
	runner := analysis.NewRunner(
		logger,
		postSource,
		discoverer,
		engine,
		formatter,
		ideaService,
		runStore,
		natsConn,
		m,
		analysis.RunnerConfig{
			EventsTopic:    cfg.Analysis.EventsTopic,
			MaxCompetitors: cfg.Analysis.MaxCompetitors,
			RunTimeout:     cfg.Analysis.RunTimeout,
		},
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		runner,
		cfg.Analysis.EventsTopic,
		m.Handler(),
	)

	// Start HTTP server
	go func() {
		logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info().Msg("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if err := runner.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Run coordinator shutdown error")
	}

	logger.Info().Msg("Shutdown complete")
}

// newLogger builds the process logger from configuration
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	return logger
}

// initSource selects the post source: the Twitter API when credentials are
// configured, otherwise the sample data file.
func initSource(logger zerolog.Logger, cfg *config.Config) (post.Source, post.Discoverer, error) {
	if cfg.Twitter.HasBearerAuth() || cfg.Twitter.HasUserAuth() {
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

	if cfg.Analysis.SampleDataPath != "" {
		fileSource, err := source.NewFileSource(cfg.Analysis.SampleDataPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Warn().Str("path", cfg.Analysis.SampleDataPath).Msg("No Twitter credentials configured, serving sample data")
		return fileSource, fileSource, nil
	}

	return nil, nil, fmt.Errorf("no post source configured: set Twitter credentials or ANALYSIS_SAMPLE_DATA")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(logger zerolog.Logger, cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
