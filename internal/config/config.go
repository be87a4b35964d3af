// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Analysis    AnalysisConfig
	Twitter     TwitterConfig
	Generator   GeneratorConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// AnalysisConfig holds pattern analysis configuration
type AnalysisConfig struct {
	ReelsPerCompetitor int
	MinCompetitors     int
	MaxCompetitors     int
	CommentWeight      float64
	ShareWeight        float64
	MinBucketSamples   int
	TopHashtags        int
	MaxWorkers         int
	RunTimeout         time.Duration
	EventsTopic        string
	SampleDataPath     string
}

// TwitterConfig holds twitter source configuration
type TwitterConfig struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessSecret      string
	PageSize          int
	RequestsPerSecond float64
}

// HasBearerAuth reports whether app-only auth is configured
func (c TwitterConfig) HasBearerAuth() bool {
	return c.BearerToken != ""
}

// HasUserAuth reports whether OAuth1 user-context auth is configured
func (c TwitterConfig) HasUserAuth() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessSecret != ""
}

// GeneratorConfig holds generative-model client configuration
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "reelscope"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Analysis: AnalysisConfig{
			ReelsPerCompetitor: getEnvAsInt("ANALYSIS_REELS_PER_COMPETITOR", 20),
			MinCompetitors:     getEnvAsInt("ANALYSIS_MIN_COMPETITORS", 3),
			MaxCompetitors:     getEnvAsInt("ANALYSIS_MAX_COMPETITORS", 15),
			CommentWeight:      getEnvAsFloat("ANALYSIS_COMMENT_WEIGHT", 2.0),
			ShareWeight:        getEnvAsFloat("ANALYSIS_SHARE_WEIGHT", 3.0),
			MinBucketSamples:   getEnvAsInt("ANALYSIS_MIN_BUCKET_SAMPLES", 3),
			TopHashtags:        getEnvAsInt("ANALYSIS_TOP_HASHTAGS", 10),
			MaxWorkers:         getEnvAsInt("ANALYSIS_MAX_WORKERS", 4),
			RunTimeout:         getEnvAsDuration("ANALYSIS_RUN_TIMEOUT", 5*time.Minute),
			EventsTopic:        getEnv("ANALYSIS_EVENTS_TOPIC", "analysis"),
			SampleDataPath:     getEnv("ANALYSIS_SAMPLE_DATA", ""),
		},
		Twitter: TwitterConfig{
			BearerToken:       getEnv("TWITTER_BEARER_TOKEN", ""),
			ConsumerKey:       getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret:    getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret:      getEnv("TWITTER_ACCESS_SECRET", ""),
			PageSize:          getEnvAsInt("TWITTER_PAGE_SIZE", 100),
			RequestsPerSecond: getEnvAsFloat("TWITTER_REQUESTS_PER_SECOND", 1.0),
		},
		Generator: GeneratorConfig{
			APIKey:      getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnv("OPENROUTER_MODEL", "anthropic/claude-3-haiku"),
			MaxTokens:   getEnvAsInt("OPENROUTER_MAX_TOKENS", 2000),
			Temperature: getEnvAsFloat("OPENROUTER_TEMPERATURE", 0.8),
			Timeout:     getEnvAsDuration("OPENROUTER_TIMEOUT", 60*time.Second),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Analysis.ReelsPerCompetitor < 1 {
		return fmt.Errorf("ANALYSIS_REELS_PER_COMPETITOR must be at least 1")
	}
	if config.Analysis.MinCompetitors < 1 {
		return fmt.Errorf("ANALYSIS_MIN_COMPETITORS must be at least 1")
	}
	if config.Analysis.MaxCompetitors < config.Analysis.MinCompetitors {
		return fmt.Errorf("ANALYSIS_MAX_COMPETITORS must not be below ANALYSIS_MIN_COMPETITORS")
	}
	if config.Analysis.CommentWeight < 0 || config.Analysis.ShareWeight < 0 {
		return fmt.Errorf("engagement weights must not be negative")
	}
	if config.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("ANALYSIS_MAX_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
