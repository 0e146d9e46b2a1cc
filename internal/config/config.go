package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Store
	StoreBackend  string // "bolt" (embedded, default) or "neo4j"
	DatabaseFile  string // $CONFIG_DIR/moviegraph.db (bolt backend)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// TMDB
	TMDBBaseURL     string
	TMDBAccessToken string

	// Auth provider
	UserInfoEndpoint string

	// Completeness: which heavy facets a cached movie must have before it is
	// served without a refetch. The cheap field checks are always on.
	RequireCredits   bool
	RequireTrailers  bool
	RequireBackdrops bool

	// Thresholds
	PopularityPercentileStart int // default 90
	PopularityPercentileFloor int // default 50
	PopularityPercentileStep  int // default 10
	PopularMinResults         int // default 10
	VoteCountPercentile       int // default 80
	AdjustedScorePercentile   int // default 90

	// Background jobs
	IMDbBackfillEnabled        bool
	IMDbBackfillIntervalHours  int
	IMDbBackfillBaseDelayMs    int
	RTBackfillEnabled          bool
	RTBackfillIntervalHours    int
	RTBackfillBaseDelayMs      int
	CompletionSweepEnabled     bool
	CompletionSweepIntervalHrs int

	// Scrape delay jitter windows (milliseconds)
	PeakJitterMs    int
	OffPeakJitterMs int
	PeakHourStart   int // local hour, inclusive
	PeakHourEnd     int // local hour, inclusive

	// Server
	ServerPort string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("STORE_BACKEND", "bolt")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("REQUIRE_CREDITS", true)
	viper.SetDefault("REQUIRE_TRAILERS", true)
	viper.SetDefault("REQUIRE_BACKDROPS", true)

	viper.SetDefault("POPULARITY_PERCENTILE_START", 90)
	viper.SetDefault("POPULARITY_PERCENTILE_FLOOR", 50)
	viper.SetDefault("POPULARITY_PERCENTILE_STEP", 10)
	viper.SetDefault("POPULAR_MIN_RESULTS", 10)
	viper.SetDefault("VOTE_COUNT_PERCENTILE", 80)
	viper.SetDefault("ADJUSTED_SCORE_PERCENTILE", 90)

	viper.SetDefault("IMDB_BACKFILL_ENABLED", true)
	viper.SetDefault("IMDB_BACKFILL_INTERVAL_HOURS", 24)
	viper.SetDefault("IMDB_BACKFILL_BASE_DELAY_MS", 10000)
	viper.SetDefault("RT_BACKFILL_ENABLED", true)
	viper.SetDefault("RT_BACKFILL_INTERVAL_HOURS", 24)
	viper.SetDefault("RT_BACKFILL_BASE_DELAY_MS", 10000)
	viper.SetDefault("COMPLETION_SWEEP_ENABLED", true)
	viper.SetDefault("COMPLETION_SWEEP_INTERVAL_HOURS", 12)

	viper.SetDefault("PEAK_JITTER_MS", 10000)
	viper.SetDefault("OFF_PEAK_JITTER_MS", 5000)
	viper.SetDefault("PEAK_HOUR_START", 8)
	viper.SetDefault("PEAK_HOUR_END", 18)

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "moviegraph")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		StoreBackend:  viper.GetString("STORE_BACKEND"),
		DatabaseFile:  filepath.Join(configDir, "moviegraph.db"),
		Neo4jURI:      viper.GetString("NEO4J_URI"),
		Neo4jUser:     viper.GetString("NEO4J_USER"),
		Neo4jPassword: viper.GetString("NEO4J_PASSWORD"),

		TMDBBaseURL:     viper.GetString("TMDB_BASE_URL"),
		TMDBAccessToken: viper.GetString("TMDB_ACCESS_TOKEN"),

		UserInfoEndpoint: viper.GetString("USERINFO_ENDPOINT"),

		RequireCredits:   viper.GetBool("REQUIRE_CREDITS"),
		RequireTrailers:  viper.GetBool("REQUIRE_TRAILERS"),
		RequireBackdrops: viper.GetBool("REQUIRE_BACKDROPS"),

		PopularityPercentileStart: viper.GetInt("POPULARITY_PERCENTILE_START"),
		PopularityPercentileFloor: viper.GetInt("POPULARITY_PERCENTILE_FLOOR"),
		PopularityPercentileStep:  viper.GetInt("POPULARITY_PERCENTILE_STEP"),
		PopularMinResults:         viper.GetInt("POPULAR_MIN_RESULTS"),
		VoteCountPercentile:       viper.GetInt("VOTE_COUNT_PERCENTILE"),
		AdjustedScorePercentile:   viper.GetInt("ADJUSTED_SCORE_PERCENTILE"),

		IMDbBackfillEnabled:        viper.GetBool("IMDB_BACKFILL_ENABLED"),
		IMDbBackfillIntervalHours:  viper.GetInt("IMDB_BACKFILL_INTERVAL_HOURS"),
		IMDbBackfillBaseDelayMs:    viper.GetInt("IMDB_BACKFILL_BASE_DELAY_MS"),
		RTBackfillEnabled:          viper.GetBool("RT_BACKFILL_ENABLED"),
		RTBackfillIntervalHours:    viper.GetInt("RT_BACKFILL_INTERVAL_HOURS"),
		RTBackfillBaseDelayMs:      viper.GetInt("RT_BACKFILL_BASE_DELAY_MS"),
		CompletionSweepEnabled:     viper.GetBool("COMPLETION_SWEEP_ENABLED"),
		CompletionSweepIntervalHrs: viper.GetInt("COMPLETION_SWEEP_INTERVAL_HOURS"),

		PeakJitterMs:    viper.GetInt("PEAK_JITTER_MS"),
		OffPeakJitterMs: viper.GetInt("OFF_PEAK_JITTER_MS"),
		PeakHourStart:   viper.GetInt("PEAK_HOUR_START"),
		PeakHourEnd:     viper.GetInt("PEAK_HOUR_END"),

		ServerPort: viper.GetString("SERVER_PORT"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if config.TMDBAccessToken == "" {
		return nil, fmt.Errorf("TMDB_ACCESS_TOKEN is required")
	}
	if config.StoreBackend != "bolt" && config.StoreBackend != "neo4j" {
		return nil, fmt.Errorf("STORE_BACKEND must be \"bolt\" or \"neo4j\", got %q", config.StoreBackend)
	}
	if config.StoreBackend == "neo4j" && config.Neo4jURI == "" {
		return nil, fmt.Errorf("NEO4J_URI is required when STORE_BACKEND is neo4j")
	}

	return config, nil
}
