// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package config

import (
	"time"

	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/scoring"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Models    ModelsConfig    `koanf:"models"`
	Schedules SchedulesConfig `koanf:"schedules"`
	Recommend RecommendConfig `koanf:"recommend"`
	Explain   ExplainConfig   `koanf:"explain"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production

	// MaxUploadBytes caps CSV upload bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	CORSOrigins []string `koanf:"cors_origins"`

	// Per-IP limits. The train and refresh endpoints use the stricter
	// TrainRateLimitReqs within the same window.
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	TrainRateLimitReqs int           `koanf:"train_rate_limit_reqs"`
}

// DatabaseConfig holds DuckDB catalog settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// ModelsConfig holds trained model persistence settings
type ModelsConfig struct {
	Dir  string `koanf:"dir"`
	Name string `koanf:"name"`

	// Keep is the number of model versions retained after each save.
	// 0 keeps every version.
	Keep int `koanf:"keep"`
}

// SchedulesConfig holds settings for the saved-schedule store
type SchedulesConfig struct {
	Path string        `koanf:"path"`
	TTL  time.Duration `koanf:"ttl"`

	// InMemory runs badger without touching disk. Schedules are lost on
	// restart.
	InMemory bool `koanf:"in_memory"`

	GCInterval time.Duration `koanf:"gc_interval"`
}

// RecommendConfig holds recommendation engine settings.
//
// Training knobs map onto embedding.TrainConfig, scoring knobs onto
// scoring.Config. EngineConfig performs the mapping.
type RecommendConfig struct {
	// TrainOnStartup retrains even when a stored model was restored.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval is the retraining period. 0 disables scheduled training.
	TrainInterval time.Duration `koanf:"train_interval"`
	TrainTimeout  time.Duration `koanf:"train_timeout"`

	Dimension    int     `koanf:"dimension"`
	Window       int     `koanf:"window"`
	MinFrequency int     `koanf:"min_frequency"`
	Epochs       int     `koanf:"epochs"`
	Negative     int     `koanf:"negative"`
	LearningRate float64 `koanf:"learning_rate"`
	Architecture string  `koanf:"architecture"` // cbow or skipgram
	Seed         int64   `koanf:"seed"`

	PersistEmbeddings bool `koanf:"persist_embeddings"`

	Center         float64 `koanf:"center"`
	Steepness      float64 `koanf:"steepness"`
	SemanticWeight float64 `koanf:"semantic_weight"`
	OverlapWeight  float64 `koanf:"overlap_weight"`

	TopN             int     `koanf:"top_n"`
	MinSimilarity    float64 `koanf:"min_similarity"`
	UseCourseWeights bool    `koanf:"use_course_weights"`
	Workers          int     `koanf:"workers"`

	MaxTopN            int `koanf:"max_top_n"`
	MaxScheduleCourses int `koanf:"max_schedule_courses"`

	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// ExplainConfig holds match explanation settings
type ExplainConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Provider string `koanf:"provider"` // template or openai

	APIKey    string        `koanf:"api_key"`
	BaseURL   string        `koanf:"base_url"`
	Model     string        `koanf:"model"`
	Timeout   time.Duration `koanf:"timeout"`
	MaxTokens int           `koanf:"max_tokens"`

	// Client-side token bucket for provider calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Circuit breaker settings.
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// EngineConfig builds the recommendation engine configuration. Zero-valued
// training fields fall back to the trainer defaults.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()

	cfg.Training.Model = embedding.TrainConfig{
		Dimension:    r.Dimension,
		Window:       r.Window,
		MinFrequency: r.MinFrequency,
		Epochs:       r.Epochs,
		Negative:     r.Negative,
		LearningRate: r.LearningRate,
		Architecture: embedding.Architecture(r.Architecture),
		Seed:         r.Seed,
	}.WithDefaults()
	if r.TrainTimeout > 0 {
		cfg.Training.Timeout = r.TrainTimeout
	}
	cfg.Training.PersistEmbeddings = r.PersistEmbeddings

	cfg.Scoring = scoring.Config{
		Center:         r.Center,
		Steepness:      r.Steepness,
		SemanticWeight: r.SemanticWeight,
		OverlapWeight:  r.OverlapWeight,
	}

	cfg.Rank.TopN = r.TopN
	cfg.Rank.MinSimilarity = r.MinSimilarity
	cfg.Rank.UseCourseWeights = r.UseCourseWeights
	cfg.Rank.Workers = r.Workers

	if r.MaxTopN > 0 {
		cfg.Limits.MaxTopN = r.MaxTopN
	}
	if r.MaxScheduleCourses > 0 {
		cfg.Limits.MaxScheduleCourses = r.MaxScheduleCourses
	}

	cfg.Cache.Enabled = r.CacheEnabled
	if r.CacheTTL > 0 {
		cfg.Cache.TTL = r.CacheTTL
	}

	return cfg
}
