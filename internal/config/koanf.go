// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/degreematch/config.yaml",
	"/etc/degreematch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Host:               "0.0.0.0",
			Timeout:            30 * time.Second,
			ShutdownTimeout:    15 * time.Second,
			Environment:        "development",
			MaxUploadBytes:     10 << 20, // 10MB
			CORSOrigins:        []string{"*"},
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			TrainRateLimitReqs: 5,
		},
		Database: DatabaseConfig{
			Path:      "/data/degreematch.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Models: ModelsConfig{
			Dir:  "/data/models",
			Name: "word2vec",
			Keep: 3,
		},
		Schedules: SchedulesConfig{
			Path:       "/data/schedules",
			TTL:        7 * 24 * time.Hour,
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Recommend: RecommendConfig{
			TrainOnStartup:     false,
			TrainInterval:      24 * time.Hour,
			TrainTimeout:       30 * time.Minute,
			Dimension:          100,
			Window:             5,
			MinFrequency:       1,
			Epochs:             5,
			Negative:           5,
			LearningRate:       0.025,
			Architecture:       "cbow",
			Seed:               1,
			PersistEmbeddings:  true,
			Center:             0.5,
			Steepness:          2,
			SemanticWeight:     0.7,
			OverlapWeight:      0.3,
			TopN:               5,
			MinSimilarity:      0.3,
			UseCourseWeights:   false,
			Workers:            0, // 0 = GOMAXPROCS
			MaxTopN:            100,
			MaxScheduleCourses: 200,
			CacheEnabled:       true,
			CacheTTL:           5 * time.Minute,
		},
		// Explanations default to the local template; OpenAI is opt-in.
		Explain: ExplainConfig{
			Enabled:                 true,
			Provider:                "template",
			Model:                   "gpt-4o-mini",
			Timeout:                 20 * time.Second,
			MaxTokens:               300,
			RequestsPerSecond:       2,
			Burst:                   4,
			BreakerMaxRequests:      1,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the built-in defaults without consulting any file or
// environment variable.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return Load("")
}

// Load is LoadWithKoanf with an explicit config file. An empty path
// searches CONFIG_PATH and DefaultConfigPaths; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":                 "server.port",
	"http_host":                 "server.host",
	"http_timeout":              "server.timeout",
	"shutdown_timeout":          "server.shutdown_timeout",
	"environment":               "server.environment",
	"max_upload_bytes":          "server.max_upload_bytes",
	"cors_origins":              "server.cors_origins",
	"rate_limit_requests":       "server.rate_limit_reqs",
	"rate_limit_window":         "server.rate_limit_window",
	"disable_rate_limit":        "server.rate_limit_disabled",
	"train_rate_limit_requests": "server.train_rate_limit_reqs",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Model store
	"model_dir":  "models.dir",
	"model_name": "models.name",
	"model_keep": "models.keep",

	// Schedule store
	"schedules_path":        "schedules.path",
	"schedules_ttl":         "schedules.ttl",
	"schedules_in_memory":   "schedules.in_memory",
	"schedules_gc_interval": "schedules.gc_interval",

	// Recommendation engine
	"recommend_train_on_startup":     "recommend.train_on_startup",
	"recommend_train_interval":       "recommend.train_interval",
	"recommend_train_timeout":        "recommend.train_timeout",
	"recommend_dimension":            "recommend.dimension",
	"recommend_window":               "recommend.window",
	"recommend_min_frequency":        "recommend.min_frequency",
	"recommend_epochs":               "recommend.epochs",
	"recommend_negative":             "recommend.negative",
	"recommend_learning_rate":        "recommend.learning_rate",
	"recommend_architecture":         "recommend.architecture",
	"recommend_seed":                 "recommend.seed",
	"recommend_persist_embeddings":   "recommend.persist_embeddings",
	"recommend_center":               "recommend.center",
	"recommend_steepness":            "recommend.steepness",
	"recommend_semantic_weight":      "recommend.semantic_weight",
	"recommend_overlap_weight":       "recommend.overlap_weight",
	"recommend_top_n":                "recommend.top_n",
	"recommend_min_similarity":       "recommend.min_similarity",
	"recommend_use_course_weights":   "recommend.use_course_weights",
	"recommend_workers":              "recommend.workers",
	"recommend_max_top_n":            "recommend.max_top_n",
	"recommend_max_schedule_courses": "recommend.max_schedule_courses",
	"recommend_cache_enabled":        "recommend.cache_enabled",
	"recommend_cache_ttl":            "recommend.cache_ttl",

	// Explanations
	"explain_enabled":          "explain.enabled",
	"explain_provider":         "explain.provider",
	"openai_api_key":           "explain.api_key",
	"openai_base_url":          "explain.base_url",
	"openai_model":             "explain.model",
	"explain_timeout":          "explain.timeout",
	"explain_max_tokens":       "explain.max_tokens",
	"explain_rps":              "explain.requests_per_second",
	"explain_burst":            "explain.burst",
	"explain_breaker_requests": "explain.breaker_max_requests",
	"explain_breaker_interval": "explain.breaker_interval",
	"explain_breaker_timeout":  "explain.breaker_timeout",
	"explain_breaker_failures": "explain.breaker_failure_threshold",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - OPENAI_API_KEY -> explain.api_key
//
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
