// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package config

import (
	"testing"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, true},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, true},
		{"wildcard cors in development", func(c *Config) { c.Server.Environment = "development" }, false},
		{"explicit cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Server.CORSOrigins = []string{"https://catalog.example.edu"}
		}, false},
		{"rate limit too high", func(c *Config) { c.Server.RateLimitReqs = 200000 }, true},
		{"train limit above general limit", func(c *Config) { c.Server.TrainRateLimitReqs = 500 }, true},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Server.RateLimitDisabled = true
			c.Server.RateLimitReqs = 0
		}, false},
		{"window too short", func(c *Config) { c.Server.RateLimitWindow = time.Millisecond }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, true},
		{"empty model dir", func(c *Config) { c.Models.Dir = "" }, true},
		{"model name with slash", func(c *Config) { c.Models.Name = "a/b" }, true},
		{"negative keep", func(c *Config) { c.Models.Keep = -1 }, true},
		{"in-memory schedules need no path", func(c *Config) {
			c.Schedules.InMemory = true
			c.Schedules.Path = ""
		}, false},
		{"schedules path required on disk", func(c *Config) { c.Schedules.Path = "" }, true},
		{"zero schedule ttl", func(c *Config) { c.Schedules.TTL = 0 }, true},
		{"negative train interval", func(c *Config) { c.Recommend.TrainInterval = -time.Second }, true},
		{"invalid architecture", func(c *Config) { c.Recommend.Architecture = "glove" }, true},
		{"min similarity above one", func(c *Config) { c.Recommend.MinSimilarity = 2 }, true},
		{"explain disabled ignores provider", func(c *Config) {
			c.Explain.Enabled = false
			c.Explain.Provider = "unknown"
		}, false},
		{"unknown provider", func(c *Config) { c.Explain.Provider = "unknown" }, true},
		{"openai configured", func(c *Config) {
			c.Explain.Provider = "openai"
			c.Explain.APIKey = "sk-test"
		}, false},
		{"openai bad base url", func(c *Config) {
			c.Explain.Provider = "openai"
			c.Explain.APIKey = "sk-test"
			c.Explain.BaseURL = "ftp://llm.local"
		}, true},
		{"openai zero rps", func(c *Config) {
			c.Explain.Provider = "openai"
			c.Explain.APIKey = "sk-test"
			c.Explain.RequestsPerSecond = 0
		}, true},
		{"console format", func(c *Config) { c.Logging.Format = "console" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAllLogLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() with level %q error = %v", level, err)
			}
		})
	}
}

func TestRecommendConfig_EngineConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.Dimension = 32
	cfg.Recommend.Architecture = "skipgram"
	cfg.Recommend.TopN = 7
	cfg.Recommend.MinSimilarity = 0.25
	cfg.Recommend.CacheEnabled = false
	cfg.Recommend.TrainTimeout = 5 * time.Minute
	cfg.Recommend.MaxScheduleCourses = 50

	engine := cfg.Recommend.EngineConfig()

	if err := engine.Validate(); err != nil {
		t.Fatalf("engine config does not validate: %v", err)
	}
	if engine.Training.Model.Dimension != 32 {
		t.Errorf("Training.Model.Dimension = %d, want 32", engine.Training.Model.Dimension)
	}
	if engine.Training.Model.Architecture != embedding.ArchitectureSkipGram {
		t.Errorf("Training.Model.Architecture = %q, want skipgram", engine.Training.Model.Architecture)
	}
	if engine.Training.Timeout != 5*time.Minute {
		t.Errorf("Training.Timeout = %v, want 5m", engine.Training.Timeout)
	}
	if engine.Rank.TopN != 7 || engine.Rank.MinSimilarity != 0.25 {
		t.Errorf("Rank = %+v", engine.Rank)
	}
	if engine.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
	if engine.Limits.MaxScheduleCourses != 50 {
		t.Errorf("Limits.MaxScheduleCourses = %d, want 50", engine.Limits.MaxScheduleCourses)
	}
	if engine.Scoring.SemanticWeight != 0.7 || engine.Scoring.OverlapWeight != 0.3 {
		t.Errorf("Scoring = %+v", engine.Scoring)
	}
}

func TestRecommendConfig_EngineConfigDefaultsZeroTraining(t *testing.T) {
	r := defaultConfig().Recommend
	r.Dimension = 0
	r.Epochs = 0
	r.Architecture = ""

	engine := r.EngineConfig()
	want := embedding.DefaultTrainConfig()
	if engine.Training.Model.Dimension != want.Dimension || engine.Training.Model.Epochs != want.Epochs {
		t.Errorf("zero training fields not defaulted: %+v", engine.Training.Model)
	}
	if engine.Training.Model.Architecture != want.Architecture {
		t.Errorf("Architecture = %q, want %q", engine.Training.Model.Architecture, want.Architecture)
	}
}
