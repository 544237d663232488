// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/scoring"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Training contains vector-space training parameters.
	Training TrainingConfig `json:"training"`

	// Scoring contains the match-score calibration constants.
	Scoring scoring.Config `json:"scoring"`

	// Rank contains ranking defaults.
	Rank RankConfig `json:"rank"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`
}

// TrainingConfig contains training parameters.
type TrainingConfig struct {
	// Model configures the word2vec trainer.
	Model embedding.TrainConfig `json:"model"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`

	// MinCorpusItems is the minimum number of courses plus programs required
	// to train.
	// Default: 1.
	MinCorpusItems int `json:"min_corpus_items"`

	// PersistEmbeddings writes recomputed course and program vectors back
	// through the EmbeddingWriter after training.
	// Default: true.
	PersistEmbeddings bool `json:"persist_embeddings"`
}

// RankConfig contains ranking defaults.
type RankConfig struct {
	// TopN is the default number of programs returned.
	// Default: 5.
	TopN int `json:"top_n"`

	// MinSimilarity is the default score threshold.
	// Default: 0.3.
	MinSimilarity float64 `json:"min_similarity"`

	// ParallelThreshold is the candidate count at which scoring fans out
	// across workers.
	// Default: 64.
	ParallelThreshold int `json:"parallel_threshold"`

	// Workers bounds the scoring fan-out. 0 uses GOMAXPROCS.
	// Default: 0.
	Workers int `json:"workers"`

	// UseCourseWeights weights course vectors by Course.Weight when
	// aggregating schedules and programs.
	// Default: false (uniform).
	UseCourseWeights bool `json:"use_course_weights"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxTopN is the maximum allowed TopN.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`

	// MaxScheduleCourses is the maximum number of courses in one request.
	// Default: 200.
	MaxScheduleCourses int `json:"max_schedule_courses"`

	// DefaultSimilarCourses is the default result count for similar-course
	// queries.
	// Default: 10.
	DefaultSimilarCourses int `json:"default_similar_courses"`

	// MaxSimilarCourses is the maximum result count for similar-course
	// queries.
	// Default: 100.
	MaxSimilarCourses int `json:"max_similar_courses"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// InvalidateOnTrain controls whether cache is cleared after training.
	// Default: true.
	InvalidateOnTrain bool `json:"invalidate_on_train"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Training: TrainingConfig{
			Model:             embedding.DefaultTrainConfig(),
			Timeout:           30 * time.Minute,
			MinCorpusItems:    1,
			PersistEmbeddings: true,
		},
		Scoring: scoring.DefaultConfig(),
		Rank: RankConfig{
			TopN:              5,
			MinSimilarity:     0.3,
			ParallelThreshold: 64,
		},
		Limits: LimitsConfig{
			MaxTopN:               100,
			MaxScheduleCourses:    200,
			DefaultSimilarCourses: 10,
			MaxSimilarCourses:     100,
		},
		Cache: CacheConfig{
			Enabled:           true,
			TTL:               5 * time.Minute,
			MaxEntries:        10000,
			InvalidateOnTrain: true,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Training.Model.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("training.model: %w", err)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.MinCorpusItems < 0 {
		return fmt.Errorf("training.min_corpus_items must be non-negative, got %d", c.Training.MinCorpusItems)
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if c.Rank.TopN < 1 {
		return fmt.Errorf("rank.top_n must be positive, got %d", c.Rank.TopN)
	}
	if c.Rank.MinSimilarity < 0 || c.Rank.MinSimilarity > 1 {
		return fmt.Errorf("rank.min_similarity must be in [0, 1], got %f", c.Rank.MinSimilarity)
	}
	if c.Rank.ParallelThreshold < 1 {
		return fmt.Errorf("rank.parallel_threshold must be positive, got %d", c.Rank.ParallelThreshold)
	}
	if c.Rank.Workers < 0 {
		return fmt.Errorf("rank.workers must be non-negative, got %d", c.Rank.Workers)
	}

	if c.Limits.MaxTopN < c.Rank.TopN {
		return fmt.Errorf("limits.max_top_n must be >= rank.top_n, got %d < %d", c.Limits.MaxTopN, c.Rank.TopN)
	}
	if c.Limits.MaxScheduleCourses < 1 {
		return fmt.Errorf("limits.max_schedule_courses must be positive, got %d", c.Limits.MaxScheduleCourses)
	}
	if c.Limits.DefaultSimilarCourses < 1 {
		return fmt.Errorf("limits.default_similar_courses must be positive, got %d", c.Limits.DefaultSimilarCourses)
	}
	if c.Limits.MaxSimilarCourses < c.Limits.DefaultSimilarCourses {
		return fmt.Errorf("limits.max_similar_courses must be >= limits.default_similar_courses, got %d < %d",
			c.Limits.MaxSimilarCourses, c.Limits.DefaultSimilarCourses)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive when cache is enabled, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type trainingJSON struct {
		Model             embedding.TrainConfig `json:"model"`
		Timeout           string                `json:"timeout"`
		MinCorpusItems    int                   `json:"min_corpus_items"`
		PersistEmbeddings bool                  `json:"persist_embeddings"`
	}
	type cacheJSON struct {
		Enabled           bool   `json:"enabled"`
		TTL               string `json:"ttl"`
		MaxEntries        int    `json:"max_entries"`
		InvalidateOnTrain bool   `json:"invalidate_on_train"`
	}

	return json.Marshal(&struct {
		Training trainingJSON   `json:"training"`
		Scoring  scoring.Config `json:"scoring"`
		Rank     RankConfig     `json:"rank"`
		Limits   LimitsConfig   `json:"limits"`
		Cache    cacheJSON      `json:"cache"`
	}{
		Training: trainingJSON{
			Model:             c.Training.Model,
			Timeout:           c.Training.Timeout.String(),
			MinCorpusItems:    c.Training.MinCorpusItems,
			PersistEmbeddings: c.Training.PersistEmbeddings,
		},
		Scoring: c.Scoring,
		Rank:    c.Rank,
		Limits:  c.Limits,
		Cache: cacheJSON{
			Enabled:           c.Cache.Enabled,
			TTL:               c.Cache.TTL.String(),
			MaxEntries:        c.Cache.MaxEntries,
			InvalidateOnTrain: c.Cache.InvalidateOnTrain,
		},
	})
}
