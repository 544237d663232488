// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package scoring turns raw cosine similarity between a schedule and a
// program into a calibrated match score in [0, 1].
//
// The score is built in two stages. First, Spread re-centers the raw cosine
// with a tanh curve, because raw similarities for course catalogs cluster in
// a narrow band and would otherwise be indistinguishable. Second, when the
// schedule and program share an institution, Blend mixes in the fraction of
// schedule courses that are literally required by the program.
//
// Center, Steepness and the blend weights are corpus calibration knobs, not
// universal constants, and are exposed through Config.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid scoring config")

// weightTolerance is the allowed deviation of the blend weights from 1.
const weightTolerance = 1e-6

// Config holds the match-score calibration constants.
type Config struct {
	// Center is the raw cosine value that maps to a semantic score of 0.5.
	// Default: 0.5.
	Center float64 `json:"center" koanf:"center"`

	// Steepness controls how sharply scores spread around Center.
	// Default: 2.
	Steepness float64 `json:"steepness" koanf:"steepness"`

	// SemanticWeight is the weight of the semantic score in the blend.
	// Default: 0.7.
	SemanticWeight float64 `json:"semantic_weight" koanf:"semantic_weight"`

	// OverlapWeight is the weight of the course-overlap ratio in the blend.
	// Default: 0.3.
	OverlapWeight float64 `json:"overlap_weight" koanf:"overlap_weight"`
}

// DefaultConfig returns the default calibration.
func DefaultConfig() Config {
	return Config{
		Center:         0.5,
		Steepness:      2,
		SemanticWeight: 0.7,
		OverlapWeight:  0.3,
	}
}

// Validate checks that the configuration yields scores in [0, 1].
func (c Config) Validate() error {
	if math.IsNaN(c.Center) || c.Center < -1 || c.Center > 1 {
		return fmt.Errorf("%w: center must be in [-1, 1], got %f", ErrInvalidConfig, c.Center)
	}
	if !(c.Steepness > 0) || math.IsInf(c.Steepness, 0) {
		return fmt.Errorf("%w: steepness must be positive, got %f", ErrInvalidConfig, c.Steepness)
	}
	if c.SemanticWeight < 0 || c.OverlapWeight < 0 {
		return fmt.Errorf("%w: blend weights must be non-negative, got %f/%f",
			ErrInvalidConfig, c.SemanticWeight, c.OverlapWeight)
	}
	if sum := c.SemanticWeight + c.OverlapWeight; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: blend weights must sum to 1, got %f", ErrInvalidConfig, sum)
	}
	return nil
}

// Match is the breakdown of a single schedule/program score.
type Match struct {
	// Raw is the cosine similarity in [-1, 1].
	Raw float64 `json:"raw"`

	// Semantic is Raw after the spread transform, in [0, 1].
	Semantic float64 `json:"semantic"`

	// Overlap is the course-overlap ratio; only meaningful when
	// OverlapApplied is true.
	Overlap float64 `json:"overlap"`

	// OverlapApplied reports whether Final blends in Overlap.
	OverlapApplied bool `json:"overlap_applied"`

	// Final is the score used for ranking, in [0, 1].
	Final float64 `json:"final"`
}

// Scorer computes match scores with a fixed Config. It is immutable and
// safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer validates cfg and returns a Scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Default returns a Scorer with DefaultConfig.
func Default() *Scorer {
	return &Scorer{cfg: DefaultConfig()}
}

// Config returns the scorer's configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Spread maps a raw cosine similarity to [0, 1]:
//
//	tanh(steepness * (raw - center)) * 0.5 + 0.5
func (s *Scorer) Spread(raw float64) float64 {
	return clamp01(math.Tanh(s.cfg.Steepness*(raw-s.cfg.Center))*0.5 + 0.5)
}

// Blend mixes a semantic score with an overlap ratio using the configured
// weights.
func (s *Scorer) Blend(semantic, overlap float64) float64 {
	return clamp01(s.cfg.SemanticWeight*semantic + s.cfg.OverlapWeight*overlap)
}

// MatchScore scores a schedule vector against a program vector using
// semantic similarity only.
func (s *Scorer) MatchScore(schedule, program vector.Vector) (Match, error) {
	raw, err := vector.Cosine(schedule, program)
	if err != nil {
		return Match{}, err
	}
	sem := s.Spread(raw)
	return Match{Raw: raw, Semantic: sem, Final: sem}, nil
}

// MatchScoreWithOverlap scores a schedule against a program and blends in
// the course-overlap ratio. Callers should only use it when both sides share
// a course-code namespace.
func (s *Scorer) MatchScoreWithOverlap(schedule, program vector.Vector, overlap float64) (Match, error) {
	m, err := s.MatchScore(schedule, program)
	if err != nil {
		return Match{}, err
	}
	m.Overlap = clamp01(overlap)
	m.OverlapApplied = true
	m.Final = s.Blend(m.Semantic, m.Overlap)
	return m, nil
}

// Overlap returns |S ∩ R| / |S| where S is the set of distinct schedule
// course codes and R the program's required codes. Codes are compared
// case-insensitively after trimming. An empty schedule yields 0.
func Overlap(scheduleCodes, requiredCodes []string) float64 {
	schedule := codeSet(scheduleCodes)
	if len(schedule) == 0 {
		return 0
	}
	required := codeSet(requiredCodes)

	shared := 0
	for code := range schedule {
		if _, ok := required[code]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(schedule))
}

// NormalizeCode canonicalizes a course code for comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = NormalizeCode(c)
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return set
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
