// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Recommender answers program recommendation requests. *Engine implements it.
type Recommender interface {
	RecommendPrograms(ctx context.Context, req ProgramRequest) (*ProgramResponse, error)
}

// EvalConfig configures an evaluation run.
type EvalConfig struct {
	// Expected is the program that should rank highly for schedules drawn
	// from Pool.
	Expected ProgramKey `json:"expected"`

	// Pool is the set of courses schedules are sampled from. Engine.Evaluate
	// defaults it to the expected program's required courses.
	Pool []CourseKey `json:"pool"`

	// Institution is passed to every request.
	Institution string `json:"institution,omitempty"`

	// Sizes are the schedule sizes to test.
	// Default: [1, 2, 3, 4, 5, 7, 10].
	Sizes []int `json:"sizes"`

	// Trials is the number of random schedules per size.
	// Default: 5.
	Trials int `json:"trials"`

	// TopN is the recommendation depth searched for the expected program.
	// Default: 10.
	TopN int `json:"top_n"`

	// MinSimilarity is the threshold for every request.
	// Default: 0.
	MinSimilarity float64 `json:"min_similarity"`

	// Seed drives schedule sampling.
	// Default: 1.
	Seed int64 `json:"seed"`
}

// DefaultEvalSizes are the schedule sizes evaluated by default.
var DefaultEvalSizes = []int{1, 2, 3, 4, 5, 7, 10}

func (c EvalConfig) withDefaults() EvalConfig {
	if len(c.Sizes) == 0 {
		c.Sizes = append([]int(nil), DefaultEvalSizes...)
	}
	if c.Trials <= 0 {
		c.Trials = 5
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}

// EvalTrial is the outcome of one sampled schedule.
type EvalTrial struct {
	Size    int         `json:"size"`
	Trial   int         `json:"trial"`
	Courses []CourseKey `json:"courses"`

	// Position is the 1-based rank of the expected program, 0 if absent.
	Position int `json:"position"`

	// ExpectedScore is the expected program's score, 0 if absent.
	ExpectedScore float64 `json:"expected_score"`

	// Top lists the first five recommendations.
	Top []ProgramRecommendation `json:"top"`

	// Missing lists sampled courses without vectors.
	Missing []CourseKey `json:"missing,omitempty"`
}

// Found reports whether the expected program appeared.
func (t *EvalTrial) Found() bool {
	return t.Position > 0
}

// EvalSummary aggregates the trials of one schedule size.
type EvalSummary struct {
	Size    int     `json:"size"`
	Trials  int     `json:"trials"`
	Hits    int     `json:"hits"`
	HitRate float64 `json:"hit_rate"`

	// MeanRank averages Position over hits.
	MeanRank float64 `json:"mean_rank"`

	// Expected-program score statistics over hits.
	MeanExpectedScore float64 `json:"mean_expected_score"`
	MinExpectedScore  float64 `json:"min_expected_score"`
	MaxExpectedScore  float64 `json:"max_expected_score"`

	// Statistics over the top-five scores of every trial.
	MeanTopScore   float64 `json:"mean_top_score"`
	TopScoreStdDev float64 `json:"top_score_std_dev"`
}

// EvalReport is the result of Evaluate.
type EvalReport struct {
	Expected ProgramKey    `json:"expected"`
	PoolSize int           `json:"pool_size"`
	Summary  []EvalSummary `json:"summary"`
	Trials   []EvalTrial   `json:"trials"`
}

// evalTopScores is how many leading scores each trial contributes to the
// spread statistics.
const evalTopScores = 5

// Evaluate measures how well the expected program ranks for random
// schedules of increasing size drawn from cfg.Pool. Each trial samples
// min(size, len(pool)) distinct courses.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func Evaluate(ctx context.Context, rec Recommender, cfg EvalConfig) (*EvalReport, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.Expected.Name) == "" {
		return nil, fmt.Errorf("%w: expected program is required", ErrInvalidRequest)
	}
	if len(cfg.Pool) == 0 {
		return nil, fmt.Errorf("%w: course pool is empty", ErrInvalidRequest)
	}
	expected := NewProgramKey(cfg.Expected.Institution, cfg.Expected.Name)
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // sampling does not need crypto randomness

	report := &EvalReport{
		Expected: expected,
		PoolSize: len(cfg.Pool),
		Summary:  make([]EvalSummary, 0, len(cfg.Sizes)),
		Trials:   make([]EvalTrial, 0, len(cfg.Sizes)*cfg.Trials),
	}
	minSim := cfg.MinSimilarity

	for _, size := range cfg.Sizes {
		if size < 1 {
			return nil, fmt.Errorf("%w: schedule size must be positive, got %d", ErrInvalidRequest, size)
		}
		n := size
		if n > len(cfg.Pool) {
			n = len(cfg.Pool)
		}

		trials := make([]EvalTrial, 0, cfg.Trials)
		for t := 0; t < cfg.Trials; t++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			courses := make([]CourseKey, n)
			for i, idx := range rng.Perm(len(cfg.Pool))[:n] {
				courses[i] = cfg.Pool[idx]
			}

			resp, err := rec.RecommendPrograms(ctx, ProgramRequest{
				Courses:       courses,
				Institution:   cfg.Institution,
				TopN:          cfg.TopN,
				MinSimilarity: &minSim,
			})
			if err != nil {
				return nil, fmt.Errorf("size %d trial %d: %w", size, t+1, err)
			}
			trials = append(trials, newEvalTrial(size, t+1, courses, expected, resp))
		}

		report.Summary = append(report.Summary, summarizeTrials(size, trials))
		report.Trials = append(report.Trials, trials...)
	}

	return report, nil
}

// Evaluate runs Evaluate against the engine, defaulting the pool to the
// expected program's required courses.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func (e *Engine) Evaluate(ctx context.Context, cfg EvalConfig) (*EvalReport, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	if len(cfg.Pool) == 0 {
		p, ok := snap.Program(cfg.Expected)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, cfg.Expected)
		}
		cfg.Pool = append([]CourseKey(nil), p.RequiredCourses...)
	}
	return Evaluate(ctx, e, cfg)
}

func newEvalTrial(size, trial int, courses []CourseKey, expected ProgramKey, resp *ProgramResponse) EvalTrial {
	t := EvalTrial{
		Size:    size,
		Trial:   trial,
		Courses: courses,
		Missing: resp.Missing,
	}
	for i := range resp.Recommendations {
		r := &resp.Recommendations[i]
		if r.Program == expected {
			t.Position = r.Rank
			t.ExpectedScore = r.Score
			break
		}
	}
	top := resp.Recommendations
	if len(top) > evalTopScores {
		top = top[:evalTopScores]
	}
	t.Top = append([]ProgramRecommendation(nil), top...)
	return t
}

func summarizeTrials(size int, trials []EvalTrial) EvalSummary {
	s := EvalSummary{Size: size, Trials: len(trials)}

	var rankSum, scoreSum float64
	var tops []float64
	for i := range trials {
		t := &trials[i]
		for _, r := range t.Top {
			tops = append(tops, r.Score)
		}
		if !t.Found() {
			continue
		}
		if s.Hits == 0 || t.ExpectedScore < s.MinExpectedScore {
			s.MinExpectedScore = t.ExpectedScore
		}
		if s.Hits == 0 || t.ExpectedScore > s.MaxExpectedScore {
			s.MaxExpectedScore = t.ExpectedScore
		}
		s.Hits++
		rankSum += float64(t.Position)
		scoreSum += t.ExpectedScore
	}

	if s.Trials > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Trials)
	}
	if s.Hits > 0 {
		s.MeanRank = rankSum / float64(s.Hits)
		s.MeanExpectedScore = scoreSum / float64(s.Hits)
	}
	s.MeanTopScore, s.TopScoreStdDev = meanStdDev(tops)
	return s
}

// meanStdDev returns the mean and population standard deviation of xs.
func meanStdDev(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}
