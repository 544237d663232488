// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend/scoring"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// Skip reasons reported in logs and metrics.
const (
	skipNoEmbedding       = "no_embedding"
	skipDimensionMismatch = "dimension_mismatch"
)

// Query is the schedule side of a ranking.
type Query struct {
	// Vector is the aggregated schedule vector. nil means "no embedding".
	Vector vector.Vector

	// Codes are the schedule's course codes, used for overlap.
	Codes []string

	// Institution enables the overlap bonus against candidates at the same
	// institution. Empty disables it.
	Institution string
}

// Candidate is one program considered by Rank.
type Candidate struct {
	ID            string
	Vector        vector.Vector
	RequiredCodes []string
	Institution   string
}

// Result is a scored candidate.
type Result struct {
	ID             string
	Index          int
	Score          float64
	Raw            float64
	Semantic       float64
	Overlap        float64
	OverlapApplied bool
}

// RankOptions controls Rank.
type RankOptions struct {
	// TopN caps the number of results. Values < 1 mean 5.
	TopN int

	// MinSimilarity drops results scoring below it.
	MinSimilarity float64

	// ParallelThreshold is the candidate count at which scoring runs
	// concurrently. Values < 1 mean 64.
	ParallelThreshold int

	// Workers bounds concurrency. Values < 1 mean GOMAXPROCS.
	Workers int
}

// DefaultRankOptions returns TopN 5 and MinSimilarity 0.3.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		TopN:              5,
		MinSimilarity:     0.3,
		ParallelThreshold: 64,
	}
}

// RankStats reports what happened to the candidate set.
type RankStats struct {
	Candidates int
	Scored     int
	Skipped    int
	Qualified  int
}

// scoredSlot holds the outcome for one candidate position.
type scoredSlot struct {
	result Result
	skip   string
	err    error
}

// SameInstitution reports whether two institution tags denote the same
// course-code namespace. Empty tags never match.
func SameInstitution(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Rank scores every candidate against q, keeps those scoring at least
// opts.MinSimilarity, and returns them sorted by descending score (ties keep
// candidate order), truncated to opts.TopN.
//
// A nil query vector fails with vector.ErrNoEmbedding. Unscoreable
// candidates are logged and skipped. An empty candidate set yields an empty
// result and no error.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func Rank(ctx context.Context, scorer *scoring.Scorer, q Query, candidates []Candidate, opts RankOptions, logger zerolog.Logger) ([]Result, error) {
	results, _, err := RankWithStats(ctx, scorer, q, candidates, opts, logger)
	return results, err
}

// RankWithStats is Rank that also reports candidate statistics.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func RankWithStats(ctx context.Context, scorer *scoring.Scorer, q Query, candidates []Candidate, opts RankOptions, logger zerolog.Logger) ([]Result, RankStats, error) {
	stats := RankStats{Candidates: len(candidates)}

	if q.Vector == nil {
		return nil, stats, vector.ErrNoEmbedding
	}
	if err := q.Vector.Validate(len(q.Vector)); err != nil {
		return nil, stats, fmt.Errorf("schedule vector: %w", err)
	}
	if len(candidates) == 0 {
		return []Result{}, stats, nil
	}
	if scorer == nil {
		scorer = scoring.Default()
	}
	opts = opts.withDefaults()

	slots := make([]scoredSlot, len(candidates))
	if len(candidates) >= opts.ParallelThreshold {
		if err := scoreParallel(ctx, scorer, q, candidates, slots, opts.Workers); err != nil {
			return nil, stats, err
		}
	} else {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		scoreRange(scorer, q, candidates, slots, 0, len(candidates))
	}

	results := make([]Result, 0, len(candidates))
	for i := range slots {
		slot := &slots[i]
		if slot.skip != "" {
			stats.Skipped++
			metrics.RankSkippedCandidates.WithLabelValues(slot.skip).Inc()
			ev := logger.Warn().
				Str("candidate", candidates[i].ID).
				Str("reason", slot.skip)
			if slot.err != nil {
				ev = ev.Err(slot.err)
			}
			ev.Msg("skipping unscoreable candidate")
			continue
		}
		stats.Scored++
		if slot.result.Score >= opts.MinSimilarity {
			results = append(results, slot.result)
		}
	}
	stats.Qualified = len(results)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.TopN {
		results = results[:opts.TopN]
	}
	return results, stats, nil
}

func (o RankOptions) withDefaults() RankOptions {
	d := DefaultRankOptions()
	if o.TopN < 1 {
		o.TopN = d.TopN
	}
	if o.ParallelThreshold < 1 {
		o.ParallelThreshold = d.ParallelThreshold
	}
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// scoreParallel splits candidates into contiguous chunks, one per worker.
// Each worker writes only its own slots.
func scoreParallel(ctx context.Context, scorer *scoring.Scorer, q Query, candidates []Candidate, slots []scoredSlot, workers int) error {
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			scoreRange(scorer, q, candidates, slots, lo, hi)
		}(start, end)
	}
	wg.Wait()

	return ctx.Err()
}

func scoreRange(scorer *scoring.Scorer, q Query, candidates []Candidate, slots []scoredSlot, lo, hi int) {
	for i := lo; i < hi; i++ {
		slots[i] = scoreCandidate(scorer, q, &candidates[i], i)
	}
}

func scoreCandidate(scorer *scoring.Scorer, q Query, c *Candidate, index int) scoredSlot {
	if c.Vector == nil {
		return scoredSlot{skip: skipNoEmbedding}
	}
	if err := c.Vector.Validate(len(q.Vector)); err != nil {
		return scoredSlot{skip: skipDimensionMismatch, err: err}
	}

	var (
		m   scoring.Match
		err error
	)
	if SameInstitution(q.Institution, c.Institution) {
		m, err = scorer.MatchScoreWithOverlap(q.Vector, c.Vector, scoring.Overlap(q.Codes, c.RequiredCodes))
	} else {
		m, err = scorer.MatchScore(q.Vector, c.Vector)
	}
	if err != nil {
		reason := skipNoEmbedding
		if errors.Is(err, vector.ErrInvalidDimension) {
			reason = skipDimensionMismatch
		}
		return scoredSlot{skip: reason, err: err}
	}

	return scoredSlot{result: Result{
		ID:             c.ID,
		Index:          index,
		Score:          m.Final,
		Raw:            m.Raw,
		Semantic:       m.Semantic,
		Overlap:        m.Overlap,
		OverlapApplied: m.OverlapApplied,
	}}
}
