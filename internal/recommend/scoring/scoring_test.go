// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

func TestSpread(t *testing.T) {
	t.Parallel()
	s := Default()

	tests := []struct {
		raw  float64
		want float64
	}{
		{1, math.Tanh(1)*0.5 + 0.5},   // ≈ 0.8808
		{0, math.Tanh(-1)*0.5 + 0.5},  // ≈ 0.1192
		{0.5, 0.5},                    // center maps to the midpoint
		{-1, math.Tanh(-3)*0.5 + 0.5}, // ≈ 0.0025
	}

	for _, tt := range tests {
		got := s.Spread(tt.raw)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Spread(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if got := s.Spread(1); math.Abs(got-0.8808) > 1e-4 {
		t.Errorf("Spread(1) = %v, want ~0.8808", got)
	}
	if got := s.Spread(0); math.Abs(got-0.1192) > 1e-4 {
		t.Errorf("Spread(0) = %v, want ~0.1192", got)
	}
}

func TestSpread_Monotonic(t *testing.T) {
	t.Parallel()
	s := Default()

	prev := -1.0
	for raw := -1.0; raw <= 1.0; raw += 0.05 {
		got := s.Spread(raw)
		if got < prev {
			t.Fatalf("Spread not monotonic at %v: %v < %v", raw, got, prev)
		}
		prev = got
	}
}

func TestSpread_Configurable(t *testing.T) {
	t.Parallel()

	s, err := NewScorer(Config{Center: 0.7, Steepness: 5, SemanticWeight: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Spread(0.7); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Spread(center) = %v, want 0.5", got)
	}
	if got, want := s.Spread(0.8), math.Tanh(0.5)*0.5+0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Spread(0.8) = %v, want %v", got, want)
	}
}

func TestMatchScore_Bounded(t *testing.T) {
	t.Parallel()
	s := Default()

	vectors := []vector.Vector{
		{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0.3, 0.3, 0.3}, {0, 0, 0}, {-5, 2, 9},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			m, err := s.MatchScore(a, b)
			if err != nil {
				t.Fatal(err)
			}
			if m.Final < 0 || m.Final > 1 {
				t.Errorf("MatchScore(%v, %v) = %v, outside [0, 1]", a, b, m.Final)
			}
			for _, overlap := range []float64{0, 0.5, 1} {
				mo, err := s.MatchScoreWithOverlap(a, b, overlap)
				if err != nil {
					t.Fatal(err)
				}
				if mo.Final < 0 || mo.Final > 1 {
					t.Errorf("MatchScoreWithOverlap(%v, %v, %v) = %v, outside [0, 1]", a, b, overlap, mo.Final)
				}
			}
		}
	}
}

func TestMatchScore_ZeroVectorIsNoSignal(t *testing.T) {
	t.Parallel()
	s := Default()

	m, err := s.MatchScore(vector.Vector{0, 0, 0}, vector.Vector{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if m.Raw != 0 {
		t.Errorf("Raw = %v, want 0", m.Raw)
	}
	if math.IsNaN(m.Final) {
		t.Error("Final is NaN")
	}
}

func TestMatchScore_DimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Default().MatchScore(vector.Vector{1, 0}, vector.Vector{1, 0, 0})
	if !errors.Is(err, vector.ErrInvalidDimension) {
		t.Errorf("MatchScore() error = %v, want ErrInvalidDimension", err)
	}
}

func TestBlend_InstitutionOverlapScenario(t *testing.T) {
	t.Parallel()
	s := Default()

	overlap := Overlap([]string{"CSE101"}, []string{"CSE101", "CSE102"})
	if overlap != 1 {
		t.Fatalf("Overlap() = %v, want 1", overlap)
	}

	got := s.Blend(0.8, overlap)
	if math.Abs(got-0.86) > 1e-9 {
		t.Errorf("Blend(0.8, 1.0) = %v, want 0.86", got)
	}
}

func TestMatchScoreWithOverlap(t *testing.T) {
	t.Parallel()
	s := Default()

	m, err := s.MatchScoreWithOverlap(vector.Vector{1, 0, 0}, vector.Vector{1, 0, 0}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	wantSemantic := math.Tanh(1)*0.5 + 0.5
	if math.Abs(m.Semantic-wantSemantic) > 1e-12 {
		t.Errorf("Semantic = %v, want %v", m.Semantic, wantSemantic)
	}
	if !m.OverlapApplied {
		t.Error("OverlapApplied = false")
	}
	if want := 0.7*wantSemantic + 0.3*0.5; math.Abs(m.Final-want) > 1e-12 {
		t.Errorf("Final = %v, want %v", m.Final, want)
	}
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schedule []string
		required []string
		want     float64
	}{
		{"full", []string{"CSE101"}, []string{"CSE101", "CSE102"}, 1},
		{"half", []string{"CSE101", "MATH200"}, []string{"CSE101"}, 0.5},
		{"none", []string{"ART100"}, []string{"CSE101"}, 0},
		{"empty schedule", nil, []string{"CSE101"}, 0},
		{"empty required", []string{"CSE101"}, nil, 0},
		{"duplicates collapse", []string{"CSE101", "CSE101", "MATH200"}, []string{"CSE101"}, 0.5},
		{"case and spacing", []string{" cse101 "}, []string{"CSE101"}, 1},
		{"blank codes ignored", []string{"", "CSE101"}, []string{"CSE101"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlap(tt.schedule, tt.required); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Overlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero steepness", func(c *Config) { c.Steepness = 0 }, true},
		{"negative steepness", func(c *Config) { c.Steepness = -1 }, true},
		{"center out of range", func(c *Config) { c.Center = 1.5 }, true},
		{"weights do not sum to one", func(c *Config) { c.OverlapWeight = 0.5 }, true},
		{"negative weight", func(c *Config) { c.SemanticWeight = 1.2; c.OverlapWeight = -0.2 }, true},
		{"semantic only", func(c *Config) { c.SemanticWeight = 1; c.OverlapWeight = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if _, nerr := NewScorer(cfg); (nerr != nil) != tt.wantErr {
				t.Errorf("NewScorer() error = %v, wantErr %v", nerr, tt.wantErr)
			}
		})
	}
}
