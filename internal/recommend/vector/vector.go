// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoEmbedding is returned when there is nothing to aggregate or an
	// entity has no resolvable vector.
	ErrNoEmbedding = errors.New("no embedding")

	// ErrInvalidDimension is returned when vectors of different lengths are
	// combined, or a vector contains NaN/Inf components.
	ErrInvalidDimension = errors.New("invalid vector dimension")

	// ErrInvalidWeights is returned when aggregation weights do not line up
	// with the vectors or are not strictly positive.
	ErrInvalidWeights = errors.New("invalid aggregation weights")
)

// Vector is a dense embedding. A nil Vector means "no embedding".
type Vector []float64

// Zero returns the zero vector of dimension d.
func Zero(d int) Vector {
	return make(Vector, d)
}

// Dim returns the dimension of v.
func (v Vector) Dim() int {
	return len(v)
}

// IsZero reports whether every component of v is zero.
// A nil or empty vector is considered zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of v. Clone of nil is nil.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Norm returns the Euclidean (L2) norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Validate checks that v has dimension d and only finite components.
func (v Vector) Validate(d int) error {
	if len(v) != d {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidDimension, len(v), d)
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: non-finite component at %d", ErrInvalidDimension, i)
		}
	}
	return nil
}

// Dot returns the dot product of a and b.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrInvalidDimension, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// If either vector is the zero vector the similarity is 0.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrInvalidDimension, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Rounding can push parallel vectors marginally past 1.
	switch {
	case sim > 1:
		return 1, nil
	case sim < -1:
		return -1, nil
	}
	return sim, nil
}

// Mean returns the unweighted element-wise mean of vs.
func Mean(vs []Vector) (Vector, error) {
	return Aggregate(vs, nil)
}

// Aggregate returns the weighted element-wise mean of vs. Weights are
// normalized to sum to 1; nil weights mean uniform weighting.
//
// Returns ErrNoEmbedding for empty input, ErrInvalidDimension when the
// vectors disagree on length, and ErrInvalidWeights when weights are
// malformed.
func Aggregate(vs []Vector, weights []float64) (Vector, error) {
	if len(vs) == 0 {
		return nil, ErrNoEmbedding
	}
	if weights != nil && len(weights) != len(vs) {
		return nil, fmt.Errorf("%w: %d weights for %d vectors", ErrInvalidWeights, len(weights), len(vs))
	}

	dim := len(vs[0])
	var total float64
	for i, v := range vs {
		if v == nil {
			return nil, fmt.Errorf("%w: vector %d is nil", ErrNoEmbedding, i)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d components, want %d", ErrInvalidDimension, i, len(v), dim)
		}
		if weights == nil {
			total++
			continue
		}
		w := weights[i]
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, i, w)
		}
		total += w
	}

	out := make(Vector, dim)
	for i, v := range vs {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		w /= total
		for j, x := range v {
			out[j] += w * x
		}
	}
	return out, nil
}

// Normalize returns v scaled to unit L2 norm. The zero vector is returned
// unchanged (as a copy).
func Normalize(v Vector) Vector {
	out := v.Clone()
	n := v.Norm()
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] /= n
	}
	return out
}
