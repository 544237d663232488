// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package embedding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// ErrInvalidModel is returned when model data is inconsistent.
var ErrInvalidModel = errors.New("invalid model")

// ErrUnknownToken is returned when a token is not in the vocabulary.
var ErrUnknownToken = errors.New("unknown token")

// Model is a trained vector space: a vocabulary where each token maps to a
// fixed-dimension vector. A Model is immutable once constructed and safe
// for concurrent use. Accessors return copies.
type Model struct {
	dim     int
	vocab   []string
	counts  []int
	index   map[string]int
	vectors []float64 // row-major, len(vocab)*dim
}

// Neighbor is a vocabulary token with its similarity to a query token.
type Neighbor struct {
	Token      string  `json:"token"`
	Similarity float64 `json:"similarity"`
}

// Export is the plain-data form of a Model, used for persistence.
type Export struct {
	Dimension  int
	Vocabulary []string
	Counts     []int
	Vectors    [][]float64
}

// NewModel builds a Model from a vocabulary, per-token corpus counts and
// per-token vectors. counts may be nil. Every vector must have the same
// finite dimension and the vocabulary must not contain duplicates.
func NewModel(vocab []string, counts []int, vectors [][]float64) (*Model, error) {
	if len(vocab) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrInvalidModel)
	}
	if len(vectors) != len(vocab) {
		return nil, fmt.Errorf("%w: %d vectors for %d tokens", ErrInvalidModel, len(vectors), len(vocab))
	}
	if counts != nil && len(counts) != len(vocab) {
		return nil, fmt.Errorf("%w: %d counts for %d tokens", ErrInvalidModel, len(counts), len(vocab))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrInvalidModel)
	}

	m := &Model{
		dim:     dim,
		vocab:   make([]string, len(vocab)),
		counts:  make([]int, len(vocab)),
		index:   make(map[string]int, len(vocab)),
		vectors: make([]float64, 0, len(vocab)*dim),
	}
	copy(m.vocab, vocab)
	if counts != nil {
		copy(m.counts, counts)
	}

	allZero := true
	for i, tok := range vocab {
		if tok == "" {
			return nil, fmt.Errorf("%w: empty token at %d", ErrInvalidModel, i)
		}
		if _, dup := m.index[tok]; dup {
			return nil, fmt.Errorf("%w: duplicate token %q", ErrInvalidModel, tok)
		}
		if err := vector.Vector(vectors[i]).Validate(dim); err != nil {
			return nil, fmt.Errorf("%w: token %q: %v", ErrInvalidModel, tok, err)
		}
		if allZero && !vector.Vector(vectors[i]).IsZero() {
			allZero = false
		}
		m.index[tok] = i
		m.vectors = append(m.vectors, vectors[i]...)
	}
	if allZero {
		return nil, fmt.Errorf("%w: all vectors are zero", ErrInvalidModel)
	}

	return m, nil
}

// Dim returns the vector dimension.
func (m *Model) Dim() int {
	return m.dim
}

// Len returns the vocabulary size.
func (m *Model) Len() int {
	return len(m.vocab)
}

// Contains reports whether token is in the vocabulary.
func (m *Model) Contains(token string) bool {
	_, ok := m.index[token]
	return ok
}

// Lookup returns a copy of the vector for token.
func (m *Model) Lookup(token string) (vector.Vector, bool) {
	i, ok := m.index[token]
	if !ok {
		return nil, false
	}
	return vector.Vector(m.row(i)).Clone(), true
}

// Count returns how many times token appeared in the training corpus.
func (m *Model) Count(token string) int {
	i, ok := m.index[token]
	if !ok {
		return 0
	}
	return m.counts[i]
}

// Vocabulary returns the tokens in index order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.vocab))
	copy(out, m.vocab)
	return out
}

// Similarity returns the cosine similarity between two tokens.
func (m *Model) Similarity(a, b string) (float64, error) {
	ia, ok := m.index[a]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownToken, a)
	}
	ib, ok := m.index[b]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownToken, b)
	}
	return vector.Cosine(m.row(ia), m.row(ib))
}

// MostSimilar returns up to n tokens closest to token, most similar first.
func (m *Model) MostSimilar(token string, n int) ([]Neighbor, error) {
	idx, ok := m.index[token]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	if n <= 0 {
		return []Neighbor{}, nil
	}

	query := m.row(idx)
	neighbors := make([]Neighbor, 0, len(m.vocab)-1)
	for i, tok := range m.vocab {
		if i == idx {
			continue
		}
		sim, err := vector.Cosine(query, m.row(i))
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, Neighbor{Token: tok, Similarity: sim})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}

// Export returns a deep copy of the model data.
func (m *Model) Export() Export {
	vectors := make([][]float64, len(m.vocab))
	for i := range m.vocab {
		row := make([]float64, m.dim)
		copy(row, m.row(i))
		vectors[i] = row
	}
	counts := make([]int, len(m.counts))
	copy(counts, m.counts)

	return Export{
		Dimension:  m.dim,
		Vocabulary: m.Vocabulary(),
		Counts:     counts,
		Vectors:    vectors,
	}
}

// row returns the internal slice for index i. Callers must not modify it.
func (m *Model) row(i int) []float64 {
	return m.vectors[i*m.dim : (i+1)*m.dim]
}
