// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package embedding

import "github.com/tomtom215/degreematch/internal/recommend/vector"

// Coverage describes how much of a text the model recognized.
type Coverage struct {
	Tokens int `json:"tokens"`
	Known  int `json:"known"`
}

// Ratio returns Known/Tokens, or 0 for empty text.
func (c Coverage) Ratio() float64 {
	if c.Tokens == 0 {
		return 0
	}
	return float64(c.Known) / float64(c.Tokens)
}

// Vectorize maps text to the mean of its known token vectors. Unknown
// tokens are skipped. If no token is known the zero vector of the model's
// dimension is returned.
func (m *Model) Vectorize(text string) vector.Vector {
	v, _ := m.vectorizeTokens(Tokenize(text))
	return v
}

// VectorizeWithCoverage is Vectorize that also reports token coverage.
func (m *Model) VectorizeWithCoverage(text string) (vector.Vector, Coverage) {
	return m.vectorizeTokens(Tokenize(text))
}

// Coverage reports how many tokens of text are in the vocabulary.
func (m *Model) Coverage(text string) Coverage {
	tokens := Tokenize(text)
	c := Coverage{Tokens: len(tokens)}
	for _, tok := range tokens {
		if m.Contains(tok) {
			c.Known++
		}
	}
	return c
}

func (m *Model) vectorizeTokens(tokens []string) (vector.Vector, Coverage) {
	out := vector.Zero(m.dim)
	c := Coverage{Tokens: len(tokens)}

	for _, tok := range tokens {
		i, ok := m.index[tok]
		if !ok {
			continue
		}
		c.Known++
		for j, x := range m.row(i) {
			out[j] += x
		}
	}

	if c.Known > 0 {
		inv := 1 / float64(c.Known)
		for j := range out {
			out[j] *= inv
		}
	}
	return out, c
}

// Vectorize maps text to a document vector using model.
func Vectorize(text string, model *Model) vector.Vector {
	return model.Vectorize(text)
}
