// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package vector provides the dense vector arithmetic shared by the
// embedding, scoring and ranking packages.
//
// # Embedding States
//
// A Vector has three distinguishable states:
//
//   - nil: no embedding exists (ErrNoEmbedding). Callers must treat this as
//     "cannot score", never as a zero vector.
//   - the zero vector: text was vectorized but no token was known. It carries
//     no signal and cosine similarity against it is defined as 0.
//   - any other vector: a legitimate direction in the shared space.
//
// # Aggregation
//
// Aggregate combines course vectors into program or schedule vectors using a
// weighted mean whose weights are normalized to sum to 1. Program embeddings
// are additionally passed through Normalize (L2) before being persisted;
// schedule vectors never are.
//
// # Thread Safety
//
// All functions are pure and allocate their results. Inputs are never
// modified.
package vector
