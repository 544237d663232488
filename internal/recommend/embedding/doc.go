// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package embedding builds and applies the shared word-vector space that
// courses and programs are projected into.
//
// # Components
//
//   - Normalize/Tokenize: lowercase, strip punctuation, split on whitespace
//   - Trainer: word2vec (CBOW or skip-gram) with negative sampling
//   - Model: immutable vocabulary to vector mapping
//   - Vectorize: mean of known token vectors, zero vector if none are known
//
// # Training
//
// Training is a batch job over the full corpus and should never run on the
// request path. It honors context cancellation between sentences and fails
// with ErrEmptyCorpus or ErrDegenerateVocabulary rather than producing an
// all-zero model. Given the same corpus and TrainConfig.Seed, two runs
// produce identical models.
//
// # Usage
//
//	model, err := embedding.Train(ctx, []embedding.CorpusItem{
//	    {Primary: "Data Structures", Secondary: "Lists, trees and graphs."},
//	}, embedding.DefaultTrainConfig())
//	if err != nil {
//	    return err
//	}
//	v := model.Vectorize("binary search trees")
package embedding
