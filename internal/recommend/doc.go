// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package recommend ranks academic programs against a set of completed
// courses.
//
// # Architecture
//
// Recommendation runs over a single learned vector space:
//
//   - embedding: text normalization, word2vec training, document vectors
//   - vector: dense vector math (cosine, weighted aggregation, L2 norm)
//   - scoring: tanh spread of raw cosine and the course-overlap blend
//   - recommend: snapshots, ranking, the engine and offline evaluation
//   - storage: versioned persistence of trained models
//
// Every course is represented by the mean of its word vectors. A program is
// represented by its persisted vector or, failing that, by the mean of its
// required courses. A schedule is the mean of its course vectors and is
// never normalized.
//
// # Snapshots
//
// Training produces a new model and a new Snapshot holding every course and
// program vector. The engine publishes snapshots with an atomic pointer
// swap, so requests in flight keep scoring against the snapshot they
// started with and no request ever sees a half-updated model.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(db)
//	engine.SetEmbeddingWriter(db)
//
//	if err := engine.Train(ctx); err != nil {
//	    return err
//	}
//
//	resp, err := engine.RecommendPrograms(ctx, recommend.ProgramRequest{
//	    Courses:     []recommend.CourseKey{recommend.NewCourseKey("CSUSB", "CSE 2010")},
//	    Institution: "CSUSB",
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training, restore and reload are
// serialized; recommendation and similarity queries never block on them.
package recommend
