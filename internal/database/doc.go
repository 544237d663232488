// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package database is the DuckDB-backed course catalog for DegreeMatch.
//
// The catalog stores courses, programs and the links between programs and
// their required and elective courses. Persisted document vectors live next
// to the rows they describe as little-endian float64 BLOBs.
//
// # Files
//
//   - database.go: connection lifecycle, pool configuration, checkpointing
//   - migrations.go: versioned schema migrations tracked in schema_migrations
//   - courses.go: course upserts, lookups, paging and vector persistence
//   - programs.go: program upserts with requirement links and vector persistence
//   - vectors.go: BLOB encoding of vectors
//   - csv.go: CSV readers for courses, programs, schedules and embeddings
//
// # Engine Integration
//
// *DB implements recommend.DataProvider and recommend.EmbeddingWriter:
//
//	db, err := database.New(&cfg.Database)
//	engine.SetDataProvider(db)
//	engine.SetEmbeddingWriter(db)
//
// # Keys
//
// Courses are keyed by (institution, code) and programs by (institution,
// name). Codes are stored in the canonical form produced by
// recommend.NewCourseKey, so lookups are exact matches.
//
// # Concurrency
//
// *DB is safe for concurrent use. Multi-row writes run inside a single
// transaction so readers never observe a half-loaded program.
package database
