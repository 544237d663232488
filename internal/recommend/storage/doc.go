// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package storage provides versioned persistence for trained vector spaces.
//
// A trained word2vec model takes minutes to build from the catalog corpus.
// Persisting it lets the server restore the last published model at
// startup instead of retraining.
//
// # Storage Format
//
// Models are stored with metadata in a gob-encoded, gzip-compressed format:
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ModelMetadata, including a SHA-256 checksum)
//	  - CompressedData (gzip-compressed gob-encoded ModelData)
//
// Files are written to a temporary name and renamed into place, so a
// crash never leaves a partially written version behind.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/models")
//	if err != nil {
//	    return err
//	}
//	models := storage.NewVectorSpaceStore(store, storage.DefaultModelName, 3, logger)
//	engine.SetModelStore(models)
//
// # Thread Safety
//
// Store guards its version index with an RWMutex. Concurrent loads run in
// parallel while saves, deletes and prunes are serialized.
package storage
