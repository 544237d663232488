// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package schedules stores student schedules between requests.
//
// A schedule is a list of completed courses uploaded once and then referenced
// by ID from recommendation requests. Schedules are transient: each one is
// written to BadgerDB with a TTL and disappears when it expires. Values are
// JSON encoded with goccy/go-json.
//
//	store, err := schedules.Open(schedules.Config{Path: "/data/schedules", TTL: 7 * 24 * time.Hour})
//	s, err := store.Create(ctx, "CSUSB", courses)
//	s, err = store.Get(ctx, s.ID)
//
// Get returns ErrNotFound for unknown IDs and ErrExpired for schedules past
// their expiry that BadgerDB has not yet dropped.
package schedules
