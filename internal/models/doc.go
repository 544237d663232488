// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package models defines the HTTP API data structures for DegreeMatch.

Catalog and recommendation types live in internal/recommend; this package
holds the wire envelope and the request and response bodies that only exist
at the API boundary.

Key Components:

  - APIResponse: standard {status, data, metadata, error} envelope
  - APIError: machine-readable error code with message and details
  - PaginationInfo: offset pagination for catalog listings
  - RecommendProgramsRequest: body of POST /api/v1/recommend/programs
  - CreateScheduleRequest: body of POST /api/v1/schedules

Request types carry validate tags checked by internal/validation. Use
ToCourseKeys to convert CourseRef lists into canonical recommend.CourseKey
values before passing them to the engine.
*/
package models
