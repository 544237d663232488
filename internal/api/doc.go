// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package api provides the HTTP API for DegreeMatch.

Routes are served by a chi router under /api/v1. Every response uses the
models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "error": {"code": "NOT_FOUND", "message": "..."}, "metadata": {...}}

# Endpoints

Catalog:

	GET    /api/v1/courses                                  list courses (institution, limit, offset)
	GET    /api/v1/courses/similarity?a=inst:code&b=inst:code
	GET    /api/v1/courses/{institution}/{code}
	GET    /api/v1/courses/{institution}/{code}/similar     (target_institution, limit)
	POST   /api/v1/courses/upload                           CSV (institution default)
	GET    /api/v1/programs                                 (institution)
	POST   /api/v1/programs/upload                          CSV

Schedules:

	POST   /api/v1/schedules                                JSON body
	POST   /api/v1/schedules/upload                         CSV with a course_code column
	GET    /api/v1/schedules/{id}
	DELETE /api/v1/schedules/{id}

Recommendations:

	POST   /api/v1/recommend/programs
	POST   /api/v1/recommend/train                          202, or 409 while training
	POST   /api/v1/recommend/embeddings/refresh
	GET    /api/v1/recommend/status
	GET    /api/v1/recommend/config

Operations:

	GET    /api/v1/health
	GET    /metrics

# Error Mapping

respondServiceError maps package sentinels onto status codes: validation
failures are 400 VALIDATION_ERROR, not-found sentinels 404, a schedule with
no known vectors 422 NO_EMBEDDING, an untrained engine 503 MODEL_NOT_READY and
a concurrent training run 409 TRAINING_IN_PROGRESS.

# Middleware

Global: request ID, real IP, panic recovery, CORS. The /api/v1 group adds
security headers, Prometheus instrumentation, an access log and a per-IP
httprate limit. Training and embedding refresh share a stricter limit.
*/
package api
