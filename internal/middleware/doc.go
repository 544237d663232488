// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package middleware provides HTTP middleware for the DegreeMatch API.

All middleware uses the func(http.Handler) http.Handler shape so it plugs
directly into chi's r.Use:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(logger))

# Request IDs

RequestID reuses a well-formed X-Request-ID header from an upstream proxy or
generates a UUID. The ID is echoed in the response header and stored in the
request context both under RequestIDKey and through the logging package, so
logging.Ctx(ctx) loggers carry request_id and correlation_id fields.

# Metrics

PrometheusMetrics records degreematch_api_requests_total and
degreematch_api_request_duration_seconds. The path label is the chi route
pattern ("/api/v1/courses/{institution}/{code}") rather than the raw URL, which
keeps label cardinality bounded. Requests that match no route are labelled
"unmatched".

# Access Log

AccessLog writes one zerolog event per request. 5xx responses log at error,
4xx at warn and everything else at info.
*/
package middleware
