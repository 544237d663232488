// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
share the "degreematch" namespace.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - degreematch_api_requests_total: Total API requests (counter)
    Labels: method, path, status
  - degreematch_api_request_duration_seconds: Request latency (histogram)
    Labels: method, path
  - degreematch_api_active_requests: In-flight requests (gauge)
  - degreematch_api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: path

Database Metrics:
  - degreematch_db_query_duration_seconds: Catalog query time (histogram)
    Labels: operation, table
  - degreematch_db_query_errors_total: Failed catalog queries (counter)
    Labels: operation, table

Training Metrics:
  - degreematch_training_runs_total: Training runs (counter)
    Labels: result (success, failure)
  - degreematch_training_duration_seconds: Training time (histogram)
  - degreematch_model_vocabulary_size: Tokens in the published model (gauge)

Recommendation Metrics:
  - degreematch_recommendations_total: Computed responses (counter)
  - degreematch_rank_skipped_candidates_total: Programs skipped while ranking (counter)
    Labels: reason (no_embedding, dimension_mismatch)
  - degreematch_recommend_cache_total: Cache lookups (counter)
    Labels: result (hit, miss)

Schedule and Explanation Metrics:
  - degreematch_schedules_operations_total: Saved schedule operations (counter)
    Labels: operation, result
  - degreematch_explain_requests_total: Match explanations (counter)
    Labels: provider, result

Circuit Breaker Metrics:
  - degreematch_circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - degreematch_circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

# Usage Example

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "courses", time.Since(start), err)

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
