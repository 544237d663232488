// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package services provides suture.Service wrappers for DegreeMatch components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and identifies itself through fmt.Stringer:

  - HTTPServerService runs an *http.Server and shuts it down gracefully when
    the context ends, then drains background handler work.
  - TrainingService trains the engine at startup when no model was restored
    and then on a fixed interval.
  - ScheduleGCService runs the schedule store's value-log GC periodically.

Returning an error from Serve asks the supervisor to restart the service
with backoff. Returning after context cancellation ends it for good.
*/
package services
