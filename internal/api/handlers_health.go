// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/degreematch/internal/models"
)

// Health reports liveness and engine readiness. It always returns 200 so
// load balancers do not restart a process that is merely untrained; the
// status field is "healthy", "degraded" (no model) or "unhealthy" (no DB).
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.db != nil && h.db.Ping(ctx) == nil
	schemaVersion := 0
	if dbOK {
		if v, err := h.db.GetCurrentSchemaVersion(ctx); err == nil {
			schemaVersion = v
		}
	}

	ready := h.engine.IsReady()
	status := "healthy"
	switch {
	case !dbOK:
		status = "unhealthy"
	case !ready:
		status = "degraded"
	}

	respondData(w, r, http.StatusOK, models.HealthResponse{
		Status:        status,
		Version:       h.version,
		DatabaseOK:    dbOK,
		ModelReady:    ready,
		IsTraining:    h.engine.IsTraining(),
		SchemaVersion: schemaVersion,
		Uptime:        time.Since(h.startTime).Seconds(),
		Timestamp:     time.Now(),
	})
}
