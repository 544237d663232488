// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/degreematch/internal/explain"
	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/models"
	"github.com/tomtom215/degreematch/internal/recommend"
)

// RecommendPrograms ranks programs for a schedule given inline or by ID.
//
// Request body: see models.RecommendProgramsRequest. Inline courses win
// over schedule_id. The request institution, or the stored schedule's,
// enables the requirement overlap bonus.
func (h *Handler) RecommendPrograms(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendProgramsRequest
	if err := decodeJSONBody(w, r, &req, maxJSONBodyBytes); err != nil {
		respondDecodeError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	institution := strings.TrimSpace(req.Institution)
	var courses []recommend.CourseKey
	scheduleID := ""
	if len(req.Courses) > 0 {
		keys, invalid := models.ToCourseKeys(req.Courses, institution)
		if len(invalid) > 0 {
			respondServiceError(w, missingInstitutionError(invalid))
			return
		}
		courses = keys
	} else {
		schedule, err := h.schedules.Get(ctx, req.ScheduleID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		courses = schedule.Courses
		scheduleID = schedule.ID
		if institution == "" {
			institution = schedule.Institution
		}
	}

	resp, err := h.engine.RecommendPrograms(ctx, recommend.ProgramRequest{
		RequestID:     logging.RequestIDFromContext(r.Context()),
		Courses:       courses,
		Institution:   institution,
		TopN:          req.NumRecommendations,
		MinSimilarity: req.MinSimilarity,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := models.RecommendProgramsResponse{
		Recommendations: make([]models.ExplainedRecommendation, len(resp.Recommendations)),
		Missing:         resp.Missing,
		ScheduleID:      scheduleID,
		Metadata:        resp.Metadata,
	}
	for i, rec := range resp.Recommendations {
		out.Recommendations[i].ProgramRecommendation = rec
	}
	if req.Explain {
		h.explainAll(ctx, out.Recommendations, courses)
	}

	respondData(w, r, http.StatusOK, out)
}

// explainAll fills explanations in place. Failures leave the explanation
// empty; the ranking is still returned.
func (h *Handler) explainAll(ctx context.Context, recs []models.ExplainedRecommendation, keys []recommend.CourseKey) {
	courses := h.lookupCourses(ctx, keys)

	for i := range recs {
		program, err := h.db.GetProgram(ctx, recs[i].Program)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("program", recs[i].Program.String()).Msg("Program lookup for explanation failed")
			program = nil
		}

		text, err := h.explainer.Explain(ctx, explain.Request{
			Recommendation: recs[i].ProgramRecommendation,
			Program:        program,
			Courses:        courses,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Ctx(ctx).Warn().Err(err).Str("program", recs[i].Program.String()).Msg("Explanation failed")
			continue
		}
		recs[i].Explanation = text
	}
}

// lookupCourses resolves catalog details for keys, skipping unknown courses
// and duplicates.
func (h *Handler) lookupCourses(ctx context.Context, keys []recommend.CourseKey) []recommend.Course {
	seen := make(map[recommend.CourseKey]struct{}, len(keys))
	courses := make([]recommend.Course, 0, len(keys))
	for _, k := range keys {
		k = k.Canonical()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		c, err := h.db.GetCourse(ctx, k)
		if err != nil {
			courses = append(courses, recommend.Course{Institution: k.Institution, Code: k.Code})
			continue
		}
		courses = append(courses, *c)
	}
	return courses
}

// TriggerTraining starts a training run in the background and returns 202.
// A run already in progress yields 409.
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	if h.engine.IsTraining() || !h.training.CompareAndSwap(false, true) {
		respondServiceError(w, recommend.ErrTrainingInProgress)
		return
	}

	requestID := logging.RequestIDFromContext(r.Context())
	correlationID := logging.CorrelationIDFromContext(r.Context())
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		defer h.training.Store(false)

		// The run outlives the request but keeps its IDs.
		ctx, cancel := context.WithTimeout(context.Background(), h.trainTimeout)
		defer cancel()
		ctx = logging.ContextWithLogger(ctx, h.logger)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		if correlationID != "" {
			ctx = logging.ContextWithCorrelationID(ctx, correlationID)
		}

		start := time.Now()
		if err := h.train(ctx); err != nil {
			if errors.Is(err, recommend.ErrTrainingInProgress) {
				logging.Ctx(ctx).Info().Msg("Training request skipped, run already active")
				return
			}
			logging.CtxErr(ctx, err).Msg("Background training failed")
			return
		}
		logging.Ctx(ctx).Info().
			Dur("duration", time.Since(start)).
			Msg("Background training completed")
	}()

	respondData(w, r, http.StatusAccepted, models.TrainResponse{
		Status:  "accepted",
		Message: "Training started in background",
	})
}

// RefreshEmbeddings recomputes and persists catalog vectors with the
// current model.
func (h *Handler) RefreshEmbeddings(w http.ResponseWriter, r *http.Request) {
	if h.engine.IsTraining() || h.training.Load() {
		respondServiceError(w, recommend.ErrTrainingInProgress)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	stats, err := h.engine.RefreshEmbeddings(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusOK, stats)
}

// Status returns training state, engine counters and catalog counts.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	stats, err := h.db.Stats(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "Failed to read catalog stats", err)
		return
	}

	stored, err := h.schedules.Count(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count stored schedules")
	}

	respondData(w, r, http.StatusOK, models.StatusResponse{
		Training: h.engine.GetStatus(),
		Metrics:  h.engine.GetMetrics(),
		Catalog: models.CatalogCounts{
			Courses:             stats.Courses,
			CoursesWithVectors:  stats.CoursesWithVectors,
			Programs:            stats.Programs,
			ProgramsWithVectors: stats.ProgramsWithVectors,
			Institutions:        stats.Institutions,
		},
		Explain: models.ExplainStatus{Provider: h.explainer.Name()},
		Stored:  stored,
	})
}

// GetConfig returns the active engine configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.engine.GetConfig())
}
