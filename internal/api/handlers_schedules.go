// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/models"
	"github.com/tomtom215/degreematch/internal/validation"
)

// maxJSONBodyBytes caps JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// CreateSchedule stores a set of completed courses and returns its ID.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScheduleRequest
	if err := decodeJSONBody(w, r, &req, maxJSONBodyBytes); err != nil {
		respondDecodeError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	keys, invalid := models.ToCourseKeys(req.Courses, req.Institution)
	if len(invalid) > 0 {
		respondServiceError(w, missingInstitutionError(invalid))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	schedule, err := h.schedules.Create(ctx, req.Institution, keys)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusCreated, schedule)
}

// UploadSchedule stores a schedule read from a CSV with a course_code column.
func (h *Handler) UploadSchedule(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, h.maxUploadBytes())
	if err != nil {
		respondUploadError(w, err)
		return
	}

	institution := strings.TrimSpace(r.URL.Query().Get("institution"))
	keys, err := database.ReadScheduleCSV(bytes.NewReader(data), institution)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if limit := h.engine.GetConfig().Limits.MaxScheduleCourses; len(keys) > limit {
		respondServiceError(w, validation.NewFieldError("courses", "max",
			fmt.Sprintf("schedule must contain at most %d courses", limit), len(keys)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	schedule, err := h.schedules.Create(ctx, institution, keys)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusCreated, schedule)
}

// GetSchedule returns a stored schedule.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	schedule, err := h.schedules.Get(ctx, urlParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusOK, schedule)
}

// DeleteSchedule removes a stored schedule.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if err := h.schedules.Delete(ctx, urlParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// missingInstitutionError reports course refs that resolved to no
// institution.
func missingInstitutionError(invalid []models.CourseRef) error {
	codes := make([]string, len(invalid))
	for i, ref := range invalid {
		codes[i] = ref.Code
	}
	return validation.NewFieldError("courses", "required",
		"institution is required for courses: "+strings.Join(codes, ", "), codes)
}
