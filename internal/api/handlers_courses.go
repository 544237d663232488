// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/models"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/validation"
)

const (
	defaultCoursePageSize = 50
	maxCoursePageSize     = 500
)

// ListCourses returns a page of catalog courses.
//
// Query parameters: institution, limit (1-500, default 50), offset.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultCoursePageSize)
	offset := getIntParam(r, "offset", 0)
	if limit < 1 || limit > maxCoursePageSize {
		respondServiceError(w, validation.NewFieldError("limit", "range", "limit must be between 1 and 500", limit))
		return
	}
	if offset < 0 {
		respondServiceError(w, validation.NewFieldError("offset", "min", "offset must be 0 or greater", offset))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	courses, total, err := h.db.ListCoursesPage(ctx, database.CourseFilter{
		Institution: strings.TrimSpace(r.URL.Query().Get("institution")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "Failed to list courses", err)
		return
	}
	if courses == nil {
		courses = []recommend.Course{}
	}

	respondData(w, r, http.StatusOK, models.CoursesResponse{
		Courses:    courses,
		Pagination: models.NewPaginationInfo(limit, offset, total),
	})
}

// GetCourse returns one course.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKeyFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	course, err := h.db.GetCourse(ctx, key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusOK, course)
}

// SimilarCourses returns the courses nearest to the path course.
//
// Query parameters: target_institution, limit.
func (h *Handler) SimilarCourses(w http.ResponseWriter, r *http.Request) {
	key, ok := courseKeyFromPath(w, r)
	if !ok {
		return
	}
	limit := getIntParam(r, "limit", 0)
	if limit < 0 {
		respondServiceError(w, validation.NewFieldError("limit", "min", "limit must be 0 or greater", limit))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	results, err := h.engine.SimilarCourses(ctx, recommend.SimilarRequest{
		Course:            key,
		TargetInstitution: strings.TrimSpace(r.URL.Query().Get("target_institution")),
		Limit:             limit,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if results == nil {
		results = []recommend.SimilarCourse{}
	}

	respondData(w, r, http.StatusOK, models.SimilarCoursesResponse{Course: key, Results: results})
}

// CourseSimilarity returns the cosine similarity between courses a and b,
// each given as institution:code.
func (h *Handler) CourseSimilarity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, err := recommend.ParseCourseKey(q.Get("a"))
	if err != nil {
		respondServiceError(w, validation.NewFieldError("a", "coursekey", "a must be institution:code", q.Get("a")))
		return
	}
	b, err := recommend.ParseCourseKey(q.Get("b"))
	if err != nil {
		respondServiceError(w, validation.NewFieldError("b", "coursekey", "b must be institution:code", q.Get("b")))
		return
	}

	sim, err := h.engine.CourseSimilarity(a, b)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, r, http.StatusOK, models.CourseSimilarityResponse{A: a, B: b, Similarity: sim})
}

// UploadCourses loads a course CSV into the catalog. The institution query
// parameter fills rows that have no institution column.
func (h *Handler) UploadCourses(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, h.maxUploadBytes())
	if err != nil {
		respondUploadError(w, err)
		return
	}

	courses, err := database.ReadCoursesCSV(bytes.NewReader(data), strings.TrimSpace(r.URL.Query().Get("institution")))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	result, err := h.db.UpsertCourses(ctx, courses)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "Failed to store courses", err)
		return
	}

	logging.Ctx(ctx).Info().
		Int("rows", len(courses)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Msg("Courses uploaded")

	h.reloadEngine(ctx)

	respondData(w, r, http.StatusOK, models.UploadResponse{
		Rows:    len(courses),
		Created: result.Created,
		Updated: result.Updated,
	})
}

// courseKeyFromPath reads {institution} and {code}, writing a 400 when
// either is blank.
func courseKeyFromPath(w http.ResponseWriter, r *http.Request) (recommend.CourseKey, bool) {
	inst := urlParam(r, "institution")
	code := urlParam(r, "code")
	if inst == "" || code == "" {
		respondServiceError(w, validation.NewFieldError("code", "coursekey", "institution and code are required", nil))
		return recommend.CourseKey{}, false
	}
	return recommend.NewCourseKey(inst, code), true
}
