// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/explain"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
	"github.com/tomtom215/degreematch/internal/schedules"
	"github.com/tomtom215/degreematch/internal/validation"
)

// Error codes used in API responses.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidCSV         = "INVALID_CSV"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeScheduleExpired    = "SCHEDULE_EXPIRED"
	ErrCodeNoEmbedding        = "NO_EMBEDDING"
	ErrCodeModelNotReady      = "MODEL_NOT_READY"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeUnavailable        = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeDatabase           = "DATABASE_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
)

// errorMapping is one sentinel to response mapping.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []errorMapping{
	{recommend.ErrNotReady, http.StatusServiceUnavailable, ErrCodeModelNotReady, "Recommendation model is not trained yet"},
	{recommend.ErrTrainingInProgress, http.StatusConflict, ErrCodeTrainingInProgress, "Training is already in progress"},
	{recommend.ErrNoModel, http.StatusServiceUnavailable, ErrCodeModelNotReady, "No stored model is available"},
	{recommend.ErrCourseNotFound, http.StatusNotFound, ErrCodeNotFound, "Course not found"},
	{recommend.ErrProgramNotFound, http.StatusNotFound, ErrCodeNotFound, "Program not found"},
	{recommend.ErrInvalidRequest, http.StatusBadRequest, ErrCodeValidation, ""},
	{vector.ErrNoEmbedding, http.StatusUnprocessableEntity, ErrCodeNoEmbedding, "None of the requested courses have an embedding"},
	{database.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "Resource not found"},
	{database.ErrInvalidCSV, http.StatusBadRequest, ErrCodeInvalidCSV, ""},
	{schedules.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "Schedule not found"},
	{schedules.ErrExpired, http.StatusGone, ErrCodeScheduleExpired, "Schedule has expired"},
	{schedules.ErrEmptySchedule, http.StatusBadRequest, ErrCodeValidation, "Schedule must contain at least one course"},
	{schedules.ErrClosed, http.StatusServiceUnavailable, ErrCodeUnavailable, "Schedule store is unavailable"},
	{explain.ErrUnavailable, http.StatusServiceUnavailable, ErrCodeUnavailable, "Explanation provider is unavailable"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out"},
}

// respondServiceError maps err onto a status and code. An empty mapped
// message means the error text itself is safe to show.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			respondError(w, m.status, m.code, msg, err)
			return
		}
	}

	respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", err)
}
