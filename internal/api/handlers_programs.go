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
)

// ListPrograms returns catalog programs, optionally filtered by institution.
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	var (
		programs []recommend.Program
		err      error
	)
	if inst := strings.TrimSpace(r.URL.Query().Get("institution")); inst != "" {
		programs, err = h.db.ListProgramsByInstitution(ctx, inst)
	} else {
		programs, err = h.db.ListPrograms(ctx)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "Failed to list programs", err)
		return
	}
	if programs == nil {
		programs = []recommend.Program{}
	}

	respondData(w, r, http.StatusOK, models.ProgramsResponse{Programs: programs, Total: len(programs)})
}

// UploadPrograms loads a program CSV. Required and elective course lists
// reference courses at the program's institution; references to unknown
// courses are reported but do not fail the upload.
func (h *Handler) UploadPrograms(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, h.maxUploadBytes())
	if err != nil {
		respondUploadError(w, err)
		return
	}

	programs, err := database.ReadProgramsCSV(bytes.NewReader(data), strings.TrimSpace(r.URL.Query().Get("institution")))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	result, err := h.db.UpsertPrograms(ctx, programs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "Failed to store programs", err)
		return
	}

	logging.Ctx(ctx).Info().
		Int("rows", len(programs)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("links", result.Links).
		Int("missing_courses", len(result.MissingCourses)).
		Msg("Programs uploaded")

	h.reloadEngine(ctx)

	respondData(w, r, http.StatusOK, models.UploadResponse{
		Rows:           len(programs),
		Created:        result.Created,
		Updated:        result.Updated,
		Links:          result.Links,
		MissingCourses: result.MissingCourses,
	})
}
