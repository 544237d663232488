// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is created on first use and shared by all
// callers, so struct metadata is parsed once. Failures are returned as a
// *RequestValidationError that converts to the API's VALIDATION_ERROR shape.
//
// # Field Names
//
// Error messages use the json tag of a field when present, so a request body
// field "num_recommendations" is reported under that name rather than the Go
// field name.
//
// # Custom Tags
//
//   - notblank: string is not empty after trimming whitespace
//   - coursekey: string parses as "institution:code"
//   - programkey: string parses as "institution:program name"
//   - degreetype: string is a known degree type (empty allowed)
//
// # Usage
//
//	type SimilarParams struct {
//	    Course string `json:"course" validate:"required,coursekey"`
//	    Limit  int    `json:"limit" validate:"min=0,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
//	    return
//	}
package validation
