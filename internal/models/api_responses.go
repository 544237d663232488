// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package models

import (
	"time"

	"github.com/tomtom215/degreematch/internal/recommend"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "MODEL_NOT_READY",
//	    "message": "Recommendation model is not trained yet"
//	  },
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Course, program or schedule doesn't exist
//   - NO_EMBEDDING: A referenced course has no vector
//   - MODEL_NOT_READY: No trained snapshot is available
//   - TRAINING_IN_PROGRESS: A training run is already active
//   - DATABASE_ERROR: Catalog query failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo contains offset pagination metadata.
type PaginationInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// NewPaginationInfo computes HasMore from the page bounds.
func NewPaginationInfo(limit, offset, total int) PaginationInfo {
	return PaginationInfo{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: offset+limit < total,
	}
}

// CoursesResponse is a page of catalog courses.
type CoursesResponse struct {
	Courses    []recommend.Course `json:"courses"`
	Pagination PaginationInfo     `json:"pagination"`
}

// ProgramsResponse lists catalog programs.
type ProgramsResponse struct {
	Programs []recommend.Program `json:"programs"`
	Total    int                 `json:"total"`
}

// UploadResponse summarizes a CSV catalog upload.
type UploadResponse struct {
	Rows           int                   `json:"rows"`
	Created        int                   `json:"created"`
	Updated        int                   `json:"updated"`
	Links          int                   `json:"links,omitempty"`
	MissingCourses []recommend.CourseKey `json:"missing_courses,omitempty"`
}

// SimilarCoursesResponse lists courses similar to a source course.
type SimilarCoursesResponse struct {
	Course  recommend.CourseKey       `json:"course"`
	Results []recommend.SimilarCourse `json:"results"`
}

// CourseSimilarityResponse is the cosine similarity between two courses.
type CourseSimilarityResponse struct {
	A          recommend.CourseKey `json:"a"`
	B          recommend.CourseKey `json:"b"`
	Similarity float64             `json:"similarity"`
}

// ExplainedRecommendation is a ranked program with an optional explanation.
type ExplainedRecommendation struct {
	recommend.ProgramRecommendation
	Explanation string `json:"explanation,omitempty"`
}

// RecommendProgramsResponse is the body of a program recommendation.
type RecommendProgramsResponse struct {
	Recommendations []ExplainedRecommendation  `json:"recommendations"`
	Missing         []recommend.CourseKey      `json:"missing,omitempty"`
	ScheduleID      string                     `json:"schedule_id,omitempty"`
	Metadata        recommend.ResponseMetadata `json:"metadata"`
}

// TrainResponse acknowledges a training request.
type TrainResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse reports service liveness and engine readiness.
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	DatabaseOK    bool      `json:"database_ok"`
	ModelReady    bool      `json:"model_ready"`
	IsTraining    bool      `json:"is_training"`
	SchemaVersion int       `json:"schema_version"`
	Uptime        float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// StatusResponse combines training status with catalog counts.
type StatusResponse struct {
	Training recommend.TrainingStatus `json:"training"`
	Metrics  recommend.Metrics        `json:"metrics"`
	Catalog  CatalogCounts            `json:"catalog"`
	Explain  ExplainStatus            `json:"explain"`
	Stored   int                      `json:"stored_schedules"`
}

// CatalogCounts mirrors database.CatalogStats for the API.
type CatalogCounts struct {
	Courses             int `json:"courses"`
	CoursesWithVectors  int `json:"courses_with_vectors"`
	Programs            int `json:"programs"`
	ProgramsWithVectors int `json:"programs_with_vectors"`
	Institutions        int `json:"institutions"`
}

// ExplainStatus describes the configured explanation provider.
type ExplainStatus struct {
	Provider string `json:"provider"`
}
