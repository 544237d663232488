// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/degreematch/internal/models"
	"github.com/tomtom215/degreematch/internal/recommend"
)

func TestScheduleLifecycle(t *testing.T) {
	env := newTestEnv(t, false, nil)

	req := models.CreateScheduleRequest{
		Institution: testInstitution,
		Courses: []models.CourseRef{
			{Code: "cse 2010"},
			{Institution: "UCR", Code: "CS 10"},
		},
	}

	var created recommend.Schedule
	decodeResponse(t, env.doJSON(t, http.MethodPost, "/api/v1/schedules", req), http.StatusCreated, &created)

	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("ID = %q, want a UUID", created.ID)
	}
	want := []recommend.CourseKey{
		recommend.NewCourseKey(testInstitution, "CSE 2010"),
		recommend.NewCourseKey("UCR", "CS 10"),
	}
	if len(created.Courses) != len(want) {
		t.Fatalf("Courses = %v, want %v", created.Courses, want)
	}
	for i := range want {
		if created.Courses[i] != want[i] {
			t.Errorf("Courses[%d] = %v, want %v", i, created.Courses[i], want[i])
		}
	}

	var got recommend.Schedule
	decodeResponse(t, env.do(t, http.MethodGet, "/api/v1/schedules/"+created.ID, nil, ""), http.StatusOK, &got)
	if got.ID != created.ID || len(got.Courses) != 2 {
		t.Errorf("Get() = %+v", got)
	}

	w := env.do(t, http.MethodDelete, "/api/v1/schedules/"+created.ID, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}

	wantErrorCode(t, env.do(t, http.MethodGet, "/api/v1/schedules/"+created.ID, nil, ""), http.StatusNotFound, ErrCodeNotFound)
	wantErrorCode(t, env.do(t, http.MethodDelete, "/api/v1/schedules/"+created.ID, nil, ""), http.StatusNotFound, ErrCodeNotFound)
}

func TestCreateSchedule_Invalid(t *testing.T) {
	env := newTestEnv(t, false, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{"courses": [`, ErrCodeInvalidJSON},
		{"unknown field", `{"courses": [{"code": "A", "institution": "U"}], "extra": 1}`, ErrCodeInvalidJSON},
		{"no courses", `{"institution": "CSUSB", "courses": []}`, ErrCodeValidation},
		{"blank code", `{"institution": "CSUSB", "courses": [{"code": "  "}]}`, ErrCodeValidation},
		{"no institution", `{"courses": [{"code": "CSE 2010"}]}`, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/schedules", strings.NewReader(tt.body), "application/json")
			wantErrorCode(t, w, http.StatusBadRequest, tt.wantCode)
		})
	}
}

func TestUploadSchedule(t *testing.T) {
	env := newTestEnv(t, false, nil)

	body := "course_code\nCSE 2010\nCSE 2020\nCSE 2010\n"
	var created recommend.Schedule
	decodeResponse(t, env.do(t, http.MethodPost, "/api/v1/schedules/upload?institution=CSUSB", strings.NewReader(body), "text/csv"), http.StatusCreated, &created)

	if len(created.Courses) != 3 {
		t.Errorf("len(Courses) = %d, want 3 (duplicates kept)", len(created.Courses))
	}
	if created.Institution != testInstitution {
		t.Errorf("Institution = %q, want %q", created.Institution, testInstitution)
	}

	t.Run("header only", func(t *testing.T) {
		wantErrorCode(t, env.do(t, http.MethodPost, "/api/v1/schedules/upload?institution=CSUSB", strings.NewReader("course_code\n"), "text/csv"), http.StatusBadRequest, ErrCodeInvalidCSV)
	})

	t.Run("no institution", func(t *testing.T) {
		wantErrorCode(t, env.do(t, http.MethodPost, "/api/v1/schedules/upload", strings.NewReader(body), "text/csv"), http.StatusBadRequest, ErrCodeInvalidCSV)
	})
}
