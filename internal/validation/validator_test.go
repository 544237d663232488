// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type recommendParams struct {
	Institution string   `json:"institution" validate:"omitempty,notblank,max=200"`
	Courses     []string `json:"courses" validate:"required_without=ScheduleID,omitempty,min=1,max=50,dive,coursekey"`
	ScheduleID  string   `json:"schedule_id" validate:"omitempty,uuid"`
	TopN        int      `json:"num_recommendations" validate:"min=0,max=50"`
	Degree      string   `json:"degree_type" validate:"degreetype"`
	Program     string   `json:"program" validate:"omitempty,programkey"`
	Internal    string   `json:"-" validate:"max=3"`
	NoTag       int      `validate:"min=1"`
}

func validParams() recommendParams {
	return recommendParams{
		Institution: "CSUSB",
		Courses:     []string{"CSUSB:CSE 2010", "CSUSB:MATH 2110"},
		TopN:        5,
		Degree:      "Bachelor",
		Program:     "CSUSB:Computer Science",
		NoTag:       1,
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*recommendParams)
	}{
		{"all fields", func(p *recommendParams) {}},
		{"schedule id instead of courses", func(p *recommendParams) {
			p.Courses = nil
			p.ScheduleID = "6f1c1f3e-6a4f-4d8b-9a43-6a2f0c8e9d11"
		}},
		{"empty optional fields", func(p *recommendParams) {
			p.Institution = ""
			p.Degree = ""
			p.Program = ""
			p.TopN = 0
		}},
		{"code containing colon", func(p *recommendParams) { p.Courses = []string{"UCLA:MATH:31A"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.modify(&p)
			if err := ValidateStruct(&p); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*recommendParams)
		wantField string
		wantTag   string
	}{
		{"blank institution", func(p *recommendParams) { p.Institution = "   " }, "institution", "notblank"},
		{"neither courses nor schedule", func(p *recommendParams) { p.Courses = nil }, "courses", "required_without"},
		{"course without institution", func(p *recommendParams) { p.Courses = []string{"CSE 2010"} }, "courses[0]", "coursekey"},
		{"bad schedule id", func(p *recommendParams) { p.ScheduleID = "abc" }, "schedule_id", "uuid"},
		{"top n too large", func(p *recommendParams) { p.TopN = 51 }, "num_recommendations", "max"},
		{"unknown degree", func(p *recommendParams) { p.Degree = "Diploma" }, "degree_type", "degreetype"},
		{"program without institution", func(p *recommendParams) { p.Program = "Computer Science" }, "program", "programkey"},
		{"json ignored field uses go name", func(p *recommendParams) { p.Internal = "long" }, "Internal", "max"},
		{"untagged field uses go name", func(p *recommendParams) { p.NoTag = 0 }, "NoTag", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.modify(&p)

			err := ValidateStruct(&p)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	p := validParams()
	p.TopN = 100

	err := ValidateStruct(&p)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "num_recommendations must be at most 50" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "num_recommendations" || apiErr.Details["value"] != 100 {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	p := validParams()
	p.TopN = -1
	p.Degree = "Diploma"

	err := ValidateStruct(&p)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "num_recommendations: ") || !strings.Contains(apiErr.Message, "degree_type: ") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", apiErr)
	}
	if (&RequestValidationError{}).Error() != "validation failed" {
		t.Error("Error() on empty errors should be generic")
	}
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("file", "required", "file is required", nil)
	if err.Error() != "file is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	apiErr := err.ToAPIError()
	if apiErr.Details["field"] != "file" || apiErr.Details["tag"] != "required" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("ValidateStruct(string) = nil, want error")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", err.Errors()[0].Field())
	}
}

func TestErrorMessages(t *testing.T) {
	type sized struct {
		Name  string   `json:"name" validate:"min=3"`
		Tags  []string `json:"tags" validate:"max=1"`
		Limit int      `json:"limit" validate:"gte=1"`
		Mode  string   `json:"mode" validate:"oneof=json console"`
	}

	err := ValidateStruct(&sized{Name: "ab", Tags: []string{"a", "b"}, Limit: 0, Mode: "xml"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	want := map[string]string{
		"name":  "name must be at least 3 characters",
		"tags":  "tags must be at most 1 items",
		"limit": "limit must be greater than or equal to 1",
		"mode":  "mode must be one of: json console",
	}
	for _, e := range err.Errors() {
		if got := e.Error(); got != want[e.Field()] {
			t.Errorf("%s: message = %q, want %q", e.Field(), got, want[e.Field()])
		}
	}
	if len(err.Errors()) != len(want) {
		t.Errorf("len(Errors()) = %d, want %d", len(err.Errors()), len(want))
	}
}
