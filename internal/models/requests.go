// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package models

import (
	"strings"

	"github.com/tomtom215/degreematch/internal/recommend"
)

// CourseRef identifies a course in a request body. Institution may be empty
// when the enclosing request names one.
type CourseRef struct {
	Institution string `json:"institution" validate:"max=200"`
	Code        string `json:"code" validate:"required,notblank,max=64"`
}

// CreateScheduleRequest is the body of POST /schedules.
type CreateScheduleRequest struct {
	Institution string      `json:"institution" validate:"max=200"`
	Courses     []CourseRef `json:"courses" validate:"required,min=1,max=200,dive"`
}

// RecommendProgramsRequest is the body of POST /recommend/programs. Either
// ScheduleID or Courses must be set; Courses wins when both are.
type RecommendProgramsRequest struct {
	ScheduleID         string      `json:"schedule_id" validate:"omitempty,uuid"`
	Institution        string      `json:"institution" validate:"max=200"`
	Courses            []CourseRef `json:"courses" validate:"required_without=ScheduleID,omitempty,max=200,dive"`
	NumRecommendations int         `json:"num_recommendations" validate:"min=0,max=100"`
	MinSimilarity      *float64    `json:"min_similarity" validate:"omitempty,gte=0,lte=1"`
	Explain            bool        `json:"explain"`
}

// ToCourseKeys converts refs to canonical keys, filling an empty institution
// with defaultInstitution. Refs without any institution are returned
// separately so callers can report them.
func ToCourseKeys(refs []CourseRef, defaultInstitution string) (keys []recommend.CourseKey, invalid []CourseRef) {
	defaultInstitution = strings.TrimSpace(defaultInstitution)
	keys = make([]recommend.CourseKey, 0, len(refs))
	for _, ref := range refs {
		inst := strings.TrimSpace(ref.Institution)
		if inst == "" {
			inst = defaultInstitution
		}
		if inst == "" || strings.TrimSpace(ref.Code) == "" {
			invalid = append(invalid, ref)
			continue
		}
		keys = append(keys, recommend.NewCourseKey(inst, ref.Code))
	}
	return keys, invalid
}
