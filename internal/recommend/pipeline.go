// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// EmbeddingSet holds freshly computed vectors ready to be persisted.
type EmbeddingSet struct {
	Courses  map[CourseKey]vector.Vector
	Programs map[ProgramKey]vector.Vector
	Stats    EmbeddingStats
}

// CourseVector vectorizes a course as "code title description".
func CourseVector(model *embedding.Model, c *Course) vector.Vector {
	return model.Vectorize(c.EmbeddingText())
}

// ProgramVector computes a program's persisted embedding: the mean of
// (a) the mean of its required-course vectors and (b) the vector of its name
// and description, L2-normalized. Either part may be absent; a description
// with no known tokens contributes nothing. Returns nil when neither part
// exists.
func ProgramVector(model *embedding.Model, p *Program, courseVectors map[CourseKey]vector.Vector) vector.Vector {
	parts := make([]vector.Vector, 0, 2)

	required := make([]vector.Vector, 0, len(p.RequiredCourses))
	for _, key := range p.RequiredCourses {
		if v, ok := courseVectors[key.Canonical()]; ok && v != nil {
			required = append(required, v)
		}
	}
	if courseMean, err := vector.Mean(required); err == nil {
		parts = append(parts, courseMean)
	}

	if desc, cov := model.VectorizeWithCoverage(p.EmbeddingText()); cov.Known > 0 {
		parts = append(parts, desc)
	}

	combined, err := vector.Mean(parts)
	if err != nil {
		return nil
	}
	return vector.Normalize(combined)
}

// BuildEmbeddings runs the embedding pipeline: every course is vectorized
// with model, then every program vector is derived from the new course
// vectors and its description. ctx is checked between entities.
func BuildEmbeddings(ctx context.Context, model *embedding.Model, courses []Course, programs []Program) (*EmbeddingSet, error) {
	start := time.Now()
	set := &EmbeddingSet{
		Courses:  make(map[CourseKey]vector.Vector, len(courses)),
		Programs: make(map[ProgramKey]vector.Vector, len(programs)),
	}

	for i := range courses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := CourseVector(model, &courses[i])
		if v.IsZero() {
			set.Stats.CoursesWithoutSignal++
		}
		set.Courses[courses[i].Key()] = v
	}

	for i := range programs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := ProgramVector(model, &programs[i], set.Courses)
		if v == nil {
			set.Stats.ProgramsWithoutVector++
			continue
		}
		set.Programs[programs[i].Key()] = v
	}

	set.Stats.Courses = len(set.Courses)
	set.Stats.Programs = len(set.Programs)
	set.Stats.DurationMS = time.Since(start).Milliseconds()
	return set, nil
}

// Apply copies the set's vectors onto the given entities in place.
func (s *EmbeddingSet) Apply(courses []Course, programs []Program) {
	for i := range courses {
		if v, ok := s.Courses[courses[i].Key()]; ok {
			courses[i].Vector = v
			courses[i].HasVector = true
		}
	}
	for i := range programs {
		if v, ok := s.Programs[programs[i].Key()]; ok {
			programs[i].Vector = v
			programs[i].HasVector = true
		}
	}
}
