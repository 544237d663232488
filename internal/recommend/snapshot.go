// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// Snapshot is an immutable view of the model and every entity vector. The
// engine publishes snapshots by pointer swap; a snapshot is never modified
// after BuildSnapshot returns, so in-flight requests can keep using an old
// one while a new one is installed.
type Snapshot struct {
	// Version increases with every published snapshot.
	Version int

	// StoredVersion is the model store version, 0 if never persisted.
	StoredVersion int

	BuiltAt   time.Time
	TrainedAt time.Time

	model         *embedding.Model
	courses       map[CourseKey]*courseEntry
	courseOrder   []CourseKey
	byInstitution map[string][]CourseKey
	programs      []programEntry
	programIndex  map[ProgramKey]int
	candidates    []Candidate
}

type courseEntry struct {
	course Course
	vec    vector.Vector
}

type programEntry struct {
	program Program
	vec     vector.Vector
	direct  bool
}

// SnapshotOptions controls BuildSnapshot.
type SnapshotOptions struct {
	// UseCourseWeights weights required courses by Course.Weight when a
	// program falls back to course aggregation.
	UseCourseWeights bool
}

// SnapshotStats summarizes a snapshot build.
type SnapshotStats struct {
	Courses           int `json:"courses"`
	CoursesVectorized int `json:"courses_vectorized"`
	Programs          int `json:"programs"`
	ProgramsDirect    int `json:"programs_direct"`
	ProgramsDerived   int `json:"programs_derived"`
	ProgramsNoVector  int `json:"programs_no_vector"`
}

// BuildSnapshot resolves a vector for every course and program.
//
// Courses use their persisted vector when its dimension matches the model,
// otherwise they are vectorized now. Programs use their direct vector when
// valid, otherwise the mean of their required-course vectors, otherwise no
// vector (and are skipped at ranking time).
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func BuildSnapshot(model *embedding.Model, courses []Course, programs []Program, opts SnapshotOptions, logger zerolog.Logger) (*Snapshot, SnapshotStats) {
	dim := model.Dim()
	s := &Snapshot{
		BuiltAt:       time.Now(),
		model:         model,
		courses:       make(map[CourseKey]*courseEntry, len(courses)),
		courseOrder:   make([]CourseKey, 0, len(courses)),
		byInstitution: make(map[string][]CourseKey),
		programs:      make([]programEntry, 0, len(programs)),
		programIndex:  make(map[ProgramKey]int, len(programs)),
	}
	var stats SnapshotStats

	for i := range courses {
		c := courses[i]
		key := c.Key()
		c.Institution, c.Code = key.Institution, key.Code

		vec := c.Vector
		if vec == nil || vec.Validate(dim) != nil {
			if vec != nil {
				logger.Debug().
					Str("course", key.String()).
					Int("dimension", len(vec)).
					Msg("persisted course vector does not match model, recomputing")
			}
			vec = CourseVector(model, &c)
			stats.CoursesVectorized++
		}
		c.Vector = nil
		c.HasVector = true

		if _, dup := s.courses[key]; !dup {
			s.courseOrder = append(s.courseOrder, key)
			inst := institutionKey(key.Institution)
			s.byInstitution[inst] = append(s.byInstitution[inst], key)
		}
		s.courses[key] = &courseEntry{course: c, vec: vec}
	}
	stats.Courses = len(s.courses)

	for i := range programs {
		p := programs[i]
		key := p.Key()
		p.Institution, p.Name = key.Institution, key.Name

		entry := programEntry{}
		switch {
		case p.Vector != nil && p.Vector.Validate(dim) == nil:
			entry.vec = p.Vector
			entry.direct = true
			stats.ProgramsDirect++
		default:
			entry.vec = s.aggregateCourses(p.RequiredCourses, opts.UseCourseWeights)
			if entry.vec != nil {
				stats.ProgramsDerived++
			} else {
				stats.ProgramsNoVector++
			}
		}
		p.Vector = nil
		p.HasVector = entry.vec != nil
		entry.program = p

		if idx, dup := s.programIndex[key]; dup {
			s.programs[idx] = entry
			continue
		}
		s.programIndex[key] = len(s.programs)
		s.programs = append(s.programs, entry)
	}
	stats.Programs = len(s.programs)

	s.candidates = make([]Candidate, len(s.programs))
	for i := range s.programs {
		p := &s.programs[i].program
		codes := make([]string, 0, len(p.RequiredCourses))
		for _, rc := range p.RequiredCourses {
			codes = append(codes, rc.Canonical().Code)
		}
		s.candidates[i] = Candidate{
			ID:            p.Key().String(),
			Vector:        s.programs[i].vec,
			RequiredCodes: codes,
			Institution:   p.Institution,
		}
	}

	return s, stats
}

// aggregateCourses returns the (optionally weighted) mean of the vectors of
// keys that resolve in the snapshot, or nil if none do.
func (s *Snapshot) aggregateCourses(keys []CourseKey, useWeights bool) vector.Vector {
	vs := make([]vector.Vector, 0, len(keys))
	var weights []float64
	if useWeights {
		weights = make([]float64, 0, len(keys))
	}
	for _, k := range keys {
		e, ok := s.courses[k.Canonical()]
		if !ok {
			continue
		}
		vs = append(vs, e.vec)
		if useWeights {
			w := e.course.Weight
			if w <= 0 {
				w = 1
			}
			weights = append(weights, w)
		}
	}
	v, err := vector.Aggregate(vs, weights)
	if err != nil {
		return nil
	}
	return v
}

// Model returns the snapshot's vector-space model.
func (s *Snapshot) Model() *embedding.Model {
	return s.model
}

// Dim returns the vector dimension.
func (s *Snapshot) Dim() int {
	return s.model.Dim()
}

// CourseCount returns the number of courses.
func (s *Snapshot) CourseCount() int {
	return len(s.courses)
}

// ProgramCount returns the number of programs.
func (s *Snapshot) ProgramCount() int {
	return len(s.programs)
}

// Course returns course metadata (without its vector).
func (s *Snapshot) Course(key CourseKey) (Course, bool) {
	e, ok := s.courses[key.Canonical()]
	if !ok {
		return Course{}, false
	}
	return e.course, true
}

// CourseVector returns a copy of a course's vector.
func (s *Snapshot) CourseVector(key CourseKey) (vector.Vector, bool) {
	e, ok := s.courses[key.Canonical()]
	if !ok {
		return nil, false
	}
	return e.vec.Clone(), true
}

// Program returns program metadata (without its vector) and whether it has
// a resolvable vector.
func (s *Snapshot) Program(key ProgramKey) (Program, bool) {
	idx, ok := s.programIndex[NewProgramKey(key.Institution, key.Name)]
	if !ok {
		return Program{}, false
	}
	return s.programs[idx].program, true
}

// Candidates returns the ranking candidates in program order. The slice is
// shared; callers must not modify it.
func (s *Snapshot) Candidates() []Candidate {
	return s.candidates
}

// CoursesAt returns the keys of every course at an institution, or of every
// course when institution is empty.
func (s *Snapshot) CoursesAt(institution string) []CourseKey {
	var src []CourseKey
	if strings.TrimSpace(institution) == "" {
		src = s.courseOrder
	} else {
		src = s.byInstitution[institutionKey(institution)]
	}
	out := make([]CourseKey, len(src))
	copy(out, src)
	return out
}

// ScheduleVector aggregates the vectors of the given courses without
// normalization. Unknown courses are returned in missing. Duplicates count
// once per occurrence. Fails with vector.ErrNoEmbedding if no course
// resolves.
func (s *Snapshot) ScheduleVector(keys []CourseKey, useWeights bool) (vector.Vector, []CourseKey, error) {
	vs := make([]vector.Vector, 0, len(keys))
	var weights []float64
	if useWeights {
		weights = make([]float64, 0, len(keys))
	}
	var missing []CourseKey

	for _, k := range keys {
		e, ok := s.courses[k.Canonical()]
		if !ok {
			missing = append(missing, k.Canonical())
			continue
		}
		vs = append(vs, e.vec)
		if useWeights {
			w := e.course.Weight
			if w <= 0 {
				w = 1
			}
			weights = append(weights, w)
		}
	}

	v, err := vector.Aggregate(vs, weights)
	if err != nil {
		return nil, missing, err
	}
	return v, missing, nil
}

func institutionKey(institution string) string {
	return strings.ToLower(strings.TrimSpace(institution))
}
