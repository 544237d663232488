// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// ErrInvalidCSV is returned for malformed CSV input.
var ErrInvalidCSV = errors.New("invalid csv")

// csvHeader maps lower-cased column names to their index.
type csvHeader map[string]int

// csvRecord is one data row paired with its header.
type csvRecord struct {
	header csvHeader
	fields []string
	line   int
}

// get returns the trimmed value of the first alias present in the header.
func (r csvRecord) get(aliases ...string) string {
	for _, a := range aliases {
		if i, ok := r.header[a]; ok && i < len(r.fields) {
			return strings.TrimSpace(r.fields[i])
		}
	}
	return ""
}

func (h csvHeader) has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := h[a]; ok {
			return true
		}
	}
	return false
}

// readCSV reads a header row followed by data rows and calls fn for each
// non-blank row. required lists alias groups of which one member must be
// present in the header.
func readCSV(r io.Reader, required [][]string, fn func(csvRecord) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	row, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty input", ErrInvalidCSV)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	header := make(csvHeader, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}
	for _, group := range required {
		if !header.has(group...) {
			return fmt.Errorf("%w: missing column %s", ErrInvalidCSV, group[0])
		}
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlankRow(fields) {
			continue
		}
		if err := fn(csvRecord{header: header, fields: fields, line: line}); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}
	}
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ReadCoursesCSV parses a course catalog. Columns are course_code (or code),
// title, description and optional institution and weight. Rows without an
// institution use defaultInstitution.
func ReadCoursesCSV(r io.Reader, defaultInstitution string) ([]recommend.Course, error) {
	var courses []recommend.Course
	err := readCSV(r, [][]string{{"course_code", "code"}, {"title"}}, func(rec csvRecord) error {
		inst := rec.get("institution")
		if inst == "" {
			inst = strings.TrimSpace(defaultInstitution)
		}
		if inst == "" {
			return fmt.Errorf("institution is required")
		}
		code := rec.get("course_code", "code")
		if code == "" {
			return fmt.Errorf("course_code is required")
		}
		title := rec.get("title")
		if title == "" {
			return fmt.Errorf("title is required for %s", code)
		}

		weight := 1.0
		if w := rec.get("weight"); w != "" {
			parsed, err := strconv.ParseFloat(w, 64)
			if err != nil || parsed <= 0 {
				return fmt.Errorf("invalid weight %q for %s", w, code)
			}
			weight = parsed
		}

		key := recommend.NewCourseKey(inst, code)
		courses = append(courses, recommend.Course{
			Institution: key.Institution,
			Code:        key.Code,
			Title:       title,
			Description: rec.get("description"),
			Weight:      weight,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ReadProgramsCSV parses programs. Columns are name (or program_name),
// institution, description, department, degree_type (or degree_level),
// required_courses and elective_courses. Course lists are comma or
// semicolon separated codes within the program's institution.
func ReadProgramsCSV(r io.Reader, defaultInstitution string) ([]recommend.Program, error) {
	var programs []recommend.Program
	err := readCSV(r, [][]string{{"name", "program_name"}}, func(rec csvRecord) error {
		inst := rec.get("institution")
		if inst == "" {
			inst = strings.TrimSpace(defaultInstitution)
		}
		if inst == "" {
			return fmt.Errorf("institution is required")
		}
		name := rec.get("name", "program_name")
		if name == "" {
			return fmt.Errorf("name is required")
		}
		degree, err := recommend.ParseDegreeType(rec.get("degree_type", "degree_level"))
		if err != nil {
			return err
		}

		programs = append(programs, recommend.Program{
			Institution:     inst,
			Name:            name,
			Description:     rec.get("description"),
			Department:      rec.get("department"),
			DegreeType:      degree,
			RequiredCourses: splitCourseList(inst, rec.get("required_courses")),
			ElectiveCourses: splitCourseList(inst, rec.get("elective_courses")),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return programs, nil
}

// splitCourseList splits "CSE 2010, CSE 2020; MATH 1410" into keys.
// Entries of the form "inst:code" keep their own institution.
func splitCourseList(institution, s string) []recommend.CourseKey {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	keys := make([]recommend.CourseKey, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if k, err := recommend.ParseCourseKey(p); err == nil {
			keys = append(keys, k)
			continue
		}
		keys = append(keys, recommend.NewCourseKey(institution, p))
	}
	return keys
}

// ReadScheduleCSV parses a schedule upload: a course_code column and an
// optional institution column. Duplicate rows are kept.
func ReadScheduleCSV(r io.Reader, defaultInstitution string) ([]recommend.CourseKey, error) {
	var keys []recommend.CourseKey
	err := readCSV(r, [][]string{{"course_code", "code"}}, func(rec csvRecord) error {
		inst := rec.get("institution")
		if inst == "" {
			inst = strings.TrimSpace(defaultInstitution)
		}
		if inst == "" {
			return fmt.Errorf("institution is required")
		}
		code := rec.get("course_code", "code")
		if code == "" {
			return fmt.Errorf("course_code is required")
		}
		keys = append(keys, recommend.NewCourseKey(inst, code))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no courses", ErrInvalidCSV)
	}
	return keys, nil
}

// ReadEmbeddingsCSV parses course_code,embedding rows where embedding is a
// comma-separated list of floats. All vectors must share one dimension.
func ReadEmbeddingsCSV(r io.Reader) (map[string]vector.Vector, error) {
	out := make(map[string]vector.Vector)
	dim := -1
	err := readCSV(r, [][]string{{"course_code", "code"}, {"embedding"}}, func(rec csvRecord) error {
		code := recommend.NewCourseKey("", rec.get("course_code", "code")).Code
		if code == "" {
			return fmt.Errorf("course_code is required")
		}
		v, err := parseVector(rec.get("embedding"))
		if err != nil {
			return fmt.Errorf("%s: %w", code, err)
		}
		if dim == -1 {
			dim = len(v)
		}
		if err := v.Validate(dim); err != nil {
			return fmt.Errorf("%s: %w", code, err)
		}
		out[code] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseVector(s string) (vector.Vector, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil, fmt.Errorf("empty embedding")
	}
	parts := strings.Split(s, ",")
	v := make(vector.Vector, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}
