// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

const testInstitution = "CSUSB"

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// newFixtureModel builds a three-topic model whose axes are computing,
// literature and biology.
func newFixtureModel(t *testing.T) *embedding.Model {
	t.Helper()

	topics := []struct {
		words []string
		vec   []float64
	}{
		{[]string{"programming", "algorithms", "data", "software", "computer", "science"}, []float64{1, 0, 0}},
		{[]string{"poetry", "literature", "writing", "english", "novels"}, []float64{0, 1, 0}},
		{[]string{"biology", "cells", "genetics"}, []float64{0, 0, 1}},
	}

	var vocab []string
	var vectors [][]float64
	for _, topic := range topics {
		for _, w := range topic.words {
			vocab = append(vocab, w)
			vectors = append(vectors, append([]float64(nil), topic.vec...))
		}
	}

	m, err := embedding.NewModel(vocab, nil, vectors)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

// fixtureCourses returns a small catalog. MAT 9999 has no known tokens.
func fixtureCourses() []Course {
	return []Course{
		{Institution: testInstitution, Code: "CSE 2010", Title: "Programming", Description: "algorithms and data", Weight: 1},
		{Institution: testInstitution, Code: "CSE 2020", Title: "Software", Description: "data algorithms", Weight: 1},
		{Institution: testInstitution, Code: "ENG 1010", Title: "Writing", Description: "poetry literature", Weight: 1},
		{Institution: testInstitution, Code: "ENG 2020", Title: "Literature", Description: "novels", Weight: 1},
		{Institution: testInstitution, Code: "BIO 1000", Title: "Biology", Description: "cells genetics", Weight: 1},
		{Institution: testInstitution, Code: "MAT 9999", Title: "Zzz", Description: "qqq", Weight: 1},
		{Institution: "OtherU", Code: "CS 100", Title: "Computer Science", Description: "programming", Weight: 1},
	}
}

// fixturePrograms returns programs over fixtureCourses. Orphan has no
// resolvable requirements.
func fixturePrograms() []Program {
	return []Program{
		{
			Institution: testInstitution,
			Name:        "Computer Science",
			Description: "software and algorithms",
			DegreeType:  DegreeBachelor,
			Department:  "Computer Science and Engineering",
			RequiredCourses: []CourseKey{
				NewCourseKey(testInstitution, "CSE 2010"),
				NewCourseKey(testInstitution, "CSE 2020"),
			},
		},
		{
			Institution: testInstitution,
			Name:        "English",
			Description: "literature",
			DegreeType:  DegreeBachelor,
			RequiredCourses: []CourseKey{
				NewCourseKey(testInstitution, "ENG 1010"),
				NewCourseKey(testInstitution, "ENG 2020"),
			},
		},
		{
			Institution:     testInstitution,
			Name:            "Biology",
			Description:     "genetics",
			DegreeType:      DegreeMaster,
			RequiredCourses: []CourseKey{NewCourseKey(testInstitution, "BIO 1000")},
		},
		{
			Institution:     testInstitution,
			Name:            "Orphan",
			RequiredCourses: []CourseKey{NewCourseKey(testInstitution, "XYZ 1")},
		},
	}
}

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu       sync.Mutex
	courses  []Course
	programs []Program

	coursesErr  error
	programsErr error

	// block, when set, stalls ListCourses until it is closed or ctx ends.
	block   chan struct{}
	entered chan struct{}
}

func newMockDataProvider() *mockDataProvider {
	return &mockDataProvider{
		courses:  fixtureCourses(),
		programs: fixturePrograms(),
	}
}

func (m *mockDataProvider) ListCourses(ctx context.Context) ([]Course, error) {
	if m.block != nil {
		if m.entered != nil {
			m.entered <- struct{}{}
		}
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coursesErr != nil {
		return nil, m.coursesErr
	}
	out := make([]Course, len(m.courses))
	copy(out, m.courses)
	return out, nil
}

func (m *mockDataProvider) ListPrograms(ctx context.Context) ([]Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.programsErr != nil {
		return nil, m.programsErr
	}
	out := make([]Program, len(m.programs))
	copy(out, m.programs)
	return out, nil
}

func (m *mockDataProvider) setCourses(courses []Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses = courses
}

// mockWriter implements EmbeddingWriter for testing.
type mockWriter struct {
	mu       sync.Mutex
	courses  map[CourseKey]vector.Vector
	programs map[ProgramKey]vector.Vector
	err      error
}

func (w *mockWriter) SaveCourseVectors(_ context.Context, vectors map[CourseKey]vector.Vector) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.courses = vectors
	return nil
}

func (w *mockWriter) SaveProgramVectors(_ context.Context, vectors map[ProgramKey]vector.Vector) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.programs = vectors
	return nil
}

// mockModelStore implements ModelStore for testing.
type mockModelStore struct {
	mu      sync.Mutex
	model   *embedding.Model
	version int
	saves   int
}

func (s *mockModelStore) SaveModel(_ context.Context, m *embedding.Model, _ embedding.TrainConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	s.version++
	s.saves++
	return s.version, nil
}

func (s *mockModelStore) LoadLatestModel(_ context.Context) (*embedding.Model, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil, 0, ErrNoModel
	}
	return s.model, s.version, nil
}

// newReadyEngine returns an engine restored from the fixture model.
func newReadyEngine(t *testing.T, cfg *Config) (*Engine, *mockDataProvider) {
	t.Helper()

	engine, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	dp := newMockDataProvider()
	engine.SetDataProvider(dp)
	engine.SetModelStore(&mockModelStore{model: newFixtureModel(t), version: 3})

	if err := engine.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	return engine, dp
}

// fastTrainingConfig returns a config whose training finishes quickly.
func fastTrainingConfig() *Config {
	cfg := DefaultConfig()
	cfg.Training.Model.Dimension = 8
	cfg.Training.Model.Epochs = 2
	cfg.Training.Model.Window = 2
	return cfg
}

func ptr[T any](v T) *T {
	return &v
}
