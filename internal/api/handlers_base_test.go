// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/models"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/schedules"
)

const testInstitution = "CSUSB"

// testEnv bundles a router with its dependencies.
type testEnv struct {
	db        *database.DB
	schedules *schedules.Store
	engine    *recommend.Engine
	handler   *Handler
	router    http.Handler
	config    *config.Config
}

// stubModelStore serves a fixed model.
type stubModelStore struct {
	model *embedding.Model
}

func (s *stubModelStore) SaveModel(_ context.Context, m *embedding.Model, _ embedding.TrainConfig) (int, error) {
	s.model = m
	return 2, nil
}

func (s *stubModelStore) LoadLatestModel(_ context.Context) (*embedding.Model, int, error) {
	if s.model == nil {
		return nil, 0, recommend.ErrNoModel
	}
	return s.model, 1, nil
}

// newFixtureModel builds a model whose axes are computing, literature and
// biology.
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

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func seedCatalog(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	_, err := db.UpsertCourses(ctx, []recommend.Course{
		{Institution: testInstitution, Code: "CSE 2010", Title: "Programming", Description: "algorithms and data", Weight: 1},
		{Institution: testInstitution, Code: "CSE 2020", Title: "Software", Description: "data algorithms", Weight: 1},
		{Institution: testInstitution, Code: "ENG 1010", Title: "Writing", Description: "poetry literature", Weight: 1},
		{Institution: testInstitution, Code: "BIO 1000", Title: "Biology", Description: "cells genetics", Weight: 1},
	})
	if err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}

	_, err = db.UpsertPrograms(ctx, []recommend.Program{
		{
			Institution: testInstitution,
			Name:        "Computer Science",
			Description: "software and algorithms",
			Department:  "Computer Science and Engineering",
			DegreeType:  recommend.DegreeBachelor,
			RequiredCourses: []recommend.CourseKey{
				recommend.NewCourseKey(testInstitution, "CSE 2010"),
				recommend.NewCourseKey(testInstitution, "CSE 2020"),
			},
		},
		{
			Institution:     testInstitution,
			Name:            "English",
			Description:     "literature",
			DegreeType:      recommend.DegreeBachelor,
			RequiredCourses: []recommend.CourseKey{recommend.NewCourseKey(testInstitution, "ENG 1010")},
		},
		{
			Institution:     testInstitution,
			Name:            "Biology",
			Description:     "genetics",
			DegreeType:      recommend.DegreeMaster,
			RequiredCourses: []recommend.CourseKey{recommend.NewCourseKey(testInstitution, "BIO 1000")},
		},
	})
	if err != nil {
		t.Fatalf("UpsertPrograms() error = %v", err)
	}
}

// newTestEnv builds a seeded environment. When ready is set the engine is
// restored from the fixture model.
func newTestEnv(t *testing.T, ready bool, modify func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimitDisabled = true
	if modify != nil {
		modify(cfg)
	}

	db := setupTestDB(t)
	seedCatalog(t, db)

	store, err := schedules.Open(schedules.Config{InMemory: true, TTL: time.Hour})
	if err != nil {
		t.Fatalf("schedules.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.SetDataProvider(db)
	engine.SetEmbeddingWriter(db)
	if ready {
		engine.SetModelStore(&stubModelStore{model: newFixtureModel(t)})
		if err := engine.Restore(context.Background()); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
	}

	handler := NewHandler(db, store, engine, nil, cfg)
	t.Cleanup(handler.Wait)

	router := NewRouter(handler, NewChiMiddleware(ChiMiddlewareConfigFromServer(&cfg.Server)), zerolog.Nop())

	return &testEnv{
		db:        db,
		schedules: store,
		engine:    engine,
		handler:   handler,
		router:    router.SetupChi(),
		config:    cfg,
	}
}

// do sends a request through the router.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doJSON marshals body and sends it as application/json.
func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return e.do(t, method, path, bytes.NewReader(data), "application/json")
}

// envelope is models.APIResponse with undecoded data.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// decodeResponse checks the status code and decodes the data field into dst
// when dst is non-nil.
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, dst interface{}) envelope {
	t.Helper()

	if w.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body = %s", w.Code, wantStatus, w.Body.String())
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Unmarshal() error = %v; body = %s", err, w.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("Unmarshal(data) error = %v; data = %s", err, env.Data)
		}
	}
	return env
}

// wantErrorCode checks an error envelope.
func wantErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, code string) {
	t.Helper()
	env := decodeResponse(t, w, wantStatus, nil)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q (message %q)", env.Error.Code, code, env.Error.Message)
	}
}
