// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/recommend"
)

// testDBSemaphore serializes DuckDB use across tests. Concurrent CGO calls
// from many parallel tests can hang under CI resource pressure, so the
// semaphore is held for the whole test, not just for New.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB opens a fresh in-memory catalog that is closed when the test
// ends.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatal("Timed out creating test database")
		return nil
	}
}

// seedCatalog loads two institutions with overlapping course codes and two
// programs.
func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	_, err := db.UpsertCourses(ctx, []recommend.Course{
		{Institution: "CSUSB", Code: "CSE 2010", Title: "Computer Science I", Description: "Programming fundamentals"},
		{Institution: "CSUSB", Code: "CSE 2020", Title: "Computer Science II", Description: "Data structures"},
		{Institution: "CSUSB", Code: "MATH 2110", Title: "Calculus", Description: "Limits and derivatives", Weight: 2},
		{Institution: "UCR", Code: "CSE 2010", Title: "Intro Programming", Description: "Python"},
	})
	if err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}

	_, err = db.UpsertPrograms(ctx, []recommend.Program{
		{
			Institution:     "CSUSB",
			Name:            "Computer Science",
			Description:     "Software and theory",
			Department:      "CSE",
			DegreeType:      recommend.DegreeBachelor,
			RequiredCourses: []recommend.CourseKey{{Code: "CSE 2010"}, {Code: "CSE 2020"}},
			ElectiveCourses: []recommend.CourseKey{{Code: "MATH 2110"}},
		},
		{
			Institution:     "CSUSB",
			Name:            "Mathematics",
			Description:     "Pure and applied math",
			DegreeType:      recommend.DegreeMaster,
			RequiredCourses: []recommend.CourseKey{{Code: "MATH 2110"}},
		},
	})
	if err != nil {
		t.Fatalf("UpsertPrograms() error = %v", err)
	}
}

func TestNew_InMemory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}
	if db.Path() != ":memory:" {
		t.Errorf("Path() = %q", db.Path())
	}

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if version != len(migrations) {
		t.Errorf("schema version = %d, want %d", version, len(migrations))
	}

	history, err := db.GetMigrationHistory(ctx)
	if err != nil {
		t.Fatalf("GetMigrationHistory() error = %v", err)
	}
	if len(history) != len(migrations) {
		t.Fatalf("len(history) = %d, want %d", len(history), len(migrations))
	}
	for i, m := range history {
		if m.Version != i+1 || m.Name != migrations[i].Name || m.AppliedAt.IsZero() {
			t.Errorf("history[%d] = %+v", i, m)
		}
	}
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error")
	}
}

func TestNew_FileReopen(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "catalog.duckdb")
	cfg := &config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1}
	ctx := context.Background()

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := db.UpsertCourses(ctx, []recommend.Course{{Institution: "CSUSB", Code: "CSE 1000", Title: "Orientation"}}); err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Migrations must not run twice on reopen.
	db, err = New(cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	c, err := db.GetCourse(ctx, recommend.NewCourseKey("CSUSB", "cse 1000"))
	if err != nil {
		t.Fatalf("GetCourse() after reopen error = %v", err)
	}
	if c.Title != "Orientation" {
		t.Errorf("Title = %q", c.Title)
	}
	history, err := db.GetMigrationHistory(ctx)
	if err != nil {
		t.Fatalf("GetMigrationHistory() error = %v", err)
	}
	if len(history) != len(migrations) {
		t.Errorf("len(history) = %d after reopen, want %d", len(history), len(migrations))
	}
}

func TestEnsureContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline to be applied")
	}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
	defer parentCancel()
	ctx2, cancel2 := ensureContext(parent)
	defer cancel2()
	if ctx2 != parent {
		t.Error("context with deadline should be returned unchanged")
	}
}
