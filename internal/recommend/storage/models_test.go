// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package storage

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, dir
}

func testModelData(dim float64) ModelData {
	return ModelData{
		Vocabulary: []string{"programming", "poetry"},
		Counts:     []int{3, 1},
		Vectors:    [][]float64{{dim, 0}, {0, dim}},
		Dimension:  2,
		TrainedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Config:     embedding.DefaultTrainConfig(),
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates directory if not exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nested", "models")
			},
		},
		{
			name: "uses existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			store, err := NewStore(dir)
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if store == nil {
				t.Fatal("NewStore() returned nil store without error")
			}
			if _, err := os.Stat(dir); err != nil {
				t.Errorf("directory not created: %v", err)
			}
		})
	}
}

func TestNewStore_ScansExistingModels(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for _, v := range []int{1, 4, 2} {
		if err := store.Save(ctx, "word2vec", v, testModelData(1), ModelMetadata{}); err != nil {
			t.Fatalf("Save(v%d) error = %v", v, err)
		}
	}
	// Files that are not models are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken_vx.gob.gz"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if v, ok := reopened.GetLatestVersion("word2vec"); !ok || v != 4 {
		t.Errorf("GetLatestVersion() = %d, %v, want 4, true", v, ok)
	}
	if _, ok := reopened.GetLatestVersion("broken"); ok {
		t.Error("malformed file name should not register a model")
	}
	if next := reopened.NextVersion("word2vec"); next != 5 {
		t.Errorf("NextVersion() = %d, want 5", next)
	}
}

func TestParseModelFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input       string
		wantName    string
		wantVersion int
	}{
		{"word2vec_v1", "word2vec", 1},
		{"my_model_v12", "my_model", 12},
		{"model_v_v3", "model_v", 3},
		{"word2vec", "", 0},
		{"_v1", "", 0},
		{"word2vec_vx", "", 0},
		{"word2vec_v2x", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			name, version := parseModelFilename(tt.input)
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("parseModelFilename(%q) = %q, %d, want %q, %d", tt.input, name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	data := testModelData(0.5)
	meta := ModelMetadata{VocabularySize: 2, Dimension: 2, TrainingDurationMS: 1500}

	if err := store.Save(ctx, "word2vec", 1, data, meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var loaded ModelData
	loadedMeta, err := store.Load(ctx, "word2vec", 1, &loaded)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loadedMeta.Name != "word2vec" || loadedMeta.Version != 1 {
		t.Errorf("metadata = %s v%d, want word2vec v1", loadedMeta.Name, loadedMeta.Version)
	}
	if loadedMeta.VocabularySize != 2 || loadedMeta.TrainingDurationMS != 1500 {
		t.Errorf("metadata = %+v", loadedMeta)
	}
	if loadedMeta.Checksum == "" {
		t.Error("Checksum should not be empty")
	}
	if loadedMeta.SizeBytes == 0 {
		t.Error("SizeBytes should not be zero")
	}
	if loadedMeta.SavedAt.IsZero() {
		t.Error("SavedAt should be set")
	}

	if len(loaded.Vocabulary) != 2 || loaded.Vocabulary[0] != "programming" {
		t.Errorf("Vocabulary = %v", loaded.Vocabulary)
	}
	if loaded.Vectors[0][0] != 0.5 || loaded.Vectors[1][1] != 0.5 {
		t.Errorf("Vectors = %v", loaded.Vectors)
	}
	if loaded.Counts[0] != 3 {
		t.Errorf("Counts = %v", loaded.Counts)
	}
	if !loaded.TrainedAt.Equal(data.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", loaded.TrainedAt, data.TrainedAt)
	}
	if loaded.Config.Architecture != embedding.ArchitectureCBOW || loaded.Config.Dimension != 100 {
		t.Errorf("Config = %+v", loaded.Config)
	}
}

func TestStore_SaveRejectsInvalidInput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		model   string
		version int
	}{
		{"empty name", "", 1},
		{"path separator", "../evil", 1},
		{"zero version", "word2vec", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Save(ctx, tt.model, tt.version, testModelData(1), ModelMetadata{}); err == nil {
				t.Error("Save() expected error")
			}
		})
	}
}

func TestStore_SaveCanceledContext(t *testing.T) {
	store, dir := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, "word2vec", 1, testModelData(1), ModelMetadata{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("canceled save left %d files", len(entries))
	}
}

func TestStore_LoadLatest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		if err := store.Save(ctx, "word2vec", v, testModelData(float64(v)), ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	var loaded ModelData
	meta, err := store.LoadLatest(ctx, "word2vec", &loaded)
	if err != nil {
		t.Fatalf("LoadLatest() error = %v", err)
	}
	if meta.Version != 3 {
		t.Errorf("Version = %d, want 3 (latest)", meta.Version)
	}
	if loaded.Vectors[0][0] != 3 {
		t.Errorf("Vectors[0][0] = %f, want 3", loaded.Vectors[0][0])
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var loaded ModelData
	if _, err := store.LoadLatest(ctx, "word2vec", &loaded); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("LoadLatest() error = %v, want ErrModelNotFound", err)
	}
	if _, err := store.Load(ctx, "word2vec", 7, &loaded); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load(v7) error = %v, want ErrModelNotFound", err)
	}
}

func TestStore_GetLatestVersion(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, ok := store.GetLatestVersion("word2vec"); ok {
		t.Error("GetLatestVersion() should return false for missing model")
	}

	if err := store.Save(ctx, "word2vec", 5, testModelData(1), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	// Saving an older version does not move the latest pointer back.
	if err := store.Save(ctx, "word2vec", 2, testModelData(1), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	version, ok := store.GetLatestVersion("word2vec")
	if !ok || version != 5 {
		t.Errorf("GetLatestVersion() = %d, %v, want 5, true", version, ok)
	}
}

func TestStore_ListModels(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"word2vec", "baseline", "experiment"} {
		if err := store.Save(ctx, name, 1, testModelData(1), ModelMetadata{Dimension: 2}); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}
	if err := store.Save(ctx, "word2vec", 2, testModelData(1), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	models, err := store.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("len(models) = %d, want 3", len(models))
	}

	wantNames := []string{"baseline", "experiment", "word2vec"}
	for i, m := range models {
		if m.Name != wantNames[i] {
			t.Errorf("models[%d].Name = %s, want %s", i, m.Name, wantNames[i])
		}
	}
	if models[2].Version != 2 {
		t.Errorf("word2vec version = %d, want latest 2", models[2].Version)
	}
}

func TestStore_Delete(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for v := 1; v <= 3; v++ {
		if err := store.Save(ctx, "word2vec", v, testModelData(1), ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	t.Run("delete latest falls back to previous", func(t *testing.T) {
		if err := store.Delete(ctx, "word2vec", 3); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "word2vec_v3.gob.gz")); !os.IsNotExist(err) {
			t.Error("model file should be deleted")
		}
		if v, _ := store.GetLatestVersion("word2vec"); v != 2 {
			t.Errorf("latest = %d, want 2", v)
		}
	})

	t.Run("delete older keeps latest", func(t *testing.T) {
		if err := store.Delete(ctx, "word2vec", 1); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if v, _ := store.GetLatestVersion("word2vec"); v != 2 {
			t.Errorf("latest = %d, want 2", v)
		}
	})

	t.Run("delete last removes model", func(t *testing.T) {
		if err := store.Delete(ctx, "word2vec", 2); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := store.GetLatestVersion("word2vec"); ok {
			t.Error("model should no longer be tracked")
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		if err := store.Delete(ctx, "word2vec", 9); !errors.Is(err, ErrModelNotFound) {
			t.Errorf("Delete() error = %v, want ErrModelNotFound", err)
		}
	})
}

func TestStore_Prune(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for v := 1; v <= 5; v++ {
		if err := store.Save(ctx, "word2vec", v, testModelData(1), ModelMetadata{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if err := store.Save(ctx, "other", 1, testModelData(1), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	removed, err := store.Prune(ctx, "word2vec", 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	for v := 1; v <= 5; v++ {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("word2vec_v%d.gob.gz", v)))
		exists := err == nil
		if want := v >= 4; exists != want {
			t.Errorf("v%d exists = %v, want %v", v, exists, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "other_v1.gob.gz")); err != nil {
		t.Error("prune should not touch other models")
	}
	if v, _ := store.GetLatestVersion("word2vec"); v != 5 {
		t.Errorf("latest = %d, want 5", v)
	}

	t.Run("keep below one keeps latest", func(t *testing.T) {
		if _, err := store.Prune(ctx, "word2vec", 0); err != nil {
			t.Fatalf("Prune() error = %v", err)
		}
		var loaded ModelData
		if _, err := store.LoadLatest(ctx, "word2vec", &loaded); err != nil {
			t.Errorf("LoadLatest() after prune error = %v", err)
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		removed, err := store.Prune(ctx, "missing", 1)
		if err != nil || removed != 0 {
			t.Errorf("Prune(missing) = %d, %v, want 0, nil", removed, err)
		}
	})
}

func TestStore_ChecksumValidation(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "word2vec", 1, testModelData(1), ModelMetadata{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Rewrite the envelope with a tampered checksum.
	filename := filepath.Join(dir, "word2vec_v1.gob.gz")
	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	_ = f.Close()

	sf.Metadata.Checksum = strings.Repeat("0", 64)
	out, err := os.Create(filename)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if err := gob.NewEncoder(out).Encode(sf); err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	_ = out.Close()

	var loaded ModelData
	_, err = store.Load(ctx, "word2vec", 1, &loaded)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("Load() error = %v, want checksum mismatch", err)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if err := store.Save(ctx, "word2vec", v, testModelData(float64(v)), ModelMetadata{}); err != nil {
				t.Errorf("Save(v%d) error = %v", v, err)
			}
			var loaded ModelData
			_, _ = store.LoadLatest(ctx, "word2vec", &loaded)
		}(i)
	}
	wg.Wait()

	version, ok := store.GetLatestVersion("word2vec")
	if !ok || version != 10 {
		t.Errorf("GetLatestVersion() = %d, %v, want 10, true", version, ok)
	}
}
