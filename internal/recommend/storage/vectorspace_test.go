// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/embedding"
)

func newTestModel(t *testing.T) *embedding.Model {
	t.Helper()
	m, err := embedding.NewModel(
		[]string{"programming", "poetry", "cells"},
		[]int{4, 2, 1},
		[][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func TestVectorSpaceStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	vs := NewVectorSpaceStore(store, "", 0, zerolog.Nop())
	ctx := context.Background()

	model := newTestModel(t)
	cfg := embedding.DefaultTrainConfig()
	cfg.Dimension = 3

	version, err := vs.SaveModel(ctx, model, cfg)
	if err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	restored, gotVersion, err := vs.LoadLatestModel(ctx)
	if err != nil {
		t.Fatalf("LoadLatestModel() error = %v", err)
	}
	if gotVersion != 1 {
		t.Errorf("LoadLatestModel() version = %d, want 1", gotVersion)
	}
	if restored.Len() != 3 || restored.Dim() != 3 {
		t.Fatalf("restored model len=%d dim=%d, want 3 3", restored.Len(), restored.Dim())
	}
	if restored.Count("programming") != 4 {
		t.Errorf("Count(programming) = %d, want 4", restored.Count("programming"))
	}
	sim, err := restored.Similarity("programming", "programming")
	if err != nil || sim < 0.999 {
		t.Errorf("Similarity() = %f, %v", sim, err)
	}

	if _, ok := store.GetLatestVersion(DefaultModelName); !ok {
		t.Error("default model name not used")
	}
}

func TestVectorSpaceStore_NoModel(t *testing.T) {
	store, _ := newTestStore(t)
	vs := NewVectorSpaceStore(store, "word2vec", 2, zerolog.Nop())

	_, _, err := vs.LoadLatestModel(context.Background())
	if !errors.Is(err, recommend.ErrNoModel) {
		t.Errorf("LoadLatestModel() error = %v, want recommend.ErrNoModel", err)
	}
}

func TestVectorSpaceStore_VersionsAndPrune(t *testing.T) {
	store, _ := newTestStore(t)
	vs := NewVectorSpaceStore(store, "word2vec", 2, zerolog.Nop())
	ctx := context.Background()
	model := newTestModel(t)

	for want := 1; want <= 4; want++ {
		got, err := vs.SaveModel(ctx, model, embedding.DefaultTrainConfig())
		if err != nil {
			t.Fatalf("SaveModel() error = %v", err)
		}
		if got != want {
			t.Errorf("SaveModel() version = %d, want %d", got, want)
		}
	}

	var data ModelData
	for _, v := range []int{1, 2} {
		if _, err := store.Load(ctx, "word2vec", v, &data); !errors.Is(err, ErrModelNotFound) {
			t.Errorf("v%d should be pruned, Load() error = %v", v, err)
		}
	}
	if _, err := store.Load(ctx, "word2vec", 3, &data); err != nil {
		t.Errorf("v3 should be kept: %v", err)
	}
}

func TestVectorSpaceStore_NilModel(t *testing.T) {
	store, _ := newTestStore(t)
	vs := NewVectorSpaceStore(store, "word2vec", 0, zerolog.Nop())

	if _, err := vs.SaveModel(context.Background(), nil, embedding.TrainConfig{}); err == nil {
		t.Error("SaveModel(nil) expected error")
	}
}
