// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/embedding"
)

// DefaultModelName is the file prefix used for trained vector spaces.
const DefaultModelName = "word2vec"

// VectorSpaceStore adapts a Store to recommend.ModelStore.
type VectorSpaceStore struct {
	store  *Store
	name   string
	keep   int
	logger zerolog.Logger
}

// Ensure VectorSpaceStore implements recommend.ModelStore.
var _ recommend.ModelStore = (*VectorSpaceStore)(nil)

// NewVectorSpaceStore saves models under name and keeps the newest keep
// versions after each save. keep <= 0 disables pruning.
func NewVectorSpaceStore(store *Store, name string, keep int, logger zerolog.Logger) *VectorSpaceStore {
	if name == "" {
		name = DefaultModelName
	}
	return &VectorSpaceStore{
		store:  store,
		name:   name,
		keep:   keep,
		logger: logger.With().Str("component", "model_store").Logger(),
	}
}

// SaveModel stores m as the next version and returns that version.
func (v *VectorSpaceStore) SaveModel(ctx context.Context, m *embedding.Model, cfg embedding.TrainConfig) (int, error) {
	if m == nil {
		return 0, errors.New("nil model")
	}

	export := m.Export()
	now := time.Now()
	data := ModelData{
		Vocabulary: export.Vocabulary,
		Counts:     export.Counts,
		Vectors:    export.Vectors,
		Dimension:  export.Dimension,
		TrainedAt:  now,
		Config:     cfg,
	}

	version := v.store.NextVersion(v.name)
	meta := ModelMetadata{
		TrainedAt:      now,
		VocabularySize: len(export.Vocabulary),
		Dimension:      export.Dimension,
	}
	if err := v.store.Save(ctx, v.name, version, data, meta); err != nil {
		return 0, err
	}

	if v.keep > 0 {
		removed, err := v.store.Prune(ctx, v.name, v.keep)
		if err != nil {
			v.logger.Warn().Err(err).Msg("failed to prune old models")
		} else if removed > 0 {
			v.logger.Debug().Int("removed", removed).Int("keep", v.keep).Msg("pruned old models")
		}
	}

	v.logger.Info().
		Int("version", version).
		Int("vocabulary", meta.VocabularySize).
		Int("dimension", meta.Dimension).
		Msg("model saved")

	return version, nil
}

// LoadLatestModel restores the newest stored model. It returns
// recommend.ErrNoModel when the store holds none.
func (v *VectorSpaceStore) LoadLatestModel(ctx context.Context) (*embedding.Model, int, error) {
	var data ModelData
	meta, err := v.store.LoadLatest(ctx, v.name, &data)
	if err != nil {
		if errors.Is(err, ErrModelNotFound) {
			return nil, 0, recommend.ErrNoModel
		}
		return nil, 0, err
	}

	counts := data.Counts
	if len(counts) == 0 {
		counts = nil
	}
	model, err := embedding.NewModel(data.Vocabulary, counts, data.Vectors)
	if err != nil {
		return nil, 0, fmt.Errorf("restore model v%d: %w", meta.Version, err)
	}
	if data.Dimension != 0 && model.Dim() != data.Dimension {
		return nil, 0, fmt.Errorf("restore model v%d: dimension %d, header says %d", meta.Version, model.Dim(), data.Dimension)
	}

	return model, meta.Version, nil
}
