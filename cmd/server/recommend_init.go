// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/storage"
	"github.com/tomtom215/degreematch/internal/supervisor"
	"github.com/tomtom215/degreematch/internal/supervisor/services"
)

// initEngine creates the recommendation engine, wires it to the catalog and
// the model store, and restores the newest stored model. A missing model is
// not an error: the training service trains one on startup.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(ctx context.Context, cfg *config.Config, db *database.DB, logger zerolog.Logger) (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	modelStore, err := storage.NewStore(cfg.Models.Dir)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	engine.SetDataProvider(db)
	engine.SetEmbeddingWriter(db)
	engine.SetModelStore(storage.NewVectorSpaceStore(modelStore, cfg.Models.Name, cfg.Models.Keep, logger))

	switch err := engine.Restore(ctx); {
	case err == nil:
		status := engine.GetStatus()
		logger.Info().
			Int("stored_version", status.StoredModelVersion).
			Int("courses", status.CourseCount).
			Int("programs", status.ProgramCount).
			Msg("stored model restored")
	case errors.Is(err, recommend.ErrNoModel):
		logger.Info().Str("dir", cfg.Models.Dir).Msg("no stored model; engine starts untrained")
	default:
		// A corrupt or incompatible model is replaced by the next training run.
		logger.Warn().Err(err).Msg("failed to restore stored model")
	}

	return engine, nil
}

// addEngineServices adds the training and schedule GC services to the tree.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func addEngineServices(tree *supervisor.SupervisorTree, cfg *config.Config, engine *recommend.Engine, gc services.GarbageCollector, logger zerolog.Logger) {
	training := services.NewTrainingService(engine, services.TrainingServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
	}, logger)
	tree.AddEngineService(training)

	tree.AddDataService(services.NewScheduleGCService(gc, cfg.Schedules.GCInterval, logger))

	logger.Info().
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Dur("schedule_gc_interval", cfg.Schedules.GCInterval).
		Msg("engine services added to supervisor tree")
}
