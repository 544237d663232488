// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend"
)

// TrainingEngine is the part of recommend.Engine the service drives.
type TrainingEngine interface {
	Train(ctx context.Context) error
	IsReady() bool
	SetNextScheduledTraining(t time.Time)
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// TrainOnStartup trains even when a model was already restored.
	TrainOnStartup bool

	// TrainInterval is the retraining period. 0 disables scheduled training.
	TrainInterval time.Duration
}

// TrainingService trains the engine on startup and on a schedule.
type TrainingService struct {
	engine TrainingEngine
	config TrainingServiceConfig
	logger zerolog.Logger
	name   string
}

// NewTrainingService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(engine TrainingEngine, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	return &TrainingService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "training").Logger(),
		name:   "training-service",
	}
}

// Serve implements suture.Service. A failed startup run is retried on the
// schedule rather than by restarting the service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Bool("model_ready", s.engine.IsReady()).
		Msg("training service starting")

	if s.config.TrainOnStartup || !s.engine.IsReady() {
		s.train(ctx, "startup")
	}

	if s.config.TrainInterval <= 0 {
		s.engine.SetNextScheduledTraining(time.Time{})
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()
	s.engine.SetNextScheduledTraining(time.Now().Add(s.config.TrainInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.engine.SetNextScheduledTraining(time.Now().Add(s.config.TrainInterval))
			s.train(ctx, "scheduled")
		}
	}
}

// train runs one pass. Engine.Train applies its own timeout.
func (s *TrainingService) train(ctx context.Context, trigger string) {
	start := time.Now()
	err := s.engine.Train(ctx)
	switch {
	case err == nil:
		s.logger.Info().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("training complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Str("trigger", trigger).Msg("training already running, skipped")
	case ctx.Err() != nil:
		s.logger.Info().Str("trigger", trigger).Msg("training interrupted by shutdown")
	default:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("training failed")
	}
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return s.name
}
