// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GarbageCollector is satisfied by *schedules.Store.
type GarbageCollector interface {
	RunGC() error
}

// ScheduleGCService reclaims space in the schedule store on an interval.
type ScheduleGCService struct {
	store    GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewScheduleGCService creates the service. A non-positive interval uses
// ten minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScheduleGCService(store GarbageCollector, interval time.Duration, logger zerolog.Logger) *ScheduleGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ScheduleGCService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "schedule-gc").Logger(),
		name:     "schedule-gc",
	}
}

// Serve implements suture.Service. GC errors are logged, never returned.
func (s *ScheduleGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("schedule store GC failed")
			}
		}
	}
}

// String returns the service name for logging.
func (s *ScheduleGCService) String() string {
	return s.name
}
