// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package api

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/explain"
	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/schedules"
)

// Request timeouts.
const (
	queryTimeout     = 10 * time.Second
	uploadTimeout    = 2 * time.Minute
	recommendTimeout = 15 * time.Second

	defaultUploadBytes = 10 << 20
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by resource:
//   - handlers_health.go: health
//   - handlers_courses.go: course catalog and similarity
//   - handlers_programs.go: program catalog
//   - handlers_schedules.go: saved schedules
//   - handlers_recommend.go: recommendations, training and engine state
type Handler struct {
	db        *database.DB
	schedules *schedules.Store
	engine    *recommend.Engine
	explainer explain.Explainer
	config    *config.Config
	version   string
	startTime time.Time

	// logger is attached to the context of background work.
	logger zerolog.Logger

	// train runs one training pass. It defaults to engine.Train.
	train        func(ctx context.Context) error
	trainTimeout time.Duration
	training     atomic.Bool
	background   sync.WaitGroup
}

// NewHandler creates a new API handler. explainer may be nil, in which case
// the template explainer is used.
func NewHandler(db *database.DB, store *schedules.Store, engine *recommend.Engine, explainer explain.Explainer, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	if explainer == nil {
		explainer = explain.NewTemplateExplainer()
	}

	trainTimeout := cfg.Recommend.TrainTimeout
	if trainTimeout <= 0 {
		trainTimeout = 30 * time.Minute
	}

	return &Handler{
		db:           db,
		schedules:    store,
		engine:       engine,
		explainer:    explainer,
		config:       cfg,
		version:      "dev",
		startTime:    time.Now(),
		logger:       logging.WithComponent("api"),
		train:        engine.Train,
		trainTimeout: trainTimeout,
	}
}

// SetVersion sets the version reported by the health endpoint.
func (h *Handler) SetVersion(v string) {
	if v != "" {
		h.version = v
	}
}

// Wait blocks until background work started by handlers has finished.
func (h *Handler) Wait() {
	h.background.Wait()
}

// reloadEngine rebuilds the snapshot after catalog changes. An untrained
// engine has nothing to rebuild.
func (h *Handler) reloadEngine(ctx context.Context) {
	if !h.engine.IsReady() || h.engine.IsTraining() {
		return
	}
	if err := h.engine.Reload(ctx); err != nil && !errors.Is(err, recommend.ErrNotReady) {
		logging.Ctx(ctx).Warn().Err(err).Msg("Snapshot reload after catalog change failed")
	}
}

func (h *Handler) maxUploadBytes() int64 {
	if h.config.Server.MaxUploadBytes > 0 {
		return h.config.Server.MaxUploadBytes
	}
	return defaultUploadBytes
}
