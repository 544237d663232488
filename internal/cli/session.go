// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/storage"
)

// session holds what a command needs: configuration, the catalog and,
// on demand, an engine.
type session struct {
	cfg *config.Config
	db  *database.DB
}

// openSession loads configuration, routes logs to the command's stderr and
// opens the catalog. Callers must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = cfg.Logging.Level
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: "console",
		Caller: cfg.Logging.Caller,
		Output: cmd.ErrOrStderr(),
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &session{cfg: cfg, db: db}, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

// engine builds an engine wired to the catalog and the model store.
func (s *session) engine() (*recommend.Engine, error) {
	logger := logging.WithComponent("degreectl")

	engine, err := recommend.NewEngine(s.cfg.Recommend.EngineConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	store, err := storage.NewStore(s.cfg.Models.Dir)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	engine.SetDataProvider(s.db)
	engine.SetEmbeddingWriter(s.db)
	engine.SetModelStore(storage.NewVectorSpaceStore(store, s.cfg.Models.Name, s.cfg.Models.Keep, logger))
	return engine, nil
}

// restoredEngine returns an engine serving the newest stored model.
func (s *session) restoredEngine(ctx context.Context) (*recommend.Engine, error) {
	engine, err := s.engine()
	if err != nil {
		return nil, err
	}
	if err := engine.Restore(ctx); err != nil {
		if errors.Is(err, recommend.ErrNoModel) {
			return nil, fmt.Errorf("no trained model in %s, run 'degreectl train' first: %w", s.cfg.Models.Dir, err)
		}
		return nil, fmt.Errorf("restore model: %w", err)
	}
	return engine, nil
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close catalog: %w", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, s)
}
