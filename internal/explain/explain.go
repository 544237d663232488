// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend"
)

// ErrUnavailable is returned when a provider refuses a call because its
// circuit is open or its rate limit is exhausted.
var ErrUnavailable = errors.New("explanation provider unavailable")

// Provider names used in metrics and config.
const (
	ProviderTemplate = "template"
	ProviderOpenAI   = "openai"
)

// Request carries everything an explainer may use.
type Request struct {
	Recommendation recommend.ProgramRecommendation

	// Program holds the catalog entry for the recommended program. Optional.
	Program *recommend.Program

	// Courses are the student's completed courses with titles when known.
	Courses []recommend.Course
}

// Explainer writes an explanation for one recommendation.
type Explainer interface {
	Explain(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the explainer selected by cfg. A disabled config returns the
// template explainer so callers never need a nil check.
func New(cfg *config.ExplainConfig, logger zerolog.Logger) (Explainer, error) {
	tmpl := NewTemplateExplainer()
	if cfg == nil || !cfg.Enabled || cfg.Provider == "" || cfg.Provider == ProviderTemplate {
		return tmpl, nil
	}
	if cfg.Provider != ProviderOpenAI {
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Provider)
	}

	client, err := NewOpenAIExplainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewFallback(client, tmpl, logger), nil
}

// Fallback tries Primary and falls back to Secondary on any error.
type Fallback struct {
	primary   Explainer
	secondary Explainer
	logger    zerolog.Logger
}

// NewFallback creates a Fallback explainer.
func NewFallback(primary, secondary Explainer, logger zerolog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "explain").Logger(),
	}
}

// Name returns the primary provider name.
func (f *Fallback) Name() string { return f.primary.Name() }

// Explain implements Explainer.
func (f *Fallback) Explain(ctx context.Context, req Request) (string, error) {
	text, err := f.primary.Explain(ctx, req)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	ev := f.logger.Warn()
	if errors.Is(err, ErrUnavailable) {
		ev = f.logger.Debug()
	}
	ev.Err(err).
		Str("provider", f.primary.Name()).
		Str("program", req.Recommendation.Program.String()).
		Msg("Explanation provider failed, using fallback")
	metrics.RecordExplain(f.primary.Name(), "fallback")

	return f.secondary.Explain(ctx, req)
}
