// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package explain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend"
)

const (
	breakerName = "openai-explain"

	systemPrompt = "You are a knowledgeable and encouraging academic advisor helping students find their ideal major."

	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

// OpenAIExplainer asks a chat completion model for an explanation.
type OpenAIExplainer struct {
	client    *openai.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[string]
	logger    zerolog.Logger
}

// NewOpenAIExplainer creates an OpenAI-backed explainer from cfg.
func NewOpenAIExplainer(cfg *config.ExplainConfig, logger zerolog.Logger) (*OpenAIExplainer, error) {
	if cfg == nil {
		return nil, errors.New("explain config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	rps := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		rps = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	e := &OpenAIExplainer{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rps, burst),
		logger:    logger.With().Str("component", "explain").Str("provider", ProviderOpenAI).Logger(),
	}
	e.breaker = gobreaker.NewCircuitBreaker[string](e.breakerSettings(cfg))
	return e, nil
}

func (e *OpenAIExplainer) breakerSettings(cfg *config.ExplainConfig) gobreaker.Settings {
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Caller cancellation says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			e.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, fromStr, toStr)
		},
	}
}

// Name implements Explainer.
func (e *OpenAIExplainer) Name() string { return ProviderOpenAI }

// State returns the breaker state as "closed", "half-open" or "open".
func (e *OpenAIExplainer) State() string {
	return stateToString(e.breaker.State())
}

// Explain implements Explainer.
func (e *OpenAIExplainer) Explain(ctx context.Context, req Request) (string, error) {
	if !e.limiter.Allow() {
		metrics.RecordExplain(ProviderOpenAI, "rate_limited")
		return "", fmt.Errorf("%w: rate limit exceeded", ErrUnavailable)
	}

	text, err := e.breaker.Execute(func() (string, error) {
		return e.complete(ctx, req)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordExplain(ProviderOpenAI, "rejected")
		return "", fmt.Errorf("%w: circuit %s", ErrUnavailable, e.State())
	case err != nil:
		metrics.RecordExplain(ProviderOpenAI, "error")
		return "", err
	}

	metrics.RecordExplain(ProviderOpenAI, "success")
	return text, nil
}

func (e *OpenAIExplainer) complete(ctx context.Context, req Request) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: defaultTemperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return text, nil
}

// buildPrompt renders the advisor prompt for one recommendation.
func buildPrompt(req Request) string {
	rec := req.Recommendation
	var b strings.Builder

	fmt.Fprintf(&b, "As an academic advisor, explain why the %s program at %s (similarity score: %.2f) ",
		rec.Program.Name, rec.Program.Institution, rec.Score)
	b.WriteString("would be a good fit for a student who has taken these courses:\n\n")

	b.WriteString("Student's Completed Courses:\n")
	writeCourseLines(&b, req.Courses)

	if p := req.Program; p != nil {
		if len(p.RequiredCourses) > 0 {
			b.WriteString("\nProgram Required Courses:\n")
			for _, k := range p.RequiredCourses {
				fmt.Fprintf(&b, "- %s\n", k.Code)
			}
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "\nProgram Description:\n%s\n", p.Description)
		}
	}

	b.WriteString("\nPlease provide a concise, encouraging explanation focusing on:\n")
	b.WriteString("1. How their completed courses align with the program\n")
	b.WriteString("2. What skills they've likely developed that would be valuable\n")
	b.WriteString("3. Potential career paths this program could lead to\n")
	return b.String()
}

func writeCourseLines(b *strings.Builder, courses []recommend.Course) {
	for i := range courses {
		c := &courses[i]
		if c.Title != "" {
			fmt.Fprintf(b, "- %s: %s\n", c.Key().Code, c.Title)
		} else {
			fmt.Fprintf(b, "- %s\n", c.Key().Code)
		}
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
