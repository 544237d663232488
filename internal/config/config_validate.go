// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateExplain(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS rejects wildcard origins in production.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validateRateLimits validates rate limiting bounds
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < 1 || c.Server.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.TrainRateLimitReqs < 1 || c.Server.TrainRateLimitReqs > c.Server.RateLimitReqs {
		return fmt.Errorf("TRAIN_RATE_LIMIT_REQUESTS must be between 1 and RATE_LIMIT_REQUESTS, got %d", c.Server.TrainRateLimitReqs)
	}
	if c.Server.RateLimitWindow < time.Second || c.Server.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h, got %v", c.Server.RateLimitWindow)
	}
	return nil
}

// validateStorage validates database, model and schedule storage settings
func (c *Config) validateStorage() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Models.Dir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if strings.ContainsAny(c.Models.Name, `/\`) || c.Models.Name == "" {
		return fmt.Errorf("MODEL_NAME must be a plain file prefix, got %q", c.Models.Name)
	}
	if c.Models.Keep < 0 {
		return fmt.Errorf("MODEL_KEEP must be non-negative")
	}
	if !c.Schedules.InMemory && c.Schedules.Path == "" {
		return fmt.Errorf("SCHEDULES_PATH is required unless SCHEDULES_IN_MEMORY=true")
	}
	if c.Schedules.TTL <= 0 {
		return fmt.Errorf("SCHEDULES_TTL must be positive")
	}
	return nil
}

// validateRecommend validates engine settings through the engine's own
// validation.
func (c *Config) validateRecommend() error {
	if c.Recommend.TrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be non-negative")
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validExplainProviders defines the supported explanation providers
var validExplainProviders = map[string]bool{
	"template": true,
	"openai":   true,
}

// validateExplain validates explanation settings (only if enabled)
func (c *Config) validateExplain() error {
	if !c.Explain.Enabled {
		return nil
	}
	if !validExplainProviders[c.Explain.Provider] {
		return fmt.Errorf("EXPLAIN_PROVIDER must be one of: template, openai")
	}
	if c.Explain.Provider != "openai" {
		return nil
	}

	if c.Explain.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EXPLAIN_PROVIDER=openai")
	}
	if c.Explain.BaseURL != "" {
		if err := validateHTTPURL(c.Explain.BaseURL, "OPENAI_BASE_URL"); err != nil {
			return err
		}
	}
	if c.Explain.Model == "" {
		return fmt.Errorf("OPENAI_MODEL is required when EXPLAIN_PROVIDER=openai")
	}
	if c.Explain.Timeout <= 0 {
		return fmt.Errorf("EXPLAIN_TIMEOUT must be positive")
	}
	if c.Explain.RequestsPerSecond <= 0 || c.Explain.Burst < 1 {
		return fmt.Errorf("EXPLAIN_RPS and EXPLAIN_BURST must be positive")
	}
	if c.Explain.BreakerFailureThreshold < 1 {
		return fmt.Errorf("EXPLAIN_BREAKER_FAILURES must be positive")
	}
	return nil
}

// validateHTTPURL validates that a URL is an http(s) URL with a host.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
