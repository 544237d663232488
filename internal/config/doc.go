// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package config provides centralized configuration management for DegreeMatch.

# Configuration Sources

LoadWithKoanf layers three sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, then config.yaml, config.yml,
    /etc/degreematch/config.yaml
 3. Environment variables with an explicit name mapping

Unknown environment variables are ignored.

# Configuration Structure

  - ServerConfig: HTTP listener, CORS, per-IP rate limits, upload size
  - DatabaseConfig: DuckDB catalog file and tuning
  - ModelsConfig: trained model directory, file prefix, retained versions
  - SchedulesConfig: badger schedule store path, TTL, GC interval
  - RecommendConfig: training, scoring and ranking knobs
  - ExplainConfig: template or OpenAI explanations, rate limit, breaker
  - LoggingConfig: zerolog level, format and caller

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - TRAIN_RATE_LIMIT_REQUESTS: limit for train and refresh endpoints

Storage:
  - DUCKDB_PATH (default: /data/degreematch.duckdb)
  - MODEL_DIR, MODEL_NAME, MODEL_KEEP
  - SCHEDULES_PATH, SCHEDULES_TTL, SCHEDULES_IN_MEMORY

Recommendation engine:
  - RECOMMEND_TRAIN_INTERVAL (default: 24h, 0 disables)
  - RECOMMEND_TRAIN_ON_STARTUP
  - RECOMMEND_DIMENSION, RECOMMEND_WINDOW, RECOMMEND_EPOCHS
  - RECOMMEND_TOP_N, RECOMMEND_MIN_SIMILARITY
  - RECOMMEND_SEMANTIC_WEIGHT, RECOMMEND_OVERLAP_WEIGHT (must sum to 1)

Explanations:
  - EXPLAIN_ENABLED, EXPLAIN_PROVIDER (template or openai)
  - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL
  - EXPLAIN_RPS, EXPLAIN_BURST, EXPLAIN_BREAKER_FAILURES

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
*/
package config
