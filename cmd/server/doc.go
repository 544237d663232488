// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package main is the entry point for the DegreeMatch server.

DegreeMatch recommends degree programs from a student's completed courses.
Courses and programs are embedded in a word2vec vector space trained on the
catalog text, and programs are ranked by the similarity between the
schedule's aggregate vector and each program vector, with a bonus for
required courses already completed at the same institution.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("degreematch")
	├── DataSupervisor ("data-layer")
	│   └── Schedule GC (BadgerDB value log)
	├── EngineSupervisor ("engine-layer")
	│   └── Training service (startup + periodic retraining)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment
 2. Logging: zerolog with JSON or console output
 3. Catalog: DuckDB with versioned migrations
 4. Schedule store: BadgerDB with per-entry TTL
 5. Engine: restore the newest stored model, if any
 6. Explainer: template, or an OpenAI-compatible API behind a breaker
 7. Supervisor tree and HTTP server

# Configuration

Configuration is layered (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Common environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/degreematch.duckdb
	MODEL_DIR=/data/models
	SCHEDULES_PATH=/data/schedules
	RECOMMEND_TRAIN_INTERVAL=24h
	EXPLAIN_ENABLED=false
	LOG_LEVEL=info

The config file is given with -config, CONFIG_PATH, or found in the
standard locations.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops
accepting connections, waits for in-flight requests and background
training started through the API, and the stores are closed.
*/
package main
