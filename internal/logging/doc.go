// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package logging provides the zerolog-based structured logging used by the
// DegreeMatch server and the degreectl command line tool.
//
// A single global logger is configured once at startup with Init. Components
// derive child loggers with WithComponent and pass them to their constructors,
// so the engine, trainer and stores all log through the same sink:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	engine, err := recommend.NewEngine(cfg, logging.WithComponent("recommend"))
//
// # Request Context
//
// HTTP middleware stores a request ID in the request context. Ctx returns a
// logger that carries the request and correlation IDs found in a context:
//
//	logging.Ctx(r.Context()).Info().Int("courses", n).Msg("recommending programs")
//
// Background jobs such as scheduled training use correlation IDs instead, so
// every line written during one run can be grouped.
//
// # slog Interop
//
// The supervisor tree logs through log/slog. SlogHandler forwards slog
// records to zerolog so both end up in the same stream:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLoggerWithComponent("supervisor")}
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// The environment variables are read by the config package and passed to Init.
package logging
