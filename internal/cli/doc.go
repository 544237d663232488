// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

// Package cli implements the degreectl admin commands with cobra.
//
// Commands share the server's koanf configuration (--config), open the
// DuckDB catalog directly and use the same model directory, so a model
// trained here is restored by the server on its next start.
package cli
