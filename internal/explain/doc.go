// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

/*
Package explain produces short, student-facing explanations of why a program
was recommended for a set of completed courses.

Two providers are available:

  - TemplateExplainer builds the text locally from the score breakdown and
    the course overlap. It never fails and needs no network access.
  - OpenAIExplainer asks a chat completion model to write the explanation.
    Calls pass through a token bucket limiter and a circuit breaker so a slow
    or failing provider cannot stall recommendation requests.

New wires the configured provider behind a Fallback so OpenAI failures
degrade to the template text:

	exp, err := explain.New(&cfg.Explain, logger)
	text, err := exp.Explain(ctx, explain.Request{Recommendation: rec, Courses: courses})

Every attempt is counted in degreematch_explain_requests_total by provider and
result.
*/
package explain
