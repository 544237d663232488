// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend"
)

// maxListedCourses caps the course names quoted in template text.
const maxListedCourses = 3

// TemplateExplainer renders explanations from the score breakdown.
type TemplateExplainer struct{}

// NewTemplateExplainer creates a TemplateExplainer.
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

// Name implements Explainer.
func (t *TemplateExplainer) Name() string { return ProviderTemplate }

// Explain implements Explainer.
func (t *TemplateExplainer) Explain(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	metrics.RecordExplain(ProviderTemplate, "success")

	rec := req.Recommendation
	var b strings.Builder

	fmt.Fprintf(&b, "%s at %s is a %s match for your coursework (score %.2f).",
		rec.Program.Name, rec.Program.Institution, strengthLabel(rec.Score), rec.Score)

	if rec.OverlapApplied {
		shared := sharedCourses(req.Program, req.Courses)
		switch {
		case len(shared) > 0:
			fmt.Fprintf(&b, " You have already completed %d of its required courses, including %s.",
				len(shared), joinNames(shared))
		case rec.Overlap == 0:
			b.WriteString(" None of your completed courses are on its required list yet.")
		}
	}

	if names := courseNames(req.Courses); len(names) > 0 {
		fmt.Fprintf(&b, " Your work in %s lines up with the program's focus", joinNames(names))
		if req.Program != nil && req.Program.Department != "" {
			fmt.Fprintf(&b, " in %s", req.Program.Department)
		}
		b.WriteString(".")
	}

	return b.String(), nil
}

func strengthLabel(score float64) string {
	switch {
	case score >= 0.85:
		return "strong"
	case score >= 0.7:
		return "good"
	case score >= 0.5:
		return "moderate"
	default:
		return "weak"
	}
}

// sharedCourses returns titles of completed courses that the program requires.
func sharedCourses(p *recommend.Program, courses []recommend.Course) []string {
	if p == nil {
		return nil
	}
	required := make(map[recommend.CourseKey]bool, len(p.RequiredCourses))
	for _, k := range p.RequiredCourses {
		required[k.Canonical()] = true
	}

	var out []string
	seen := make(map[recommend.CourseKey]bool)
	for i := range courses {
		k := courses[i].Key()
		if required[k] && !seen[k] {
			seen[k] = true
			out = append(out, displayName(&courses[i]))
		}
	}
	return out
}

func courseNames(courses []recommend.Course) []string {
	out := make([]string, 0, len(courses))
	for i := range courses {
		out = append(out, displayName(&courses[i]))
	}
	return out
}

func displayName(c *recommend.Course) string {
	if c.Title == "" {
		return c.Key().Code
	}
	return c.Title
}

// joinNames formats up to maxListedCourses names as an English list.
func joinNames(names []string) string {
	extra := 0
	if len(names) > maxListedCourses {
		extra = len(names) - maxListedCourses
		names = names[:maxListedCourses]
	}

	var s string
	switch len(names) {
	case 0:
		return ""
	case 1:
		s = names[0]
	case 2:
		s = names[0] + " and " + names[1]
	default:
		s = strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
	if extra > 0 {
		s = strings.TrimSuffix(s, " and "+names[len(names)-1]) + ", " + names[len(names)-1]
		s += fmt.Sprintf(" and %d more", extra)
	}
	return s
}
