// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/degreematch/internal/recommend"
)

var (
	recommendInstitution   string
	recommendTop           int
	recommendMinSimilarity float64
	recommendNoOverlap     bool

	similarTarget string
	similarLimit  int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend CODE...",
	Short: "Recommend programs for a list of completed courses",
	Long: `Ranks programs against the given course codes at --institution. A code of
the form institution:code names a course at another institution. The
course-overlap bonus applies to programs at --institution.`,
	Example: `  degreectl recommend --institution CSUSB "CSE 2010" "CSE 2020"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRecommend,
}

var similarCmd = &cobra.Command{
	Use:     "similar INSTITUTION:CODE",
	Short:   "List courses similar to a course",
	Example: `  degreectl similar "CSUSB:CSE 2010" --target-institution UCLA`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSimilar,
}

func init() {
	recommendCmd.Flags().StringVarP(&recommendInstitution, "institution", "i", "", "institution of the schedule")
	recommendCmd.Flags().IntVarP(&recommendTop, "top", "n", 0, "number of programs (default from config)")
	recommendCmd.Flags().Float64Var(&recommendMinSimilarity, "min-similarity", -1, "minimum score (default from config)")
	recommendCmd.Flags().BoolVar(&recommendNoOverlap, "no-overlap", false, "disable the course-overlap bonus")
	_ = recommendCmd.MarkFlagRequired("institution")

	similarCmd.Flags().StringVarP(&similarTarget, "target-institution", "t", "", "only return courses at this institution")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 0, "number of courses (default from config)")

	rootCmd.AddCommand(recommendCmd, similarCmd)
}

// scheduleFromArgs turns command-line codes into course keys.
func scheduleFromArgs(institution string, args []string) ([]recommend.CourseKey, error) {
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return nil, errors.New("--institution is required")
	}
	keys := make([]recommend.CourseKey, 0, len(args))
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return nil, errors.New("empty course code")
		}
		if strings.Contains(arg, ":") {
			key, err := recommend.ParseCourseKey(arg)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			continue
		}
		keys = append(keys, recommend.NewCourseKey(institution, arg))
	}
	return keys, nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	courses, err := scheduleFromArgs(recommendInstitution, args)
	if err != nil {
		return err
	}

	req := recommend.ProgramRequest{
		Courses: courses,
		TopN:    recommendTop,
	}
	if !recommendNoOverlap {
		req.Institution = strings.TrimSpace(recommendInstitution)
	}
	if recommendMinSimilarity >= 0 {
		minSim := recommendMinSimilarity
		req.MinSimilarity = &minSim
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		engine, err := s.restoredEngine(ctx)
		if err != nil {
			return err
		}
		resp, err := engine.RecommendPrograms(ctx, req)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, resp)
		}

		out := cmd.OutOrStdout()
		if len(resp.Missing) > 0 {
			fmt.Fprintf(out, "Courses without a vector: %s\n", joinCourseKeys(resp.Missing))
		}
		if len(resp.Recommendations) == 0 {
			fmt.Fprintln(out, "No programs above the similarity threshold.")
			return nil
		}
		for _, r := range resp.Recommendations {
			fmt.Fprintf(out, "  [%d] %s (%.3f)", r.Rank, r.Program, r.Score)
			if r.OverlapApplied {
				fmt.Fprintf(out, " overlap %.0f%%", r.Overlap*100)
			}
			fmt.Fprintln(out)
		}
		return nil
	})
}

func runSimilar(cmd *cobra.Command, args []string) error {
	key, err := recommend.ParseCourseKey(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		engine, err := s.restoredEngine(ctx)
		if err != nil {
			return err
		}
		results, err := engine.SimilarCourses(ctx, recommend.SimilarRequest{
			Course:            key,
			TargetInstitution: strings.TrimSpace(similarTarget),
			Limit:             similarLimit,
		})
		if err != nil {
			return fmt.Errorf("similar courses: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, results)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No similar courses found.")
			return nil
		}
		for i := range results {
			fmt.Fprintf(out, "  [%d] %s %s (%.3f)\n", i+1, results[i].Course, results[i].Title, results[i].Similarity)
		}
		return nil
	})
}
