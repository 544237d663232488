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

	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/recommend"
)

var (
	evalProgram     string
	evalPoolPrefix  string
	evalInstitution string
	evalSizes       []int
	evalTrials      int
	evalTop         int
	evalSeed        int64
	evalDetail      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure how well a program ranks for sampled schedules",
	Long: `Samples random schedules of increasing size and reports where the expected
program ranks among the recommendations.

Schedules are drawn from the program's required courses, or from every
catalog course at the program's institution whose code starts with
--pool-prefix. The course-overlap bonus applies only with --institution.`,
	Example: `  degreectl evaluate --program "CSUSB:Computer Science" --pool-prefix CSE`,
	Args:    cobra.NoArgs,
	RunE:    runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalProgram, "program", "p", "", "expected program as institution:name")
	evaluateCmd.Flags().StringVar(&evalPoolPrefix, "pool-prefix", "", "sample from catalog courses whose code starts with this prefix")
	evaluateCmd.Flags().StringVarP(&evalInstitution, "institution", "i", "", "institution for the overlap bonus")
	evaluateCmd.Flags().IntSliceVar(&evalSizes, "sizes", nil, "schedule sizes (default 1,2,3,4,5,7,10)")
	evaluateCmd.Flags().IntVar(&evalTrials, "trials", 5, "random schedules per size")
	evaluateCmd.Flags().IntVarP(&evalTop, "top", "n", 10, "recommendation depth searched for the program")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", 1, "sampling seed")
	evaluateCmd.Flags().BoolVar(&evalDetail, "trials-detail", false, "print every trial")
	_ = evaluateCmd.MarkFlagRequired("program")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	expected, err := recommend.ParseProgramKey(evalProgram)
	if err != nil {
		return fmt.Errorf("invalid --program: %w", err)
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		engine, err := s.restoredEngine(ctx)
		if err != nil {
			return err
		}

		cfg := recommend.EvalConfig{
			Expected:    expected,
			Institution: strings.TrimSpace(evalInstitution),
			Sizes:       evalSizes,
			Trials:      evalTrials,
			TopN:        evalTop,
			Seed:        evalSeed,
		}
		if evalPoolPrefix != "" {
			cfg.Pool, err = poolByPrefix(ctx, s.db, expected.Institution, evalPoolPrefix)
			if err != nil {
				return err
			}
		}

		report, err := engine.Evaluate(ctx, cfg)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, report)
		}
		printEvalReport(cmd, report, evalDetail)
		return nil
	})
}

// poolByPrefix returns the courses at institution whose code starts with
// prefix, in catalog order.
func poolByPrefix(ctx context.Context, db *database.DB, institution, prefix string) ([]recommend.CourseKey, error) {
	courses, err := db.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))

	var pool []recommend.CourseKey
	for i := range courses {
		key := courses[i].Key()
		if strings.EqualFold(key.Institution, institution) && strings.HasPrefix(key.Code, prefix) {
			pool = append(pool, key)
		}
	}
	if len(pool) == 0 {
		return nil, errors.New("no catalog courses match --pool-prefix")
	}
	return pool, nil
}

func printEvalReport(cmd *cobra.Command, report *recommend.EvalReport, detail bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Expected program: %s (pool of %d courses)\n", report.Expected, report.PoolSize)

	if detail {
		for i := range report.Trials {
			t := &report.Trials[i]
			fmt.Fprintf(out, "\nTrial %d - schedule with %d course(s): %s\n", t.Trial, len(t.Courses), joinCourseKeys(t.Courses))
			for _, r := range t.Top {
				fmt.Fprintf(out, "  [%d] %s (%.3f)\n", r.Rank, r.Program, r.Score)
			}
			if t.Found() {
				fmt.Fprintf(out, "  expected at position %d, score %.3f\n", t.Position, t.ExpectedScore)
			} else {
				fmt.Fprintln(out, "  expected program not found")
			}
		}
	}

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %5s %7s %9s %10s %10s %10s\n", "size", "hits", "mean rank", "mean score", "top-5 mean", "top-5 std")
	for _, s := range report.Summary {
		fmt.Fprintf(out, "  %5d %3d/%-3d %9.2f %10.3f %10.3f %10.3f\n",
			s.Size, s.Hits, s.Trials, s.MeanRank, s.MeanExpectedScore, s.MeanTopScore, s.TopScoreStdDev)
	}
}
