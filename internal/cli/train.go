// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/degreematch/internal/recommend"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the course vector space",
	Long: `Trains a new word2vec model on the catalog text, recomputes and stores every
course and program vector, and saves the model as the next version in the
model directory. A running server picks it up on restart.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

var updateEmbeddingsCmd = &cobra.Command{
	Use:   "update-embeddings",
	Short: "Recompute stored vectors with the current model",
	Long: `Recomputes every course and program vector with the newest stored model and
writes them to the catalog. Use after loading courses or programs when a
full retrain is not needed.`,
	Args: cobra.NoArgs,
	RunE: runUpdateEmbeddings,
}

func init() {
	rootCmd.AddCommand(trainCmd, updateEmbeddingsCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		engine, err := s.engine()
		if err != nil {
			return err
		}
		if err := engine.Train(ctx); err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		status := engine.GetStatus()
		if jsonOutput {
			return outputJSON(cmd, status)
		}
		printStatus(cmd, &status)
		return nil
	})
}

func runUpdateEmbeddings(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		engine, err := s.restoredEngine(ctx)
		if err != nil {
			return err
		}
		stats, err := engine.RefreshEmbeddings(ctx)
		if err != nil {
			return fmt.Errorf("update embeddings: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, stats)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Updated %d course and %d program vectors in %dms\n", stats.Courses, stats.Programs, stats.DurationMS)
		if stats.CoursesWithoutSignal > 0 {
			fmt.Fprintf(out, "Courses with no known tokens: %d\n", stats.CoursesWithoutSignal)
		}
		if stats.ProgramsWithoutVector > 0 {
			fmt.Fprintf(out, "Programs without a vector: %d\n", stats.ProgramsWithoutVector)
		}
		return nil
	})
}

func printStatus(cmd *cobra.Command, status *recommend.TrainingStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Training complete")
	fmt.Fprintf(out, "  Model version:  %d\n", status.StoredModelVersion)
	fmt.Fprintf(out, "  Vocabulary:     %d tokens, dimension %d\n", status.VocabularySize, status.Dimension)
	fmt.Fprintf(out, "  Catalog:        %d courses, %d programs\n", status.CourseCount, status.ProgramCount)
	fmt.Fprintf(out, "  Duration:       %dms\n", status.LastTrainingDurationMS)
}
