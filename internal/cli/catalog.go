// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/degreematch/internal/database"
)

var (
	loadCoursesInstitution    string
	loadProgramsInstitution   string
	loadEmbeddingsInstitution string
)

var loadCoursesCmd = &cobra.Command{
	Use:   "load-courses FILE",
	Short: "Load a course catalog CSV",
	Long: `Loads courses from a CSV with the columns course_code, title, description
and optional institution and weight. Rows without an institution use
--institution. Existing courses are updated; a changed title or description
clears the course's stored vector.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadCourses,
}

var loadProgramsCmd = &cobra.Command{
	Use:   "load-programs FILE",
	Short: "Load a degree program CSV",
	Long: `Loads programs from a CSV with the columns institution, name, description,
department, degree_type, required_courses and elective_courses. Course lists
are comma or semicolon separated codes at the program's institution.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadPrograms,
}

var loadEmbeddingsCmd = &cobra.Command{
	Use:   "load-embeddings FILE",
	Short: "Load precomputed course vectors",
	Long: `Loads course vectors from a CSV with the columns course_code and embedding,
where embedding is a comma-joined list of floats. Every vector must have the
same dimension. Codes that are not in the catalog are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoadEmbeddings,
}

func init() {
	loadCoursesCmd.Flags().StringVarP(&loadCoursesInstitution, "institution", "i", "", "institution for rows without one")
	loadProgramsCmd.Flags().StringVarP(&loadProgramsInstitution, "institution", "i", "", "institution for rows without one")
	loadEmbeddingsCmd.Flags().StringVarP(&loadEmbeddingsInstitution, "institution", "i", "", "institution the course codes belong to")
	_ = loadEmbeddingsCmd.MarkFlagRequired("institution")

	rootCmd.AddCommand(loadCoursesCmd, loadProgramsCmd, loadEmbeddingsCmd)
}

// openCSV opens a CSV file named on the command line.
func openCSV(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // path is an explicit command-line argument
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func runLoadCourses(cmd *cobra.Command, args []string) error {
	f, err := openCSV(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	courses, err := database.ReadCoursesCSV(f, loadCoursesInstitution)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if len(courses) == 0 {
		return errors.New("no courses found in file")
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		result, err := s.db.UpsertCourses(ctx, courses)
		if err != nil {
			return fmt.Errorf("load courses: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d courses (%d created, %d updated)\n",
			len(courses), result.Created, result.Updated)
		return nil
	})
}

func runLoadPrograms(cmd *cobra.Command, args []string) error {
	f, err := openCSV(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	programs, err := database.ReadProgramsCSV(f, loadProgramsInstitution)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if len(programs) == 0 {
		return errors.New("no programs found in file")
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		result, err := s.db.UpsertPrograms(ctx, programs)
		if err != nil {
			return fmt.Errorf("load programs: %w", err)
		}
		if jsonOutput {
			return outputJSON(cmd, result)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %d programs (%d created, %d updated) with %d course links\n",
			len(programs), result.Created, result.Updated, result.Links)
		if len(result.MissingCourses) > 0 {
			fmt.Fprintf(out, "Linked courses not in the catalog: %s\n", joinCourseKeys(result.MissingCourses))
		}
		return nil
	})
}

// embeddingsResult is the JSON output of load-embeddings.
type embeddingsResult struct {
	Institution string   `json:"institution"`
	Loaded      int      `json:"loaded"`
	Dimension   int      `json:"dimension"`
	Missing     []string `json:"missing,omitempty"`
}

func runLoadEmbeddings(cmd *cobra.Command, args []string) error {
	institution := strings.TrimSpace(loadEmbeddingsInstitution)
	if institution == "" {
		return errors.New("--institution is required")
	}

	f, err := openCSV(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	vectors, err := database.ReadEmbeddingsCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if len(vectors) == 0 {
		return errors.New("no embeddings found in file")
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		missing, err := s.db.SaveCourseVectorsByCode(ctx, institution, vectors)
		if err != nil {
			return fmt.Errorf("load embeddings: %w", err)
		}

		result := embeddingsResult{
			Institution: institution,
			Loaded:      len(vectors) - len(missing),
			Missing:     missing,
		}
		for _, v := range vectors {
			result.Dimension = len(v)
			break
		}

		if jsonOutput {
			return outputJSON(cmd, result)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %d course vectors (dimension %d) for %s\n", result.Loaded, result.Dimension, institution)
		if len(missing) > 0 {
			fmt.Fprintf(out, "Skipped %d codes not in the catalog: %s\n", len(missing), strings.Join(missing, ", "))
		}
		return nil
	})
}
