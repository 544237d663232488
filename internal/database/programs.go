// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

const (
	requirementRequired = "required"
	requirementElective = "elective"
)

// ProgramLoadResult reports the outcome of UpsertPrograms.
type ProgramLoadResult struct {
	UpsertResult

	// Links is the number of requirement links written.
	Links int `json:"links"`

	// MissingCourses lists linked courses that are not in the catalog. The
	// links are kept; they still count toward requirement overlap.
	MissingCourses []recommend.CourseKey `json:"missing_courses,omitempty"`
}

// CatalogStats summarizes catalog contents.
type CatalogStats struct {
	Courses             int `json:"courses"`
	CoursesWithVectors  int `json:"courses_with_vectors"`
	Programs            int `json:"programs"`
	ProgramsWithVectors int `json:"programs_with_vectors"`
	Institutions        int `json:"institutions"`
}

// UpsertPrograms inserts or updates programs and replaces their requirement
// links, all in one transaction. A program whose description changed loses
// its persisted vector.
func (db *DB) UpsertPrograms(ctx context.Context, programs []recommend.Program) (result ProgramLoadResult, err error) {
	defer observe("upsert", "programs", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	now := time.Now().UTC()
	for i := range programs {
		p := &programs[i]
		key := p.Key()
		if key.Institution == "" || key.Name == "" {
			return ProgramLoadResult{}, fmt.Errorf("program %d: institution and name are required", i)
		}
		degree := p.DegreeType
		if degree == "" {
			degree = recommend.DegreeBachelor
		}

		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) > 0 FROM programs WHERE institution = ? AND name = ?`,
			key.Institution, key.Name).Scan(&exists)
		if err != nil {
			return ProgramLoadResult{}, fmt.Errorf("failed to check program %s: %w", key, err)
		}

		if exists {
			_, err = tx.ExecContext(ctx, `
				UPDATE programs SET
					embedding = CASE WHEN description = ? THEN embedding ELSE NULL END,
					description = ?, department = ?, degree_type = ?, updated_at = ?
				WHERE institution = ? AND name = ?`,
				p.Description, p.Description, p.Department, string(degree), now, key.Institution, key.Name)
			result.Updated++
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO programs (institution, name, description, department, degree_type, embedding, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				key.Institution, key.Name, p.Description, p.Department, string(degree), encodeVector(p.Vector), now, now)
			result.Created++
		}
		if err != nil {
			return ProgramLoadResult{}, fmt.Errorf("failed to upsert program %s: %w", key, err)
		}

		links, missing, err := replaceLinks(ctx, tx, key, p)
		if err != nil {
			return ProgramLoadResult{}, err
		}
		result.Links += links
		result.MissingCourses = append(result.MissingCourses, missing...)
	}

	if err := tx.Commit(); err != nil {
		return ProgramLoadResult{}, fmt.Errorf("failed to commit programs: %w", err)
	}

	for _, k := range result.MissingCourses {
		logging.Warn().Str("course", k.String()).Msg("Linked course not found in catalog")
	}
	return result, nil
}

// replaceLinks rewrites the requirement links of one program. Duplicate
// courses within a requirement list are written once.
func replaceLinks(ctx context.Context, tx *sql.Tx, key recommend.ProgramKey, p *recommend.Program) (int, []recommend.CourseKey, error) {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM program_courses WHERE program_institution = ? AND program_name = ?`,
		key.Institution, key.Name); err != nil {
		return 0, nil, fmt.Errorf("failed to clear links for %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO program_courses (program_institution, program_name, course_institution, course_code, requirement, ordinal)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	var missing []recommend.CourseKey
	checked := make(map[recommend.CourseKey]bool)
	written := 0

	lists := []struct {
		requirement string
		courses     []recommend.CourseKey
	}{
		{requirementRequired, p.RequiredCourses},
		{requirementElective, p.ElectiveCourses},
	}
	for _, list := range lists {
		seen := make(map[recommend.CourseKey]bool, len(list.courses))
		ordinal := 0
		for _, ck := range list.courses {
			ck = ck.Canonical()
			if ck.Institution == "" {
				ck.Institution = key.Institution
			}
			if ck.Code == "" || seen[ck] {
				continue
			}
			seen[ck] = true

			if _, ok := checked[ck]; !ok {
				var exists bool
				if err := tx.QueryRowContext(ctx,
					`SELECT count(*) > 0 FROM courses WHERE institution = ? AND code = ?`,
					ck.Institution, ck.Code).Scan(&exists); err != nil {
					return 0, nil, fmt.Errorf("failed to check course %s: %w", ck, err)
				}
				checked[ck] = exists
				if !exists {
					missing = append(missing, ck)
				}
			}

			if _, err := stmt.ExecContext(ctx, key.Institution, key.Name, ck.Institution, ck.Code, list.requirement, ordinal); err != nil {
				return 0, nil, fmt.Errorf("failed to link %s to %s: %w", ck, key, err)
			}
			ordinal++
			written++
		}
	}
	return written, missing, nil
}

// GetProgram returns one program with its requirement links, or ErrNotFound.
func (db *DB) GetProgram(ctx context.Context, key recommend.ProgramKey) (_ *recommend.Program, err error) {
	defer observe("select", "programs", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	key = recommend.NewProgramKey(key.Institution, key.Name)
	row := db.conn.QueryRowContext(ctx,
		`SELECT institution, name, description, department, degree_type, embedding, updated_at
		 FROM programs WHERE institution = ? AND name = ?`, key.Institution, key.Name)
	p, err := scanProgram(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("program %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program %s: %w", key, err)
	}

	links, err := db.loadLinks(ctx, key.Institution, key.Name)
	if err != nil {
		return nil, err
	}
	applyLinks(&p, links[key])
	return &p, nil
}

// ListPrograms returns every program with requirements and persisted vector.
// It implements recommend.DataProvider.
func (db *DB) ListPrograms(ctx context.Context) ([]recommend.Program, error) {
	return db.ListProgramsByInstitution(ctx, "")
}

// ListProgramsByInstitution returns the programs of one institution, or all
// programs when institution is empty.
func (db *DB) ListProgramsByInstitution(ctx context.Context, institution string) (_ []recommend.Program, err error) {
	defer observe("select", "programs", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query, args := newQueryBuilder(`SELECT institution, name, description, department, degree_type, embedding, updated_at FROM programs`).
		addInstitutionFilter("institution", institution).
		build("ORDER BY institution, name")
	programs, err := queryAndScan(ctx, db.conn, query, args, scanProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	links, err := db.loadLinks(ctx, institution, "")
	if err != nil {
		return nil, err
	}
	for i := range programs {
		applyLinks(&programs[i], links[programs[i].Key()])
	}
	return programs, nil
}

// SaveProgramVectors persists program vectors. It implements
// recommend.EmbeddingWriter.
func (db *DB) SaveProgramVectors(ctx context.Context, vectors map[recommend.ProgramKey]vector.Vector) (err error) {
	defer observe("update_vectors", "programs", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx, `UPDATE programs SET embedding = ? WHERE institution = ? AND name = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare vector update: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for key, v := range vectors {
		key = recommend.NewProgramKey(key.Institution, key.Name)
		if _, err := stmt.ExecContext(ctx, encodeVector(v), key.Institution, key.Name); err != nil {
			return fmt.Errorf("failed to save vector for %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit program vectors: %w", err)
	}
	return nil
}

// Stats returns catalog counts.
func (db *DB) Stats(ctx context.Context) (stats CatalogStats, err error) {
	defer observe("stats", "catalog", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM courses),
			(SELECT count(*) FROM courses WHERE embedding IS NOT NULL),
			(SELECT count(*) FROM programs),
			(SELECT count(*) FROM programs WHERE embedding IS NOT NULL),
			(SELECT count(*) FROM (SELECT institution FROM courses UNION SELECT institution FROM programs))`).
		Scan(&stats.Courses, &stats.CoursesWithVectors, &stats.Programs, &stats.ProgramsWithVectors, &stats.Institutions)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("failed to read catalog stats: %w", err)
	}
	return stats, nil
}

type programLinks struct {
	required []recommend.CourseKey
	elective []recommend.CourseKey
}

// loadLinks returns requirement links grouped by program. Empty filters
// match everything.
func (db *DB) loadLinks(ctx context.Context, institution, name string) (map[recommend.ProgramKey]*programLinks, error) {
	qb := newQueryBuilder(`SELECT program_institution, program_name, course_institution, course_code, requirement FROM program_courses`).
		addInstitutionFilter("program_institution", institution)
	if name != "" {
		qb.addFilter("program_name = ?", name)
	}
	query, args := qb.build("ORDER BY program_institution, program_name, requirement, ordinal")

	type link struct {
		program     recommend.ProgramKey
		course      recommend.CourseKey
		requirement string
	}
	rows, err := queryAndScan(ctx, db.conn, query, args, func(r rowScanner) (link, error) {
		var l link
		err := r.Scan(&l.program.Institution, &l.program.Name, &l.course.Institution, &l.course.Code, &l.requirement)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load requirement links: %w", err)
	}

	out := make(map[recommend.ProgramKey]*programLinks)
	for _, l := range rows {
		pl := out[l.program]
		if pl == nil {
			pl = &programLinks{}
			out[l.program] = pl
		}
		if l.requirement == requirementRequired {
			pl.required = append(pl.required, l.course)
		} else {
			pl.elective = append(pl.elective, l.course)
		}
	}
	return out, nil
}

func applyLinks(p *recommend.Program, links *programLinks) {
	if links == nil {
		return
	}
	p.RequiredCourses = links.required
	p.ElectiveCourses = links.elective
}

func scanProgram(row rowScanner) (recommend.Program, error) {
	var p recommend.Program
	var degree string
	var blob []byte
	if err := row.Scan(&p.Institution, &p.Name, &p.Description, &p.Department, &degree, &blob, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.DegreeType = recommend.DegreeType(degree)
	v, err := decodeVector(blob)
	if err != nil {
		return p, fmt.Errorf("program %s:%s: %w", p.Institution, p.Name, err)
	}
	p.Vector = v
	p.HasVector = v != nil
	return p, nil
}
