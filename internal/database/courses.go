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
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

const courseColumns = `institution, code, title, description, weight, embedding, updated_at`

// CourseFilter selects a page of courses.
type CourseFilter struct {
	Institution string
	Limit       int
	Offset      int
}

// UpsertResult reports the outcome of a bulk upsert.
type UpsertResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// UpsertCourses inserts or updates courses in one transaction. Keys are
// canonicalized. A course whose title or description changed loses its
// persisted vector, since the vector no longer describes it.
func (db *DB) UpsertCourses(ctx context.Context, courses []recommend.Course) (result UpsertResult, err error) {
	defer observe("upsert", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	now := time.Now().UTC()
	for i := range courses {
		c := &courses[i]
		key := c.Key()
		if key.Institution == "" || key.Code == "" {
			return result, fmt.Errorf("course %d: institution and code are required", i)
		}
		weight := c.Weight
		if weight <= 0 {
			weight = 1.0
		}

		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) > 0 FROM courses WHERE institution = ? AND code = ?`,
			key.Institution, key.Code).Scan(&exists)
		if err != nil {
			return result, fmt.Errorf("failed to check course %s: %w", key, err)
		}

		if exists {
			_, err = tx.ExecContext(ctx, `
				UPDATE courses SET
					embedding = CASE WHEN title = ? AND description = ? THEN embedding ELSE NULL END,
					title = ?, description = ?, weight = ?, updated_at = ?
				WHERE institution = ? AND code = ?`,
				c.Title, c.Description, c.Title, c.Description, weight, now, key.Institution, key.Code)
			result.Updated++
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO courses (institution, code, title, description, weight, embedding, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				key.Institution, key.Code, c.Title, c.Description, weight, encodeVector(c.Vector), now, now)
			result.Created++
		}
		if err != nil {
			return UpsertResult{}, fmt.Errorf("failed to upsert course %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to commit courses: %w", err)
	}
	return result, nil
}

// GetCourse returns one course by key, or ErrNotFound.
func (db *DB) GetCourse(ctx context.Context, key recommend.CourseKey) (_ *recommend.Course, err error) {
	defer observe("select", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	key = key.Canonical()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE institution = ? AND code = ?`,
		key.Institution, key.Code)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course %s: %w", key, err)
	}
	return &c, nil
}

// ListCourses returns every course with its persisted vector. It implements
// recommend.DataProvider.
func (db *DB) ListCourses(ctx context.Context) (_ []recommend.Course, err error) {
	defer observe("select", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	courses, err := queryAndScan(ctx, db.conn,
		`SELECT `+courseColumns+` FROM courses ORDER BY institution, code`, nil, scanCourse)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ListCoursesPage returns a page of courses and the total matching count.
// Vectors are not loaded.
func (db *DB) ListCoursesPage(ctx context.Context, filter CourseFilter) (_ []recommend.Course, total int, err error) {
	defer observe("select_page", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	countQuery, countArgs := newQueryBuilder(`SELECT count(*) FROM courses`).
		addInstitutionFilter("institution", filter.Institution).
		build("")
	if err := db.conn.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query, args := newQueryBuilder(`SELECT institution, code, title, description, weight, embedding IS NOT NULL, updated_at FROM courses`).
		addInstitutionFilter("institution", filter.Institution).
		build("ORDER BY institution, code LIMIT ? OFFSET ?", limit, offset)

	courses, err := queryAndScan(ctx, db.conn, query, args, func(rows rowScanner) (recommend.Course, error) {
		var c recommend.Course
		err := rows.Scan(&c.Institution, &c.Code, &c.Title, &c.Description, &c.Weight, &c.HasVector, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

// ListInstitutions returns the distinct institutions in the catalog.
func (db *DB) ListInstitutions(ctx context.Context) (_ []string, err error) {
	defer observe("select", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	return queryAndScan(ctx, db.conn,
		`SELECT institution FROM courses UNION SELECT institution FROM programs ORDER BY 1`, nil,
		func(rows rowScanner) (string, error) {
			var s string
			err := rows.Scan(&s)
			return s, err
		})
}

// SaveCourseVectors persists course vectors. A nil vector clears the stored
// one. Unknown keys are ignored. It implements recommend.EmbeddingWriter.
func (db *DB) SaveCourseVectors(ctx context.Context, vectors map[recommend.CourseKey]vector.Vector) (err error) {
	defer observe("update_vectors", "courses", time.Now(), &err)
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx, `UPDATE courses SET embedding = ? WHERE institution = ? AND code = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare vector update: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for key, v := range vectors {
		key = key.Canonical()
		if _, err := stmt.ExecContext(ctx, encodeVector(v), key.Institution, key.Code); err != nil {
			return fmt.Errorf("failed to save vector for %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit course vectors: %w", err)
	}
	return nil
}

// SaveCourseVectorsByCode assigns vectors keyed by bare course code within
// one institution, as loaded from an embeddings CSV. It returns the codes
// that matched no course.
func (db *DB) SaveCourseVectorsByCode(ctx context.Context, institution string, vectors map[string]vector.Vector) ([]string, error) {
	institution = strings.TrimSpace(institution)
	if institution == "" {
		return nil, fmt.Errorf("institution is required")
	}

	keyed := make(map[recommend.CourseKey]vector.Vector, len(vectors))
	var missing []string
	for code, v := range vectors {
		key := recommend.NewCourseKey(institution, code)
		if _, err := db.GetCourse(ctx, key); err != nil {
			if errors.Is(err, ErrNotFound) {
				missing = append(missing, key.Code)
				continue
			}
			return nil, err
		}
		keyed[key] = v
	}
	sort.Strings(missing)

	if err := db.SaveCourseVectors(ctx, keyed); err != nil {
		return nil, err
	}
	return missing, nil
}

// CourseExists reports whether key is in the catalog.
func (db *DB) CourseExists(ctx context.Context, key recommend.CourseKey) (bool, error) {
	_, err := db.GetCourse(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func scanCourse(row rowScanner) (recommend.Course, error) {
	var c recommend.Course
	var blob []byte
	if err := row.Scan(&c.Institution, &c.Code, &c.Title, &c.Description, &c.Weight, &blob, &c.UpdatedAt); err != nil {
		return c, err
	}
	v, err := decodeVector(blob)
	if err != nil {
		return c, fmt.Errorf("course %s:%s: %w", c.Institution, c.Code, err)
	}
	c.Vector = v
	c.HasVector = v != nil
	return c, nil
}
