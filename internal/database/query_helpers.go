// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tomtom215/degreematch/internal/metrics"
)

// queryBuilder helps construct SQL queries with filters.
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
}

func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 4),
		filters:   make([]string, 0, 2),
	}
}

// addFilter adds a WHERE condition with its arguments.
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// addInstitutionFilter filters on column when institution is non-empty.
// Institutions compare case-insensitively.
func (qb *queryBuilder) addInstitutionFilter(column, institution string) *queryBuilder {
	if institution = strings.TrimSpace(institution); institution != "" {
		qb.addFilter("lower("+column+") = lower(?)", institution)
	}
	return qb
}

// build returns the final query and its arguments. suffix is appended after
// the WHERE clause, e.g. ORDER BY or LIMIT.
func (qb *queryBuilder) build(suffix string, suffixArgs ...interface{}) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " WHERE " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	args := make([]interface{}, 0, len(qb.args)+len(suffixArgs))
	args = append(args, qb.args...)
	args = append(args, suffixArgs...)
	return query, args
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanFunc scans a single row into a result type.
type scanFunc[T any] func(rowScanner) (T, error)

// queryAndScan executes a query and scans all rows with scan.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// observe records a catalog query in the metrics registry. Use as
//
//	defer observe("select", "courses", time.Now(), &err)
func observe(operation, table string, start time.Time, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), e)
}
