// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package query builds parameterized SQL WHERE clauses for the database
// package. All values travel as ? placeholders, never as string
// concatenation.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder accumulates WHERE conditions and their bound arguments.
//
//	wb := query.NewWhereBuilder()
//	wb.AddDateRange(&since, nil)
//	wb.AddRegions([]string{"Madrid", "Canarias"})
//	clause, args := wb.Build()
//	// date >= ? AND region IN (?, ?)
//
// Not safe for concurrent use. Build one per query.
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause appends a raw condition fragment with its arguments, for
// conditions the helpers do not cover.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddDateRange bounds the observation date column. Nil endpoints are
// skipped, so open-ended windows work without special casing.
func (wb *WhereBuilder) AddDateRange(since, until *time.Time) *WhereBuilder {
	if since != nil {
		wb.clauses = append(wb.clauses, "date >= ?")
		wb.args = append(wb.args, since.UTC())
	}
	if until != nil {
		wb.clauses = append(wb.clauses, "date <= ?")
		wb.args = append(wb.args, until.UTC())
	}
	return wb
}

// AddRegions filters by autonomous community name with an IN clause. An
// empty slice is skipped.
func (wb *WhereBuilder) AddRegions(regions []string) *WhereBuilder {
	if len(regions) == 0 {
		return wb
	}
	placeholders := make([]string, len(regions))
	for i, region := range regions {
		placeholders[i] = "?"
		wb.args = append(wb.args, region)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("region IN (%s)", strings.Join(placeholders, ", ")))
	return wb
}

// AddIndicatorPresent requires a non-NULL value in the named indicator
// column. The column name must come from a trusted constant, never from
// request input.
func (wb *WhereBuilder) AddIndicatorPresent(column string) *WhereBuilder {
	wb.clauses = append(wb.clauses, column+" IS NOT NULL")
	return wb
}

// Build joins the conditions with AND. An empty builder yields "1=1" so
// callers can interpolate unconditionally.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	clause, args := wb.Build()
	return "WHERE " + clause, args
}

// Count returns the number of conditions added.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no conditions have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
