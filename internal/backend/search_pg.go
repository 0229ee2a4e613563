/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchQuery filters the job search. An empty Text lists the most recent
// jobs instead of running full-text search.
type SearchQuery struct {
	Text   string
	Limit  int
	Offset int
}

// SearchResult is one job matched by narration text or title.
type SearchResult struct {
	JobID         int64     `json:"id"`
	StableID      string    `json:"stable_id"`
	Title         string    `json:"title"`
	Snippet       string    `json:"snippet"`
	TotalDuration float64   `json:"total_duration"`
	CreatedAt     time.Time `json:"created_at"`
}

// SearchJobs runs a websearch-style full-text query over the stored
// narration scripts and titles. Matches are ranked by relevance, ties by
// recency; snippets mark hits with square brackets.
func SearchJobs(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		b.WriteString("SELECT j.id, j.stable_id, j.title, ")
		b.WriteString("COALESCE(ts_headline('simple', COALESCE(j.narration_script,''), websearch_to_tsquery('simple', $1), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') AS snippet, ")
		b.WriteString("j.total_duration, j.created_at ")
		b.WriteString("FROM jobs j WHERE j.search_vector @@ websearch_to_tsquery('simple', $1) ")
		args = append(args, q.Text)
	} else {
		b.WriteString("SELECT j.id, j.stable_id, j.title, '' AS snippet, j.total_duration, j.created_at ")
		b.WriteString("FROM jobs j WHERE TRUE ")
	}

	// Helper to add parameter and return placeholder like $n
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if useFTS {
		b.WriteString(" ORDER BY ts_rank(j.search_vector, websearch_to_tsquery('simple', $1)) DESC, j.created_at DESC, j.id DESC ")
	} else {
		b.WriteString(" ORDER BY j.created_at DESC, j.id DESC ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search jobs query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.JobID, &r.StableID, &r.Title, &r.Snippet, &r.TotalDuration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
