// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// SessionSummary is one row of the archive listing.
type SessionSummary struct {
	ID             string        `json:"id" yaml:"id"`
	Query          string        `json:"query" yaml:"query"`
	Intent         string        `json:"intent" yaml:"intent"`
	Depth          string        `json:"depth" yaml:"depth"`
	CompletedAt    time.Time     `json:"completed_at" yaml:"completed_at"`
	ExecutionTime  time.Duration `json:"execution_time" yaml:"execution_time"`
	FindingCount   int           `json:"finding_count" yaml:"finding_count"`
	CitationCount  int           `json:"citation_count" yaml:"citation_count"`
	AverageQuality float64       `json:"average_quality" yaml:"average_quality"`
}

// Sessions lists archived sessions, most recent first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, intent, depth, completed_at, execution_ms,
			finding_count, citation_count, average_quality
		FROM sessions ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum         SessionSummary
			completedAt string
			execMs      int64
		)
		if err := rows.Scan(&sum.ID, &sum.Query, &sum.Intent, &sum.Depth,
			&completedAt, &execMs,
			&sum.FindingCount, &sum.CitationCount, &sum.AverageQuality); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, completedAt); parseErr == nil {
			sum.CompletedAt = t
		}
		sum.ExecutionTime = time.Duration(execMs) * time.Millisecond
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Session loads the full archived result for one session id.
func (s *Store) Session(ctx context.Context, id string) (types.ResearchResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM sessions WHERE id = ?`, id,
	).Scan(&resultJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.ResearchResult{}, fmt.Errorf("session %s not found", id)
		}
		return types.ResearchResult{}, fmt.Errorf("loading session: %w", err)
	}

	var result types.ResearchResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return types.ResearchResult{}, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return result, nil
}

// SearchOptions holds parameters for archive searches.
type SearchOptions struct {
	// Query is the FTS5 full-text search string over finding content.
	Query string

	// Type filters by finding type.
	Type types.FindingType

	// SessionID restricts the search to one session.
	SessionID string

	// MinConfidence drops findings below this confidence.
	MinConfidence float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// FindingHit is one archive search result with its session context.
type FindingHit struct {
	types.Finding
	SessionID    string `json:"session_id" yaml:"session_id"`
	SessionQuery string `json:"session_query" yaml:"session_query"`
}

// SearchFindings queries archived findings with optional full-text search
// and structured filters. Full-text queries rank by FTS relevance;
// structured-only queries sort by confidence.
func (s *Store) SearchFindings(ctx context.Context, opts SearchOptions) ([]FindingHit, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT f.id, f.session_id, f.type, f.content, f.confidence, f.relevance,
				sess.query, findings_fts.rank
			FROM findings_fts
			JOIN findings f ON f.rowid = findings_fts.rowid
			JOIN sessions sess ON f.session_id = sess.id
			WHERE findings_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT f.id, f.session_id, f.type, f.content, f.confidence, f.relevance,
				sess.query, 0 AS rank
			FROM findings f
			JOIN sessions sess ON f.session_id = sess.id
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND f.type = ?`)
		args = append(args, string(opts.Type))
	}
	if opts.SessionID != "" {
		qb.WriteString(` AND f.session_id = ?`)
		args = append(args, opts.SessionID)
	}
	if opts.MinConfidence > 0 {
		qb.WriteString(` AND f.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}

	if useFTS {
		qb.WriteString(` ORDER BY findings_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.confidence DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching findings: %w", err)
	}
	defer rows.Close()

	var hits []FindingHit
	for rows.Next() {
		var (
			hit         FindingHit
			findingType string
			rank        float64
		)
		if err := rows.Scan(&hit.ID, &hit.SessionID, &findingType, &hit.Content,
			&hit.Confidence, &hit.Relevance, &hit.SessionQuery, &rank); err != nil {
			return nil, fmt.Errorf("scanning finding row: %w", err)
		}
		hit.Type = types.FindingType(findingType)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// CitedBy returns the ids of sessions whose results cite the given URL.
func (s *Store) CitedBy(ctx context.Context, url string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT session_id FROM citations WHERE url = ? ORDER BY session_id`, url)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning citation row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
