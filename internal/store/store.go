// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists completed research sessions in SQLite and serves
// lookups over past findings, including full-text search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deep-research/pkg/types"
)

const dbFile = "sessions.db"

// Store manages the session archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the archive database at dataDir/sessions.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			intent TEXT,
			depth TEXT,
			completed_at TEXT NOT NULL,
			execution_ms INTEGER,
			finding_count INTEGER,
			citation_count INTEGER,
			average_quality REAL,
			result TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS findings (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			confidence REAL,
			relevance REAL,
			UNIQUE(session_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_session ON findings(session_id)`,
		`CREATE TABLE IF NOT EXISTS citations (
			id TEXT NOT NULL,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			title TEXT,
			quality REAL,
			status TEXT,
			PRIMARY KEY (session_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_url ON citations(url)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='findings_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE findings_fts USING fts5(content, content=findings, content_rowid=rowid)`,
			`CREATE TRIGGER findings_ai AFTER INSERT ON findings BEGIN
				INSERT INTO findings_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER findings_ad AFTER DELETE ON findings BEGIN
				INSERT INTO findings_fts(findings_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER findings_au AFTER UPDATE ON findings BEGIN
				INSERT INTO findings_fts(findings_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO findings_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Archive persists a completed research result. Archiving the same plan id
// again replaces the stored session.
func (s *Store) Archive(ctx context.Context, result types.ResearchResult, plan types.ResearchPlan) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Child rows go first so the FTS sync triggers fire; cascades bypass them.
	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE session_id = ?`, result.PlanID); err != nil {
		return fmt.Errorf("clearing previous findings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM citations WHERE session_id = ?`, result.PlanID); err != nil {
		return fmt.Errorf("clearing previous citations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, result.PlanID); err != nil {
		return fmt.Errorf("clearing previous session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, query, intent, depth, completed_at, execution_ms,
			finding_count, citation_count, average_quality, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.PlanID, result.Query, string(plan.Intent), string(plan.Depth),
		result.CompletedAt.UTC().Format(time.RFC3339Nano),
		result.Statistics.ExecutionTime.Milliseconds(),
		len(result.Findings), result.Statistics.CitationsAdded,
		result.Statistics.AverageQuality, string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	findingStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (id, session_id, type, content, confidence, relevance)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing finding insert: %w", err)
	}
	defer findingStmt.Close()

	for _, f := range result.Findings {
		if _, err := findingStmt.ExecContext(ctx,
			f.ID, result.PlanID, string(f.Type), f.Content, f.Confidence, f.Relevance,
		); err != nil {
			return fmt.Errorf("inserting finding %s: %w", f.ID, err)
		}
	}

	citationStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO citations (id, session_id, url, title, quality, status)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing citation insert: %w", err)
	}
	defer citationStmt.Close()

	for _, c := range result.Citations {
		if _, err := citationStmt.ExecContext(ctx,
			c.ID, result.PlanID, c.URL, c.Title, c.Quality.Overall, string(c.Status),
		); err != nil {
			return fmt.Errorf("inserting citation %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session and its findings and citations.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting findings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM citations WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting citations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return tx.Commit()
}
