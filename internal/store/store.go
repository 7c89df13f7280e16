// Copyright Ansvar Systems AB, 2026. All rights reserved.

// Package store loads emitted law records into the sqlite database the
// downstream search service reads: one catalog row per law, provisions in
// a full-text-indexed table keyed by (law_id, section), and a metadata
// table carrying the build timestamp as a freshness indicator.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ansvar-Systems/Qatari-law-mcp/pkg/types"
)

const defaultMaxResults = 20

// Store manages the laws sqlite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at cfg.DBPath and ensures the schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("store: empty database path")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
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
		`CREATE TABLE IF NOT EXISTS laws (
			id TEXT PRIMARY KEY,
			title TEXT,
			title_english TEXT,
			short_name TEXT,
			status TEXT,
			source_url TEXT,
			source_description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS provisions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			law_id TEXT NOT NULL REFERENCES laws(id),
			ref TEXT NOT NULL,
			section TEXT,
			title TEXT,
			content TEXT NOT NULL,
			UNIQUE(law_id, ref)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_provisions_law_section ON provisions(law_id, section)`,
		`CREATE TABLE IF NOT EXISTS definitions (
			law_id TEXT NOT NULL REFERENCES laws(id),
			term TEXT NOT NULL,
			definition TEXT NOT NULL,
			source_provision TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_definitions_law ON definitions(law_id)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='provisions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE provisions_fts USING fts5(content, content=provisions, content_rowid=rowid)`,
			`CREATE TRIGGER provisions_ai AFTER INSERT ON provisions BEGIN
				INSERT INTO provisions_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER provisions_ad AFTER DELETE ON provisions BEGIN
				INSERT INTO provisions_fts(provisions_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER provisions_au AFTER UPDATE ON provisions BEGIN
				INSERT INTO provisions_fts(provisions_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO provisions_fts(rowid, content) VALUES (new.rowid, new.content);
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

// LoadSummary holds counts from one load run.
type LoadSummary struct {
	Loaded int
	Failed int
}

// Total returns the number of record files processed.
func (l LoadSummary) Total() int {
	return l.Loaded + l.Failed
}

// Load reads record JSON files from recordsDir and replaces each law's
// rows transactionally, then stamps the build timestamp. A malformed file
// is logged and skipped; it never aborts the load.
func (s *Store) Load(ctx context.Context, recordsDir string, w io.Writer) (LoadSummary, error) {
	entries, err := os.ReadDir(recordsDir)
	if err != nil {
		return LoadSummary{}, fmt.Errorf("reading records directory %s: %w", recordsDir, err)
	}

	var summary LoadSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(recordsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		var record types.Record
		if err := json.Unmarshal(data, &record); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		if err := s.loadRecord(ctx, record); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "loaded  %s (%d provisions, %d definitions)\n",
			record.ID, len(record.Provisions), len(record.Definitions))
		summary.Loaded++
	}

	if summary.Loaded > 0 {
		if err := s.stampBuildTime(ctx); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(w, "\nloaded: %d, failed: %d\n", summary.Loaded, summary.Failed)
	return summary, nil
}

func (s *Store) loadRecord(ctx context.Context, record types.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace-per-law keeps reloads idempotent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM provisions WHERE law_id = ?`, record.ID); err != nil {
		return fmt.Errorf("deleting old provisions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM definitions WHERE law_id = ?`, record.ID); err != nil {
		return fmt.Errorf("deleting old definitions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO laws (id, title, title_english, short_name, status, source_url, source_description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, title_english=excluded.title_english,
			short_name=excluded.short_name, status=excluded.status,
			source_url=excluded.source_url, source_description=excluded.source_description`,
		record.ID, record.Title, record.TitleEnglish, record.ShortName,
		record.Status, record.SourceURL, record.SourceDescription,
	)
	if err != nil {
		return fmt.Errorf("upserting law: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO provisions (law_id, ref, section, title, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing provision insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range record.Provisions {
		if _, err := stmt.ExecContext(ctx, record.ID, p.Ref, p.SectionLabel, p.Title, p.Content); err != nil {
			return fmt.Errorf("inserting provision %s/%s: %w", record.ID, p.Ref, err)
		}
	}

	for _, d := range record.Definitions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO definitions (law_id, term, definition, source_provision) VALUES (?, ?, ?, ?)`,
			record.ID, d.Term, d.Definition, d.SourceProvisionRef,
		)
		if err != nil {
			return fmt.Errorf("inserting definition %q: %w", d.Term, err)
		}
	}

	return tx.Commit()
}

func (s *Store) stampBuildTime(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('built_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("stamping build time: %w", err)
	}
	return nil
}

// BuiltAt returns the freshness timestamp written by the last load.
func (s *Store) BuiltAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'built_at'`).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("store has never been loaded")
		}
		return time.Time{}, fmt.Errorf("reading build time: %w", err)
	}
	return time.Parse(time.RFC3339, value)
}

// SearchResult is one full-text hit with its law context.
type SearchResult struct {
	LawID    string
	LawTitle string
	Ref      string
	Section  string
	Content  string
}

// Search runs an FTS5 match over provision content, ranked by relevance.
// A zero limit uses the store default.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.law_id, l.title, p.ref, p.section, p.content
		 FROM provisions_fts
		 JOIN provisions p ON p.rowid = provisions_fts.rowid
		 LEFT JOIN laws l ON l.id = p.law_id
		 WHERE provisions_fts MATCH ?
		 ORDER BY provisions_fts.rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying provisions: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title sql.NullString
		if err := rows.Scan(&r.LawID, &title, &r.Ref, &r.Section, &r.Content); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.LawTitle = title.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetProvision retrieves one provision by law id and section label, the
// lookup that backs citation validation.
func (s *Store) GetProvision(ctx context.Context, lawID, section string) (types.Provision, error) {
	var p types.Provision
	err := s.db.QueryRowContext(ctx,
		`SELECT ref, section, title, content FROM provisions WHERE law_id = ? AND section = ?`,
		lawID, section,
	).Scan(&p.Ref, &p.SectionLabel, &p.Title, &p.Content)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Provision{}, fmt.Errorf("provision %s/%s not found", lawID, section)
		}
		return types.Provision{}, fmt.Errorf("looking up provision: %w", err)
	}
	return p, nil
}
