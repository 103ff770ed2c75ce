// Package store is the sqlite persistence layer for reports, uploads,
// memories, QC runs and chat history.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"inddraft/internal/report"
)

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func newID() string {
	return ulid.Make().String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		study_type  TEXT NOT NULL DEFAULT '',
		species     TEXT NOT NULL DEFAULT '',
		route       TEXT NOT NULL DEFAULT '',
		study_id    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sections (
		report_id   TEXT NOT NULL REFERENCES reports(id),
		position    INTEGER NOT NULL,
		section_id  TEXT NOT NULL,
		title       TEXT NOT NULL,
		level       INTEGER NOT NULL DEFAULT 1,
		numbered    INTEGER NOT NULL DEFAULT 1,
		content     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (report_id, position)
	);

	CREATE TABLE IF NOT EXISTS report_tables (
		report_id   TEXT NOT NULL REFERENCES reports(id),
		number      INTEGER NOT NULL,
		caption     TEXT NOT NULL,
		headers     TEXT NOT NULL,
		rows        TEXT NOT NULL,
		PRIMARY KEY (report_id, number)
	);

	CREATE TABLE IF NOT EXISTS uploaded_files (
		id          TEXT PRIMARY KEY,
		report_id   TEXT NOT NULL REFERENCES reports(id),
		filename    TEXT NOT NULL,
		status      TEXT NOT NULL,
		excerpt     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_files_report ON uploaded_files(report_id);

	CREATE TABLE IF NOT EXISTS memories (
		id          TEXT PRIMARY KEY,
		report_id   TEXT NOT NULL REFERENCES reports(id),
		memory_key  TEXT NOT NULL,
		memory_type TEXT NOT NULL,
		content     TEXT NOT NULL,
		importance  INTEGER NOT NULL DEFAULT 5,
		category    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		expires_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_report ON memories(report_id);
	CREATE INDEX IF NOT EXISTS idx_memories_expires ON memories(expires_at);

	CREATE TABLE IF NOT EXISTS qc_runs (
		id          TEXT PRIMARY KEY,
		report_id   TEXT NOT NULL,
		score       INTEGER NOT NULL,
		issues      TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_qc_runs_report ON qc_runs(report_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id          TEXT PRIMARY KEY,
		report_id   TEXT NOT NULL REFERENCES reports(id),
		role        TEXT NOT NULL,
		content     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_report ON chat_messages(report_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateReport inserts a new report and returns it.
func (s *Store) CreateReport(ctx context.Context, title string, study report.StudyDetails) (report.Report, error) {
	now := time.Now().UTC()
	rep := report.Report{
		ID:        newID(),
		Title:     title,
		Study:     study,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, title, study_type, species, route, study_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Title, study.Type, study.Species, study.Route, study.StudyID,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return report.Report{}, fmt.Errorf("insert report: %w", err)
	}
	return rep, nil
}

// GetReport loads a report with its sections. Returns sql.ErrNoRows when the
// report does not exist.
func (s *Store) GetReport(ctx context.Context, id string) (report.Report, error) {
	var rep report.Report
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, study_type, species, route, study_id, created_at, updated_at
		 FROM reports WHERE id = ?`, id).
		Scan(&rep.ID, &rep.Title, &rep.Study.Type, &rep.Study.Species, &rep.Study.Route,
			&rep.Study.StudyID, &created, &updated)
	if err != nil {
		return report.Report{}, err
	}
	rep.CreatedAt, _ = time.Parse(time.RFC3339, created)
	rep.UpdatedAt, _ = time.Parse(time.RFC3339, updated)

	rows, err := s.db.QueryContext(ctx,
		`SELECT section_id, title, level, numbered, content
		 FROM sections WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return report.Report{}, fmt.Errorf("load sections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sec report.Section
		var numbered int
		if err := rows.Scan(&sec.ID, &sec.Title, &sec.Level, &numbered, &sec.Content); err != nil {
			return report.Report{}, fmt.Errorf("scan section: %w", err)
		}
		sec.Numbered = numbered != 0
		rep.Sections = append(rep.Sections, sec)
	}
	return rep, rows.Err()
}

// ReplaceSections overwrites the report's section drafts in one transaction.
func (s *Store) ReplaceSections(ctx context.Context, reportID string, sections []report.Section) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE report_id = ?`, reportID); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}
	for i, sec := range sections {
		numbered := 0
		if sec.Numbered {
			numbered = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sections (report_id, position, section_id, title, level, numbered, content)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reportID, i, sec.ID, sec.Title, sec.Level, numbered, sec.Content); err != nil {
			return fmt.Errorf("insert section: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE reports SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), reportID); err != nil {
		return fmt.Errorf("touch report: %w", err)
	}
	return tx.Commit()
}

// UpdateStudy fills in study metadata. Only non-empty fields overwrite.
func (s *Store) UpdateStudy(ctx context.Context, reportID string, study report.StudyDetails) error {
	rep, err := s.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	merged := rep.Study
	if study.Type != "" {
		merged.Type = study.Type
	}
	if study.Species != "" {
		merged.Species = study.Species
	}
	if study.Route != "" {
		merged.Route = study.Route
	}
	if study.StudyID != "" {
		merged.StudyID = study.StudyID
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE reports SET study_type = ?, species = ?, route = ?, study_id = ?, updated_at = ?
		 WHERE id = ?`,
		merged.Type, merged.Species, merged.Route, merged.StudyID,
		time.Now().UTC().Format(time.RFC3339), reportID)
	return err
}

// SaveTables upserts extracted tables for a report.
func (s *Store) SaveTables(ctx context.Context, reportID string, tables []report.Table) error {
	for _, t := range tables {
		headers, err := json.Marshal(t.Headers)
		if err != nil {
			return err
		}
		tableRows, err := json.Marshal(t.Rows)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO report_tables (report_id, number, caption, headers, rows)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(report_id, number) DO UPDATE SET caption = excluded.caption,
			 headers = excluded.headers, rows = excluded.rows`,
			reportID, t.Number, t.Caption, string(headers), string(tableRows)); err != nil {
			return fmt.Errorf("upsert table: %w", err)
		}
	}
	return nil
}

// ListTables returns the stored tables for a report in number order.
func (s *Store) ListTables(ctx context.Context, reportID string) ([]report.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, caption, headers, rows FROM report_tables
		 WHERE report_id = ? ORDER BY number`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []report.Table
	for rows.Next() {
		var t report.Table
		var headers, body string
		if err := rows.Scan(&t.Number, &t.Caption, &headers, &body); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(headers), &t.Headers); err != nil {
			return nil, fmt.Errorf("decode headers: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &t.Rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}
