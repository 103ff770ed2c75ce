package store

import (
	"context"
	"fmt"
	"time"

	"inddraft/internal/report"
)

// AddMemory inserts a memory for a report. Importance is clamped to 1..10
// and unknown memory types are rejected.
func (s *Store) AddMemory(ctx context.Context, m report.Memory) (report.Memory, error) {
	if !report.ValidMemoryType(m.Type) {
		return report.Memory{}, fmt.Errorf("invalid memory type: %s", m.Type)
	}
	if m.Importance < 1 {
		m.Importance = 1
	}
	if m.Importance > 10 {
		m.Importance = 10
	}
	m.ID = newID()
	m.CreatedAt = time.Now().UTC()

	var expires any
	if m.ExpiresAt != nil {
		expires = m.ExpiresAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, report_id, memory_key, memory_type, content, importance, category, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ReportID, m.Key, string(m.Type), m.Content, m.Importance, m.Category,
		m.CreatedAt.Format(time.RFC3339), expires)
	if err != nil {
		return report.Memory{}, fmt.Errorf("insert memory: %w", err)
	}
	return m, nil
}

// ListMemories returns the live (non-expired) memories for a report, ordered
// by importance then recency, so callers can pass them straight to the
// prompt assembler.
func (s *Store) ListMemories(ctx context.Context, reportID string) ([]report.Memory, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, memory_key, memory_type, content, importance, category, created_at, expires_at
		 FROM memories
		 WHERE report_id = ? AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY importance DESC, created_at DESC`, reportID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []report.Memory
	for rows.Next() {
		var m report.Memory
		var mtype, created string
		var expires *string
		if err := rows.Scan(&m.ID, &m.ReportID, &m.Key, &mtype, &m.Content,
			&m.Importance, &m.Category, &created, &expires); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.Type = report.MemoryType(mtype)
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		if expires != nil {
			t, err := time.Parse(time.RFC3339, *expires)
			if err == nil {
				m.ExpiresAt = &t
			}
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// PurgeExpiredMemories deletes memories past their expiry and returns the
// number removed.
func (s *Store) PurgeExpiredMemories(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
