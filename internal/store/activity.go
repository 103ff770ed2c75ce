package store

import (
	"context"
	"fmt"
	"time"

	"inddraft/internal/report"
)

// SaveQCRun records the outcome of one QC run. The engine itself never
// persists anything; this is the caller's responsibility.
func (s *Store) SaveQCRun(ctx context.Context, reportID string, score int, issuesJSON []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO qc_runs (id, report_id, score, issues, created_at) VALUES (?, ?, ?, ?, ?)`,
		newID(), reportID, score, string(issuesJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert qc run: %w", err)
	}
	return nil
}

// LatestQCScore returns the most recent score for a report, or -1 when no
// run has been recorded.
func (s *Store) LatestQCScore(ctx context.Context, reportID string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM qc_runs WHERE report_id = ? ORDER BY created_at DESC LIMIT 1`,
		reportID).Scan(&score)
	if err != nil {
		return -1, err
	}
	return score, nil
}

// AddChatMessage appends one refinement conversation turn.
func (s *Store) AddChatMessage(ctx context.Context, reportID, role, content string) (report.ChatMessage, error) {
	msg := report.ChatMessage{
		ID:        newID(),
		ReportID:  reportID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, report_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ReportID, msg.Role, msg.Content, msg.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return report.ChatMessage{}, fmt.Errorf("insert chat message: %w", err)
	}
	return msg, nil
}

// RecentChatMessages returns the last limit messages for a report in
// chronological order. ULIDs sort by creation time, so ordering by id keeps
// turns stored within the same second in insertion order.
func (s *Store) RecentChatMessages(ctx context.Context, reportID string, limit int) ([]report.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, role, content, created_at FROM (
			SELECT id, report_id, role, content, created_at
			FROM chat_messages WHERE report_id = ?
			ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`, reportID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []report.ChatMessage
	for rows.Next() {
		var m report.ChatMessage
		var created string
		if err := rows.Scan(&m.ID, &m.ReportID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CreateFile records a new uploaded file in "queued" state.
func (s *Store) CreateFile(ctx context.Context, reportID, filename string) (report.UploadedFile, error) {
	f := report.UploadedFile{
		ID:        newID(),
		ReportID:  reportID,
		Filename:  filename,
		Status:    "queued",
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploaded_files (id, report_id, filename, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.ReportID, f.Filename, f.Status, f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return report.UploadedFile{}, fmt.Errorf("insert file: %w", err)
	}
	return f, nil
}

// SetFileResult stores the processing outcome for an uploaded file.
func (s *Store) SetFileResult(ctx context.Context, fileID, status, excerpt string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploaded_files SET status = ?, excerpt = ? WHERE id = ?`, status, excerpt, fileID)
	return err
}

// ListFiles returns the uploaded files for a report, newest first.
func (s *Store) ListFiles(ctx context.Context, reportID string) ([]report.UploadedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, filename, status, excerpt, created_at
		 FROM uploaded_files WHERE report_id = ? ORDER BY created_at DESC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []report.UploadedFile
	for rows.Next() {
		var f report.UploadedFile
		var created string
		if err := rows.Scan(&f.ID, &f.ReportID, &f.Filename, &f.Status, &f.Excerpt, &created); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, created)
		files = append(files, f)
	}
	return files, rows.Err()
}
