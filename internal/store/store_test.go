package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"inddraft/internal/report"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReportLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.CreateReport(ctx, "Rat PK Study", report.StudyDetails{Type: "PK", Species: "Rat"})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateReport returned empty ID")
	}

	sections := []report.Section{
		{ID: "s1", Title: "Introduction", Level: 1, Numbered: true, Content: "Purpose of study."},
		{ID: "s2", Title: "Methods", Level: 1, Content: "Dosing schedule."},
	}
	if err := s.ReplaceSections(ctx, created.ID, sections); err != nil {
		t.Fatalf("ReplaceSections: %v", err)
	}

	got, err := s.GetReport(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Title != "Rat PK Study" || got.Study.Species != "Rat" {
		t.Errorf("report = %+v", got)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(got.Sections))
	}
	if got.Sections[0].ID != "s1" || !got.Sections[0].Numbered {
		t.Errorf("first section = %+v", got.Sections[0])
	}
	if got.Sections[1].Numbered {
		t.Errorf("second section should not be numbered")
	}

	// Replacing again drops the old set.
	if err := s.ReplaceSections(ctx, created.ID, sections[:1]); err != nil {
		t.Fatalf("ReplaceSections (second): %v", err)
	}
	got, err = s.GetReport(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if len(got.Sections) != 1 {
		t.Errorf("got %d sections after replace, want 1", len(got.Sections))
	}
}

func TestGetReportMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.GetReport(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestUpdateStudyMergesNonEmpty(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{Type: "PK", Species: "Dog"})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	if err := s.UpdateStudy(ctx, rep.ID, report.StudyDetails{Route: "IV", StudyID: "S-001"}); err != nil {
		t.Fatalf("UpdateStudy: %v", err)
	}

	got, err := s.GetReport(ctx, rep.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	want := report.StudyDetails{Type: "PK", Species: "Dog", Route: "IV", StudyID: "S-001"}
	if got.Study != want {
		t.Errorf("study = %+v, want %+v", got.Study, want)
	}
}

func TestMemories(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	if _, err := s.AddMemory(ctx, report.Memory{
		ReportID: rep.ID, Type: "WISH", Content: "bad type",
	}); err == nil {
		t.Error("AddMemory accepted unknown type")
	}

	low, err := s.AddMemory(ctx, report.Memory{
		ReportID: rep.ID, Key: "units", Type: report.MemoryPreference,
		Content: "Use SI units", Importance: 0,
	})
	if err != nil {
		t.Fatalf("AddMemory: %v", err)
	}
	if low.Importance != 1 {
		t.Errorf("importance = %d, want clamped to 1", low.Importance)
	}

	if _, err := s.AddMemory(ctx, report.Memory{
		ReportID: rep.ID, Key: "species", Type: report.MemoryDecision,
		Content: "Report uses Sprague-Dawley", Importance: 99,
	}); err != nil {
		t.Fatalf("AddMemory: %v", err)
	}

	expired := time.Now().Add(-time.Hour)
	if _, err := s.AddMemory(ctx, report.Memory{
		ReportID: rep.ID, Key: "old", Type: report.MemoryFact,
		Content: "stale", Importance: 5, ExpiresAt: &expired,
	}); err != nil {
		t.Fatalf("AddMemory: %v", err)
	}

	memories, err := s.ListMemories(ctx, rep.ID)
	if err != nil {
		t.Fatalf("ListMemories: %v", err)
	}
	if len(memories) != 2 {
		t.Fatalf("got %d memories, want 2 (expired excluded): %+v", len(memories), memories)
	}
	if memories[0].Importance != 10 {
		t.Errorf("first memory importance = %d, want 10 (clamped, ordered first)", memories[0].Importance)
	}

	purged, err := s.PurgeExpiredMemories(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredMemories: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}

func TestTablesUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	first := []report.Table{{Number: 1, Caption: "Doses", Headers: []string{"Group"}, Rows: [][]string{{"A"}}}}
	if err := s.SaveTables(ctx, rep.ID, first); err != nil {
		t.Fatalf("SaveTables: %v", err)
	}

	// Same number replaces, new number appends.
	second := []report.Table{
		{Number: 1, Caption: "Dose Groups", Headers: []string{"Group", "Dose"}, Rows: [][]string{{"A", "10"}}},
		{Number: 2, Caption: "PK Parameters", Headers: []string{"Parameter"}, Rows: [][]string{{"Cmax"}}},
	}
	if err := s.SaveTables(ctx, rep.ID, second); err != nil {
		t.Fatalf("SaveTables (upsert): %v", err)
	}

	tables, err := s.ListTables(ctx, rep.ID)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].Caption != "Dose Groups" || len(tables[0].Headers) != 2 {
		t.Errorf("table 1 not replaced: %+v", tables[0])
	}
}

func TestChatHistory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	for _, turn := range []struct{ role, content string }{
		{"user", "first question"},
		{"assistant", "first answer"},
		{"user", "second question"},
	} {
		if _, err := s.AddChatMessage(ctx, rep.ID, turn.role, turn.content); err != nil {
			t.Fatalf("AddChatMessage: %v", err)
		}
	}

	msgs, err := s.RecentChatMessages(ctx, rep.ID, 2)
	if err != nil {
		t.Fatalf("RecentChatMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "first answer" || msgs[1].Content != "second question" {
		t.Errorf("messages out of order: %+v", msgs)
	}
}

func TestQCRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	if _, err := s.LatestQCScore(ctx, rep.ID); err == nil {
		t.Error("LatestQCScore on empty history should error")
	}

	if err := s.SaveQCRun(ctx, rep.ID, 91, []byte(`[]`)); err != nil {
		t.Fatalf("SaveQCRun: %v", err)
	}

	score, err := s.LatestQCScore(ctx, rep.ID)
	if err != nil {
		t.Fatalf("LatestQCScore: %v", err)
	}
	if score != 91 {
		t.Errorf("score = %d, want 91", score)
	}
}

func TestUploadedFiles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rep, err := s.CreateReport(ctx, "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}

	f, err := s.CreateFile(ctx, rep.ID, "pk_data.csv")
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	if f.Status != "queued" {
		t.Errorf("status = %q, want queued", f.Status)
	}

	if err := s.SetFileResult(ctx, f.ID, "processed", "## pk_data\nColumns: ..."); err != nil {
		t.Fatalf("SetFileResult: %v", err)
	}

	files, err := s.ListFiles(ctx, rep.ID)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].Status != "processed" || files[0].Excerpt == "" {
		t.Errorf("file = %+v", files[0])
	}
}
