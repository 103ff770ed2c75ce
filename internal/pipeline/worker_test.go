package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"inddraft/internal/llm"
	"inddraft/internal/report"
	"inddraft/internal/store"
)

type scriptedProvider struct {
	response string
	err      error
	calls    int
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	p.calls++
	return p.response, p.err
}

func workerFixture(t *testing.T, provider llm.Provider) (*Worker, *store.Store, string) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rep, err := db.CreateReport(context.Background(), "Study", report.StudyDetails{})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return NewWorker(provider, db, slog.Default(), 4000), db, rep.ID
}

func newTestJob(t *testing.T, db *store.Store, reportID, filename string, data []byte) *Job {
	t.Helper()
	rec, err := db.CreateFile(context.Background(), reportID, filename)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	job := &Job{ID: "job-" + rec.ID, FileID: rec.ID, ReportID: reportID, Filename: filename, Status: StatusQueued}
	job.SetFileData(data)
	return job
}

func TestWorkerProcessCSV(t *testing.T) {
	provider := &scriptedProvider{
		response: `{"studyType": "single-dose PK", "species": "Rat", "route": "IV", "studyId": "S-042"}`,
	}
	w, db, reportID := workerFixture(t, provider)
	ctx := context.Background()

	job := newTestJob(t, db, reportID, "pk_data.csv", []byte("Animal,Cmax\nA1,45.2\n"))
	w.Process(ctx, job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("job = %+v, want completed", snap)
	}

	files, err := db.ListFiles(ctx, reportID)
	if err != nil || len(files) != 1 {
		t.Fatalf("ListFiles: %v, %d files", err, len(files))
	}
	if files[0].Status != "processed" || files[0].Excerpt == "" {
		t.Errorf("file = %+v", files[0])
	}

	tables, err := db.ListTables(ctx, reportID)
	if err != nil || len(tables) != 1 {
		t.Fatalf("ListTables: %v, %d tables", err, len(tables))
	}

	rep, err := db.GetReport(ctx, reportID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	want := report.StudyDetails{Type: "single-dose PK", Species: "Rat", Route: "IV", StudyID: "S-042"}
	if rep.Study != want {
		t.Errorf("study = %+v, want %+v", rep.Study, want)
	}
}

func TestWorkerMetadataFailureDoesNotFailUpload(t *testing.T) {
	provider := &scriptedProvider{response: "I could not determine the metadata."}
	w, db, reportID := workerFixture(t, provider)
	ctx := context.Background()

	job := newTestJob(t, db, reportID, "notes.txt", []byte("Dosing commenced on day 1."))
	w.Process(ctx, job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("job = %+v, want completed despite metadata failure", snap)
	}
	rep, err := db.GetReport(ctx, reportID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if rep.Study != (report.StudyDetails{}) {
		t.Errorf("study = %+v, want untouched", rep.Study)
	}
}

func TestWorkerUnsupportedFileFails(t *testing.T) {
	w, db, reportID := workerFixture(t, &scriptedProvider{})
	ctx := context.Background()

	job := newTestJob(t, db, reportID, "archive.zip", []byte("PK..."))
	w.Process(ctx, job)

	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Fatalf("job = %+v, want failed", snap)
	}
	files, _ := db.ListFiles(ctx, reportID)
	if len(files) != 1 || files[0].Status != "failed" {
		t.Errorf("files = %+v, want failed record", files)
	}
}

func TestWorkerEmptyContentFails(t *testing.T) {
	provider := &scriptedProvider{}
	w, db, reportID := workerFixture(t, provider)
	ctx := context.Background()

	job := newTestJob(t, db, reportID, "blank.txt", []byte("   \n\n  "))
	w.Process(ctx, job)

	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Fatalf("job = %+v, want failed on empty content", snap)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for empty content, want 0", provider.calls)
	}
}
