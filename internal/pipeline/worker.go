package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inddraft/internal/filedoc"
	"inddraft/internal/llm"
	"inddraft/internal/parser"
	"inddraft/internal/report"
	"inddraft/internal/store"
)

const metadataSystemPrompt = `You extract study metadata from excerpts of nonclinical study data files. Respond ONLY with a JSON object with these fields (use an empty string when a field cannot be determined):
- "studyType": e.g. "single-dose PK", "repeat-dose toxicology"
- "species": the test species
- "route": the route of administration
- "studyId": the study identifier or protocol number`

// studyMetadata mirrors the JSON shape the model is asked to return.
type studyMetadata struct {
	StudyType string `json:"studyType"`
	Species   string `json:"species"`
	Route     string `json:"route"`
	StudyID   string `json:"studyId"`
}

// Worker processes a single uploaded file: parse, excerpt, extract study
// metadata via the provider, persist.
type Worker struct {
	provider     llm.Provider
	db           *store.Store
	log          *slog.Logger
	excerptLimit int
}

func NewWorker(provider llm.Provider, db *store.Store, log *slog.Logger, excerptLimit int) *Worker {
	if excerptLimit <= 0 {
		excerptLimit = 4000
	}
	return &Worker{provider: provider, db: db, log: log, excerptLimit: excerptLimit}
}

// Process runs the full upload pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file_id", job.FileID, "report_id", job.ReportID)

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		w.finishFailed(ctx, job, "parsing", err)
		return
	}
	file, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		w.finishFailed(ctx, job, "parsing", fmt.Errorf("parse: %w", err))
		return
	}

	excerpt := filedoc.Excerpt(file, w.excerptLimit)
	if excerpt == "" && len(file.Tables) == 0 {
		log.Warn("no extractable content")
		w.finishFailed(ctx, job, "parsing", fmt.Errorf("no extractable content"))
		return
	}

	// Phase 2: Extract study metadata. Failures here degrade to "no
	// metadata" rather than failing the upload.
	job.SetStatus(StatusExtracting, "extracting")
	meta := w.extractMetadata(ctx, log, excerpt)

	// Phase 3: Persist.
	job.SetStatus(StatusStoring, "storing")
	if err := w.db.SetFileResult(ctx, job.FileID, "processed", excerpt); err != nil {
		log.Error("store excerpt failed", "error", err)
		w.finishFailed(ctx, job, "storing", err)
		return
	}
	if len(file.Tables) > 0 {
		if err := w.db.SaveTables(ctx, job.ReportID, file.Tables); err != nil {
			log.Warn("store tables failed", "error", err)
		}
	}
	if meta != (studyMetadata{}) {
		err := w.db.UpdateStudy(ctx, job.ReportID, report.StudyDetails{
			Type:    meta.StudyType,
			Species: meta.Species,
			Route:   meta.Route,
			StudyID: meta.StudyID,
		})
		if err != nil {
			log.Warn("update study metadata failed", "error", err)
		}
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("file processed", "tables", len(file.Tables), "excerpt_len", len(excerpt))
}

// extractMetadata asks the provider for study metadata, retrying transient
// failures with backoff. Any terminal failure yields empty metadata.
func (w *Worker) extractMetadata(ctx context.Context, log *slog.Logger, excerpt string) studyMetadata {
	if w.provider == nil || strings.TrimSpace(excerpt) == "" {
		return studyMetadata{}
	}
	prompt := "File excerpt:\n\n" + excerpt

	var out string
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		out, err = w.provider.Generate(ctx, llm.GenerateRequest{
			System:    metadataSystemPrompt,
			Messages:  []llm.Message{{Role: "user", Content: prompt}},
			MaxTokens: 512,
		})
		if err == nil || !IsRetryable(err) {
			break
		}
		log.Warn("retryable metadata extraction error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return studyMetadata{}
		}
	}
	if err != nil {
		log.Warn("metadata extraction failed", "error", err)
		return studyMetadata{}
	}

	raw, ok := llm.ExtractJSON(out)
	if !ok {
		log.Warn("no JSON in metadata response")
		return studyMetadata{}
	}
	var meta studyMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		log.Warn("metadata response not an object", "error", err)
		return studyMetadata{}
	}
	return meta
}

func (w *Worker) finishFailed(ctx context.Context, job *Job, phase string, cause error) {
	job.Fail(phase, cause.Error())
	if err := w.db.SetFileResult(ctx, job.FileID, "failed", ""); err != nil {
		w.log.Error("mark file failed", "file_id", job.FileID, "error", err)
	}
}
