package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"inddraft/internal/parser"
	"inddraft/internal/pipeline"
)

// handleUploadFile accepts one study data file as multipart form data and
// queues it for background parsing and metadata extraction. The response is
// 202 with a job ID the client polls.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeFailure(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d byte limit", s.cfg.MaxUploadBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		writeFailure(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q", filepath.Ext(filename)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeFailure(w, http.StatusBadRequest, "empty file")
		return
	}

	rec, err := s.db.CreateFile(r.Context(), reportID, filename)
	if err != nil {
		s.log.Error("files: create record failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to record upload")
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        ulid.Make().String(),
		FileID:    rec.ID,
		ReportID:  reportID,
		Filename:  filename,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("files: queue full, rejecting upload", "report_id", reportID, "filename", filename)
		writeFailure(w, http.StatusServiceUnavailable, "processing queue is full, retry later")
		return
	}

	s.log.Info("files: upload accepted", "report_id", reportID, "filename", filename,
		"bytes", len(data), "job_id", job.ID)

	writeSuccess(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"file_id":  rec.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": "/api/files/" + job.ID + "/status",
	})
}

func (s *Server) handleFileStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeFailure(w, http.StatusNotFound, "job not found")
		return
	}

	snap := job.Snapshot()
	writeSuccess(w, http.StatusOK, map[string]any{"job": snap})
}

// sanitizeFilename strips any path components and control characters from an
// uploaded filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, name)
}
