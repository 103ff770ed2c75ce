package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"inddraft/internal/report"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

type createReportRequest struct {
	Title string              `json:"title"`
	Study report.StudyDetails `json:"study,omitempty"`
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	rep, err := s.db.CreateReport(r.Context(), strings.TrimSpace(req.Title), req.Study)
	if err != nil {
		s.log.Error("reports: create failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"report": rep})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := s.db.GetReport(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeFailure(w, http.StatusNotFound, "report not found")
			return
		}
		s.log.Error("reports: lookup failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	// Attachments are loaded best effort; a missing side table never hides
	// the report itself.
	files, _ := s.db.ListFiles(r.Context(), reportID)
	tables, _ := s.db.ListTables(r.Context(), reportID)
	score, scoreErr := s.db.LatestQCScore(r.Context(), reportID)

	payload := map[string]any{
		"report": rep,
		"files":  files,
		"tables": tables,
	}
	if scoreErr == nil {
		payload["qcScore"] = score
	}
	writeSuccess(w, http.StatusOK, payload)
}

type updateSectionsRequest struct {
	Sections []report.Section `json:"sections"`
}

func (s *Server) handleUpdateSections(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req updateSectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Sections == nil {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	if _, err := s.db.GetReport(r.Context(), reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeFailure(w, http.StatusNotFound, "report not found")
			return
		}
		s.log.Error("reports: lookup failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	if err := s.db.ReplaceSections(r.Context(), reportID, req.Sections); err != nil {
		s.log.Error("reports: section update failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to update sections")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"updated": len(req.Sections)})
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	memories, err := s.db.ListMemories(r.Context(), reportID)
	if err != nil {
		s.log.Error("memories: list failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to list memories")
		return
	}
	if memories == nil {
		memories = []report.Memory{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"memories": memories})
}

type addMemoryRequest struct {
	Key        string            `json:"memoryKey"`
	Type       report.MemoryType `json:"memoryType"`
	Content    string            `json:"content"`
	Importance int               `json:"importance,omitempty"`
	Category   string            `json:"category,omitempty"`
	TTLDays    int               `json:"ttlDays,omitempty"`
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req addMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" || req.Type == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}
	if !report.ValidMemoryType(req.Type) {
		writeFailure(w, http.StatusBadRequest, "unknown memory type")
		return
	}

	m := report.Memory{
		ReportID:   reportID,
		Key:        req.Key,
		Type:       req.Type,
		Content:    req.Content,
		Importance: req.Importance,
		Category:   req.Category,
	}
	if req.TTLDays > 0 {
		exp := timeNow().AddDate(0, 0, req.TTLDays)
		m.ExpiresAt = &exp
	}

	saved, err := s.db.AddMemory(r.Context(), m)
	if err != nil {
		s.log.Error("memories: add failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to save memory")
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]any{"memory": saved})
}
