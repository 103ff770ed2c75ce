package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"inddraft/internal/report"
)

type qcRequest struct {
	ReportID   string          `json:"reportId"`
	Content    *report.Content `json:"content"`
	CheckTypes []string        `json:"checkTypes,omitempty"`
}

// handleQC runs the rule engine plus any requested model-backed checks
// over a report's content. Panics from a single run are converted into a
// failure envelope so one bad document cannot take the server down.
func (s *Server) handleQC(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("qc: recovered from panic", "panic", rec)
			writeFailure(w, http.StatusInternalServerError, fmt.Sprintf("qc failed: %v", rec))
		}
	}()

	var req qcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ReportID) == "" || req.Content == nil {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	result := s.engine.Run(r.Context(), *req.Content, req.CheckTypes)

	// Persisting the run is best effort. The caller still gets results
	// when the write fails.
	if issuesJSON, err := json.Marshal(result.Issues); err == nil {
		if err := s.db.SaveQCRun(r.Context(), req.ReportID, result.Score, issuesJSON); err != nil {
			s.log.Warn("qc: failed to persist run", "report_id", req.ReportID, "error", err)
		}
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"issues": result.Issues,
		"score":  result.Score,
	})
}
