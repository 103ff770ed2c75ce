package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inddraft/internal/export"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleExport renders the report and its stored tables as a Word document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	rep, err := s.db.GetReport(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeFailure(w, http.StatusNotFound, "report not found")
			return
		}
		s.log.Error("export: report lookup failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	tables, err := s.db.ListTables(r.Context(), reportID)
	if err != nil {
		s.log.Warn("export: table load failed, exporting without tables", "report_id", reportID, "error", err)
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename(rep.Title)))

	// Headers are already written: a failure here can only be logged.
	if err := export.WriteDocx(w, rep, tables); err != nil {
		s.log.Error("export: document write failed", "report_id", reportID, "error", err)
	}
}

// exportFilename derives a safe download filename from the report title.
func exportFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		}
		return -1
	}, strings.TrimSpace(title))
	if name == "" {
		name = "report"
	}
	return name + ".docx"
}
