package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inddraft/internal/llm"
	"inddraft/internal/prompt"
	"inddraft/internal/report"
)

const chatSystemPrompt = "You are an assistant helping a medical writer refine an IND report " +
	"draft. Answer questions about the report, suggest edits and explain regulatory " +
	"expectations. Base every answer on the provided report context; say so when the context " +
	"does not contain the answer."

// chatHistoryLimit bounds how many stored turns are replayed to the model.
const chatHistoryLimit = 10

type chatRequest struct {
	Message   string `json:"message"`
	SectionID string `json:"sectionId,omitempty"`
}

// handleChat answers one refinement turn. The report's assembled context is
// carried in the system prompt and recent turns are replayed verbatim.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	rep, err := s.db.GetReport(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeFailure(w, http.StatusNotFound, "report not found")
			return
		}
		s.log.Error("chat: report lookup failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	pc := prompt.Context{
		Title:    rep.Title,
		Study:    rep.Study,
		Sections: focusSections(rep.Sections, req.SectionID),
	}
	if memories, err := s.db.ListMemories(r.Context(), reportID); err == nil {
		pc.Memories = memories
	}

	system := chatSystemPrompt
	if assembled := prompt.Assemble(pc); assembled != "" {
		system += "\n\n" + assembled
	}

	history, err := s.db.RecentChatMessages(r.Context(), reportID, chatHistoryLimit)
	if err != nil {
		s.log.Warn("chat: history load failed", "report_id", reportID, "error", err)
	}
	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	reply, err := s.provider.Generate(r.Context(), llm.GenerateRequest{
		System:      system,
		Messages:    messages,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		s.log.Error("chat: generation failed", "report_id", reportID, "error", err)
		writeFailure(w, http.StatusBadGateway, "chat generation failed")
		return
	}
	reply = strings.TrimSpace(reply)

	// The turn is persisted best effort so a storage hiccup does not lose
	// the reply.
	if _, err := s.db.AddChatMessage(r.Context(), reportID, "user", req.Message); err != nil {
		s.log.Warn("chat: failed to persist user turn", "report_id", reportID, "error", err)
	} else if _, err := s.db.AddChatMessage(r.Context(), reportID, "assistant", reply); err != nil {
		s.log.Warn("chat: failed to persist assistant turn", "report_id", reportID, "error", err)
	}

	writeSuccess(w, http.StatusOK, map[string]any{"reply": reply})
}

// focusSections narrows the context to one section when the author is asking
// about a specific part of the draft.
func focusSections(sections []report.Section, sectionID string) []report.Section {
	if sectionID == "" {
		return sections
	}
	for _, sec := range sections {
		if sec.ID == sectionID {
			return []report.Section{sec}
		}
	}
	return sections
}
