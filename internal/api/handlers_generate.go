package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"inddraft/internal/llm"
	"inddraft/internal/prompt"
	"inddraft/internal/report"
)

type generationContext struct {
	Title    string              `json:"title,omitempty"`
	Study    report.StudyDetails `json:"study,omitempty"`
	Sections []report.Section    `json:"sections,omitempty"`
	Excerpts []string            `json:"excerpts,omitempty"`
}

type generateSectionRequest struct {
	ReportID     string             `json:"reportId"`
	SectionType  string             `json:"sectionType"`
	Context      *generationContext `json:"context,omitempty"`
	Memories     []report.Memory    `json:"memories,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
}

// handleGenerateSection drafts one report section from the assembled context.
// When the caller omits context or memories, both are loaded from the store.
func (s *Server) handleGenerateSection(w http.ResponseWriter, r *http.Request) {
	var req generateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ReportID) == "" || strings.TrimSpace(req.SectionType) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	pc := s.buildPromptContext(r, req.ReportID, req.Context, req.Memories)
	tmpl := prompt.SectionTemplateFor(req.SectionType)

	text, err := s.provider.Generate(r.Context(), llm.GenerateRequest{
		System:      prompt.SectionSystemPrompt(),
		Messages:    []llm.Message{{Role: "user", Content: prompt.BuildSectionPrompt(tmpl, prompt.Assemble(pc), req.Instructions)}},
		MaxTokens:   4096,
		Temperature: 0.5,
	})
	if err != nil {
		s.log.Error("generate: section generation failed", "report_id", req.ReportID, "section_type", tmpl.Name, "error", err)
		writeFailure(w, http.StatusBadGateway, "section generation failed")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"sectionType": tmpl.Name,
		"content":     strings.TrimSpace(text),
	})
}

type generateTableRequest struct {
	ReportID   string             `json:"reportId"`
	TableType  string             `json:"tableType"`
	SourceData json.RawMessage    `json:"sourceData,omitempty"`
	Context    *generationContext `json:"context,omitempty"`
}

// handleGenerateTable asks the model for a JSON table and parses the first
// JSON candidate in the reply. The candidate is decoded once; a {"table": ...}
// wrapper and a bare table object are both accepted.
func (s *Server) handleGenerateTable(w http.ResponseWriter, r *http.Request) {
	var req generateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ReportID) == "" || strings.TrimSpace(req.TableType) == "" {
		writeFailure(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	pc := s.buildPromptContext(r, req.ReportID, req.Context, nil)
	tmpl := prompt.TableTemplateFor(req.TableType)

	text, err := s.provider.Generate(r.Context(), llm.GenerateRequest{
		System:      prompt.TableSystemPrompt(),
		Messages:    []llm.Message{{Role: "user", Content: prompt.BuildTablePrompt(tmpl, prompt.Assemble(pc), string(req.SourceData))}},
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		s.log.Error("generate: table generation failed", "report_id", req.ReportID, "table_type", tmpl.Name, "error", err)
		writeFailure(w, http.StatusBadGateway, "table generation failed")
		return
	}

	tbl, ok := parseGeneratedTable(text)
	if !ok {
		writeFailure(w, http.StatusBadGateway, "model output did not contain a parsable table")
		return
	}
	if tbl.Caption == "" {
		tbl.Caption = tmpl.Caption
	}
	tbl.ID = ulid.Make().String()
	tbl.Number = s.nextTableNumber(r, req.ReportID)

	writeSuccess(w, http.StatusOK, map[string]any{"table": tbl})
}

// parseGeneratedTable extracts the first JSON candidate from model output and
// decodes it into a table. Wrapped and unwrapped shapes are both handled from
// the same candidate; the reply is never re-scanned.
func parseGeneratedTable(text string) (report.Table, bool) {
	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return report.Table{}, false
	}

	var wrapper struct {
		Table json.RawMessage `json:"table"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Table) > 0 {
		raw = wrapper.Table
	}

	var parsed struct {
		Caption string     `json:"caption"`
		Headers []string   `json:"headers"`
		Data    [][]string `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Headers) == 0 {
		return report.Table{}, false
	}

	return report.Table{
		Caption: parsed.Caption,
		Headers: parsed.Headers,
		Rows:    parsed.Data,
	}, true
}

// buildPromptContext resolves the generation context. An explicit context in
// the request wins; otherwise the report's stored state is used. Memories
// passed by the caller override the stored ones.
func (s *Server) buildPromptContext(r *http.Request, reportID string, gc *generationContext, memories []report.Memory) prompt.Context {
	pc := prompt.Context{Memories: memories}

	if gc != nil {
		pc.Title = gc.Title
		pc.Study = gc.Study
		pc.Sections = gc.Sections
		pc.Excerpts = gc.Excerpts
	} else {
		rep, err := s.db.GetReport(r.Context(), reportID)
		if err != nil {
			s.log.Warn("generate: report lookup failed, proceeding without stored context", "report_id", reportID, "error", err)
		} else {
			pc.Title = rep.Title
			pc.Study = rep.Study
			pc.Sections = rep.Sections
		}
		if files, err := s.db.ListFiles(r.Context(), reportID); err == nil {
			for _, f := range files {
				if f.Excerpt != "" {
					pc.Excerpts = append(pc.Excerpts, f.Excerpt)
				}
			}
		}
	}

	if pc.Memories == nil {
		if stored, err := s.db.ListMemories(r.Context(), reportID); err == nil {
			pc.Memories = stored
		}
	}
	return pc
}

// nextTableNumber assigns the next sequential table number for a report.
func (s *Server) nextTableNumber(r *http.Request, reportID string) int {
	tables, err := s.db.ListTables(r.Context(), reportID)
	if err != nil {
		return 1
	}
	max := 0
	for _, t := range tables {
		if t.Number > max {
			max = t.Number
		}
	}
	return max + 1
}
