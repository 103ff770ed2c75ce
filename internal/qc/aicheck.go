package qc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"inddraft/internal/llm"
	"inddraft/internal/report"
)

const (
	// Per-section excerpt and overall caps applied to the document summary
	// embedded in the AI-check prompt.
	sectionSummaryLimit = 1000
	documentSummaryCap  = 8000
)

const checkSystemPrompt = `You are a quality control reviewer for regulatory pharmacology and toxicology reports (IND submissions). You review draft report content for internal consistency and regulatory completeness.

Respond ONLY with a JSON array of issues. Each issue must be an object with these fields:
- "type": "error", "warning", or "suggestion"
- "category": "consistency" or "regulatory"
- "location": the section or table the issue refers to
- "message": a concise description of the issue
- "suggestion": corrected text, if a concrete fix exists (optional)

Return an empty array [] if no issues are found. Do not include any text outside the JSON array.`

var consistencyChecks = []string{
	"Verify that dose units are used consistently across all sections",
	"Verify that species names are used consistently throughout the document",
	"Verify that PK parameter abbreviations (Cmax, Tmax, AUC, t1/2) are defined on first use",
	"Verify that the statistical method is stated wherever statistics are reported",
}

var regulatoryChecks = []string{
	"Verify that required regulatory statements are present",
	"Verify that GLP compliance language is used where applicable",
	"Verify that the study is clearly identified by study number",
	"Verify that stated conclusions are supported by the data presented",
}

// AIChecker builds a bounded document summary, asks the generation provider
// to run the requested natural-language checks and parses the response into
// issues. Every failure mode (provider error, unparsable output, non-array
// JSON) degrades to an empty issue list; the checker never returns an error.
type AIChecker struct {
	provider llm.Provider
	log      *slog.Logger
}

func NewAIChecker(provider llm.Provider, log *slog.Logger) *AIChecker {
	if log == nil {
		log = slog.Default()
	}
	return &AIChecker{provider: provider, log: log}
}

// Run performs the AI-backed checks for the requested categories. When
// neither consistency nor regulatory is requested the provider is not
// invoked at all.
func (c *AIChecker) Run(ctx context.Context, content report.Content, cats map[Category]bool) []Issue {
	var checks []string
	if cats[CategoryConsistency] {
		checks = append(checks, consistencyChecks...)
	}
	if cats[CategoryRegulatory] {
		checks = append(checks, regulatoryChecks...)
	}
	if len(checks) == 0 || c.provider == nil {
		return nil
	}

	out, err := c.provider.Generate(ctx, llm.GenerateRequest{
		System:      checkSystemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: buildCheckPrompt(content, checks)}},
		MaxTokens:   2048,
		Temperature: 0.2,
	})
	if err != nil {
		c.log.Warn("qc: ai check call failed", "error", err)
		return nil
	}

	raw, ok := llm.ExtractJSON(out)
	if !ok {
		c.log.Warn("qc: no JSON found in ai check response")
		return nil
	}
	var found []Issue
	if err := json.Unmarshal(raw, &found); err != nil {
		// Non-array JSON (e.g. a bare object) is coerced to "no issues".
		c.log.Warn("qc: ai check response is not an issue array", "error", err)
		return nil
	}

	issues := make([]Issue, 0, len(found))
	for _, issue := range found {
		issue.Type = IssueType(strings.ToLower(string(issue.Type)))
		issue.Category = Category(strings.ToLower(string(issue.Category)))
		if issue.Category != CategoryConsistency && issue.Category != CategoryRegulatory {
			issue.Category = CategoryConsistency
		}
		if strings.TrimSpace(issue.Message) == "" {
			continue
		}
		issues = append(issues, issue)
	}
	return issues
}

// buildCheckPrompt summarizes the document (section titles plus a bounded
// excerpt of each section, table numbers and captions only) and appends the
// checklist.
func buildCheckPrompt(content report.Content, checks []string) string {
	var summary strings.Builder
	for _, sec := range content.Sections {
		summary.WriteString("## ")
		summary.WriteString(sec.Title)
		summary.WriteString("\n")
		text := sec.Content
		if len(text) > sectionSummaryLimit {
			text = text[:sectionSummaryLimit]
		}
		summary.WriteString(text)
		summary.WriteString("\n\n")
	}
	doc := summary.String()
	if len(doc) > documentSummaryCap {
		doc = doc[:documentSummaryCap]
	}

	var sb strings.Builder
	sb.WriteString("Document content:\n\n")
	sb.WriteString(doc)
	if len(content.Tables) > 0 {
		sb.WriteString("\nTables:\n")
		for _, t := range content.Tables {
			sb.WriteString(fmt.Sprintf("Table %d: %s\n", t.Number, t.Caption))
		}
	}
	sb.WriteString("\nPerform the following quality control checks:\n")
	for _, check := range checks {
		sb.WriteString("- ")
		sb.WriteString(check)
		sb.WriteString("\n")
	}
	return sb.String()
}
