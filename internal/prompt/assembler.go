package prompt

import (
	"fmt"
	"strings"

	"inddraft/internal/report"
)

// sectionDraftLimit bounds how much of each prior section draft is carried
// into a prompt. Global caps are the caller's responsibility.
const sectionDraftLimit = 500

// Context is the heterogeneous structured context assembled into a single
// instruction string. Every field is optional; absent blocks contribute
// nothing, including their separators.
type Context struct {
	Title    string
	Study    report.StudyDetails
	Memories []report.Memory
	Sections []report.Section
	Excerpts []string
}

// Assemble renders the context blocks in a fixed order, separated by blank
// lines. It performs no I/O and applies only its per-block truncation limits.
func Assemble(pc Context) string {
	var blocks []string

	if title := strings.TrimSpace(pc.Title); title != "" {
		blocks = append(blocks, "## Report: "+title)
	}

	if pc.Study.Type != "" || pc.Study.Species != "" || pc.Study.Route != "" {
		var sb strings.Builder
		sb.WriteString("## Study Details:")
		if pc.Study.Type != "" {
			sb.WriteString("\n- Study Type: " + pc.Study.Type)
		}
		if pc.Study.Species != "" {
			sb.WriteString("\n- Species: " + pc.Study.Species)
		}
		if pc.Study.Route != "" {
			sb.WriteString("\n- Route of Administration: " + pc.Study.Route)
		}
		blocks = append(blocks, sb.String())
	}

	if len(pc.Memories) > 0 {
		lines := make([]string, 0, len(pc.Memories)+1)
		lines = append(lines, "## Prior Decisions and Preferences:")
		// Memories render in input order; importance/recency ordering is the
		// caller's job.
		for _, m := range pc.Memories {
			lines = append(lines, fmt.Sprintf("[%s] %s", m.Type, m.Content))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(pc.Sections) > 0 {
		var sb strings.Builder
		sb.WriteString("## Current Draft Sections:")
		for _, sec := range pc.Sections {
			sb.WriteString("\n### " + sec.Title + "\n")
			sb.WriteString(truncateDraft(sec.Content, sectionDraftLimit))
		}
		blocks = append(blocks, sb.String())
	}

	if len(pc.Excerpts) > 0 {
		var sb strings.Builder
		sb.WriteString("## Source Data Excerpts:")
		for _, ex := range pc.Excerpts {
			sb.WriteString("\n" + ex)
		}
		blocks = append(blocks, sb.String())
	}

	return strings.Join(blocks, "\n\n")
}

// truncateDraft caps content at limit characters and marks the cut.
func truncateDraft(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	return content[:limit] + "..."
}
