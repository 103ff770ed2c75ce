// Package filedoc models the parsed content of an uploaded study data file.
package filedoc

import (
	"strings"

	"inddraft/internal/report"
)

// File is the structured content extracted from one upload.
type File struct {
	Title    string         // From metadata or filename
	Sections []*Section     // Top-level sections
	Tables   []report.Table // Tabular data (CSV, embedded DOCX tables)
}

// Section is a recursive heading-scoped block of source text.
type Section struct {
	Title    string
	Text     string
	Page     int // Source page (0 if N/A)
	Children []*Section
}

// Excerpt flattens the file into a single bounded text excerpt for use in
// prompts. Headings are kept as markers so the model can see structure. When
// limit > 0 and the text is longer, it is cut at limit with a trailing
// ellipsis marker.
func Excerpt(f *File, limit int) string {
	var sb strings.Builder
	var walk func(secs []*Section)
	walk = func(secs []*Section) {
		for _, sec := range secs {
			if limit > 0 && sb.Len() > limit {
				return
			}
			if t := strings.TrimSpace(sec.Title); t != "" {
				sb.WriteString("## " + t + "\n")
			}
			if t := strings.TrimSpace(sec.Text); t != "" {
				sb.WriteString(t + "\n\n")
			}
			walk(sec.Children)
		}
	}
	walk(f.Sections)

	out := strings.TrimSpace(sb.String())
	if limit > 0 && len(out) > limit {
		out = out[:limit] + "..."
	}
	return out
}
