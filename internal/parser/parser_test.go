package parser

import (
	"strings"
	"testing"

	"inddraft/internal/filedoc"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"study.txt", false},
		{"README.md", false},
		{"data.CSV", false},
		{"report.html", false},
		{"report.htm", false},
		{"protocol.pdf", false},
		{"draft.docx", false},
		{"archive.zip", true},
		{"noextension", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := ForFile(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("data.csv") {
		t.Error("csv should be supported")
	}
	if !IsSupportedExtension("DATA.CSV") {
		t.Error("extension check should be case-insensitive")
	}
	if IsSupportedExtension("run.exe") {
		t.Error("exe should not be supported")
	}
}

func TestTextParser(t *testing.T) {
	input := "First paragraph\nstill first.\n\nSecond paragraph.\n\n\nThird."

	f, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Title != "notes" {
		t.Errorf("title = %q, want notes", f.Title)
	}
	if len(f.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(f.Sections))
	}
	if f.Sections[0].Text != "First paragraph\nstill first." {
		t.Errorf("first paragraph = %q", f.Sections[0].Text)
	}
	if f.Sections[2].Text != "Third." {
		t.Errorf("third paragraph = %q", f.Sections[2].Text)
	}
}

func TestMarkdownParserNesting(t *testing.T) {
	input := `# Study Report

Intro text.

## Methods

Dosing was once daily.

### Bioanalysis

LC-MS/MS assay.

## Results

Cmax reached at 1 h.
`

	f, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "report.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections) != 1 {
		t.Fatalf("got %d top sections, want 1", len(f.Sections))
	}

	top := f.Sections[0]
	if top.Title != "Study Report" {
		t.Errorf("top title = %q", top.Title)
	}
	if !strings.Contains(top.Text, "Intro text.") {
		t.Errorf("top text = %q", top.Text)
	}
	if len(top.Children) != 2 {
		t.Fatalf("got %d children, want 2 (Methods, Results)", len(top.Children))
	}
	methods := top.Children[0]
	if methods.Title != "Methods" || len(methods.Children) != 1 {
		t.Errorf("methods = %+v", methods)
	}
	if methods.Children[0].Title != "Bioanalysis" {
		t.Errorf("nested child title = %q", methods.Children[0].Title)
	}
	if top.Children[1].Title != "Results" {
		t.Errorf("second child = %q", top.Children[1].Title)
	}
}

func TestMarkdownParserNoHeadings(t *testing.T) {
	f, err := (&MarkdownParser{}).Parse(strings.NewReader("Just a paragraph."), "plain.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections) != 1 || !strings.Contains(f.Sections[0].Text, "Just a paragraph.") {
		t.Errorf("sections = %+v", f.Sections)
	}
}

func TestCSVParser(t *testing.T) {
	input := "Animal,Dose,Cmax\nA1,10,45.2\nA2,10,51.8\n"

	f, err := (&CSVParser{}).Parse(strings.NewReader(input), "pk_data.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(f.Tables))
	}
	tbl := f.Tables[0]
	if tbl.Number != 1 || tbl.Caption != "pk_data" {
		t.Errorf("table meta = %+v", tbl)
	}
	if len(tbl.Headers) != 3 || tbl.Headers[2] != "Cmax" {
		t.Errorf("headers = %v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][2] != "51.8" {
		t.Errorf("rows = %v", tbl.Rows)
	}

	if len(f.Sections) != 1 {
		t.Fatalf("got %d sections, want 1 preview section", len(f.Sections))
	}
	preview := f.Sections[0].Text
	if !strings.Contains(preview, "Columns: Animal, Dose, Cmax") {
		t.Errorf("preview missing column list: %q", preview)
	}
	if !strings.Contains(preview, "Cmax: 45.2") {
		t.Errorf("preview missing labeled cell: %q", preview)
	}
	if !strings.Contains(preview, "Cmax: 48.50 ± 4.67, CV 48.50 (6.8), n=2") {
		t.Errorf("preview missing numeric column statistics: %q", preview)
	}
	if strings.Contains(preview, "Animal:  ") || strings.Contains(preview, "Animal: NC") {
		t.Errorf("non-numeric column summarized: %q", preview)
	}
}

func TestCSVParserEmpty(t *testing.T) {
	f, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Tables) != 0 || len(f.Sections) != 0 {
		t.Errorf("empty csv produced content: %+v", f)
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Tox Report</title></head><body>
<h1>Overview</h1>
<p>Study overview text.</p>
<h2>Findings</h2>
<p>No adverse findings.</p>
<script>ignore()</script>
</body></html>`

	f, err := (&HTMLParser{}).Parse(strings.NewReader(input), "tox.html")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Title != "Tox Report" {
		t.Errorf("title = %q, want from <title>", f.Title)
	}
	if len(f.Sections) != 1 {
		t.Fatalf("got %d top sections, want 1", len(f.Sections))
	}
	top := f.Sections[0]
	if top.Title != "Overview" || !strings.Contains(top.Text, "Study overview text.") {
		t.Errorf("top section = %+v", top)
	}
	if len(top.Children) != 1 || top.Children[0].Title != "Findings" {
		t.Fatalf("children = %+v", top.Children)
	}
	if strings.Contains(top.Text+top.Children[0].Text, "ignore()") {
		t.Error("script content leaked into text")
	}
}

func TestExcerptTruncation(t *testing.T) {
	f := &filedoc.File{
		Sections: []*filedoc.Section{
			{Title: "Methods", Text: strings.Repeat("m", 100)},
			{Title: "Results", Text: strings.Repeat("r", 100)},
		},
	}

	full := filedoc.Excerpt(f, 0)
	if !strings.Contains(full, "## Methods") || !strings.Contains(full, "## Results") {
		t.Errorf("excerpt missing heading markers:\n%s", full)
	}

	capped := filedoc.Excerpt(f, 50)
	if len(capped) != 53 {
		t.Errorf("capped length = %d, want 50 plus marker", len(capped))
	}
	if !strings.HasSuffix(capped, "...") {
		t.Errorf("capped excerpt missing marker: %q", capped)
	}
}
