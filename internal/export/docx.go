// Package export renders a report into a Word document.
package export

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"inddraft/internal/report"
)

// WriteDocx renders the report's sections and tables as a .docx document and
// writes it to w.
func WriteDocx(w io.Writer, rep report.Report, tables []report.Table) error {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph()
	title.AddText(rep.Title).Size("36").Bold()

	if rep.Study.StudyID != "" {
		doc.AddParagraph().AddText("Study " + rep.Study.StudyID)
	}

	number := newSectionNumberer()
	for _, sec := range rep.Sections {
		heading := doc.AddParagraph()
		headingText := sec.Title
		if sec.Numbered {
			headingText = number.next(sec.Level) + " " + sec.Title
		}
		heading.AddText(headingText).Size(headingSize(sec.Level)).Bold()

		if sec.Content != "" {
			doc.AddParagraph().AddText(sec.Content)
		}
	}

	for _, t := range tables {
		if err := addTable(doc, t); err != nil {
			return fmt.Errorf("render table %d: %w", t.Number, err)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addTable(doc *docx.Docx, t report.Table) error {
	caption := doc.AddParagraph()
	caption.AddText(fmt.Sprintf("Table %d. %s", t.Number, t.Caption)).Bold()

	rows := len(t.Rows) + 1
	cols := len(t.Headers)
	if cols == 0 {
		return fmt.Errorf("table has no headers")
	}
	tbl := doc.AddTable(rows, cols, 0, nil)
	for j, h := range t.Headers {
		tbl.TableRows[0].TableCells[j].AddParagraph().AddText(h).Bold()
	}
	for i, row := range t.Rows {
		for j, cell := range row {
			if j >= cols {
				break
			}
			tbl.TableRows[i+1].TableCells[j].AddParagraph().AddText(cell)
		}
	}
	return nil
}

func headingSize(level int) string {
	switch level {
	case 1:
		return "32"
	case 2:
		return "28"
	default:
		return "24"
	}
}

// sectionNumberer produces hierarchical section numbers (1, 1.1, 1.2, 2, ...)
// from the sequence of section levels.
type sectionNumberer struct {
	counters [3]int
}

func newSectionNumberer() *sectionNumberer {
	return &sectionNumberer{}
}

func (n *sectionNumberer) next(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	n.counters[level-1]++
	for i := level; i < 3; i++ {
		n.counters[i] = 0
	}
	out := ""
	for i := 0; i < level; i++ {
		if i > 0 {
			out += "."
		}
		out += fmt.Sprintf("%d", n.counters[i])
	}
	return out
}
