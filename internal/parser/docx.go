package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"inddraft/internal/filedoc"
	"inddraft/internal/report"
)

// DOCXParser handles .docx files. Heading styles drive section nesting, and
// embedded Word tables are extracted as report tables.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*filedoc.File, error) {
	// go-docx needs a ReadSeeker+size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "inddraft-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	f := &filedoc.File{Title: strings.TrimSuffix(filename, ".docx")}

	type stackEntry struct {
		node  *filedoc.Section
		level int
	}
	root := &filedoc.Section{Title: f.Title}
	stack := []stackEntry{{node: root, level: 0}}
	var currentText strings.Builder

	flushText := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" {
			top := stack[len(stack)-1].node
			if top.Text != "" {
				top.Text += "\n\n" + t
			} else {
				top.Text = t
			}
		}
		currentText.Reset()
	}

	tableNum := 0
	for _, item := range doc.Document.Body.Items {
		switch node := item.(type) {
		case *docx.Paragraph:
			level := docxHeadingLevel(node)
			text := docxParagraphText(node)

			if level > 0 && text != "" {
				flushText()
				sec := &filedoc.Section{Title: text}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, sec)
				stack = append(stack, stackEntry{node: sec, level: level})
			} else if text != "" {
				if currentText.Len() > 0 {
					currentText.WriteString("\n\n")
				}
				currentText.WriteString(text)
			}
		case *docx.Table:
			tableNum++
			if tbl, ok := docxTable(node, tableNum, stack[len(stack)-1].node.Title); ok {
				f.Tables = append(f.Tables, tbl)
			}
		}
	}
	flushText()

	f.Sections = root.Children
	if len(f.Sections) == 0 && root.Text != "" {
		f.Sections = []*filedoc.Section{{Text: root.Text}}
	}
	return f, nil
}

// docxTable converts a Word table into a report.Table, treating the first
// row as headers. Empty tables are skipped.
func docxTable(t *docx.Table, number int, caption string) (report.Table, bool) {
	var rows [][]string
	for _, row := range t.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var buf strings.Builder
			for _, para := range cell.Paragraphs {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(docxParagraphText(para))
			}
			cells = append(cells, strings.TrimSpace(buf.String()))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return report.Table{}, false
	}
	tbl := report.Table{
		Number:  number,
		Caption: caption,
		Headers: rows[0],
	}
	if len(rows) > 1 {
		tbl.Rows = rows[1:]
	}
	return tbl, true
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	for level, names := range [][2]string{
		{"Heading1", "heading 1"},
		{"Heading2", "heading 2"},
		{"Heading3", "heading 3"},
		{"Heading4", "heading 4"},
		{"Heading5", "heading 5"},
		{"Heading6", "heading 6"},
	} {
		if strings.EqualFold(style, names[0]) || strings.EqualFold(style, names[1]) {
			return level + 1
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
