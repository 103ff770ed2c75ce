package parser

import (
	"bufio"
	"io"
	"strings"

	"inddraft/internal/filedoc"
)

// TextParser handles plain text files. Blank-line separated paragraphs each
// become one section.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*filedoc.File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	f := &filedoc.File{Title: strings.TrimSuffix(filename, ".txt")}
	for _, para := range paragraphs {
		f.Sections = append(f.Sections, &filedoc.Section{Text: para})
	}
	return f, nil
}
