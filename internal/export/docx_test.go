package export

import (
	"bytes"
	"testing"

	"inddraft/internal/report"
)

func TestSectionNumberer(t *testing.T) {
	n := newSectionNumberer()

	seq := []struct {
		level int
		want  string
	}{
		{1, "1"},
		{2, "1.1"},
		{2, "1.2"},
		{3, "1.2.1"},
		{1, "2"},
		{2, "2.1"},
		{0, "3"},     // clamped up to level 1
		{9, "3.0.1"}, // clamped down to level 3; the skipped level stays at zero
	}
	for i, step := range seq {
		if got := n.next(step.level); got != step.want {
			t.Errorf("step %d: next(%d) = %q, want %q", i, step.level, got, step.want)
		}
	}
}

func TestWriteDocx(t *testing.T) {
	rep := report.Report{
		Title: "Rat PK Study",
		Study: report.StudyDetails{StudyID: "S-042"},
		Sections: []report.Section{
			{Title: "Introduction", Level: 1, Numbered: true, Content: "Purpose of study."},
			{Title: "Results", Level: 1, Numbered: true, Content: "Cmax was 45.2 ng/mL."},
		},
	}
	tables := []report.Table{
		{Number: 1, Caption: "Dose Groups", Headers: []string{"Group", "Dose"}, Rows: [][]string{{"A", "10 mg/kg"}}},
	}

	var buf bytes.Buffer
	if err := WriteDocx(&buf, rep, tables); err != nil {
		t.Fatalf("WriteDocx: %v", err)
	}
	// A .docx file is a zip archive; check the magic bytes.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Errorf("output does not look like a zip archive (%d bytes)", buf.Len())
	}
}

func TestWriteDocxRejectsHeaderlessTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDocx(&buf, report.Report{Title: "Study"}, []report.Table{{Number: 1, Caption: "Empty"}})
	if err == nil {
		t.Fatal("expected error for table without headers")
	}
}
