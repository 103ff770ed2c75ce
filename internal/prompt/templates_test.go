package prompt

import (
	"strings"
	"testing"
)

func TestSectionTemplateFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"summary", "summary"},
		{"METHODS", "methods"},
		{"  discussion  ", "discussion"},
		{"appendix", "results"},
		{"", "results"},
	}
	for _, tt := range tests {
		if got := SectionTemplateFor(tt.in); got.Name != tt.want {
			t.Errorf("SectionTemplateFor(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestTableTemplateFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pk_parameters", "pk_parameters"},
		{"Dosing", "dosing"},
		{"unknown_type", "summary"},
		{"", "summary"},
	}
	for _, tt := range tests {
		if got := TableTemplateFor(tt.in); got.Name != tt.want {
			t.Errorf("TableTemplateFor(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestBuildSectionPrompt(t *testing.T) {
	tmpl := SectionTemplateFor("introduction")

	got := BuildSectionPrompt(tmpl, "## Report: Study A", "Keep it under 200 words.")
	if !strings.HasPrefix(got, "## Report: Study A\n\n") {
		t.Errorf("assembled context not first:\n%s", got)
	}
	if !strings.Contains(got, tmpl.Instructions) {
		t.Error("template instructions missing")
	}
	if !strings.Contains(got, "Additional instructions from the author:\nKeep it under 200 words.") {
		t.Error("author instructions missing")
	}
}

func TestBuildSectionPromptWithoutOptional(t *testing.T) {
	tmpl := SectionTemplateFor("results")

	got := BuildSectionPrompt(tmpl, "", "   ")
	if got != tmpl.Instructions {
		t.Errorf("BuildSectionPrompt = %q, want bare instructions", got)
	}
}

func TestBuildTablePrompt(t *testing.T) {
	tmpl := TableTemplateFor("dosing")

	got := BuildTablePrompt(tmpl, "## Report: Study A", "Group 1: 10 mg/kg IV")
	if !strings.Contains(got, tmpl.Caption) {
		t.Error("caption missing from prompt")
	}
	for _, h := range tmpl.Headers {
		if !strings.Contains(got, h) {
			t.Errorf("header %q missing from prompt", h)
		}
	}
	if !strings.Contains(got, "Source data:\nGroup 1: 10 mg/kg IV") {
		t.Error("source data missing from prompt")
	}
}
