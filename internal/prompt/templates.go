package prompt

import "strings"

// SectionTemplate is a fixed instruction template for generating one report
// section type.
type SectionTemplate struct {
	Name         string
	Instructions string
}

var sectionTemplates = map[string]SectionTemplate{
	"summary": {
		Name: "summary",
		Instructions: "Write the Summary section of the report. Summarize the study design, " +
			"key pharmacokinetic findings and conclusions in 2-3 paragraphs. Do not introduce " +
			"data that is not present in the provided context.",
	},
	"introduction": {
		Name: "introduction",
		Instructions: "Write the Introduction section of the report. State the purpose of the " +
			"study, the test article and the regulatory context. Keep it to 1-2 paragraphs.",
	},
	"methods": {
		Name: "methods",
		Instructions: "Write the Materials and Methods section. Describe the study design, " +
			"dosing, sample collection schedule and bioanalytical and statistical methods, " +
			"using only details present in the provided context.",
	},
	"results": {
		Name: "results",
		Instructions: "Write the Results section of the report. Present the findings in the " +
			"provided context in a clear, factual narrative, referencing tables by number " +
			"where available. Do not interpret beyond the data.",
	},
	"discussion": {
		Name: "discussion",
		Instructions: "Write the Discussion section. Interpret the results in the provided " +
			"context, address dose proportionality and exposure, and note any limitations.",
	},
	"conclusions": {
		Name: "conclusions",
		Instructions: "Write the Conclusions section. State the conclusions supported by the " +
			"data in the provided context in a short, numbered list.",
	},
}

// SectionTemplateFor selects the template for a section type, falling back to
// the results template when the type is unrecognized.
func SectionTemplateFor(sectionType string) SectionTemplate {
	if t, ok := sectionTemplates[strings.ToLower(strings.TrimSpace(sectionType))]; ok {
		return t
	}
	return sectionTemplates["results"]
}

const sectionSystemPrompt = "You are a regulatory medical writer drafting sections of an IND " +
	"report. Write in formal regulatory style, use SI units, define abbreviations on first " +
	"use and never fabricate data. Respond with the section text only, no preamble."

// SectionSystemPrompt is the fixed system instruction for section generation.
func SectionSystemPrompt() string {
	return sectionSystemPrompt
}

// BuildSectionPrompt merges a template, the assembled context and optional
// free-form author instructions into the user message for section generation.
func BuildSectionPrompt(tmpl SectionTemplate, assembled, instructions string) string {
	var sb strings.Builder
	if assembled != "" {
		sb.WriteString(assembled)
		sb.WriteString("\n\n")
	}
	sb.WriteString(tmpl.Instructions)
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		sb.WriteString("\n\nAdditional instructions from the author:\n")
		sb.WriteString(instructions)
	}
	return sb.String()
}
