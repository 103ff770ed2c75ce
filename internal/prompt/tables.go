package prompt

import (
	"fmt"
	"strings"
)

// TableTemplate is a fixed column/caption layout for one table type.
type TableTemplate struct {
	Name    string
	Caption string
	Headers []string
}

var tableTemplates = map[string]TableTemplate{
	"pk_parameters": {
		Name:    "pk_parameters",
		Caption: "Summary of Pharmacokinetic Parameters",
		Headers: []string{"Parameter", "Unit", "Mean (CV%)", "Median", "Range"},
	},
	"concentrations": {
		Name:    "concentrations",
		Caption: "Plasma Concentrations by Time Point",
		Headers: []string{"Time (h)", "Mean ± SD", "N"},
	},
	"dosing": {
		Name:    "dosing",
		Caption: "Dose Groups and Administration",
		Headers: []string{"Group", "Dose (mg/kg)", "Route", "N"},
	},
	"summary": {
		Name:    "summary",
		Caption: "Summary of Study Results",
		Headers: []string{"Parameter", "Value"},
	},
}

// TableTemplateFor selects the template for a table type, falling back to the
// default summary template when the type is unrecognized.
func TableTemplateFor(tableType string) TableTemplate {
	if t, ok := tableTemplates[strings.ToLower(strings.TrimSpace(tableType))]; ok {
		return t
	}
	return tableTemplates["summary"]
}

const tableSystemPrompt = "You are a regulatory medical writer preparing data tables for an " +
	"IND report. Respond ONLY with a JSON object of the form " +
	`{"caption": string, "headers": [string], "data": [[string]]}` +
	". Every row must have the same number of cells as there are headers. Use the literal " +
	`string "NC" for values that cannot be calculated. Do not include any text outside the JSON.`

// TableSystemPrompt is the fixed system instruction for table generation.
func TableSystemPrompt() string {
	return tableSystemPrompt
}

// BuildTablePrompt merges a table template, the assembled report context and
// the caller-supplied source data into the user message for table generation.
func BuildTablePrompt(tmpl TableTemplate, assembled, sourceData string) string {
	var sb strings.Builder
	if assembled != "" {
		sb.WriteString(assembled)
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("Produce the table %q with columns: %s.\n",
		tmpl.Caption, strings.Join(tmpl.Headers, ", ")))
	if sourceData = strings.TrimSpace(sourceData); sourceData != "" {
		sb.WriteString("\nSource data:\n")
		sb.WriteString(sourceData)
	}
	return sb.String()
}
