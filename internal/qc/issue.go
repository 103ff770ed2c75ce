package qc

// IssueType is the severity of a QC finding.
type IssueType string

const (
	TypeError      IssueType = "error"
	TypeWarning    IssueType = "warning"
	TypeSuggestion IssueType = "suggestion"
)

// Category classifies a QC finding by the kind of check that produced it.
type Category string

const (
	CategoryTerminology Category = "terminology"
	CategoryFormatting  Category = "formatting"
	CategoryConsistency Category = "consistency"
	CategoryRegulatory  Category = "regulatory"
)

// AllCategories lists every supported check category in canonical order.
var AllCategories = []Category{
	CategoryTerminology,
	CategoryFormatting,
	CategoryConsistency,
	CategoryRegulatory,
}

// Issue is one QC finding. Issues are immutable once produced and are not
// persisted by the engine itself.
type Issue struct {
	Type       IssueType `json:"type"`
	Category   Category  `json:"category"`
	Location   string    `json:"location"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}
