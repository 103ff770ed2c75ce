package report

import "time"

// Section is one block of report body text. The QC engine treats sections
// as read-only input; the editor and generators mutate them upstream.
type Section struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Numbered bool   `json:"numbered"`
	Content  string `json:"content"`
}

// Table is tabular report data. Tables are referenced in prompts by number
// and caption only; their cells are not validated by the rule engine.
type Table struct {
	ID      string     `json:"id,omitempty"`
	Number  int        `json:"number"`
	Caption string     `json:"caption"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Content is the body of a report as submitted to a QC run.
type Content struct {
	Sections []Section `json:"sections"`
	Tables   []Table   `json:"tables,omitempty"`
}

// StudyDetails carries the study-level metadata extracted from uploads or
// entered by the author.
type StudyDetails struct {
	Type    string `json:"studyType,omitempty"`
	Species string `json:"species,omitempty"`
	Route   string `json:"route,omitempty"`
	StudyID string `json:"studyId,omitempty"`
}

// Report is a persisted report record with its current section drafts.
type Report struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Study     StudyDetails `json:"study"`
	Sections  []Section    `json:"sections"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MemoryType classifies a durable note about a report.
type MemoryType string

const (
	MemoryDecision   MemoryType = "DECISION"
	MemoryPreference MemoryType = "PREFERENCE"
	MemoryFact       MemoryType = "FACT"
	MemorySummary    MemoryType = "SUMMARY"
	MemoryContext    MemoryType = "CONTEXT"
)

// ValidMemoryType reports whether t is one of the known memory types.
func ValidMemoryType(t MemoryType) bool {
	switch t {
	case MemoryDecision, MemoryPreference, MemoryFact, MemorySummary, MemoryContext:
		return true
	}
	return false
}

// Memory is a categorized note about a report, used to keep later
// generations consistent with earlier decisions. Expiry is owned by the
// storage layer: expired memories are never returned to callers.
type Memory struct {
	ID         string     `json:"id"`
	ReportID   string     `json:"report_id"`
	Key        string     `json:"memory_key"`
	Type       MemoryType `json:"memory_type"`
	Content    string     `json:"content"`
	Importance int        `json:"importance"`
	Category   string     `json:"category,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// ChatMessage is one turn of the refinement conversation for a report.
type ChatMessage struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadedFile tracks a study data file attached to a report.
type UploadedFile struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
