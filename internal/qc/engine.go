package qc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inddraft/internal/report"
)

// Result is the outcome of one QC run.
type Result struct {
	Issues []Issue `json:"issues"`
	Score  int     `json:"score"`
}

// Engine runs the deterministic rule set and, when consistency or regulatory
// checks are requested, the AI-backed checker. The two stages are independent:
// a checker failure never fails the run, it only removes the AI findings.
type Engine struct {
	checker *AIChecker
	log     *slog.Logger
}

// NewEngine wires the optional AI checker into a QC engine. A nil checker
// disables the consistency and regulatory categories.
func NewEngine(checker *AIChecker, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{checker: checker, log: log}
}

// Run evaluates the requested check categories against the report content.
// An empty checkTypes slice requests all four categories. Unknown category
// names are ignored. Sections without content yield no issues.
func (e *Engine) Run(ctx context.Context, content report.Content, checkTypes []string) Result {
	cats := normalizeCategories(checkTypes)

	issues := runRules(content.Sections, cats)

	if e.checker != nil && (cats[CategoryConsistency] || cats[CategoryRegulatory]) {
		issues = append(issues, e.checker.Run(ctx, content, cats)...)
	}

	return Result{Issues: issues, Score: Score(issues)}
}

// runRules applies the static rule tables to every section, in section source
// order, then rule declaration order within each category. One issue is
// emitted per (rule, section) pair no matter how often the pattern recurs.
func runRules(sections []report.Section, cats map[Category]bool) []Issue {
	issues := make([]Issue, 0)
	for _, sec := range sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		location := sectionLocation(sec)
		if cats[CategoryTerminology] {
			for _, rule := range terminologyRules {
				if !rule.matches(sec.Content) {
					continue
				}
				issues = append(issues, Issue{
					Type:       TypeWarning,
					Category:   CategoryTerminology,
					Location:   location,
					Message:    rule.Message,
					Suggestion: fmt.Sprintf("Replace with %q", rule.Replacement),
				})
			}
		}
		if cats[CategoryFormatting] {
			for _, rule := range formattingRules {
				if !rule.matches(sec.Content) {
					continue
				}
				issues = append(issues, Issue{
					Type:     TypeWarning,
					Category: CategoryFormatting,
					Location: location,
					Message:  rule.Message,
				})
			}
		}
	}
	return issues
}

func sectionLocation(sec report.Section) string {
	if strings.TrimSpace(sec.Title) != "" {
		return "Section: " + sec.Title
	}
	if sec.ID != "" {
		return "Section: " + sec.ID
	}
	return "Section"
}

func normalizeCategories(checkTypes []string) map[Category]bool {
	cats := make(map[Category]bool, len(AllCategories))
	if len(checkTypes) == 0 {
		for _, c := range AllCategories {
			cats[c] = true
		}
		return cats
	}
	for _, t := range checkTypes {
		switch Category(strings.ToLower(strings.TrimSpace(t))) {
		case CategoryTerminology:
			cats[CategoryTerminology] = true
		case CategoryFormatting:
			cats[CategoryFormatting] = true
		case CategoryConsistency:
			cats[CategoryConsistency] = true
		case CategoryRegulatory:
			cats[CategoryRegulatory] = true
		}
	}
	return cats
}
