package qc

import "regexp"

// Rule is a static pattern check applied to section text. Patterns are
// word-boundary anchored so partial words never match ("hr" must not fire
// inside "Thr"). Go's RE2 has no lookahead, so a rule may carry skipExact:
// matches whose text equals skipExact are ignored, which lets the ng/mL rule
// pass over text that is already in the preferred form.
type Rule struct {
	Pattern     *regexp.Regexp
	Message     string
	Replacement string
	skipExact   string
}

// matches reports whether the rule fires at least once in text. Multiple
// occurrences within the same section still count as a single finding.
func (r Rule) matches(text string) bool {
	for _, m := range r.Pattern.FindAllString(text, -1) {
		if r.skipExact != "" && m == r.skipExact {
			continue
		}
		return true
	}
	return false
}

// Terminology rules flag non-preferred dosing and administration terms.
// All are case-insensitive whole-word matches and carry a replacement.
var terminologyRules = []Rule{
	{
		Pattern:     regexp.MustCompile(`(?i)\binfused\b`),
		Message:     `Use "distributed" for IV administration instead of "infused"`,
		Replacement: "distributed",
	},
	{
		Pattern:     regexp.MustCompile(`(?i)\badministrated\b`),
		Message:     `Use "administered" instead of "administrated"`,
		Replacement: "administered",
	},
	{
		Pattern:     regexp.MustCompile(`(?i)\bper oral\b`),
		Message:     `Use "oral" or "PO" instead of "per oral"`,
		Replacement: "oral",
	},
	{
		Pattern:     regexp.MustCompile(`(?i)\bi\.v\.`),
		Message:     `Use "IV" instead of "i.v."`,
		Replacement: "IV",
	},
	{
		Pattern:     regexp.MustCompile(`(?i)\bi\.m\.`),
		Message:     `Use "IM" instead of "i.m."`,
		Replacement: "IM",
	},
	{
		Pattern:     regexp.MustCompile(`(?i)\bs\.c\.`),
		Message:     `Use "SC" instead of "s.c."`,
		Replacement: "SC",
	},
}

// Formatting rules flag unit and notation inconsistencies. They never carry
// a replacement suggestion.
var formattingRules = []Rule{
	{
		Pattern: regexp.MustCompile(`\+/-`),
		Message: `Use the "±" symbol instead of "+/-"`,
	},
	{
		Pattern:   regexp.MustCompile(`(?i)\bng/ml\b`),
		Message:   `Use "ng/mL" with a capital L`,
		skipExact: "ng/mL",
	},
	{
		Pattern: regexp.MustCompile(`(?i)\bug/ml\b`),
		Message: `Use "µg/mL" for microgram concentration units`,
	},
	{
		Pattern: regexp.MustCompile(`\bhr\b`),
		Message: `Use "h" for hours instead of "hr"`,
	},
	{
		Pattern: regexp.MustCompile(`(?i)\bhrs\b`),
		Message: `Use "h" for hours instead of "hrs"`,
	},
	{
		Pattern: regexp.MustCompile(`\bmin\b`),
		Message: `Check "min" usage: use "min" only for minutes and keep it consistent with "h"`,
	},
}
