package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output rarely arrives as clean JSON: it may be wrapped in a fenced
// code block or surrounded by prose. ExtractJSON tries a fixed, ordered list
// of extraction strategies and returns the first candidate that parses.

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedAnyRe  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
)

type extractStrategy func(string) (string, bool)

var extractStrategies = []extractStrategy{
	func(s string) (string, bool) {
		if m := fencedJSONRe.FindStringSubmatch(s); len(m) > 1 {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) {
		if m := fencedAnyRe.FindStringSubmatch(s); len(m) > 1 {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) { return spanCandidate(s, '[', ']') },
	func(s string) (string, bool) { return spanCandidate(s, '{', '}') },
}

// ExtractJSON scans free text for an embedded JSON document. Strategies are
// applied in order of preference (fenced ```json block, any fenced block,
// bare [...] span, bare {...} span); the first candidate that is valid JSON
// wins. The boolean is false when no candidate parses.
func ExtractJSON(text string) (json.RawMessage, bool) {
	for _, strat := range extractStrategies {
		candidate, ok := strat(text)
		if !ok {
			continue
		}
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), true
		}
	}
	return nil, false
}

func spanCandidate(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, closing)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
