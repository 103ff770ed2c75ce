package qc

// Score reduces an issue list to a bounded quality score. Starting from 100,
// each error subtracts 10, each warning 3 and each suggestion 1; unrecognized
// issue types contribute nothing. The result is clamped to [0, 100] and is
// independent of issue order.
func Score(issues []Issue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Type {
		case TypeError:
			score -= 10
		case TypeWarning:
			score -= 3
		case TypeSuggestion:
			score--
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
