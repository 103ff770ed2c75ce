package llm

import "context"

// Message is a role-tagged chat message sent to the generation provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest describes one text-generation call. Model, MaxTokens and
// Temperature are optional; implementations fall back to their configured
// defaults when unset.
type GenerateRequest struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Provider is the text-generation boundary. Generate returns the first
// text-typed content block of the response, or an empty string when the
// model produced no usable text. Callers must treat an empty string as
// "no usable output", not as an error.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
