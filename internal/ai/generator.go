// Package ai provides LLM provider clients behind a small generation
// interface, with typed errors and bounded retries.
package ai

import "context"

// Generator is the text-generation surface the summarizer depends on. The
// OpenRouter client and the Gemini client both satisfy it, so providers are
// switched through configuration alone.
type Generator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}

// Streamer is implemented by providers that can deliver completions
// incrementally. onDelta receives each partial content chunk in order.
type Streamer interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Message is one chat turn. Role is "system", "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest describes one completion request in the common
// chat-completions shape both providers are mapped onto.
type GenerateRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Usage reports token accounting as returned by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is one candidate completion.
type Choice struct {
	Message Message `json:"message"`
}

// GenerateResponse is the decoded completion plus the provider request ID
// when one was returned.
type GenerateResponse struct {
	ID        string   `json:"id"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	RequestID string   `json:"-"`
}
