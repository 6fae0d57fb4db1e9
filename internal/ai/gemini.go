package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient adapts Google's Gemini API to the Generator interface, so the
// summarizer can switch providers through configuration alone.
type GeminiClient struct {
	client *genai.Client
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

// NewGeminiClient builds a Gemini-backed Generator.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// GenerateText sends the request's messages to Gemini and returns the
// response text. The system message, if present, becomes the system
// instruction; remaining messages are concatenated as the user prompt.
func (g *GeminiClient) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	if req.Model == "" {
		return "", errors.New("model cannot be empty")
	}

	cfg := &genai.GenerateContentConfig{CandidateCount: 1}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	var userParts []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			cfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
			continue
		}
		userParts = append(userParts, m.Content)
	}
	prompt := strings.Join(userParts, "\n\n")
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", classifyGeminiErr(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty completion from gemini")
	}
	return text, nil
}

// classifyGeminiErr maps genai errors onto the package's typed errors so that
// callers handle both providers uniformly.
func classifyGeminiErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		wrapped := &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return &AuthError{APIError: wrapped}
		case apiErr.Code == 429:
			return &RateLimitError{APIError: wrapped}
		case apiErr.Code == 404:
			return &ModelNotFoundError{APIError: wrapped}
		case apiErr.Code >= 500 && apiErr.Code <= 599:
			return &ServerError{APIError: wrapped}
		default:
			return wrapped
		}
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return &UnreachableError{Err: err}
	}
	return err
}
