package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client talks to an OpenRouter-compatible chat completions API with bounded
// retries and exponential backoff.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	retry      retryPolicy
}

// NewOpenRouterClient returns a client with default timeouts and retry
// strategy.
func NewOpenRouterClient(apiKey string) *Client {
	return NewClient(apiKey, 60*time.Second, 3, 500*time.Millisecond, 4*time.Second)
}

// NewClient allows customizing HTTP timeout and retry/backoff behavior.
// Non-positive arguments fall back to the defaults.
func NewClient(apiKey string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		retry:      retryPolicy{maxAttempts: retryMax, baseDelay: baseDelay, maxDelay: maxDelay},
	}
}

// NewClientWithBaseURL allows injecting a custom base URL (used in tests).
func NewClientWithBaseURL(apiKey string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration, baseURL string) *Client {
	c := NewClient(apiKey, httpTimeout, retryMax, baseDelay, maxDelay)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// GenerateText runs Generate and returns the first choice's content.
func (c *Client) GenerateText(ctx context.Context, req GenerateRequest) (string, error) {
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Generate posts the completion request, retrying 429s, 5xx responses and
// transient network failures within the client's retry policy. A Retry-After
// header takes precedence over the computed backoff.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := c.checkRequest(req); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.post(ctx, payload)
		if err != nil {
			if retryableNetworkErr(err) && attempt < c.retry.maxAttempts {
				lastErr = err
				time.Sleep(c.retry.delay(attempt))
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var out GenerateResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
			out.RequestID = requestID(resp)
			return &out, nil
		}

		apiErr := parseAPIError(resp)
		resp.Body.Close()
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode >= 500 && resp.StatusCode <= 599)
		if retryable && attempt < c.retry.maxAttempts {
			wait := c.retry.delay(attempt)
			if ra, err := retryAfter(resp); err == nil && ra > 0 {
				wait = ra
				lastErr = &RateLimitError{APIError: apiErr, RetryAfter: ra}
			} else {
				lastErr = apiErr
			}
			time.Sleep(wait)
			continue
		}
		return nil, classify(apiErr, resp)
	}
	return nil, lastErr
}

// GenerateStream streams completion content as it arrives, calling onDelta
// for each partial chunk. Streaming requests are not retried.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error {
	if err := c.checkRequest(req); err != nil {
		return err
	}
	payload := map[string]any{
		"model":    req.Model,
		"messages": req.Messages,
		"stream":   true,
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.post(ctx, b)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(parseAPIError(resp), resp)
	}
	return scanSSE(ctx, resp, onDelta)
}

func (c *Client) checkRequest(req GenerateRequest) error {
	if c.apiKey == "" {
		return errors.New("LABQA_API_KEY is missing")
	}
	if req.Model == "" {
		return errors.New("model cannot be empty")
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://github.com/pharmadata-tools/labqa-cli")
	httpReq.Header.Set("X-Title", "LabQA CLI")
	return c.httpClient.Do(httpReq)
}

// scanSSE reads a server-sent-event stream of chat deltas until [DONE].
func scanSSE(ctx context.Context, resp *http.Response, onDelta func(string)) error {
	type streamDelta struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var d streamDelta
		if err := json.Unmarshal([]byte(data), &d); err == nil && len(d.Choices) > 0 {
			onDelta(d.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read: %w", err)
	}
	return nil
}
