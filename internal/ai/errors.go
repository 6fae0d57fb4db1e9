package ai

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is the provider's structured error response. The typed wrappers
// below let callers branch on the failure class without string matching.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error: status=%d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " code=%s", e.Code)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " request_id=%s", e.RequestID)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " message=%s", e.Message)
	}
	return b.String()
}

// AuthError indicates authentication/authorization failures (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.APIError.Error())
}

// RateLimitError indicates 429 responses and may include a Retry-After.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError indicates the requested model is not available.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.APIError.Error())
}

// BadRequestError indicates a 4xx request problem (e.g., 400 validation).
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// QuotaExceededError indicates billing/quota problems.
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s", e.APIError.Error())
}

// ServerError indicates 5xx errors from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("provider error: %s", e.APIError.Error()) }

// UnreachableError indicates the provider endpoint is not reachable.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

// parseAPIError reads a non-2xx response body into an APIError. Both the
// nested OpenAI-style {"error": {...}} shape and the flat shape are handled.
func parseAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Raw:        raw,
		RequestID:  requestID(resp),
	}
	fields := raw
	if nested, ok := raw["error"].(map[string]any); ok {
		fields = nested
	}
	if msg, ok := fields["message"].(string); ok {
		apiErr.Message = msg
	}
	if code, ok := fields["code"].(string); ok {
		apiErr.Code = code
	}
	return apiErr
}

// classify wraps an APIError in the matching typed error.
func classify(apiErr *APIError, resp *http.Response) error {
	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case apiErr.StatusCode == http.StatusTooManyRequests:
		wait, _ := retryAfter(resp)
		return &RateLimitError{APIError: apiErr, RetryAfter: wait}
	case apiErr.StatusCode == http.StatusNotFound:
		if apiErr.Code == "model_not_found" ||
			(strings.Contains(msg, "model") && strings.Contains(msg, "not") && strings.Contains(msg, "found")) {
			return &ModelNotFoundError{APIError: apiErr}
		}
		return apiErr
	case apiErr.StatusCode == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case apiErr.Code == "quota_exceeded" ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "billing") || strings.Contains(msg, "limit exceeded"):
		return &QuotaExceededError{APIError: apiErr}
	case apiErr.StatusCode >= 500 && apiErr.StatusCode <= 599:
		return &ServerError{APIError: apiErr}
	default:
		return apiErr
	}
}

// requestID pulls a best-effort request ID from common response headers.
func requestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Request-ID", "OpenAI-Request-ID", "Openrouter-Request-ID", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}
