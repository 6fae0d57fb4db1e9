package ai

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// retryPolicy bounds how often and how long a failed request is retried.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// delay returns the backoff to sleep before retry number attempt (1-based):
// baseDelay doubled per attempt, with ±20% jitter, capped at maxDelay.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	d = time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	if p.maxDelay > 0 && d > p.maxDelay {
		d = p.maxDelay
	}
	if d <= 0 {
		d = p.baseDelay
	}
	return d
}

// retryableNetworkErr reports whether a transport-level failure is worth
// retrying: timeouts and truncated responses are, refused connections and
// bad requests are not.
func retryableNetworkErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// retryAfter interprets a Retry-After header as a duration. The header value
// is either seconds or an HTTP date.
func retryAfter(resp *http.Response) (time.Duration, error) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, errors.New("no Retry-After header")
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}
