// Package httpx is a small HTTP helper: request execution with optional
// retry/backoff for transient failures, and JSON decoding of responses.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPError carries status and body for non-2xx responses so callers can
// decide how to react.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body))
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 300 {
		return s[:300] + "…"
	}
	return s
}

// Config controls retries. The zero value means a single attempt.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Single performs exactly one attempt, no retries.
func Single() Config { return Config{MaxAttempts: 1} }

// Default retries transient failures a few times with exponential backoff.
func Default() Config {
	return Config{MaxAttempts: 4, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// Do executes the request produced by build, retrying transient failures
// per cfg. It always drains the body so connections can be reused. The
// returned bytes are the response body of the final attempt.
func Do(ctx context.Context, client *http.Client, build func(context.Context) (*http.Request, error), cfg Config) ([]byte, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := backoff(ctx, attempt-1, cfg); err != nil {
				return nil, err
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if !retryableNetErr(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		herr := &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       body,
		}
		if !retryableStatus(resp.StatusCode) {
			return body, herr
		}
		lastErr = herr
	}
	return nil, lastErr
}

// DoJSON wraps Do and unmarshals the response into out (which may be nil
// when the body does not matter).
func DoJSON(ctx context.Context, client *http.Client, build func(context.Context) (*http.Request, error), out any, cfg Config) error {
	body, err := Do(ctx, client, build, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error: %w body=%s", err, snippet(body))
	}
	return nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500 && code <= 599
}

func retryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "eof")
}

func backoff(ctx context.Context, prevAttempts int, cfg Config) error {
	sleep := cfg.BaseDelay * time.Duration(1<<(prevAttempts-1))
	if sleep > cfg.MaxDelay {
		sleep = cfg.MaxDelay
	}
	sleep += time.Duration(rand.Intn(250)) * time.Millisecond

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
