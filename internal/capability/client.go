// Package capability talks to the remote review capabilities: one
// task-style HTTP operation per service, wrapped in retry handling so
// transient failures do not surface as hard faults.
package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrTimeout marks a call whose every allowed attempt timed out. It is
// the only failure a Call escalates as a fatal error; everything else
// degrades to an Outcome error value the caller can inspect.
var ErrTimeout = errors.New("capability call timed out")

// Outcome is the uniform result of a capability call: either the decoded
// JSON response body or a non-fatal failure message.
type Outcome struct {
	Value map[string]any
	Err   string
}

func (o Outcome) Failed() bool { return o.Err != "" }

type Client struct {
	http        *http.Client
	credential  string
	maxAttempts int
	sleep       func(time.Duration)
}

// NewClient builds a client whose transport performs its own bounded
// retry for server-side 5xx statuses, so the application-level attempt
// counter is not consumed by transient server errors.
func NewClient(credential string, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		http:        &http.Client{Transport: &retryingTransport{next: http.DefaultTransport}},
		credential:  credential,
		maxAttempts: maxAttempts,
		sleep:       time.Sleep,
	}
}

// Call POSTs {"message":{"content":payload}} to endpoint/task and
// retries with exponential backoff. The shared credential is injected
// into the payload only when the caller did not supply one. Timeouts on
// the final attempt return a non-nil error wrapping ErrTimeout; any
// other exhausted failure returns Outcome{Err: message} with nil error.
func (c *Client) Call(ctx context.Context, endpoint string, payload map[string]any, timeout time.Duration) (Outcome, error) {
	blob, err := json.Marshal(map[string]any{"message": map[string]any{"content": c.withCredential(payload)}})
	if err != nil {
		return Outcome{Err: fmt.Sprintf("encode payload: %v", err)}, nil
	}
	url := strings.TrimRight(endpoint, "/") + "/task"

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		value, err := c.attempt(ctx, url, blob, timeout)
		if err == nil {
			return Outcome{Value: value}, nil
		}
		if ctx.Err() != nil && !isTimeoutError(err) {
			return Outcome{}, ctx.Err()
		}
		last := attempt == c.maxAttempts-1
		if isTimeoutError(err) {
			if last {
				return Outcome{}, fmt.Errorf("%s: %w after %d attempts", url, ErrTimeout, c.maxAttempts)
			}
			log.Printf("capability call timeout url=%s attempt=%d err=%v", url, attempt, err)
		} else {
			if last {
				return Outcome{Err: err.Error()}, nil
			}
			log.Printf("capability call failed url=%s attempt=%d err=%v", url, attempt, err)
		}
		c.sleep(backoffDelay(attempt))
	}
	return Outcome{Err: "no attempts executed"}, nil
}

func (c *Client) attempt(ctx context.Context, url string, blob []byte, timeout time.Duration) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("malformed response from %s: %w", url, err)
	}
	return decoded, nil
}

func (c *Client) withCredential(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	if c.credential != "" {
		if _, set := out["api_key"]; !set {
			out["api_key"] = c.credential
		}
	}
	return out
}

// isTimeoutError reports whether the failure is a pure timeout, the one
// class that escalates to a fatal abort when attempts run out.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}
