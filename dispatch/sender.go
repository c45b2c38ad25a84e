package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	maxResponseBody = 1024     // 1KB cap on response body kept for diagnostics
	maxDrain        = 64 << 10 // drained past the cap so connections can be reused
)

// DefaultTimeout bounds every target call unless configured otherwise.
const DefaultTimeout = 5 * time.Second

// Request is the outbound request replayed against every target.
type Request struct {
	// InvocationID correlates logs and spans. It is not sent.
	InvocationID string

	Method string
	Header http.Header
	Body   []byte
}

// Sender performs one HTTP call per target.
type Sender struct {
	client  *http.Client
	timeout time.Duration
}

// NewSender creates a sender with its own client and the given per-call timeout.
func NewSender(timeout time.Duration) *Sender {
	return NewSenderWithClient(&http.Client{}, timeout)
}

// NewSenderWithClient creates a sender on an existing client. The per-call
// timeout is enforced through the request context, independent of client.Timeout.
func NewSenderWithClient(client *http.Client, timeout time.Duration) *Sender {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{client: client, timeout: timeout}
}

// Timeout returns the per-call timeout.
func (s *Sender) Timeout() time.Duration { return s.timeout }

// Send calls url with req and returns its outcome. It never returns an error:
// failures are reported in the Outcome.
func (s *Sender) Send(ctx context.Context, url string, req Request) Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return Outcome{URL: url, Error: fmt.Sprintf("create request: %v", err)}
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq) //nolint:gosec // G704: targets are operator-configured; SSRF is by design.
	latency := int(time.Since(start).Milliseconds())

	if err != nil {
		return Outcome{
			URL:       url,
			TimedOut:  isTimeout(err),
			Error:     err.Error(),
			LatencyMs: latency,
		}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return Outcome{
		URL:        url,
		Success:    IsSuccess(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Response:   string(respBody),
		LatencyMs:  latency,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
