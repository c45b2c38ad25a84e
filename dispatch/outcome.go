package dispatch

import "strconv"

// StatusNoResponse is how an outcome without any HTTP response reports its status.
const StatusNoResponse = "timeout/error"

// Outcome is the result of relaying to a single target.
type Outcome struct {
	// URL is the target that was called.
	URL string `json:"url"`

	// Success is true when the target answered with a 2xx status.
	Success bool `json:"success"`

	// StatusCode is the HTTP status returned by the target, or 0 when no
	// response was received (timeout, refused connection, DNS failure).
	StatusCode int `json:"status_code,omitempty"`

	// TimedOut is set when the call hit its deadline.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error describes a transport failure. Empty when a response was received.
	Error string `json:"error,omitempty"`

	// Response is the start of the target's response body (capped at 1KB).
	Response string `json:"response,omitempty"`

	// LatencyMs is the wall time of the call in milliseconds.
	LatencyMs int `json:"latency_ms"`
}

// Status returns the HTTP status code as text, or StatusNoResponse.
func (o Outcome) Status() string {
	if o.StatusCode == 0 {
		return StatusNoResponse
	}
	return strconv.Itoa(o.StatusCode)
}

// IsSuccess is the success predicate applied to every target response:
// 2xx succeeds, anything else (including a 3xx left after redirects) fails.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
