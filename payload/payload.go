// Package payload extracts the body and headers of an inbound webhook so
// they can be replayed against other origins.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// DefaultMaxBytes bounds the inbound body read by Extract.
const DefaultMaxBytes int64 = 5 << 20

// Extraction errors. Callers report all of them as an invalid payload.
var (
	ErrTooLarge  = errors.New("payload: body exceeds size limit")
	ErrNotUTF8   = errors.New("payload: body is not valid UTF-8")
	ErrMalformed = errors.New("payload: body is not valid JSON")
)

// Payload is a validated webhook body with the headers to forward alongside it.
type Payload struct {
	Body   []byte
	Header http.Header
}

// Extract reads body to completion, validates it as UTF-8 JSON and filters
// the inbound headers. A limit <= 0 selects DefaultMaxBytes.
func Extract(h http.Header, body io.Reader, limit int64) (*Payload, error) {
	raw, err := Read(body, limit)
	if err != nil {
		return nil, err
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	fwd := ForwardHeaders(h)
	if !hasHeader(fwd, "Content-Type") {
		fwd.Set("Content-Type", "application/json")
	}
	return &Payload{Body: raw, Header: fwd}, nil
}

// Read consumes r up to limit bytes.
func Read(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if r == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("payload: read body: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, ErrTooLarge
	}
	return raw, nil
}

// Validate reports whether raw is UTF-8 encoded JSON. An empty body is malformed.
func Validate(raw []byte) error {
	if !utf8.Valid(raw) {
		return ErrNotUTF8
	}
	if !json.Valid(raw) {
		return ErrMalformed
	}
	return nil
}
