package payload

import (
	"net/http"
	"slices"
)

// denied lists connection-specific headers that must not be replayed
// against a different origin. Keys are canonical.
var denied = map[string]struct{}{
	"Host":              {},
	"Connection":        {},
	"Content-Length":    {},
	"Transfer-Encoding": {},
}

// IsDenied reports whether the named header is dropped when forwarding.
// Matching is case-insensitive.
func IsDenied(name string) bool {
	_, ok := denied[http.CanonicalHeaderKey(name)]
	return ok
}

// ForwardHeaders returns a copy of h without the denied headers.
// Names and values of every other header are kept as received.
func ForwardHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		if IsDenied(k) {
			continue
		}
		out[k] = slices.Clone(v)
	}
	return out
}

// hasHeader reports whether h carries a non-empty value for name under any
// key casing. Hosts other than net/http may pass non-canonical keys.
func hasHeader(h http.Header, name string) bool {
	name = http.CanonicalHeaderKey(name)
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == name && len(v) > 0 && v[0] != "" {
			return true
		}
	}
	return false
}
