package signature

import (
	"crypto/hmac"
	"net/http"
	"strconv"
)

// Verify checks whether the given signature matches the expected HMAC-SHA256
// signature for the payload, secret, and timestamp.
func Verify(payload []byte, secret string, timestamp int64, sig string) bool {
	expected := Sign(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// VerifyHeaders checks the signature headers written by Stamp.
// It returns false when either header is missing or malformed.
func VerifyHeaders(h http.Header, payload []byte, secret string) bool {
	sig := h.Get(HeaderSignature)
	raw := h.Get(HeaderTimestamp)
	if sig == "" || raw == "" {
		return false
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return Verify(payload, secret, ts, sig)
}
