// Package signature provides HMAC-SHA256 signing for relayed webhook bodies.
//
// Signing is optional. When a Relay is configured with a secret, every
// forwarded POST carries a relay signature next to the provider's own
// headers, so targets can tell the request went through this relay.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Header names set on signed deliveries.
const (
	HeaderSignature = "X-Relay-Signature"
	HeaderTimestamp = "X-Relay-Timestamp"
)

// Sign generates the HMAC-SHA256 signature for the given payload.
// The content to sign is "{timestamp}.{payload}".
// Returns a versioned signature in the format "v1=<hex>".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Stamp signs payload at the given time and writes the signature headers
// into h. Any existing value of either header, under any key casing, is
// replaced.
func Stamp(h http.Header, payload []byte, secret string, at time.Time) {
	for k := range h {
		switch http.CanonicalHeaderKey(k) {
		case HeaderSignature, HeaderTimestamp:
			delete(h, k)
		}
	}

	ts := at.Unix()
	h.Set(HeaderSignature, Sign(payload, secret, ts))
	h.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
}
