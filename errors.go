package fanrelay

import "errors"

// Sentinel errors returned by Relay operations.
var (
	// ErrMethodNotAllowed is returned when the inbound method is not the one the relay accepts.
	ErrMethodNotAllowed = errors.New("fanrelay: method not allowed")

	// ErrNoTargetsConfigured is returned when the target list resolves to nothing
	// or cannot be read.
	ErrNoTargetsConfigured = errors.New("fanrelay: no webhook targets configured")

	// ErrInvalidPayload is returned when a POST body is not valid UTF-8 JSON,
	// is too large, or fails schema validation.
	ErrInvalidPayload = errors.New("fanrelay: invalid JSON payload")

	// ErrInvalidConfig is returned by New and Config.Validate for unusable settings.
	ErrInvalidConfig = errors.New("fanrelay: invalid config")
)
