package fanrelay

import (
	"errors"
	"net/http"

	"github.com/xraph/fanrelay/dispatch"
)

// Response bodies returned to the webhook sender.
const (
	BodyOK                  = "OK"
	BodyAllTargetsFailed    = "All targets failed"
	BodyNoTargetsConfigured = "No webhook targets configured"
	BodyInvalidPayload      = "Invalid JSON payload"
	BodyMethodNotAllowed    = "Method Not Allowed"
)

// Respond maps the outcome of Forward to the status code and body returned
// upstream. A 500 asks the sender to retry the whole delivery.
func Respond(res dispatch.Result, err error) (int, string) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, BodyMethodNotAllowed
	case errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest, BodyInvalidPayload
	case errors.Is(err, ErrNoTargetsConfigured):
		return http.StatusInternalServerError, BodyNoTargetsConfigured
	case err != nil:
		return http.StatusInternalServerError, BodyAllTargetsFailed
	case res.HasSuccess:
		return http.StatusOK, BodyOK
	default:
		return http.StatusInternalServerError, BodyAllTargetsFailed
	}
}
