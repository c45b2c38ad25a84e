// Package api exposes a Relay as an http.Handler.
//
// The handler writes the relay's verdict verbatim as a text/plain body and
// never parses the request body itself, so the relay reads the raw bytes.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/xraph/fanrelay"
	"github.com/xraph/fanrelay/dispatch"
)

var errPanic = errors.New("api: handler panicked")

// Handler is the HTTP entry point for a Relay.
type Handler struct {
	relay  *fanrelay.Relay
	logger *slog.Logger
	next   http.Handler
}

// NewHandler creates a handler serving r on every path it is mounted at.
func NewHandler(r *fanrelay.Relay, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		relay:  r,
		logger: logger,
	}
	h.next = h.withMiddleware(http.HandlerFunc(h.relayWebhook))
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

func (h *Handler) relayWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	res, err := h.relay.Forward(r.Context(), fanrelay.Inbound{
		Method: r.Method,
		Header: r.Header,
		Body:   r.Body,
	})

	status, body := fanrelay.Respond(res, err)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", h.relay.Method())
	}
	writeText(w, status, body)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(next))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.InfoContext(r.Context(), "relay request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.ErrorContext(r.Context(), "panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				status, body := fanrelay.Respond(dispatch.Result{}, errPanic)
				writeText(w, status, body)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body)) //nolint:errcheck // best effort
}
