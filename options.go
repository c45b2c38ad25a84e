package fanrelay

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/fanrelay/observability"
	"github.com/xraph/fanrelay/target"
)

// Option configures a Relay instance.
type Option func(*Relay) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(r *Relay) error {
		r.config = cfg
		return nil
	}
}

// WithMethod sets the single inbound method accepted (GET or POST).
func WithMethod(method string) Option {
	return func(r *Relay) error {
		r.config.Method = method
		return nil
	}
}

// WithSource sets where the target list is read from on every invocation.
func WithSource(src target.Source) Option {
	return func(r *Relay) error {
		r.source = src
		return nil
	}
}

// WithTargets uses a fixed comma-separated target list.
func WithTargets(raw string) Option {
	return WithSource(target.Static(raw))
}

// WithLogger sets the structured logger for the Relay instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) error {
		r.logger = logger
		return nil
	}
}

// WithRequestTimeout sets the timeout of each target call.
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Relay) error {
		r.config.RequestTimeout = d
		return nil
	}
}

// WithMaxBodyBytes caps the inbound POST body.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Relay) error {
		r.config.MaxBodyBytes = n
		return nil
	}
}

// WithHTTPClient sets the client used for target calls.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) error {
		r.client = c
		return nil
	}
}

// WithSchema requires every POST body to validate against the given JSON Schema.
func WithSchema(schema []byte) Option {
	return func(r *Relay) error {
		r.schemaDoc = schema
		return nil
	}
}

// WithSigningSecret signs every forwarded POST body with secret.
func WithSigningSecret(secret string) Option {
	return func(r *Relay) error {
		r.config.SigningSecret = secret
		return nil
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Relay) error {
		r.metrics = m
		return nil
	}
}

// WithTracer enables OpenTelemetry tracing.
func WithTracer(t *observability.Tracer) Option {
	return func(r *Relay) error {
		r.tracer = t
		return nil
	}
}
