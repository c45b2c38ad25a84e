package fanrelay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/fanrelay/dispatch"
	"github.com/xraph/fanrelay/id"
	"github.com/xraph/fanrelay/observability"
	"github.com/xraph/fanrelay/payload"
	"github.com/xraph/fanrelay/signature"
	"github.com/xraph/fanrelay/target"
)

// Relay fans one inbound webhook out to every configured target.
type Relay struct {
	config     Config
	source     target.Source
	client     *http.Client
	schemaDoc  []byte
	schema     *payload.SchemaValidator
	dispatcher *dispatch.Dispatcher
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *slog.Logger
}

// Inbound is the webhook request handed to the relay by its host.
type Inbound struct {
	Method string
	Header http.Header

	// Body is read only by POST relays. It must not have been consumed.
	Body io.Reader
}

// New creates a new Relay with the given options. Without WithSource, targets
// are read from the environment variable named by Config.TargetsEnv.
func New(opts ...Option) (*Relay, error) {
	r := &Relay{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	if r.source == nil {
		r.source = target.FromEnv(r.config.TargetsEnv)
	}
	if r.schemaDoc == nil && r.config.SchemaFile != "" {
		doc, err := os.ReadFile(r.config.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read schema file: %v", ErrInvalidConfig, err)
		}
		r.schemaDoc = doc
	}
	if r.schemaDoc != nil {
		v, err := payload.NewSchemaValidator(r.schemaDoc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		r.schema = v
	}
	r.wireServices()
	return r, nil
}

// wireServices initializes the internal services after options have been applied.
func (r *Relay) wireServices() {
	r.dispatcher = dispatch.NewDispatcher(dispatch.Config{
		RequestTimeout: r.config.RequestTimeout,
		Client:         r.client,
		Metrics:        r.metrics,
		Tracer:         r.tracer,
	}, r.logger)
}

// Method returns the inbound method this relay accepts.
func (r *Relay) Method() string { return r.config.Method }

// Config returns the effective configuration.
func (r *Relay) Config() Config { return r.config }

// Forward relays in to every target and returns the aggregate result.
//
// The critical path:
//  1. Reject any method other than the configured one.
//  2. Resolve the target list (reject an empty list).
//  3. For POST, read and validate the body and filter the headers.
//  4. Dispatch to every target concurrently and wait for all of them.
//
// Steps 1-3 fail with ErrMethodNotAllowed, ErrNoTargetsConfigured or
// ErrInvalidPayload before any target is contacted. Target failures are
// never errors; they show up as a Result without success.
func (r *Relay) Forward(ctx context.Context, in Inbound) (dispatch.Result, error) {
	invID := id.NewInvocationID().String()

	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.StartInvocationSpan(ctx, invID, in.Method)
	}

	targets, res, err := r.forward(ctx, invID, in)

	if span != nil {
		status, _ := Respond(res, err)
		r.tracer.EndInvocationSpan(span, targets, status)
	}
	if r.metrics != nil {
		r.metrics.RecordInvocation(methodLabel(in.Method), resultLabel(res, err))
	}
	return res, err
}

func (r *Relay) forward(ctx context.Context, invID string, in Inbound) (int, dispatch.Result, error) {
	log := r.logger.With("invocation_id", invID)

	if in.Method != r.config.Method {
		log.WarnContext(ctx, "method not allowed", "method", in.Method, "allowed", r.config.Method)
		return 0, dispatch.Result{}, fmt.Errorf("%w: %s", ErrMethodNotAllowed, in.Method)
	}

	targets, err := target.Resolve(ctx, r.source)
	if err != nil {
		log.ErrorContext(ctx, "resolve targets failed", "error", err)
		return 0, dispatch.Result{}, fmt.Errorf("%w: %w", ErrNoTargetsConfigured, err)
	}
	if len(targets) == 0 {
		log.ErrorContext(ctx, "no webhook targets configured")
		return 0, dispatch.Result{}, ErrNoTargetsConfigured
	}

	req := dispatch.Request{InvocationID: invID, Method: in.Method}
	if in.Method == http.MethodPost {
		p, err := r.extract(in)
		if err != nil {
			log.WarnContext(ctx, "invalid payload", "error", err)
			return 0, dispatch.Result{}, err
		}
		req.Header = p.Header
		req.Body = p.Body
		if r.config.SigningSecret != "" {
			signature.Stamp(req.Header, req.Body, r.config.SigningSecret, time.Now())
		}
	}

	res := r.dispatcher.Dispatch(ctx, targets, req)
	if res.HasSuccess {
		log.InfoContext(ctx, "webhook relayed",
			"targets", len(targets), "succeeded", res.Succeeded, "failed", res.Failed)
	} else {
		log.ErrorContext(ctx, "all targets failed", "targets", len(targets))
	}
	return len(targets), res, nil
}

func (r *Relay) extract(in Inbound) (*payload.Payload, error) {
	p, err := payload.Extract(in.Header, in.Body, r.config.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if r.schema != nil {
		if err := r.schema.Validate(p.Body); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	return p, nil
}

func methodLabel(m string) string {
	if m == http.MethodGet || m == http.MethodPost {
		return m
	}
	return "other"
}

func resultLabel(res dispatch.Result, err error) string {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return "method_not_allowed"
	case errors.Is(err, ErrNoTargetsConfigured):
		return "no_targets"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case err != nil:
		return "error"
	case res.HasSuccess:
		return "ok"
	default:
		return "all_failed"
	}
}
