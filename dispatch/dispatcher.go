// Package dispatch fans a single webhook out to many targets and folds
// their outcomes into one verdict.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/fanrelay/observability"
)

// Config holds dispatcher configuration.
type Config struct {
	// RequestTimeout bounds each target call. Defaults to DefaultTimeout.
	RequestTimeout time.Duration

	// Client performs the calls. Defaults to a fresh http.Client.
	Client *http.Client

	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Dispatcher issues one concurrent call per target and waits for all of them.
type Dispatcher struct {
	sender *Sender
	config Config
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender: NewSenderWithClient(cfg.Client, cfg.RequestTimeout),
		config: cfg,
		logger: logger,
	}
}

// Dispatch sends req to every target concurrently and returns once every
// call has settled. One target failing, timing out or panicking never
// affects the others. Cancellation of ctx is not propagated to the calls;
// each is bounded only by its own timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []string, req Request) Result {
	ctx = context.WithoutCancel(ctx)

	if d.config.Metrics != nil {
		d.config.Metrics.FanoutTargets.Observe(float64(len(targets)))
	}

	outcomes := make([]Outcome, len(targets))
	var wg sync.WaitGroup
	for i, url := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, url, req)
		}()
	}
	wg.Wait()

	return Aggregate(outcomes)
}

// deliver performs one target call and records it.
func (d *Dispatcher) deliver(ctx context.Context, url string, req Request) (out Outcome) {
	var span trace.Span
	if d.config.Tracer != nil {
		ctx, span = d.config.Tracer.StartTargetSpan(ctx, req.InvocationID, url)
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{URL: url, Error: fmt.Sprintf("panic: %v", rec)}
		}
		d.record(ctx, req.InvocationID, out)
		if span != nil {
			d.config.Tracer.EndTargetSpan(span, out.StatusCode, out.LatencyMs, out.Success, out.Error)
		}
	}()

	return d.sender.Send(ctx, url, req)
}

func (d *Dispatcher) record(ctx context.Context, invocationID string, o Outcome) {
	if d.config.Metrics != nil {
		d.config.Metrics.RecordOutcome(outcomeLabel(o), float64(o.LatencyMs)/1000.0)
	}

	if o.Success {
		d.logger.DebugContext(ctx, "target delivered",
			"invocation_id", invocationID, "url", o.URL, "status", o.StatusCode, "latency_ms", o.LatencyMs)
		return
	}
	d.logger.WarnContext(ctx, "target failed",
		"invocation_id", invocationID,
		"url", o.URL,
		"status", o.Status(),
		"timed_out", o.TimedOut,
		"error", o.Error,
		"latency_ms", o.LatencyMs,
	)
}

func outcomeLabel(o Outcome) string {
	switch {
	case o.Success:
		return observability.OutcomeSuccess
	case o.StatusCode != 0:
		return observability.OutcomeHTTPError
	default:
		return observability.OutcomeTransportError
	}
}
