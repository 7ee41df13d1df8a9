// Package metrics records request-level measurements of the library service
// through the OpenTelemetry metrics API. Without a configured MeterProvider
// the global no-op provider is used and recording costs next to nothing.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dmitrijs2005/librarian"

// Instrument names.
const (
	RequestsTotal    = "library_requests_total"
	RequestDuration  = "library_request_duration_seconds"
	ActiveHandlers   = "library_active_handlers"
	ConnectionErrors = "library_connection_errors_total"
)

// Recorder is what the connection handlers report to.
type Recorder interface {
	HandlerStarted(ctx context.Context)
	HandlerFinished(ctx context.Context)
	RequestServed(ctx context.Context, command, outcome string, d time.Duration)
	ConnectionError(ctx context.Context, stage string)
}

// Collector implements Recorder with OpenTelemetry instruments.
type Collector struct {
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	active    metric.Int64UpDownCounter
	connError metric.Int64Counter
}

// New creates the instruments on meter. A nil meter means the global
// provider's meter.
func New(meter metric.Meter) (*Collector, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	requests, err := meter.Int64Counter(RequestsTotal,
		metric.WithDescription("Requests served, by command and outcome."))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(RequestDuration,
		metric.WithDescription("Time from accepted connection to response written."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	active, err := meter.Int64UpDownCounter(ActiveHandlers,
		metric.WithDescription("Connection handlers currently running."))
	if err != nil {
		return nil, err
	}
	connError, err := meter.Int64Counter(ConnectionErrors,
		metric.WithDescription("Connections abandoned because of transport errors, by stage."))
	if err != nil {
		return nil, err
	}

	return &Collector{requests: requests, duration: duration, active: active, connError: connError}, nil
}

func (c *Collector) HandlerStarted(ctx context.Context) {
	c.active.Add(ctx, 1)
}

func (c *Collector) HandlerFinished(ctx context.Context) {
	c.active.Add(ctx, -1)
}

func (c *Collector) RequestServed(ctx context.Context, command, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	)
	c.requests.Add(ctx, 1, attrs)
	c.duration.Record(ctx, d.Seconds(), attrs)
}

func (c *Collector) ConnectionError(ctx context.Context, stage string) {
	c.connError.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// Nop ignores every measurement.
type Nop struct{}

func (Nop) HandlerStarted(context.Context)                                {}
func (Nop) HandlerFinished(context.Context)                               {}
func (Nop) RequestServed(context.Context, string, string, time.Duration) {}
func (Nop) ConnectionError(context.Context, string)                       {}
