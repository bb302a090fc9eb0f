// Package otel provides OpenTelemetry integration for the tool registry.
// It records metrics and spans for validate/execute operations and wires the
// OTLP trace exporter for serve mode.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sea-labs/sea/tool"
)

// ToolObserver translates registry observations into OpenTelemetry metrics
// and spans. It implements tool.Observer.
type ToolObserver struct {
	tracer trace.Tracer

	validations metric.Int64Counter
	executions  metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewToolObserver creates a tool observer bound to the provided meter/tracer.
func NewToolObserver(meter metric.Meter, tracer trace.Tracer) (*ToolObserver, error) {
	validations, err := meter.Int64Counter(
		"sea.tool.validations",
		metric.WithDescription("Number of tool requirement validations"),
	)
	if err != nil {
		return nil, err
	}
	executions, err := meter.Int64Counter(
		"sea.tool.executions",
		metric.WithDescription("Number of tool executions"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"sea.tool.failures",
		metric.WithDescription("Number of failed tool operations"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"sea.tool.duration",
		metric.WithDescription("Tool operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ToolObserver{
		tracer:      tracer,
		validations: validations,
		executions:  executions,
		failures:    failures,
		duration:    duration,
	}, nil
}

// Observe records one registry operation outcome.
func (o *ToolObserver) Observe(obs tool.Observation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool", obs.Tool),
		attribute.String("operation", string(obs.Kind)),
		attribute.Bool("success", obs.Success),
	}
	if obs.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", obs.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)

	switch obs.Kind {
	case tool.ObservationValidate:
		o.validations.Add(ctx, 1, options)
	case tool.ObservationExecute:
		o.executions.Add(ctx, 1, options)
	}
	if !obs.Success {
		o.failures.Add(ctx, 1, options)
	}
	o.duration.Record(ctx, obs.Duration.Seconds(), options)

	if o.tracer == nil || obs.Kind != tool.ObservationExecute {
		return
	}

	spanAttrs := attrs
	if obs.InvocationID != "" {
		spanAttrs = append(spanAttrs, attribute.String("invocation_id", obs.InvocationID))
	}
	_, span := o.tracer.Start(ctx, "tool.execute", trace.WithAttributes(spanAttrs...))
	if obs.Success {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, obs.ErrorCode)
	}
	span.End()
}

var _ tool.Observer = (*ToolObserver)(nil)
