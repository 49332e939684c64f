package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mcp-toolbox-go/internal/tools"
)

const tracerName = "mcp-toolbox-go/tools"

// InstrumentedRegistry wraps a tool registry with metrics and a span per
// call.
type InstrumentedRegistry struct {
	*tools.Registry
	metrics *Metrics
	tracer  trace.Tracer
}

// NewInstrumentedRegistry wraps registry. A nil tracer uses the global
// provider, which is a no-op unless tracing was set up.
func NewInstrumentedRegistry(registry *tools.Registry, metrics *Metrics, tracer trace.Tracer) *InstrumentedRegistry {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &InstrumentedRegistry{
		Registry: registry,
		metrics:  metrics,
		tracer:   tracer,
	}
}

// Call wraps the registry's Call.
func (w *InstrumentedRegistry) Call(ctx context.Context, name string, args json.RawMessage) (*tools.Result, error) {
	ctx, span := w.tracer.Start(ctx, "tool.call", trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	start := time.Now()
	result, err := w.Registry.Call(ctx, name, args)

	status := "success"
	if err != nil {
		status = "error"
		code := tools.CodeOf(err)
		span.SetAttributes(attribute.String("tool.error_code", code))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	}

	if w.metrics != nil {
		w.metrics.RecordToolExecution(name, status, time.Since(start))
	}

	return result, err
}
