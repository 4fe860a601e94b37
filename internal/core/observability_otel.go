package core

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const otelInstrumentationName = "slimelab/internal/core"

// OTelTracer forwards service spans to an OpenTelemetry tracer provider.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer uses tp, or the global provider when tp is nil.
func NewOTelTracer(tp trace.TracerProvider) *OTelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: tp.Tracer(otelInstrumentationName)}
}

// Start implements Tracer.
func (t *OTelTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	ctx, span := t.tracer.Start(ctx, "slimelab."+operation,
		trace.WithAttributes(attribute.String("slimelab.operation", operation)),
	)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
