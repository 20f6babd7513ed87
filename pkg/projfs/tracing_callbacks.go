package projfs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracingCallbacks struct {
	Callbacks
	tracer trace.Tracer
}

// NewTracingCallbacks is a decorator for Callbacks that creates an
// OpenTelemetry trace span for every directory enumeration and file
// content request. Notifications and permission checks are not traced,
// as they are cheap and frequent.
func NewTracingCallbacks(base Callbacks, tracerProvider trace.TracerProvider) Callbacks {
	return &tracingCallbacks{
		Callbacks: base,
		tracer:    tracerProvider.Tracer("github.com/buildbarn/bb-projfs/pkg/projfs"),
	}
}

func endSpanWithResult(span trace.Span, r Result) {
	span.SetAttributes(attribute.String("result", r.String()))
	if r != ResultSuccess {
		span.SetStatus(codes.Error, r.String())
	}
	span.End()
}

func (c *tracingCallbacks) OnEnumerateDirectory(ctx context.Context, commandID uint64, relativePath string, triggeringProcessID int, triggeringProcessName string) Result {
	ctxWithTracing, span := c.tracer.Start(ctx, "Callbacks.OnEnumerateDirectory", trace.WithAttributes(
		attribute.String("relative_path", relativePath),
		attribute.Int("triggering_process.id", triggeringProcessID),
		attribute.String("triggering_process.name", triggeringProcessName),
	))
	r := c.Callbacks.OnEnumerateDirectory(ctxWithTracing, commandID, relativePath, triggeringProcessID, triggeringProcessName)
	endSpanWithResult(span, r)
	return r
}

func (c *tracingCallbacks) OnGetFileStream(ctx context.Context, commandID uint64, relativePath string, providerID, contentID []byte, triggeringProcessID int, triggeringProcessName string, fd int) Result {
	ctxWithTracing, span := c.tracer.Start(ctx, "Callbacks.OnGetFileStream", trace.WithAttributes(
		attribute.String("relative_path", relativePath),
		attribute.Int("triggering_process.id", triggeringProcessID),
		attribute.String("triggering_process.name", triggeringProcessName),
	))
	r := c.Callbacks.OnGetFileStream(ctxWithTracing, commandID, relativePath, providerID, contentID, triggeringProcessID, triggeringProcessName, fd)
	endSpanWithResult(span, r)
	return r
}
