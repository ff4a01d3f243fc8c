package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/loomviz/pkg/observability"
)

const tracerName = "github.com/matzehuels/loomviz"

// Hooks records viewer events on the span in the event's context. Events
// outside a recording span are dropped.
type Hooks struct{}

var _ observability.AllHooks = Hooks{}

func event(ctx context.Context, name string, err error, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Span starts a span named name as a child of ctx.
func Span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End finishes span, recording err.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (Hooks) OnLoadStart(ctx context.Context, source string) {
	event(ctx, "load.start", nil, attribute.String("loomviz.source", source))
}

func (Hooks) OnLoadComplete(ctx context.Context, source string, count int, d time.Duration, err error) {
	event(ctx, "load.complete", err,
		attribute.String("loomviz.source", source),
		attribute.Int("loomviz.apis", count),
		attribute.Int64("loomviz.duration_ms", d.Milliseconds()))
}

func (Hooks) OnSelect(ctx context.Context, index int, title string, d time.Duration, err error) {
	event(ctx, "select", err,
		attribute.Int("loomviz.index", index),
		attribute.String("loomviz.api", title),
		attribute.Int64("loomviz.duration_ms", d.Milliseconds()))
}

func (Hooks) OnLayoutStart(ctx context.Context, engine string, nodeCount int) {
	event(ctx, "layout.start", nil,
		attribute.String("loomviz.engine", engine),
		attribute.Int("loomviz.nodes", nodeCount))
}

func (Hooks) OnLayoutComplete(ctx context.Context, engine string, d time.Duration, err error) {
	event(ctx, "layout.complete", err,
		attribute.String("loomviz.engine", engine),
		attribute.Int64("loomviz.duration_ms", d.Milliseconds()))
}

func (Hooks) OnCacheHit(ctx context.Context, keyType string) {
	event(ctx, "cache.hit", nil, attribute.String("loomviz.key_type", keyType))
}

func (Hooks) OnCacheMiss(ctx context.Context, keyType string) {
	event(ctx, "cache.miss", nil, attribute.String("loomviz.key_type", keyType))
}

func (Hooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	event(ctx, "cache.set", nil,
		attribute.String("loomviz.key_type", keyType),
		attribute.Int("loomviz.bytes", size))
}

func (Hooks) OnRequest(ctx context.Context, method, host, path string) {
	event(ctx, "http.request", nil,
		attribute.String("http.method", method),
		attribute.String("net.peer.name", host),
		attribute.String("http.target", path))
}

func (Hooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	event(ctx, "http.response", nil,
		attribute.String("http.method", method),
		attribute.String("http.target", path),
		attribute.Int("http.status_code", status),
		attribute.Int64("loomviz.duration_ms", d.Milliseconds()))
}

func (Hooks) OnError(ctx context.Context, method, host, path string, err error) {
	event(ctx, "http.error", err,
		attribute.String("http.method", method),
		attribute.String("net.peer.name", host),
		attribute.String("http.target", path))
}
