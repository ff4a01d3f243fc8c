// Package telemetry wires OpenTelemetry tracing into loomviz.
package telemetry

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/matzehuels/loomviz/pkg/buildinfo"
)

// ServiceName is reported as service.name.
const ServiceName = "loomviz"

// InitTracer installs a tracer provider exporting spans as JSON to w. The
// caller registers [Hooks] to turn viewer events into span events. The
// returned function flushes and shuts down.
func InitTracer(w io.Writer, logger *log.Logger) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(buildinfo.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled", "service", ServiceName)
	return tp.Shutdown, nil
}
