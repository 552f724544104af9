// Package telemetry wraps OpenTelemetry tracing for the model backends.
// Without a configured manager every helper degrades to a no-op, so library
// code can annotate spans unconditionally.
package telemetry

import (
	"context"
	"regexp"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/angilabs/angi"

// secretPattern matches API-key-shaped substrings in span attributes.
var secretPattern = regexp.MustCompile(`\b(sk|pk|rk)-[A-Za-z0-9_-]{8,}\b`)

// Config controls tracer setup.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP/HTTP collector host:port. Empty disables export;
	// spans are still created so tests and local runs keep working.
	Endpoint string
}

// Manager owns the tracer provider and its exporter.
type Manager struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

var defaultManager atomic.Pointer[Manager]

// NewManager builds a tracer provider, optionally exporting over OTLP/HTTP.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", cfg.Environment))
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	}
	if cfg.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	return &Manager{
		provider: provider,
		tracer:   provider.Tracer(tracerName),
	}, nil
}

// Shutdown flushes and stops the provider.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// SetDefault installs the manager used by the package-level helpers.
func SetDefault(m *Manager) {
	defaultManager.Store(m)
}

// StartSpan begins a span on the default manager's tracer, or on the global
// no-op tracer when no manager is installed.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if m := defaultManager.Load(); m != nil && m.tracer != nil {
		return m.tracer.Start(ctx, name, opts...)
	}
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// EndSpan records err (when non-nil) and ends the span.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SanitizeAttributes masks API-key-shaped values before they are attached
// to a span.
func SanitizeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING {
			masked := secretPattern.ReplaceAllString(attr.Value.AsString(), "***")
			out = append(out, attribute.String(string(attr.Key), masked))
			continue
		}
		out = append(out, attr)
	}
	return out
}
