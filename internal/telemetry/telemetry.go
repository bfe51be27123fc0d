// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package telemetry provides OpenTelemetry tracing and metrics
// initialization, logging setup, and message broadcast helpers.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/retr0h/osrun/internal/config"
)

// Constructors are package-level variables so tests can simulate failures.
var (
	resourceNewFn    = resource.New
	stdouttraceNewFn = stdouttrace.New
	otlptraceNewFn   = otlptracegrpc.New
)

// TracerOptions describes the process emitting spans.
type TracerOptions struct {
	// ServiceName is used when the config does not name a service.
	ServiceName string
	// ServiceVersion is the build version, omitted when empty.
	ServiceVersion string
	// Writer receives spans from the stdout exporter. Defaults to os.Stderr;
	// stdout carries command output.
	Writer io.Writer
}

// InitTracer initializes the OpenTelemetry tracer provider and always sets
// the global W3C TraceContext propagator. When tracing is disabled a noop
// provider is installed. The returned shutdown function flushes batched
// spans and must be called on exit.
func InitTracer(
	ctx context.Context,
	cfg config.TracingConfig,
	opts TracerOptions,
) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())

		return func(_ context.Context) error { return nil }, nil
	}

	res, err := traceResource(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	exp, err := spanExporter(ctx, cfg, opts.Writer)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	// Without an exporter spans are still created, so trace_id appears in
	// log lines and can be handed to commands.
	if exp != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// traceResource describes this host and invocation: service name and
// version, host name, process id, and configured attributes.
func traceResource(
	ctx context.Context,
	cfg config.TracingConfig,
	opts TracerOptions,
) (*resource.Resource, error) {
	name := opts.ServiceName
	if cfg.ServiceName != "" {
		name = cfg.ServiceName
	}

	attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(name)}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(opts.ServiceVersion))
	}
	for _, key := range slices.Sorted(maps.Keys(cfg.Attributes)) {
		attrs = append(attrs, attribute.String(key, cfg.Attributes[key]))
	}

	res, err := resourceNewFn(
		ctx,
		resource.WithHost(),
		resource.WithProcessPID(),
		resource.WithAttributes(attrs...),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	return res, nil
}

// spanExporter returns the configured exporter, nil for none.
func spanExporter(
	ctx context.Context,
	cfg config.TracingConfig,
	w io.Writer,
) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", "none":
		return nil, nil
	case "stdout":
		if w == nil {
			w = os.Stderr
		}

		exp, err := stdouttraceNewFn(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}

		return exp, nil
	case "otlp":
		exp, err := otlptraceNewFn(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}

		return exp, nil
	}

	return nil, fmt.Errorf("unsupported tracing exporter: %q", cfg.Exporter)
}
