// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// initializeProvider builds the SDK provider for the configured exporter,
// or adopts the custom provider.
func (t *Tracer) initializeProvider(ctx context.Context) error {
	if t.customTracerProvider {
		t.emitDebug("Using custom user-provided tracer provider")
		t.tracer = t.tracerProvider.Tracer(instrumentationName)
		if t.registerGlobal {
			otel.SetTracerProvider(t.tracerProvider)
		}
		return nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch t.provider {
	case StdoutProvider:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(t.stdoutWriter))
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	case OTLPProvider:
		exporter, err = t.newOTLPExporter(ctx)
		if err != nil {
			return err
		}
	case OTLPGRPCProvider:
		exporter, err = t.newOTLPGRPCExporter(ctx)
		if err != nil {
			return err
		}
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(createResource(t.serviceName, t.serviceVersion)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	for _, sp := range t.spanProcessors {
		opts = append(opts, sdktrace.WithSpanProcessor(sp))
	}
	if t.sampleRate == 0 {
		t.emitWarning("Sample rate is zero; only requests with a sampled parent are traced")
	}

	tp := sdktrace.NewTracerProvider(opts...)
	t.sdkProvider = tp
	t.tracerProvider = tp
	t.tracer = tp.Tracer(instrumentationName)

	if t.registerGlobal {
		t.emitDebug("Setting global OpenTelemetry tracer provider", "provider", t.provider)
		otel.SetTracerProvider(tp)
	}
	t.emitInfo("Tracing initialized", "provider", t.provider, "service", t.serviceName)
	return nil
}

// newOTLPExporter creates the exporter. It does not connect until the first
// batch is exported.
func (t *Tracer) newOTLPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	endpoint, insecure := splitEndpoint(t.otlpEndpoint)
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure || t.otlpInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// newOTLPGRPCExporter creates the gRPC exporter. The client connects lazily.
func (t *Tracer) newOTLPGRPCExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	endpoint, insecure := splitEndpoint(t.otlpEndpoint)
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure || t.otlpInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
	}
	return exporter, nil
}

// splitEndpoint strips a scheme and path from endpoint. It reports whether
// the scheme was plain http.
func splitEndpoint(endpoint string) (string, bool) {
	insecure := false
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		insecure = true
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	if i := strings.IndexByte(endpoint, '/'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return endpoint, insecure
}

func createResource(serviceName, serviceVersion string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)
}
