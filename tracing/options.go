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
	"io"
	"log/slog"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Option defines functional options for Tracer configuration.
type Option func(*Tracer)

// WithTracerProvider uses a caller-managed provider. The Tracer neither
// registers it globally (see [WithGlobalTracerProvider]) nor shuts it down,
// and exporter options are ignored.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customTracerProvider = true
	}
}

// WithGlobalTracerProvider registers the provider with otel.SetTracerProvider.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate sets the fraction of root spans to sample, from 0.0 to 1.0.
// Requests carrying a sampled parent are always recorded.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = rate
	}
}

// WithHeaders records the named request headers as span attributes.
// Sensitive headers such as Authorization are never recorded.
func WithHeaders(headers ...string) Option {
	return func(t *Tracer) {
		for _, h := range headers {
			if !isSensitiveHeader(h) {
				t.recordHeaders = append(t.recordHeaders, h)
			}
		}
	}
}

// WithSpanProcessor adds a processor to the provider owned by the Tracer.
// It has no effect with [WithTracerProvider].
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(t *Tracer) {
		t.spanProcessors = append(t.spanProcessors, sp)
	}
}

// WithEventHandler sets a handler for internal tracing events.
func WithEventHandler(handler EventHandler) Option {
	return func(t *Tracer) {
		if handler != nil {
			t.eventHandler = handler
		}
	}
}

// WithLogger reports internal tracing events to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithNoop records spans without exporting them.
func WithNoop() Option {
	return func(t *Tracer) {
		t.provider = NoopProvider
	}
}

// WithStdout writes finished spans to w as JSON. A nil w means os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(t *Tracer) {
		if w == nil {
			w = os.Stdout
		}
		t.provider = StdoutProvider
		t.stdoutWriter = w
	}
}

// OTLPOption configures the OTLP exporter.
type OTLPOption func(*Tracer)

// OTLPInsecure disables TLS for the OTLP exporter.
func OTLPInsecure() OTLPOption {
	return func(t *Tracer) {
		t.otlpInsecure = true
	}
}

// WithOTLPGRPC exports spans with OTLP over gRPC to endpoint, given as
// host:port. Without [OTLPInsecure] the connection uses TLS.
func WithOTLPGRPC(endpoint string, opts ...OTLPOption) Option {
	return func(t *Tracer) {
		t.provider = OTLPGRPCProvider
		t.otlpEndpoint = endpoint
		for _, opt := range opts {
			opt(t)
		}
	}
}

// WithOTLP exports spans with OTLP over HTTP to endpoint, given as host:port
// or as a URL. An http:// URL implies [OTLPInsecure].
func WithOTLP(endpoint string, opts ...OTLPOption) Option {
	return func(t *Tracer) {
		t.provider = OTLPProvider
		t.otlpEndpoint = endpoint
		for _, opt := range opts {
			opt(t)
		}
	}
}
