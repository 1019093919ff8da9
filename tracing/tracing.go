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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// EventType identifies the severity of an internal tracing event.
type EventType int

const (
	// EventError indicates an error event (e.g., failed to export spans).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event (e.g., tracing initialized).
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event represents an internal operational event from the tracing package.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events from the tracing package.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to logger.
// If logger is nil, the handler discards all events.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}
	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

const (
	// DefaultServiceName is the service name used when none is provided.
	DefaultServiceName = "rawhttp"

	// DefaultServiceVersion is the service version used when none is provided.
	DefaultServiceVersion = "dev"

	// DefaultSampleRate samples every request.
	DefaultSampleRate = 1.0

	instrumentationName = "rivaas.dev/rawhttp/tracing"

	attrPrefixHeader = "http.request.header."
)

// Provider names a span exporter.
type Provider string

const (
	// NoopProvider records spans without exporting them (default).
	NoopProvider Provider = "noop"

	// StdoutProvider writes spans as JSON, for development.
	StdoutProvider Provider = "stdout"

	// OTLPProvider exports spans with OTLP over HTTP.
	OTLPProvider Provider = "otlp"

	// OTLPGRPCProvider exports spans with OTLP over gRPC.
	OTLPGRPCProvider Provider = "otlp-grpc"
)

var (
	// ErrInvalidSampleRate indicates a sample rate outside [0, 1].
	ErrInvalidSampleRate = errors.New("sample rate must be between 0.0 and 1.0")

	// ErrInvalidProvider indicates an unknown provider name.
	ErrInvalidProvider = errors.New("unsupported tracing provider")

	// ErrMissingEndpoint indicates the OTLP provider without an endpoint.
	ErrMissingEndpoint = errors.New("OTLP endpoint cannot be empty")
)

// Tracer starts one server span per request.
//
// It owns an SDK tracer provider unless one is supplied with
// [WithTracerProvider], in which case Shutdown leaves it alone.
type Tracer struct {
	tracer         trace.Tracer
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator

	provider       Provider
	serviceName    string
	serviceVersion string
	sampleRate     float64
	otlpEndpoint   string
	otlpInsecure   bool
	stdoutWriter   io.Writer
	recordHeaders  []string
	spanProcessors []sdktrace.SpanProcessor

	customTracerProvider bool
	registerGlobal       bool
	eventHandler         EventHandler

	isShutdown atomic.Bool
}

// New creates a Tracer and initializes its provider.
//
// Example:
//
//	tracer, err := tracing.New(
//	    tracing.WithServiceName("dogs"),
//	    tracing.WithOTLP("localhost:4318", tracing.OTLPInsecure()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
func New(opts ...Option) (*Tracer, error) {
	t := newDefaultTracer()
	for _, opt := range opts {
		opt(t)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid tracing configuration: %w", err)
	}
	if err := t.initializeProvider(context.Background()); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNew creates a Tracer and panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("tracing.MustNew: %v", err))
	}
	return t
}

func newDefaultTracer() *Tracer {
	return &Tracer{
		provider:       NoopProvider,
		serviceName:    DefaultServiceName,
		serviceVersion: DefaultServiceVersion,
		sampleRate:     DefaultSampleRate,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		eventHandler: func(Event) {},
	}
}

func (t *Tracer) validate() error {
	var errs []error
	if t.serviceName == "" {
		errs = append(errs, errors.New("service name cannot be empty"))
	}
	if t.serviceVersion == "" {
		errs = append(errs, errors.New("service version cannot be empty"))
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrInvalidSampleRate, t.sampleRate))
	}
	if t.customTracerProvider && t.tracerProvider == nil {
		errs = append(errs, errors.New("custom tracer provider is nil"))
	}
	switch t.provider {
	case NoopProvider, StdoutProvider:
	case OTLPProvider, OTLPGRPCProvider:
		if t.otlpEndpoint == "" && !t.customTracerProvider {
			errs = append(errs, ErrMissingEndpoint)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidProvider, t.provider))
	}
	return errors.Join(errs...)
}

// Provider returns the configured exporter.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// ServiceName returns the service name recorded on every span.
func (t *Tracer) ServiceName() string {
	return t.serviceName
}

// ServiceVersion returns the service version recorded on every span.
func (t *Tracer) ServiceVersion() string {
	return t.serviceVersion
}

// SampleRate returns the fraction of root spans that are sampled.
func (t *Tracer) SampleRate() float64 {
	return t.sampleRate
}

// OTelTracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) OTelTracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans and stops the provider owned by the Tracer.
// A provider passed with [WithTracerProvider] is left running. Calling
// Shutdown more than once is safe.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.isShutdown.CompareAndSwap(false, true) {
		return nil
	}
	if t.customTracerProvider {
		t.emitDebug("Skipping shutdown of custom tracer provider")
		return nil
	}
	if t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		t.emitError("Tracer provider shutdown failed", "error", err)
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	t.emitDebug("Tracer provider shut down", "provider", t.provider)
	return nil
}

// ForceFlush exports all finished spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	return t.sdkProvider.ForceFlush(ctx)
}

func (t *Tracer) emitError(msg string, args ...any) {
	t.eventHandler(Event{Type: EventError, Message: msg, Args: args})
}

func (t *Tracer) emitWarning(msg string, args ...any) {
	t.eventHandler(Event{Type: EventWarning, Message: msg, Args: args})
}

func (t *Tracer) emitInfo(msg string, args ...any) {
	t.eventHandler(Event{Type: EventInfo, Message: msg, Args: args})
}

func (t *Tracer) emitDebug(msg string, args ...any) {
	t.eventHandler(Event{Type: EventDebug, Message: msg, Args: args})
}
