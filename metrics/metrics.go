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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MaxCustomCounters caps the distinct counters created by
// [Recorder.IncrementCounter].
const MaxCustomCounters = 1000

var (
	// DefaultDurationBuckets are histogram boundaries for request duration in seconds.
	DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are histogram boundaries for message sizes in bytes.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

var (
	// ErrNoExposition is returned when Prometheus text is requested from a
	// recorder that does not use the Prometheus provider.
	ErrNoExposition = errors.New("metrics recorder has no Prometheus registry")

	// ErrCustomMetricLimit is returned once [MaxCustomCounters] is reached.
	ErrCustomMetricLimit = errors.New("custom metric limit reached")
)

// EventType represents the severity of an internal operational event.
type EventType int

const (
	EventError EventType = iota
	EventWarning
	EventInfo
	EventDebug
)

// Event is an internal operational event, such as a failed flush.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to logger.
// A nil logger discards events.
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

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider keeps metrics in a private registry that is read
	// by [Recorder.Stage] or [Recorder.WriteText] (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP HTTP collector.
	OTLPProvider Provider = "otlp"
	// StdoutProvider prints metrics periodically (development).
	StdoutProvider Provider = "stdout"
)

// Recorder records server metrics through OpenTelemetry.
// All methods are safe for concurrent use.
type Recorder struct {
	meter              metric.Meter
	meterProvider      metric.MeterProvider
	prometheusRegistry *promclient.Registry
	eventHandler       EventHandler

	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	requestSize     metric.Int64Histogram
	responseSize    metric.Int64Histogram
	errorCount      metric.Int64Counter
	decodeErrors    metric.Int64Counter
	connections     metric.Int64Counter

	poolMu           sync.Mutex
	poolRegistration metric.Registration

	customMu       sync.RWMutex
	customCounters map[string]metric.Int64Counter

	exportInterval time.Duration

	serviceName    string
	serviceVersion string
	otlpEndpoint   string
	metricsPath    string
	stdoutWriter   io.Writer

	serviceNameAttr    attribute.KeyValue
	serviceVersionAttr attribute.KeyValue

	provider            Provider
	providerSetCount    int
	customMeterProvider bool
	registerGlobal      bool
	isShuttingDown      atomic.Bool
}

// New creates a [Recorder]. The Prometheus provider is used unless another
// provider option is given.
func New(opts ...Option) (*Recorder, error) {
	r := newDefaultRecorder()

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics configuration: %w", err)
	}

	r.serviceNameAttr = attribute.String("service.name", r.serviceName)
	r.serviceVersionAttr = attribute.String("service.version", r.serviceVersion)

	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return r, nil
}

// MustNew creates a [Recorder] or panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic("metrics initialization failed: " + err.Error())
	}
	return r
}

func newDefaultRecorder() *Recorder {
	return &Recorder{
		serviceName:    "rawhttp",
		serviceVersion: "dev",
		provider:       PrometheusProvider,
		exportInterval: 30 * time.Second,
		metricsPath:    "/metrics",
		eventHandler:   func(Event) {},
		customCounters: make(map[string]metric.Int64Counter),
	}
}

func (r *Recorder) validate() error {
	var errs []error

	if r.providerSetCount > 1 {
		errs = append(errs, errors.New("only one provider option may be set"))
	}
	if r.customMeterProvider && r.providerSetCount > 0 {
		errs = append(errs, errors.New("a custom meter provider excludes provider options"))
	}
	if r.customMeterProvider && r.meterProvider == nil {
		errs = append(errs, errors.New("custom meter provider is nil"))
	}
	if r.serviceName == "" {
		errs = append(errs, errors.New("service name cannot be empty"))
	}
	if r.exportInterval <= 0 {
		errs = append(errs, fmt.Errorf("export interval must be positive, got %s", r.exportInterval))
	}
	if r.metricsPath == "" || r.metricsPath[0] != '/' {
		errs = append(errs, fmt.Errorf("metrics path must start with '/', got %q", r.metricsPath))
	}
	if r.provider == OTLPProvider && r.otlpEndpoint == "" {
		errs = append(errs, errors.New("OTLP provider requires an endpoint"))
	}

	return errors.Join(errs...)
}

// Provider returns the configured provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// Path returns the path the exposition stage is meant to be mounted at.
func (r *Recorder) Path() string {
	return r.metricsPath
}

// ServiceName returns the service name attribute value.
func (r *Recorder) ServiceName() string {
	return r.serviceName
}

// ServiceVersion returns the service version attribute value.
func (r *Recorder) ServiceVersion() string {
	return r.serviceVersion
}

// Shutdown flushes pending data and shuts the meter provider down.
// Custom meter providers are left to their owner. Safe to call more than once.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error

	r.poolMu.Lock()
	if r.poolRegistration != nil {
		if err := r.poolRegistration.Unregister(); err != nil {
			errs = append(errs, fmt.Errorf("unregister pool callback: %w", err))
		}
		r.poolRegistration = nil
	}
	r.poolMu.Unlock()

	if r.customMeterProvider {
		r.emitDebug("Skipping shutdown of custom meter provider")
	} else if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.ForceFlush(ctx); err != nil {
			r.emitWarning("metrics flush failed", "error", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ForceFlush exports pending data for push providers. It is a no-op after
// Shutdown and for Prometheus, which is read on demand.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.isShuttingDown.Load() {
		return nil
	}
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metrics force flush: %w", err)
		}
	}
	return nil
}

func (r *Recorder) emit(t EventType, msg string, args ...any) {
	r.eventHandler(Event{Type: t, Message: msg, Args: args})
}

func (r *Recorder) emitWarning(msg string, args ...any) { r.emit(EventWarning, msg, args...) }
func (r *Recorder) emitDebug(msg string, args ...any)   { r.emit(EventDebug, msg, args...) }
