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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// reservedPrefixes cannot be used by custom metrics.
var reservedPrefixes = []string{"__", "http_", "rawhttp_"}

func validateMetricName(name string) error {
	if name == "" {
		return fmt.Errorf("metric name cannot be empty")
	}
	if len(name) > maxMetricNameLength {
		return fmt.Errorf("metric name too long: %d characters (max %d)", len(name), maxMetricNameLength)
	}
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("invalid metric name %q: must start with a letter and contain only letters, digits, '_', '.' or '-'", name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("metric name %q uses reserved prefix %q", name, prefix)
		}
	}
	return nil
}

// RequestMetrics carries the timing and attributes of one request between
// [Recorder.Start] and [Recorder.Finish].
type RequestMetrics struct {
	StartTime  time.Time
	Attributes []attribute.KeyValue
}

// AddAttributes attaches attributes recorded by [Recorder.Finish].
func (m *RequestMetrics) AddAttributes(attrs ...attribute.KeyValue) {
	if m != nil {
		m.Attributes = append(m.Attributes, attrs...)
	}
}

// Start begins timing a request and counts it as active.
// It returns nil after Shutdown; Finish accepts nil.
func (r *Recorder) Start(ctx context.Context) *RequestMetrics {
	if r.isShuttingDown.Load() {
		return nil
	}

	m := &RequestMetrics{
		StartTime:  time.Now(),
		Attributes: make([]attribute.KeyValue, 2, 8),
	}
	m.Attributes[0] = r.serviceNameAttr
	m.Attributes[1] = r.serviceVersionAttr

	r.activeRequests.Add(ctx, 1, metric.WithAttributes(m.Attributes...))
	return m
}

// Finish records duration, count, response size and errors for a request.
// route should be a template such as "/dogs/:id", never the raw path.
func (r *Recorder) Finish(ctx context.Context, m *RequestMetrics, statusCode int, responseSize int64, route string) {
	if m == nil {
		return
	}

	duration := time.Since(m.StartTime).Seconds()
	r.activeRequests.Add(ctx, -1, metric.WithAttributes(m.Attributes[:2]...))

	attrs := append(m.Attributes,
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", statusCode),
		attribute.String("http.status_class", statusClass(statusCode)),
	)
	set := metric.WithAttributes(attrs...)

	r.requestDuration.Record(ctx, duration, set)
	r.requestCount.Add(ctx, 1, set)
	r.responseSize.Record(ctx, responseSize, set)
	if statusCode >= 400 {
		r.errorCount.Add(ctx, 1, set)
	}
}

// RecordRequestSize records the body size of a decoded request.
func (r *Recorder) RecordRequestSize(ctx context.Context, m *RequestMetrics, size int64) {
	if m == nil {
		return
	}
	r.requestSize.Record(ctx, size, metric.WithAttributes(m.Attributes...))
}

// RecordDecodeError counts a request that could not be decoded, labelled
// with a short machine-readable code such as "MALFORMED_INPUT".
func (r *Recorder) RecordDecodeError(ctx context.Context, code string) {
	if r.isShuttingDown.Load() {
		return
	}
	r.decodeErrors.Add(ctx, 1, metric.WithAttributes(
		r.serviceNameAttr,
		attribute.String("error.code", code),
	))
}

// RecordConnection counts an accepted connection.
func (r *Recorder) RecordConnection(ctx context.Context) {
	if r.isShuttingDown.Load() {
		return
	}
	r.connections.Add(ctx, 1, metric.WithAttributes(r.serviceNameAttr))
}

// PoolStats is the view of a worker pool reported by [Recorder.ObservePool].
type PoolStats interface {
	Size() int
	Busy() int
	Queued() int
}

// ObservePool reports the pool's worker count, busy workers and queue depth
// on every collection. A later call replaces the previous pool.
func (r *Recorder) ObservePool(pool PoolStats) error {
	workers, err := r.meter.Int64ObservableGauge("rawhttp_workers",
		metric.WithDescription("Number of connection workers"))
	if err != nil {
		return fmt.Errorf("failed to create workers gauge: %w", err)
	}
	busy, err := r.meter.Int64ObservableGauge("rawhttp_workers_busy",
		metric.WithDescription("Number of workers serving a connection"))
	if err != nil {
		return fmt.Errorf("failed to create busy workers gauge: %w", err)
	}
	queued, err := r.meter.Int64ObservableGauge("rawhttp_queue_depth",
		metric.WithDescription("Number of accepted connections waiting for a worker"))
	if err != nil {
		return fmt.Errorf("failed to create queue depth gauge: %w", err)
	}

	set := metric.WithAttributes(r.serviceNameAttr)
	reg, err := r.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(workers, int64(pool.Size()), set)
		o.ObserveInt64(busy, int64(pool.Busy()), set)
		o.ObserveInt64(queued, int64(pool.Queued()), set)
		return nil
	}, workers, busy, queued)
	if err != nil {
		return fmt.Errorf("failed to register pool callback: %w", err)
	}

	r.poolMu.Lock()
	prev := r.poolRegistration
	r.poolRegistration = reg
	r.poolMu.Unlock()

	if prev != nil {
		return prev.Unregister()
	}
	return nil
}

func statusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

// IncrementCounter adds one to the custom counter name, creating it on
// first use. Names are checked against the reserved prefixes, and at most
// [MaxCustomCounters] distinct counters exist per Recorder.
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attributes ...attribute.KeyValue) error {
	counter, err := r.customCounter(name)
	if err != nil {
		return fmt.Errorf("increment counter %q: %w", name, err)
	}
	counter.Add(ctx, 1, metric.WithAttributes(attributes...))
	return nil
}

func (r *Recorder) customCounter(name string) (metric.Int64Counter, error) {
	r.customMu.RLock()
	counter, ok := r.customCounters[name]
	r.customMu.RUnlock()
	if ok {
		return counter, nil
	}
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()
	if counter, ok := r.customCounters[name]; ok {
		return counter, nil
	}
	if len(r.customCounters) >= MaxCustomCounters {
		return nil, fmt.Errorf("%w: %d", ErrCustomMetricLimit, MaxCustomCounters)
	}
	counter, err := r.meter.Int64Counter(name, metric.WithDescription("Custom counter"))
	if err != nil {
		return nil, err
	}
	r.customCounters[name] = counter
	return counter, nil
}

func (r *Recorder) initializeMetrics() error {
	var err error

	r.requestDuration, err = r.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultDurationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	r.requestCount, err = r.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request count counter: %w", err)
	}

	r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of requests being served"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active requests gauge: %w", err)
	}

	r.requestSize, err = r.meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("Size of HTTP request bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(DefaultSizeBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create request size histogram: %w", err)
	}

	r.responseSize, err = r.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of HTTP responses in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(DefaultSizeBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create response size histogram: %w", err)
	}

	r.errorCount, err = r.meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of responses with a 4xx or 5xx status"),
	)
	if err != nil {
		return fmt.Errorf("failed to create error count counter: %w", err)
	}

	r.decodeErrors, err = r.meter.Int64Counter(
		"rawhttp_decode_errors_total",
		metric.WithDescription("Total number of requests that could not be decoded"),
	)
	if err != nil {
		return fmt.Errorf("failed to create decode error counter: %w", err)
	}

	r.connections, err = r.meter.Int64Counter(
		"rawhttp_connections_total",
		metric.WithDescription("Total number of accepted connections"),
	)
	if err != nil {
		return fmt.Errorf("failed to create connection counter: %w", err)
	}

	return nil
}
