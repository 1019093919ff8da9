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
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "rivaas.dev/rawhttp/metrics"

func (r *Recorder) initializeProvider() error {
	if r.customMeterProvider {
		r.emitDebug("Using custom meter provider")
		return r.useMeterProvider(r.meterProvider)
	}

	switch r.provider {
	case PrometheusProvider:
		return r.initPrometheusProvider()
	case OTLPProvider:
		return r.initOTLPProvider()
	case StdoutProvider:
		return r.initStdoutProvider()
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
}

func (r *Recorder) initPrometheusProvider() error {
	// A private registry keeps several recorders, and tests, apart.
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	return r.useMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
}

func (r *Recorder) initOTLPProvider() error {
	endpoint, insecure := splitEndpoint(r.otlpEndpoint)
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	// The HTTP exporter connects lazily, on the first export.
	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	return r.useMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
}

func (r *Recorder) initStdoutProvider() error {
	var opts []stdoutmetric.Option
	if r.stdoutWriter != nil {
		opts = append(opts, stdoutmetric.WithWriter(r.stdoutWriter))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	return r.useMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
}

func (r *Recorder) useMeterProvider(mp metric.MeterProvider) error {
	r.meterProvider = mp
	if r.registerGlobal {
		otel.SetMeterProvider(mp)
	}
	r.meter = mp.Meter(meterName)
	return r.initializeMetrics()
}

// splitEndpoint turns "http://host:4318/v1/metrics" into "host:4318" and
// reports whether the scheme was plain http.
func splitEndpoint(raw string) (string, bool) {
	endpoint := raw
	insecure := false
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = strings.TrimPrefix(endpoint, "http://")
		insecure = true
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	if host, _, found := strings.Cut(endpoint, "/"); found {
		endpoint = host
	}
	return endpoint, insecure
}
