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

// Package metrics records server metrics with OpenTelemetry.
//
// A [Recorder] owns a meter provider backed by one exporter:
//   - Prometheus (default): a private registry read on demand through
//     [Recorder.Stage] or [Recorder.WriteText]
//   - OTLP: periodic push to an OTLP HTTP collector
//   - Stdout: periodic dump for development
//
// # Basic Usage
//
//	rec := metrics.MustNew(metrics.WithServiceName("dogs"))
//	defer rec.Shutdown(context.Background())
//
//	ops := router.MustNew(router.WithName("ops"))
//	ops.GET(rec.Path(), rec.Stage())
//
// The server calls [Recorder.Start] and [Recorder.Finish] around every
// request, labelling by route template rather than raw path.
//
// # Custom Counters
//
//	_ = rec.IncrementCounter(ctx, "dogs_adopted_total", attribute.String("breed", "corgi"))
//
// Names starting with "__", "http_" or "rawhttp_" are reserved. At most
// [MaxCustomCounters] distinct counters are created.
//
// # Global State
//
// The OpenTelemetry global meter provider is left alone unless
// [WithGlobalMeterProvider] is given.
package metrics
