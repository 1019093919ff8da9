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

// Package tracing records an OpenTelemetry server span for every request.
//
// A [Tracer] owns an SDK tracer provider with one of three exporters:
//
//   - [NoopProvider]: spans are created but not exported (default)
//   - [StdoutProvider]: spans are written as JSON, see [WithStdout]
//   - [OTLPProvider]: spans are sent with OTLP over HTTP, see [WithOTLP]
//
// A caller-managed provider can be used instead with [WithTracerProvider].
//
// # Request spans
//
// The server calls [Tracer.StartRequest] after decoding, which continues any
// W3C trace context found in the request headers, then [Tracer.SetRoute]
// once the route template is known and [Tracer.FinishRequest] after the
// response is written:
//
//	ctx, span := tracer.StartRequest(ctx, req)
//	tracer.SetRoute(span, req.Method, "/dogs/:id")
//	// run the session...
//	tracer.FinishRequest(span, res.StatusCode(), res.Size())
package tracing
