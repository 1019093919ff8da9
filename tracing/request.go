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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/rawhttp/request"
)

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

func isSensitiveHeader(name string) bool {
	return sensitiveHeaders[strings.ToLower(name)]
}

// HeaderCarrier adapts [request.Header] to propagation.TextMapCarrier.
type HeaderCarrier request.Header

var _ propagation.TextMapCarrier = HeaderCarrier(nil)

// Get returns the value of key.
func (c HeaderCarrier) Get(key string) string {
	return request.Header(c).Get(key)
}

// Set stores value under key. It panics on a nil carrier.
func (c HeaderCarrier) Set(key, value string) {
	request.Header(c).Set(key, value)
}

// Keys lists the stored header names.
func (c HeaderCarrier) Keys() []string {
	return request.Header(c).Keys()
}

// StartRequest starts a server span for req, continuing the trace named by
// its traceparent header if there is one. The span is named after the raw
// path until [Tracer.SetRoute] names the matched template.
//
// The returned span must be passed to [Tracer.FinishRequest].
func (t *Tracer) StartRequest(ctx context.Context, req *request.Request) (context.Context, trace.Span) {
	if ctx.Err() != nil {
		t.emitDebug("Context cancelled before span creation", "path", req.Route)
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx = t.propagator.Extract(ctx, HeaderCarrier(req.Headers))
	ctx, span := t.tracer.Start(ctx, req.Method.String()+" "+req.Route, trace.WithSpanKind(trace.SpanKindServer))
	if !span.IsRecording() {
		return ctx, span
	}

	attrs := make([]attribute.KeyValue, 0, 6+len(t.recordHeaders))
	attrs = append(attrs,
		attribute.String("http.request.method", req.Method.String()),
		attribute.String("url.path", req.Route),
		attribute.String("client.address", req.RemoteAddr),
	)
	if req.RawQuery != "" {
		attrs = append(attrs, attribute.String("url.query", req.RawQuery))
	}
	if req.Version != "" {
		attrs = append(attrs, attribute.String("network.protocol.version", strings.TrimPrefix(req.Version, "HTTP/")))
	}
	if ua := req.Headers.Get("User-Agent"); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	for _, h := range t.recordHeaders {
		if v := req.Headers.Get(h); v != "" {
			attrs = append(attrs, attribute.String(attrPrefixHeader+strings.ToLower(h), v))
		}
	}
	span.SetAttributes(attrs...)
	return ctx, span
}

// SetRoute renames span after the matched route, such as "GET /dogs/:id",
// and records it as http.route.
func (t *Tracer) SetRoute(span trace.Span, method request.Method, route string) {
	if span == nil || !span.IsRecording() {
		return
	}
	span.SetName(method.String() + " " + route)
	span.SetAttributes(attribute.String("http.route", route))
}

// RecordError attaches err to span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if span == nil || err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
}

// FinishRequest records the response on span and ends it. Statuses of 400
// and above mark the span as failed.
func (t *Tracer) FinishRequest(span trace.Span, statusCode, size int) {
	if span == nil {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Int("http.response.status_code", statusCode),
			attribute.Int("http.response.body.size", size),
		)
		if statusCode >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	span.End()
}
