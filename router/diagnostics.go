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

package router

import "maps"

// DiagnosticEvent reports a notable registration event.
// Diagnostics are informational; the router behaves the same whether or not
// they are collected.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagRouteRegistered is emitted for every new (method, template) pair.
	DiagRouteRegistered DiagnosticKind = "route_registered"

	// DiagRouteReplaced is emitted when a registration replaces an existing one.
	DiagRouteReplaced DiagnosticKind = "route_replaced"

	// DiagAmbiguousRoute is emitted when two templates of the same method have
	// the same shape, so only registration order separates them.
	DiagAmbiguousRoute DiagnosticKind = "route_ambiguous"
)

// DiagnosticHandler receives diagnostic events from the router.
//
// Example with logging:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	r := router.MustNew(router.WithDiagnostics(handler))
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

func (r *Router) event(kind DiagnosticKind, msg string, fields map[string]any) DiagnosticEvent {
	fields = maps.Clone(fields)
	if fields == nil {
		fields = map[string]any{}
	}
	fields["router"] = r.name
	return DiagnosticEvent{Kind: kind, Message: msg, Fields: fields}
}

// notify delivers events without holding the router lock, so a handler may
// call back into the router.
func (r *Router) notify(events ...DiagnosticEvent) {
	if r.diagnostics == nil {
		return
	}
	for _, e := range events {
		r.diagnostics.OnDiagnostic(e)
	}
}
