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

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/session"
)

// Handle registers s for method and path template.
//
// It panics on an invalid method, an invalid template or a nil session,
// since these are programming errors found at startup. The session is
// cloned, so later changes to s do not affect the route.
func (r *Router) Handle(method request.Method, path string, s session.Sessionable) *Router {
	if !method.Valid() {
		panic(fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	if s == nil {
		panic(ErrNilSession)
	}
	sess := s.Session()
	if sess == nil {
		panic(ErrNilSession)
	}
	t, err := compileTemplate(path)
	if err != nil {
		panic(err)
	}
	t.base = sess.Clone()

	r.notify(r.insert(method, path, t)...)
	return r
}

// insert adds t under the write lock and returns the diagnostics to deliver
// once the lock is released.
func (r *Router) insert(method request.Method, path string, t *template) []DiagnosticEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.composed = r.compose(t.base)

	tbl, ok := r.tables[method]
	if !ok {
		tbl = &methodTable{index: make(map[string]int)}
		r.tables[method] = tbl
	}

	fields := map[string]any{"method": method.String(), "path": path}
	if i, exists := tbl.index[path]; exists {
		tbl.templates[i] = t
		return []DiagnosticEvent{r.event(DiagRouteReplaced, "route registration replaced an existing session", fields)}
	}

	var events []DiagnosticEvent
	for _, other := range tbl.templates {
		if other.sameShape(t) {
			ambiguous := maps.Clone(fields)
			ambiguous["conflicts_with"] = other.raw
			events = append(events, r.event(DiagAmbiguousRoute, "templates accept the same paths; registration order decides", ambiguous))
			break
		}
	}

	tbl.index[path] = len(tbl.templates)
	tbl.templates = append(tbl.templates, t)
	return append(events, r.event(DiagRouteRegistered, "route registered", fields))
}

// Route registers stages as the then phase of a session for method and path.
func (r *Router) Route(method request.Method, path string, stages ...session.Stage) *Router {
	return r.Handle(method, path, session.New().Then(stages...))
}

// GET registers stages for GET requests.
func (r *Router) GET(path string, stages ...session.Stage) *Router {
	return r.Route(request.GET, path, stages...)
}

// POST registers stages for POST requests.
func (r *Router) POST(path string, stages ...session.Stage) *Router {
	return r.Route(request.POST, path, stages...)
}

// PUT registers stages for PUT requests.
func (r *Router) PUT(path string, stages ...session.Stage) *Router {
	return r.Route(request.PUT, path, stages...)
}

// PATCH registers stages for PATCH requests.
func (r *Router) PATCH(path string, stages ...session.Stage) *Router {
	return r.Route(request.PATCH, path, stages...)
}

// DELETE registers stages for DELETE requests.
func (r *Router) DELETE(path string, stages ...session.Stage) *Router {
	return r.Route(request.DELETE, path, stages...)
}

// ALL registers stages for every method. Routes registered for a specific
// method take precedence.
func (r *Router) ALL(path string, stages ...session.Stage) *Router {
	return r.Route(request.ALL, path, stages...)
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method request.Method
	Path   string
	Params []string
	Stages int
}

// Routes returns the registered routes sorted by method, then path.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var routes []RouteInfo
	for method, tbl := range r.tables {
		for _, t := range tbl.templates {
			var params []string
			for _, s := range t.segments {
				if s.capture {
					params = append(params, s.value)
				}
			}
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   t.raw,
				Params: params,
				Stages: t.composed.Len(),
			})
		}
	}
	slices.SortFunc(routes, func(a, b RouteInfo) int {
		if c := strings.Compare(string(a.Method), string(b.Method)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return routes
}
