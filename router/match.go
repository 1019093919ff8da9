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
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/session"
)

// Params maps capture names to the path segments they bound.
type Params map[string]string

// Matched describes a successful lookup.
type Matched struct {
	// Session is the registered session with router stages prepended.
	Session *session.Session

	// Params holds the values bound by capture segments.
	Params Params

	// Template is the path template as registered, such as "/dogs/:id".
	Template string

	// Method is the method the template was registered under, which is
	// [request.ALL] for catch-all routes.
	Method request.Method
}

// Match finds the session registered for method and path.
//
// A template matches when it has as many segments as the path and every
// literal segment is equal. When several templates match, the most specific
// wins: comparing segment by segment, a literal beats a capture at the first
// position where they differ. Remaining ties go to the earliest registration.
// Templates of the method itself are tried before [request.ALL] templates.
//
// On failure the error is a [*MatchError] wrapping [ErrMethodNotAllowed] when
// the path matches under other methods, or [ErrNotFound] otherwise.
func (r *Router) Match(method request.Method, path string) (*session.Session, Params, error) {
	m, err := r.Lookup(method, path)
	if err != nil {
		return nil, nil, err
	}
	return m.Session, m.Params, nil
}

// Lookup is [Router.Match] reporting the matched template as well, for
// callers that label logs or metrics by route.
func (r *Router) Lookup(method request.Method, path string) (Matched, error) {
	parts := splitPath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range [...]request.Method{method, request.ALL} {
		if t := r.tables[m].best(parts); t != nil {
			return Matched{Session: t.composed, Params: t.bind(parts), Template: t.raw, Method: m}, nil
		}
	}

	var allowed []request.Method
	for _, m := range request.Methods {
		if m != method && r.tables[m].best(parts) != nil {
			allowed = append(allowed, m)
		}
	}
	if len(allowed) > 0 {
		return Matched{}, &MatchError{Method: method, Path: path, Allowed: allowed, Err: ErrMethodNotAllowed}
	}
	return Matched{}, &MatchError{Method: method, Path: path, Err: ErrNotFound}
}

// best returns the most specific template matching parts, or nil.
func (tbl *methodTable) best(parts []string) *template {
	if tbl == nil {
		return nil
	}
	var best *template
	for _, t := range tbl.templates {
		if !t.match(parts) {
			continue
		}
		if best == nil || t.moreSpecific(best) {
			best = t
		}
	}
	return best
}
