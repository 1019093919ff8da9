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
	"strings"

	"rivaas.dev/rawhttp/session"
)

// segment is one '/'-separated part of a compiled template.
type segment struct {
	value   string // literal text, or the parameter name for captures
	capture bool
}

// template is a registered path template with its session.
type template struct {
	raw      string
	segments []segment
	params   int
	base     *session.Session // as registered
	composed *session.Session // base with router stages prepended
}

// splitPath trims leading and trailing '/' and splits on '/'.
// The root path has no segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// compileTemplate parses a path template such as "/dogs/:id".
func compileTemplate(raw string) (*template, error) {
	if raw == "" || raw[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidTemplate, raw)
	}

	parts := splitPath(raw)
	t := &template{raw: raw, segments: make([]segment, len(parts))}
	seen := make(map[string]struct{}, len(parts))
	for i, p := range parts {
		name, isCapture := strings.CutPrefix(p, ":")
		if !isCapture {
			t.segments[i] = segment{value: p}
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidTemplate, raw)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidTemplate, raw, name)
		}
		seen[name] = struct{}{}
		t.segments[i] = segment{value: name, capture: true}
		t.params++
	}
	return t, nil
}

// match reports whether parts fit the template, which requires the same
// number of segments. Captures bind any single segment.
func (t *template) match(parts []string) bool {
	if len(parts) != len(t.segments) {
		return false
	}
	for i, s := range t.segments {
		if !s.capture && s.value != parts[i] {
			return false
		}
	}
	return true
}

// bind extracts parameter values from parts. parts must already match.
func (t *template) bind(parts []string) map[string]string {
	params := make(map[string]string, t.params)
	for i, s := range t.segments {
		if s.capture {
			params[s.value] = parts[i]
		}
	}
	return params
}

// moreSpecific reports whether t should win over other for the same path.
// At the first segment where one is literal and the other a capture, the
// literal wins. Templates of identical shape are not more specific than each
// other.
func (t *template) moreSpecific(other *template) bool {
	for i, s := range t.segments {
		o := other.segments[i]
		if s.capture != o.capture {
			return !s.capture
		}
	}
	return false
}

// sameShape reports whether t and other accept exactly the same paths.
func (t *template) sameShape(other *template) bool {
	if len(t.segments) != len(other.segments) {
		return false
	}
	for i, s := range t.segments {
		o := other.segments[i]
		if s.capture != o.capture || (!s.capture && s.value != o.value) {
			return false
		}
	}
	return true
}
