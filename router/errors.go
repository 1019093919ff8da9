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
	"errors"
	"strings"

	"rivaas.dev/rawhttp/request"
)

var (
	// ErrNotFound indicates that no route matches the method and path.
	ErrNotFound = errors.New("route not found")

	// ErrMethodNotAllowed indicates that the path matches only under other methods.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrInvalidMethod indicates an unsupported registration method.
	ErrInvalidMethod = errors.New("invalid method")

	// ErrInvalidTemplate indicates a malformed path template.
	ErrInvalidTemplate = errors.New("invalid path template")

	// ErrNilSession indicates a nil session or stage at registration.
	ErrNilSession = errors.New("session is nil")

	// ErrEmptyName indicates an empty router name.
	ErrEmptyName = errors.New("router name cannot be empty")
)

// MatchError describes a failed match.
// It unwraps to [ErrNotFound] or [ErrMethodNotAllowed].
type MatchError struct {
	Method request.Method
	Path   string

	// Allowed lists the methods under which Path would match.
	// It is empty for [ErrNotFound].
	Allowed []request.Method

	Err error
}

// Error returns the error message.
func (e *MatchError) Error() string {
	return e.Err.Error() + ": " + e.Method.String() + " " + e.Path
}

// Unwrap returns the sentinel error.
func (e *MatchError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 405 when other methods match and 404 otherwise.
func (e *MatchError) HTTPStatus() int {
	if errors.Is(e.Err, ErrMethodNotAllowed) {
		return 405
	}
	return 404
}

// Code returns a machine-readable error code.
func (e *MatchError) Code() string {
	if errors.Is(e.Err, ErrMethodNotAllowed) {
		return "METHOD_NOT_ALLOWED"
	}
	return "NOT_FOUND"
}

// Headers returns the Allow header for a 405 answer.
func (e *MatchError) Headers() map[string]string {
	if len(e.Allowed) == 0 {
		return nil
	}
	names := make([]string, len(e.Allowed))
	for i, m := range e.Allowed {
		names[i] = m.String()
	}
	return map[string]string{"Allow": strings.Join(names, ", ")}
}
