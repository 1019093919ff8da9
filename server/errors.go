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

package server

import (
	"errors"

	"rivaas.dev/rawhttp/router"
)

var (
	// ErrDuplicateMount indicates a prefix that already has a router.
	ErrDuplicateMount = errors.New("mount prefix already registered")

	// ErrInvalidPrefix indicates a mount prefix that does not start with '/'.
	ErrInvalidPrefix = errors.New("invalid mount prefix")

	// ErrNilRouter indicates a nil router passed to Register.
	ErrNilRouter = errors.New("router is nil")

	// ErrServerRunning indicates a second concurrent call to Serve.
	ErrServerRunning = errors.New("server is already serving")
)

// MountError reports a path outside every mount prefix.
// It unwraps to [router.ErrNotFound] and answers 404.
type MountError struct {
	Path string
}

// Error returns the error message.
func (e *MountError) Error() string {
	return "no mount for path " + e.Path
}

// Unwrap returns [router.ErrNotFound].
func (e *MountError) Unwrap() error {
	return router.ErrNotFound
}

// HTTPStatus returns 404.
func (e *MountError) HTTPStatus() int {
	return 404
}

// Code returns a machine-readable error code.
func (e *MountError) Code() string {
	return "NOT_FOUND"
}
