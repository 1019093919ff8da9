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

package request

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates that the start line or a header line could not be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedMethod indicates that the request method is outside the supported set.
	// It wraps [ErrMalformedInput].
	ErrUnsupportedMethod = fmt.Errorf("%w: unsupported method", ErrMalformedInput)

	// ErrHeaderTooLarge indicates that the header block exceeded the decoder limit.
	ErrHeaderTooLarge = errors.New("request header too large")

	// ErrBodyTooLarge indicates that the declared body exceeded the decoder limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

// Error is a decoding failure carrying the HTTP status the pipeline answers with.
// It satisfies the status and code interfaces of the errors package.
type Error struct {
	Err    error
	Status int
	Detail string
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code used when answering the client.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Code returns a machine-readable error code.
func (e *Error) Code() string {
	switch {
	case errors.Is(e.Err, ErrUnsupportedMethod):
		return "UNSUPPORTED_METHOD"
	case errors.Is(e.Err, ErrHeaderTooLarge):
		return "HEADER_TOO_LARGE"
	case errors.Is(e.Err, ErrBodyTooLarge):
		return "BODY_TOO_LARGE"
	default:
		return "MALFORMED_INPUT"
	}
}

func malformed(format string, args ...any) *Error {
	return &Error{Err: ErrMalformedInput, Status: 400, Detail: fmt.Sprintf(format, args...)}
}
