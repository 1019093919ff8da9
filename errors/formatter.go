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

package errors

import (
	"errors"
	"fmt"
	"maps"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// Formatter turns an error into the parts of an HTTP error response.
//
// req is the decoded request when one exists. It is nil for failures that
// happen before a request could be decoded, so implementations must not
// assume it is set.
type Formatter interface {
	Format(req *request.Request, err error) Response
}

// FormatterFunc adapts an ordinary function to a [Formatter].
type FormatterFunc func(req *request.Request, err error) Response

// Format calls f(req, err).
func (f FormatterFunc) Format(req *request.Request, err error) Response {
	return f(req, err)
}

// Response represents a formatted error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is written as-is when it is a string or []byte and encoded as
	// JSON otherwise.
	Body any

	// Headers contains additional headers to set (optional).
	Headers map[string]string
}

// ErrorType allows errors to declare their own HTTP status code.
//
// Example:
//
//	type QuotaError struct{}
//
//	func (QuotaError) Error() string   { return "quota exceeded" }
//	func (QuotaError) HTTPStatus() int { return 503 }
type ErrorType interface {
	error
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrorDetails allows errors to provide additional structured information.
type ErrorDetails interface {
	error
	// Details returns structured information about the error.
	Details() any
}

// ErrorCode allows errors to provide a machine-readable code.
type ErrorCode interface {
	error
	// Code returns a machine-readable error code.
	Code() string
}

// ErrorHeaders allows errors to contribute response headers, such as the
// Allow header of a 405.
type ErrorHeaders interface {
	error
	// Headers returns the headers to add to the error response.
	Headers() map[string]string
}

// NewRFC9457 creates a new RFC9457 formatter.
// The baseURL parameter is prepended to problem type slugs to create full URIs.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{
		BaseURL: baseURL,
	}
}

// ErrUnknownFormat is returned by [Named] for an unrecognized name.
var ErrUnknownFormat = errors.New("unknown error format")

// Named returns the formatter configured as name: plain, simple, rfc9457 or
// jsonapi. An empty name means plain.
func Named(name string) (Formatter, error) {
	switch name {
	case "", "plain":
		return NewPlain(), nil
	case "simple":
		return NewSimple(), nil
	case "rfc9457":
		return NewRFC9457(""), nil
	case "jsonapi":
		return NewJSONAPI(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// NewJSONAPI creates a new JSONAPI formatter.
func NewJSONAPI() *JSONAPI {
	return &JSONAPI{}
}

// NewSimple creates a new Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// NewPlain creates a new Plain formatter.
func NewPlain() *Plain {
	return &Plain{}
}

// WithStatus wraps an error with an explicit HTTP status code.
// The wrapped error implements the ErrorType interface.
//
// Example:
//
//	return errors.WithStatus(err, response.StatusNotFound)
//	return errors.WithStatus(nil, response.StatusTeapot) // nil allowed
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

// statusError wraps an error with an explicit status code.
type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return statusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// resolveStatus picks the status for err: the resolver if set, then an
// ErrorType in the chain, then 500. A status the response writer does not
// know is reported as 500.
func resolveStatus(err error, resolver func(error) int) int {
	status := response.StatusInternalServerError
	var typed ErrorType
	switch {
	case resolver != nil:
		status = resolver(err)
	case errors.As(err, &typed):
		status = typed.HTTPStatus()
	}
	if _, ok := response.StatusText(status); !ok {
		return response.StatusInternalServerError
	}
	return status
}

// collectHeaders returns the headers contributed by err, or nil.
func collectHeaders(err error) map[string]string {
	var h ErrorHeaders
	if errors.As(err, &h) {
		if headers := h.Headers(); len(headers) > 0 {
			return maps.Clone(headers)
		}
	}
	return nil
}

func statusText(status int) string {
	if text, ok := response.StatusText(status); ok {
		return text
	}
	return "Unknown Status"
}

// facts is what a formatter may reveal about an error.
type facts struct {
	status  int
	title   string
	detail  string
	code    string
	details any
	headers map[string]string
}

// inspect resolves the status of err and collects its optional code,
// details and headers. A 500 carries the reason phrase as detail so the
// text of an unexpected error stays out of the body.
func inspect(err error, resolver func(error) int) facts {
	f := facts{status: resolveStatus(err, resolver), headers: collectHeaders(err)}
	f.title = statusText(f.status)
	switch {
	case f.status == response.StatusInternalServerError:
		f.detail = f.title
	case err != nil:
		f.detail = err.Error()
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		f.code = coded.Code()
	}
	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		f.details = detailed.Details()
	}
	return f
}
