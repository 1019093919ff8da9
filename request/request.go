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
	"context"
	"strconv"
)

// Request is a decoded HTTP/1.x request.
//
// A Request is owned by the worker serving its connection. After decoding only
// Params, set by the server once a route matches, and Headers, which stages may
// annotate, change.
type Request struct {
	// Method is the request method. It is never [ALL].
	Method Method

	// Route is the path component with the query string removed.
	Route string

	// RawQuery is everything after the first '?' of the request target.
	RawQuery string

	// Version is the protocol token of the start line, or "" if omitted.
	Version string

	// Headers holds the parsed header lines.
	Headers Header

	// Query is nil when the request target had no '?'.
	Query Query

	// Params holds the values bound by capture segments. It is nil until routed.
	Params map[string]string

	// RawFull is the complete decoded message.
	RawFull string

	// RawHeaders is the message up to the first blank line.
	RawHeaders string

	// Body is the message after the first blank line.
	Body string

	// RemoteAddr is the peer address of the connection, if known.
	RemoteAddr string

	hasBody bool
	ctx     context.Context
}

// HasBody reports whether a blank line separated headers from a body.
// A request without the separator has no body, while one with an empty
// body after the separator does.
func (r *Request) HasBody() bool {
	return r.hasBody
}

// Param returns the captured value for a path parameter.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// SetParams records the parameters bound by the matched route.
func (r *Request) SetParams(params map[string]string) {
	r.Params = params
}

// ContentLength returns the declared Content-Length, if present and valid.
func (r *Request) ContentLength() (int64, bool) {
	v, ok := r.Headers[contentLengthKey]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Context returns the request context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("nil context")
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}
