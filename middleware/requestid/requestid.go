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

// Package requestid tags each request with an identifier.
//
// The identifier is copied onto the request headers, so later stages and the
// access log see it, and onto the response so clients can quote it.
package requestid

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

// DefaultHeader carries the identifier.
const DefaultHeader = "X-Request-ID"

// maxClientIDLength bounds identifiers accepted from clients.
const maxClientIDLength = 128

// Option configures the stage.
type Option func(*config)

type config struct {
	header        string
	generator     func() string
	allowClientID bool
}

// WithHeader changes the header name.
func WithHeader(name string) Option {
	return func(c *config) {
		c.header = name
	}
}

// WithGenerator replaces the UUIDv7 generator.
func WithGenerator(fn func() string) Option {
	return func(c *config) {
		c.generator = fn
	}
}

// WithULID generates 26-character ULIDs instead of UUIDv7 strings.
func WithULID() Option {
	return func(c *config) {
		c.generator = generateULID
	}
}

// WithAllowClientID controls whether an identifier sent by the client is
// kept. It is on by default.
func WithAllowClientID(allow bool) Option {
	return func(c *config) {
		c.allowClientID = allow
	}
}

func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

func generateULID() string {
	return ulid.Make().String()
}

// New returns the stage. It always continues.
func New(opts ...Option) session.Stage {
	cfg := &config{
		header:        DefaultHeader,
		generator:     generateUUIDv7,
		allowClientID: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(req *request.Request, res *response.Response) session.Outcome {
		var id string
		if cfg.allowClientID {
			id = req.Headers.Get(cfg.header)
			if !validID(id) {
				id = ""
			}
		}
		if id == "" {
			id = cfg.generator()
		}

		if req.Headers == nil {
			req.Headers = request.Header{}
		}
		req.Headers.Set(cfg.header, id)
		res.Header(cfg.header, id)
		return session.Continue
	}
}

// Get returns the identifier set by a stage using [DefaultHeader].
func Get(req *request.Request) string {
	return req.Headers.Get(DefaultHeader)
}

// validID accepts short visible ASCII identifiers.
func validID(id string) bool {
	if id == "" || len(id) > maxClientIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
