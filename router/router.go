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
	"sync"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/session"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// WithName names the router in diagnostics and route listings.
func WithName(name string) Option {
	return func(r *Router) {
		r.name = name
	}
}

// WithDiagnostics sets a handler for registration diagnostics.
func WithDiagnostics(h DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = h
	}
}

// methodTable holds the templates of one method in registration order.
type methodTable struct {
	templates []*template
	index     map[string]int // raw template -> position in templates
}

// Router maps (method, path template) pairs to sessions for one mount point.
//
// Registration takes an exclusive lock and matching a shared one, so routes
// may be added while requests are being served. Each (method, template) pair
// holds at most one session; registering it again replaces the session and
// keeps the original registration position.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/dogs/:id", showDog).
//	    POST("/dogs", createDog)
type Router struct {
	name        string
	diagnostics DiagnosticHandler

	mu     sync.RWMutex
	tables map[request.Method]*methodTable
	stages []session.Stage // prepended to every route's before phase
}

// New creates a new Router.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		name:   "default",
		tables: make(map[request.Method]*methodTable),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}
	return r, nil
}

// MustNew creates a new Router and panics if configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	if r.name == "" {
		return ErrEmptyName
	}
	return nil
}

// Name returns the router name.
func (r *Router) Name() string {
	return r.name
}

// Use adds stages that run at the head of the before phase of every route,
// including routes registered earlier.
func (r *Router) Use(stages ...session.Stage) *Router {
	for _, st := range stages {
		if st == nil {
			panic(ErrNilSession)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stages = append(r.stages, stages...)
	for _, tbl := range r.tables {
		for _, t := range tbl.templates {
			t.composed = r.compose(t.base)
		}
	}
	return r
}

// compose applies router stages to a registered session. Callers hold mu.
func (r *Router) compose(base *session.Session) *session.Session {
	if len(r.stages) == 0 {
		return base
	}
	return base.Prepend(r.stages...)
}
