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

// Package bodylimit rejects requests whose body is larger than a per-route
// limit with 413 Request Entity Too Large.
//
// The decoder already enforces a server-wide ceiling while reading; this
// stage tightens it for individual routers or routes:
//
//	r.Use(bodylimit.New(bodylimit.WithLimit(64 << 10)))
package bodylimit

import (
	"fmt"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

// DefaultLimit is 2MiB.
const DefaultLimit int64 = 2 << 20

// Option configures the stage.
type Option func(*config)

type config struct {
	limit     int64
	onExceed  func(req *request.Request, res *response.Response, limit int64)
	skipPaths map[string]bool
}

// WithLimit sets the largest accepted body in bytes.
func WithLimit(limit int64) Option {
	return func(c *config) {
		c.limit = limit
	}
}

// WithErrorHandler replaces the default JSON rejection.
func WithErrorHandler(fn func(req *request.Request, res *response.Response, limit int64)) Option {
	return func(c *config) {
		c.onExceed = fn
	}
}

// WithSkipPaths exempts the given full paths.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

func defaultErrorHandler(_ *request.Request, res *response.Response, limit int64) {
	_ = res.Status(response.StatusRequestEntityTooLarge).SendJSON(map[string]any{
		"error":    "request entity too large",
		"max_size": formatSize(limit),
	})
}

// New returns the stage. It panics if the limit is negative.
func New(opts ...Option) session.Stage {
	cfg := &config{
		limit:     DefaultLimit,
		onExceed:  defaultErrorHandler,
		skipPaths: map[string]bool{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.limit < 0 {
		panic(fmt.Sprintf("bodylimit: negative limit %d", cfg.limit))
	}

	return func(req *request.Request, res *response.Response) session.Outcome {
		if cfg.skipPaths[req.Route] {
			return session.Continue
		}
		size := int64(len(req.Body))
		if declared, ok := req.ContentLength(); ok && declared > size {
			size = declared
		}
		if size <= cfg.limit {
			return session.Continue
		}
		cfg.onExceed(req, res, cfg.limit)
		return session.Terminate
	}
}

func formatSize(n int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)
	switch {
	case n >= gib:
		return fmt.Sprintf("%.1fGB", float64(n)/gib)
	case n >= mib:
		return fmt.Sprintf("%.1fMB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.1fKB", float64(n)/kib)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
