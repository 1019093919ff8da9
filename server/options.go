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
	"time"

	"rivaas.dev/rawhttp/config"
	httperrors "rivaas.dev/rawhttp/errors"
	"rivaas.dev/rawhttp/logging"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/tracing"
)

const (
	// DefaultAddress is the interface Listen binds when none is configured.
	DefaultAddress = "127.0.0.1"

	// DefaultWorkers is the number of connection workers.
	DefaultWorkers = 8

	// DefaultQueueSize is the number of accepted connections that may wait
	// for a worker before accepting blocks.
	DefaultQueueSize = 64

	// DefaultReadTimeout bounds reading one request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds serving one connection.
	DefaultWriteTimeout = 30 * time.Second
)

// Option defines functional options for server configuration.
type Option func(*Server)

// WithAddress sets the host Listen binds to.
func WithAddress(address string) Option {
	return func(s *Server) {
		s.address = address
	}
}

// WithWorkers sets the number of connection workers.
func WithWorkers(n int) Option {
	return func(s *Server) {
		s.workers = n
	}
}

// WithQueueSize sets how many accepted connections may wait for a worker.
// Once the queue is full the accept loop blocks.
func WithQueueSize(n int) Option {
	return func(s *Server) {
		s.queueSize = n
	}
}

// WithReadTimeout bounds the time to read one request. Zero disables it.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = d
	}
}

// WithWriteTimeout bounds the time from accepting a connection to finishing
// its response. Zero disables it.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = d
	}
}

// WithMaxHeaderBytes limits the request line and headers. Larger requests
// are answered with 431.
func WithMaxHeaderBytes(n int) Option {
	return func(s *Server) {
		s.maxHeaderBytes = n
	}
}

// WithMaxBodyBytes limits the declared request body. Larger requests are
// answered with 413.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

// WithMaxConnections limits simultaneously open connections, counting
// queued ones. Zero means unlimited.
func WithMaxConnections(n int) Option {
	return func(s *Server) {
		s.maxConnections = n
	}
}

// WithLogger sets the logger for access logs and server events.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithErrorFormatter sets how pipeline errors such as 404 and 400 are
// rendered. The default is [httperrors.Plain].
func WithErrorFormatter(f httperrors.Formatter) Option {
	return func(s *Server) {
		s.formatter = f
	}
}

// WithMetrics records request and pool metrics with rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Server) {
		s.metrics = rec
	}
}

// WithTracer records a span per request with tracer.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithConfig applies the listener, pool, limit and error format settings of
// cfg. Zero values and unknown error formats keep the defaults.
func WithConfig(cfg config.Server) Option {
	return func(s *Server) {
		if cfg.Address != "" {
			s.address = cfg.Address
		}
		if cfg.Workers > 0 {
			s.workers = cfg.Workers
		}
		if cfg.QueueSize > 0 {
			s.queueSize = cfg.QueueSize
		}
		if cfg.ReadTimeout > 0 {
			s.readTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout > 0 {
			s.writeTimeout = cfg.WriteTimeout
		}
		if cfg.MaxHeaderBytes > 0 {
			s.maxHeaderBytes = cfg.MaxHeaderBytes
		}
		if cfg.MaxBodyBytes > 0 {
			s.maxBodyBytes = cfg.MaxBodyBytes
		}
		if cfg.MaxConnections > 0 {
			s.maxConnections = cfg.MaxConnections
		}
		if f, err := httperrors.Named(cfg.Errors.Format); err == nil && cfg.Errors.Format != "" {
			s.formatter = f
		}
	}
}

func defaultServer() *Server {
	return &Server{
		address:        DefaultAddress,
		workers:        DefaultWorkers,
		queueSize:      DefaultQueueSize,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		maxHeaderBytes: request.DefaultMaxHeaderBytes,
		maxBodyBytes:   request.DefaultMaxBodyBytes,
		logger:         logging.Discard(),
		formatter:      httperrors.NewPlain(),
		mounts:         NewMountTable(),
	}
}
