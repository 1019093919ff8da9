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
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	httperrors "rivaas.dev/rawhttp/errors"
	"rivaas.dev/rawhttp/internal/workerpool"
	"rivaas.dev/rawhttp/logging"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/router"
	"rivaas.dev/rawhttp/tracing"
)

const maxAcceptDelay = time.Second

// Server accepts TCP connections and serves one request on each through the
// router mounted under the longest matching path prefix.
//
// Connections are handed to a fixed set of workers through a bounded queue.
// A worker decodes the request, resolves the mount, matches the route, runs
// its session and closes the connection. Decoding and routing failures are
// answered through the error formatter.
//
// Example:
//
//	api := router.MustNew()
//	api.GET("/dogs/:id", showDog)
//
//	srv := server.MustNew(server.WithWorkers(4))
//	if err := srv.Register("/api", api); err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(srv.Listen(ctx, 8080))
type Server struct {
	address        string
	workers        int
	queueSize      int
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxHeaderBytes int
	maxBodyBytes   int64
	maxConnections int

	logger    *logging.Logger
	formatter httperrors.Formatter
	metrics   *metrics.Recorder
	tracer    *tracing.Tracer

	mounts  *MountTable
	decoder *request.Decoder

	serving atomic.Bool
	addr    atomic.Pointer[net.Addr]
}

// New creates a Server.
func New(opts ...Option) (*Server, error) {
	s := defaultServer()
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("server configuration validation failed: %w", err)
	}
	s.decoder = request.NewDecoder(
		request.WithMaxHeaderBytes(s.maxHeaderBytes),
		request.WithMaxBodyBytes(s.maxBodyBytes),
	)
	return s, nil
}

// MustNew creates a Server and panics if configuration is invalid.
func MustNew(opts ...Option) *Server {
	s, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("server.MustNew: %v", err))
	}
	return s
}

func (s *Server) validate() error {
	var errs []error
	if s.address == "" {
		errs = append(errs, errors.New("address cannot be empty"))
	}
	if s.workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", s.workers))
	}
	if s.queueSize < 0 {
		errs = append(errs, fmt.Errorf("queue size cannot be negative, got %d", s.queueSize))
	}
	if s.readTimeout < 0 || s.writeTimeout < 0 {
		errs = append(errs, errors.New("timeouts cannot be negative"))
	}
	if s.maxHeaderBytes <= 0 || s.maxBodyBytes <= 0 {
		errs = append(errs, errors.New("request size limits must be positive"))
	}
	if s.maxConnections < 0 {
		errs = append(errs, fmt.Errorf("max connections cannot be negative, got %d", s.maxConnections))
	}
	if s.logger == nil {
		errs = append(errs, errors.New("logger cannot be nil"))
	}
	if s.formatter == nil {
		errs = append(errs, errors.New("error formatter cannot be nil"))
	}
	return errors.Join(errs...)
}

// Register mounts r under prefix. "/" and "" name the root mount.
func (s *Server) Register(prefix string, r *router.Router) error {
	if err := s.mounts.Register(prefix, r); err != nil {
		return err
	}
	s.logger.Debug("router mounted", "prefix", prefix, "router", r.Name())
	return nil
}

// Resolve returns the router owning path and the path it should match.
// Without a matching mount the error wraps [router.ErrNotFound].
func (s *Server) Resolve(path string) (*router.Router, string, error) {
	m, rest, err := s.mounts.Resolve(path)
	if err != nil {
		return nil, "", err
	}
	return m.Router, rest, nil
}

// Mounts returns the registered mounts sorted by prefix.
func (s *Server) Mounts() []Mount {
	return s.mounts.Mounts()
}

// Addr returns the address of the active listener, or nil when the server
// is not serving.
func (s *Server) Addr() net.Addr {
	if p := s.addr.Load(); p != nil {
		return *p
	}
	return nil
}

// Listen binds the configured address on port and serves until ctx is done.
// Port 0 picks a free port; see [Server.Addr].
func (s *Server) Listen(ctx context.Context, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.address, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// waits for queued and in-flight connections to finish. It returns nil after
// a cancellation and the accept error otherwise.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrServerRunning
	}
	defer s.serving.Store(false)

	if s.maxConnections > 0 {
		ln = netutil.LimitListener(ln, s.maxConnections)
	}

	pool, err := workerpool.New(s.workers, s.queueSize, s.ServeConn,
		workerpool.WithPanicHandler(s.recovered))
	if err != nil {
		_ = ln.Close()
		return err
	}
	pool.Start()

	if s.metrics != nil {
		if err := s.metrics.ObservePool(pool); err != nil {
			s.logger.LogError(err, "pool metrics unavailable")
		}
	}

	addr := ln.Addr()
	s.addr.Store(&addr)
	defer s.addr.Store(nil)

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.Info("server listening",
		"address", addr.String(),
		"workers", s.workers,
		"queue_size", s.queueSize,
		"mounts", s.mounts.Len(),
	)

	acceptErr := s.acceptLoop(ctx, ln, pool)

	_ = ln.Close()
	closeErr := pool.Close()
	s.logger.Info("server stopped", "address", addr.String())
	return errors.Join(acceptErr, closeErr)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, pool *workerpool.Pool) error {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				delay = min(max(2*delay, 5*time.Millisecond), maxAcceptDelay)
				s.logger.Warn("accept failed; retrying", "error", err, "delay", delay)
				time.Sleep(delay)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		delay = 0

		if s.metrics != nil {
			s.metrics.RecordConnection(ctx)
		}
		if err := pool.Submit(ctx, conn); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("dispatch connection: %w", err)
		}
	}
}

// recovered reports a panic that escaped a connection's pipeline.
func (s *Server) recovered(conn net.Conn, rec any, stack []byte) {
	s.logger.LogPanic(rec, stack, "remote", remoteAddr(conn))
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
