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

// Package workerpool runs connection handlers on a fixed set of goroutines
// fed by a bounded queue.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolClosed indicates a submission after Close.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrNotStarted indicates a submission before Start.
	ErrNotStarted = errors.New("worker pool not started")

	// ErrInvalidSize indicates a non-positive worker count or negative queue size.
	ErrInvalidSize = errors.New("invalid worker pool size")
)

// Handler serves one connection to completion.
type Handler func(conn net.Conn)

// PanicHandler is called with the recovered value and stack when a handler panics.
type PanicHandler func(conn net.Conn, recovered any, stack []byte)

// Option configures a [Pool].
type Option func(*Pool)

// WithPanicHandler sets the function called after a handler panic.
func WithPanicHandler(fn PanicHandler) Option {
	return func(p *Pool) {
		p.onPanic = fn
	}
}

// Pool is a fixed set of workers sharing one connection queue.
//
// Submit blocks while the queue is full. A handler that panics is recovered,
// its connection closed, and the worker goes back to taking connections.
type Pool struct {
	size    int
	queue   chan net.Conn
	handle  Handler
	onPanic PanicHandler

	busy    atomic.Int64
	group   errgroup.Group
	started atomic.Bool

	// mu orders Submit against Close so nothing is sent on a closed queue.
	mu        sync.RWMutex
	closed    bool
	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a pool of size workers with room for queueSize waiting connections.
func New(size, queueSize int, handle Handler, opts ...Option) (*Pool, error) {
	if size <= 0 || queueSize < 0 {
		return nil, fmt.Errorf("%w: workers=%d queue=%d", ErrInvalidSize, size, queueSize)
	}
	if handle == nil {
		return nil, errors.New("worker pool handler is nil")
	}
	p := &Pool{
		size:    size,
		queue:   make(chan net.Conn, queueSize),
		handle:  handle,
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for range p.size {
		p.group.Go(func() error {
			for conn := range p.queue {
				p.serve(conn)
			}
			return nil
		})
	}
}

// Submit queues conn for a worker. It blocks while the queue is full until
// ctx is done or the pool is closed. On error the caller still owns conn.
func (p *Pool) Submit(ctx context.Context, conn net.Conn) error {
	if !p.started.Load() {
		return ErrNotStarted
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- conn:
		return nil
	case <-p.closing:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting connections, lets workers finish the queued ones and
// waits for them.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.closing)

		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	return p.group.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Busy returns the number of workers currently serving a connection.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Queued returns the number of connections waiting for a worker.
func (p *Pool) Queued() int {
	return len(p.queue)
}

func (p *Pool) serve(conn net.Conn) {
	p.busy.Add(1)
	defer p.busy.Add(-1)
	defer func() {
		if rec := recover(); rec != nil {
			_ = conn.Close()
			if p.onPanic != nil {
				p.onPanic(conn, rec, debug.Stack())
			}
		}
	}()
	p.handle(conn)
}
