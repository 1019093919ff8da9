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


package logging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// gate sits in front of the encoder. While held it queues records, and once
// closed it drops them. Handlers derived through With share one gateState.
type gate struct {
	next  slog.Handler
	state *gateState
}

type gateState struct {
	held    atomic.Bool
	closed  atomic.Bool
	mu      sync.Mutex
	pending []queued
}

type queued struct {
	ctx context.Context
	h   slog.Handler
	rec slog.Record
}

func (g *gate) Enabled(ctx context.Context, level slog.Level) bool {
	return !g.state.closed.Load() && g.next.Enabled(ctx, level)
}

func (g *gate) Handle(ctx context.Context, rec slog.Record) error {
	st := g.state
	if st.closed.Load() {
		return nil
	}
	if st.held.Load() {
		st.mu.Lock()
		if st.held.Load() {
			st.pending = append(st.pending, queued{ctx: ctx, h: g.next, rec: rec.Clone()})
			st.mu.Unlock()
			return nil
		}
		st.mu.Unlock()
	}
	return g.next.Handle(ctx, rec)
}

func (g *gate) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gate{next: g.next.WithAttrs(attrs), state: g.state}
}

func (g *gate) WithGroup(name string) slog.Handler {
	return &gate{next: g.next.WithGroup(name), state: g.state}
}

func (g *gate) flush() error {
	st := g.state
	st.mu.Lock()
	pending := st.pending
	st.pending = nil
	st.held.Store(false)
	st.mu.Unlock()

	var errs []error
	for _, q := range pending {
		if err := q.h.Handle(q.ctx, q.rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *gate) close() error {
	if g.state.closed.Load() {
		return nil
	}
	err := g.flush()
	g.state.closed.Store(true)
	return err
}

// Hold queues records in memory until [Logger.Release]. The command line
// holds startup logs so they print after the banner:
//
//	logger.Hold()
//	srv := server.MustNew(server.WithLogger(logger))
//	printBanner()
//	_ = logger.Release()
func (l *Logger) Hold() { l.gate.state.held.Store(true) }

// Release writes the queued records in order and stops holding.
func (l *Logger) Release() error { return l.gate.flush() }

// Holding reports whether records are being queued.
func (l *Logger) Holding() bool { return l.gate.state.held.Load() }
