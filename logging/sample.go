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
	"log/slog"
	"sync"
	"time"
)

// sampler admits records below error level per [SamplingConfig]. The window
// restarts on the first record seen after Tick has elapsed.
type sampler struct {
	next  slog.Handler
	state *sampleState
}

type sampleState struct {
	cfg   SamplingConfig
	now   func() time.Time
	mu    sync.Mutex
	start time.Time
	seen  int
}

func newSampler(next slog.Handler, cfg SamplingConfig) *sampler {
	return &sampler{next: next, state: &sampleState{cfg: cfg, now: time.Now}}
}

func (s *sampleState) admit(level slog.Level) bool {
	if level >= slog.LevelError {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Tick > 0 {
		if now := s.now(); s.start.IsZero() || now.Sub(s.start) >= s.cfg.Tick {
			s.start = now
			s.seen = 0
		}
	}
	s.seen++
	if s.seen <= s.cfg.Initial {
		return true
	}
	return s.cfg.Thereafter > 0 && (s.seen-s.cfg.Initial)%s.cfg.Thereafter == 0
}

func (s *sampler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *sampler) Handle(ctx context.Context, rec slog.Record) error {
	if !s.state.admit(rec.Level) {
		return nil
	}
	return s.next.Handle(ctx, rec)
}

func (s *sampler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sampler{next: s.next.WithAttrs(attrs), state: s.state}
}

func (s *sampler) WithGroup(name string) slog.Handler {
	return &sampler{next: s.next.WithGroup(name), state: s.state}
}
