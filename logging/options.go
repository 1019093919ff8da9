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
	"io"
	"time"
)

// Option configures a [Logger].
type Option func(*settings)

// WithFormat selects the record encoding.
func WithFormat(f Format) Option {
	return func(s *settings) { s.format = f }
}

// WithOutput sets the destination of records.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// WithLevel sets the initial minimum level.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithService stamps every record with service and version attributes.
// Empty values are left out.
func WithService(name, version string) Option {
	return func(s *settings) {
		s.service = name
		s.version = version
	}
}

// WithSource adds the calling file and line to records.
func WithSource(on bool) Option {
	return func(s *settings) { s.source = on }
}

// WithColor forces console colors on or off instead of detecting a terminal.
func WithColor(on bool) Option {
	return func(s *settings) {
		s.color = colorNever
		if on {
			s.color = colorAlways
		}
	}
}

// WithSampling thins out records below error level. See [SamplingConfig].
func WithSampling(c SamplingConfig) Option {
	return func(s *settings) { s.sampling = &c }
}

// WithGlobalLogger installs the logger as the [log/slog] default.
func WithGlobalLogger() Option {
	return func(s *settings) { s.global = true }
}

// SamplingConfig keeps the first Initial records of each Tick window, then
// every Thereafter-th record. A zero Tick never resets the window.
type SamplingConfig struct {
	Initial    int
	Thereafter int
	Tick       time.Duration
}
