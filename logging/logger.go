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
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// Format names the encoding of log records.
type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatConsole Format = "console"
)

// Level is a log severity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	// ErrInvalidFormat is returned for an unknown [Format].
	ErrInvalidFormat = errors.New("logging: invalid format")
	// ErrInvalidLevel is returned by [ParseLevel] for an unknown level name.
	ErrInvalidLevel = errors.New("logging: invalid level")
	// ErrInvalidSampling is returned for negative sampling settings.
	ErrInvalidSampling = errors.New("logging: invalid sampling")
)

type settings struct {
	format   Format
	out      io.Writer
	level    Level
	service  string
	version  string
	source   bool
	color    colorMode
	sampling *SamplingConfig
	global   bool
}

// Logger writes structured records through log/slog. The level can change
// at runtime and output can be held back with [Logger.Hold].
type Logger struct {
	level *slog.LevelVar
	gate  *gate
	slog  *slog.Logger
}

// New builds a Logger. The default writes JSON at info level to stderr.
func New(opts ...Option) (*Logger, error) {
	s := settings{format: FormatJSON, out: os.Stderr, level: LevelInfo}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(s.level)

	var h slog.Handler = l.encoder(s)
	if s.service != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", s.service)})
	}
	if s.version != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("version", s.version)})
	}
	l.gate = &gate{state: &gateState{}}
	l.gate.next = h
	h = l.gate
	if s.sampling != nil {
		h = newSampler(h, *s.sampling)
	}
	l.slog = slog.New(h)

	if s.global {
		slog.SetDefault(l.slog)
	}
	return l, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return l
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return MustNew(WithOutput(io.Discard), WithLevel(LevelError+1))
}

func (s *settings) validate() error {
	switch s.format {
	case FormatJSON, FormatText, FormatConsole:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, s.format)
	}
	if s.out == nil {
		return errors.New("logging: output writer is nil")
	}
	if c := s.sampling; c != nil && (c.Initial < 0 || c.Thereafter < 0 || c.Tick < 0) {
		return fmt.Errorf("%w: %+v", ErrInvalidSampling, *c)
	}
	return nil
}

func (l *Logger) encoder(s settings) slog.Handler {
	ho := &slog.HandlerOptions{Level: l.level, AddSource: s.source, ReplaceAttr: redact}
	switch s.format {
	case FormatConsole:
		return newLineHandler(s.out, ho, s.color.enabled(s.out))
	case FormatText:
		return slog.NewTextHandler(s.out, ho)
	default:
		return slog.NewJSONHandler(s.out, ho)
	}
}

// Logger returns the underlying [slog.Logger] for libraries that take one.
func (l *Logger) Logger() *slog.Logger { return l.slog }

// With returns a [slog.Logger] carrying args on every record.
func (l *Logger) With(args ...any) *slog.Logger { return l.slog.With(args...) }

// WithGroup returns a [slog.Logger] that nests attributes under name.
func (l *Logger) WithGroup(name string) *slog.Logger { return l.slog.WithGroup(name) }

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// log records the caller of the exported method as the source.
func (l *Logger) log(level Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	rec := slog.NewRecord(time.Now(), level, msg, pcs[0])
	rec.Add(args...)
	_ = l.slog.Handler().Handle(ctx, rec)
}

// SetLevel changes the minimum level of every logger derived from l.
func (l *Logger) SetLevel(level Level) { l.level.Set(level) }

// Level reports the current minimum level.
func (l *Logger) Level() Level { return l.level.Level() }

// Shutdown flushes held records and stops output. It is safe to call twice.
func (l *Logger) Shutdown(context.Context) error {
	return l.gate.close()
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// An empty name means info.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
}

// ParseFormat maps a configuration value to a [Format]. An empty value means
// JSON.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText, FormatConsole:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"api_key":       {},
	"authorization": {},
}

const redacted = "***REDACTED***"

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}
