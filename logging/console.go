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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

type colorMode uint8

const (
	colorAuto colorMode = iota
	colorAlways
	colorNever
)

// enabled resolves auto mode: only terminals get color, and NO_COLOR wins.
func (m colorMode) enabled(w io.Writer) bool {
	if m != colorAuto {
		return m == colorAlways
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// lineHandler renders one human-readable line per record:
//
//	15:04:05.000 INFO  request served method=GET route=/dogs/42 status=200
//
// Attributes added through WithAttrs are rendered once and reused.
type lineHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	opts   slog.HandlerOptions
	color  bool
	fixed  []byte
	groups []string
}

func newLineHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *lineHandler {
	h := &lineHandler{w: w, mu: new(sync.Mutex), color: color}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

func (h *lineHandler) Handle(_ context.Context, rec slog.Record) error {
	var buf bytes.Buffer
	h.colored(&buf, ansiDim, rec.Time.Format("15:04:05.000"))
	buf.WriteByte(' ')
	h.colored(&buf, levelColor(rec.Level), fmt.Sprintf("%-5s", rec.Level))
	buf.WriteByte(' ')
	buf.WriteString(rec.Message)
	buf.Write(h.fixed)
	rec.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.groups, a)
		return true
	})
	if h.opts.AddSource && rec.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{rec.PC}).Next()
		if frame.File != "" {
			buf.WriteByte(' ')
			h.colored(&buf, ansiDim, "("+filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line)+")")
		}
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	buf := bytes.NewBuffer(append([]byte(nil), h.fixed...))
	for _, a := range attrs {
		h.writeAttr(buf, h.groups, a)
	}
	next.fixed = buf.Bytes()
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (h *lineHandler) writeAttr(buf *bytes.Buffer, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			groups = append(append([]string(nil), groups...), a.Key)
		}
		for _, member := range a.Value.Group() {
			h.writeAttr(buf, groups, member)
		}
		return
	}
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}
	if a.Key == "" {
		return
	}

	buf.WriteByte(' ')
	for _, g := range groups {
		buf.WriteString(g)
		buf.WriteByte('.')
	}
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(renderValue(a.Value))
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		s = fmt.Sprint(v.Any())
	}
	for _, r := range s {
		if r <= ' ' || r == '"' || r == '=' {
			return strconv.Quote(s)
		}
	}
	return s
}

func (h *lineHandler) colored(buf *bytes.Buffer, code, s string) {
	if h.color {
		buf.WriteString(code)
		buf.WriteString(s)
		buf.WriteString(ansiReset)
		return
	}
	buf.WriteString(s)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiGreen
	}
	return ansiCyan
}
