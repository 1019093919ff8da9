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
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Capture records the JSON output of a Logger for assertions in tests.
//
//	c := logging.NewCapture(t)
//	srv := server.MustNew(server.WithLogger(c.Logger))
//	...
//	c.Expect(t, "WARN", "request served", map[string]any{"status": 404})
type Capture struct {
	Logger *Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCapture builds a debug-level JSON logger writing into the capture.
// opts are applied after those defaults.
func NewCapture(t testing.TB, opts ...Option) *Capture {
	t.Helper()
	c := &Capture{}
	all := append([]Option{WithFormat(FormatJSON), WithLevel(LevelDebug), WithOutput(captureWriter{c})}, opts...)
	l, err := New(all...)
	require.NoError(t, err)
	c.Logger = l
	return c
}

type captureWriter struct{ c *Capture }

func (w captureWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	return w.c.buf.Write(p)
}

// Output returns everything written so far.
func (c *Capture) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Clear forgets the records written so far.
func (c *Capture) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

// Entries decodes every record. Numbers decode as float64.
func (c *Capture) Entries(t testing.TB) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewBufferString(c.Output()))
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), "record %q", sc.Text())
		out = append(out, entry)
	}
	require.NoError(t, sc.Err())
	return out
}

func (c *Capture) entries() []map[string]any {
	var out []map[string]any
	for _, line := range bytes.Split([]byte(c.Output()), []byte("\n")) {
		var entry map[string]any
		if json.Unmarshal(line, &entry) == nil {
			out = append(out, entry)
		}
	}
	return out
}

// Has reports whether a record with message msg was written.
func (c *Capture) Has(msg string) bool {
	for _, e := range c.entries() {
		if e[slog.MessageKey] == msg {
			return true
		}
	}
	return false
}

// Count returns the number of records at level ("DEBUG", "INFO", ...).
func (c *Capture) Count(level string) int {
	n := 0
	for _, e := range c.entries() {
		if e[slog.LevelKey] == level {
			n++
		}
	}
	return n
}

// Expect asserts that some record has level, msg and every attribute in
// attrs. Integer attributes compare by value.
func (c *Capture) Expect(t testing.TB, level, msg string, attrs map[string]any) {
	t.Helper()
	for _, e := range c.entries() {
		if e[slog.LevelKey] != level || e[slog.MessageKey] != msg {
			continue
		}
		for k, want := range attrs {
			assert.Equal(t, normalize(want), e[k], "attribute %q of %q", k, msg)
		}
		return
	}
	assert.Fail(t, "record not found", "level=%s msg=%q in:\n%s", level, msg, c.Output())
}

// normalize converts integers to the float64 that encoding/json produces.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return v
}
