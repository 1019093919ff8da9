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


//go:build !integration

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  *slog.HandlerOptions
		level slog.Level
		want  bool
	}{
		{name: "info by default", level: slog.LevelInfo, want: true},
		{name: "no debug by default", level: slog.LevelDebug, want: false},
		{name: "debug when asked", opts: &slog.HandlerOptions{Level: slog.LevelDebug}, level: slog.LevelDebug, want: true},
		{name: "warn floor", opts: &slog.HandlerOptions{Level: slog.LevelWarn}, level: slog.LevelInfo, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newLineHandler(&bytes.Buffer{}, tt.opts, false)
			assert.Equal(t, tt.want, h.Enabled(context.Background(), tt.level))
		})
	}
}

func TestLineHandler_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithFormat(FormatConsole), WithOutput(&buf), WithColor(false))

	logger.WithGroup("conn").With("id", 7).Info("request served",
		"route", "/dogs/42",
		"status", 200,
		"took", 1500*time.Microsecond,
		"note", "two words",
		"err", errors.New("none"),
		"token", "abc",
		slog.Group("peer", "addr", "10.0.0.1"),
	)

	line := buf.String()
	assert.NotContains(t, line, "\033[")
	assert.Regexp(t, `^\d\d:\d\d:\d\d\.\d{3} INFO  request served `, line)
	for _, want := range []string{
		" conn.id=7",
		" conn.route=/dogs/42",
		" conn.status=200",
		" conn.took=1.5ms",
		` conn.note="two words"`,
		" conn.err=none",
		" conn.token=" + redacted,
		" conn.peer.addr=10.0.0.1",
	} {
		assert.Contains(t, line, want)
	}
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Equal(t, 1, strings.Count(line, "\n"))
}

func TestLineHandler_ColorAndSource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithFormat(FormatConsole), WithOutput(&buf), WithColor(true), WithSource(true))

	logger.Error("failed", "attempt", 3)

	line := buf.String()
	assert.Contains(t, line, ansiRed)
	assert.Contains(t, line, ansiReset)
	assert.Regexp(t, `\(console_test\.go:\d+\)`, line)
}

func TestColorMode(t *testing.T) {
	t.Parallel()

	assert.True(t, colorAlways.enabled(&bytes.Buffer{}))
	assert.False(t, colorNever.enabled(os.Stdout))
	assert.False(t, colorAuto.enabled(&bytes.Buffer{}), "only files can be terminals")

	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, colorAuto.enabled(f))
}
