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

package bodylimit

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

func post(t *testing.T, path, body string) *request.Request {
	t.Helper()
	raw := "POST " + path + " HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	req, err := request.Parse([]byte(raw))
	require.NoError(t, err)
	return req
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stage session.Stage
		path  string
		body  string
		want  session.Outcome
	}{
		{"under", New(WithLimit(8)), "/", "1234567", session.Continue},
		{"at limit", New(WithLimit(8)), "/", "12345678", session.Continue},
		{"over", New(WithLimit(8)), "/", "123456789", session.Terminate},
		{"empty with zero limit", New(WithLimit(0)), "/", "", session.Continue},
		{"skipped", New(WithLimit(1), WithSkipPaths("/upload")), "/upload", "large", session.Continue},
		{"default", New(), "/", strings.Repeat("x", 1024), session.Continue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			got := tt.stage(post(t, tt.path, tt.body), response.New(&out))
			assert.Equal(t, tt.want, got)
			if got == session.Terminate {
				assert.Contains(t, out.String(), "HTTP/1.1 413 Request Entity Too Large\r\n")
				assert.Contains(t, out.String(), `"max_size":"8B"`)
			} else {
				assert.Zero(t, out.Len())
			}
		})
	}
}

func TestBodyLimit_DeclaredLength(t *testing.T) {
	t.Parallel()

	// The declared length counts even when the decoded body is shorter.
	req, err := request.Parse([]byte("POST / HTTP/1.1\r\nContent-Length: 4096\r\n\r\nshort"))
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, session.Terminate, New(WithLimit(1024))(req, response.New(&out)))
	assert.Contains(t, out.String(), `"max_size":"1.0KB"`)
}

func TestBodyLimit_CustomHandler(t *testing.T) {
	t.Parallel()

	var seen int64
	stage := New(WithLimit(2), WithErrorHandler(func(_ *request.Request, res *response.Response, limit int64) {
		seen = limit
		_ = res.Status(response.StatusRequestEntityTooLarge).Send("too big")
	}))

	var out bytes.Buffer
	assert.Equal(t, session.Terminate, stage(post(t, "/", "abc"), response.New(&out)))
	assert.Equal(t, int64(2), seen)
	assert.Contains(t, out.String(), "too big")
}

func TestBodyLimit_NegativeLimitPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { New(WithLimit(-1)) })
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512B", formatSize(512))
	assert.Equal(t, "1.5KB", formatSize(1536))
	assert.Equal(t, "2.0MB", formatSize(2<<20))
	assert.Equal(t, "1.0GB", formatSize(1<<30))
}
