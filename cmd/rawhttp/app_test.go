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

package main

import (
	"bytes"
	"encoding/base64"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/config"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/server"
)

func newDemoServer(t *testing.T, opts appOptions) *server.Server {
	t.Helper()

	srv, err := server.New()
	require.NoError(t, err)
	require.NoError(t, register(srv, demoMounts(opts)))
	return srv
}

func roundTrip(t *testing.T, srv *server.Server, raw string) string {
	t.Helper()

	client, conn := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ServeConn(conn)
	}()
	go func() {
		_, _ = io.WriteString(client, raw)
	}()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	out, err := io.ReadAll(client)
	require.NoError(t, err)
	<-done
	return string(out)
}

func TestDemo_Routes(t *testing.T) {
	srv := newDemoServer(t, appOptions{})

	tests := []struct {
		name   string
		raw    string
		status string
		body   string
	}{
		{"hello", "GET / HTTP/1.1\r\n\r\n", "200 OK", "Hello from rawhttp\n"},
		{"dog", "GET /dogs/42 HTTP/1.1\r\n\r\n", "200 OK", `"name":"dog 42"`},
		{"inner", "GET /inner/ada HTTP/1.1\r\n\r\n", "200 OK", "Hello, ada\n"},
		{"echo", "POST /echo HTTP/1.1\r\nContent-Length: 4\r\n\r\nping", "200 OK", "ping"},
		{"missing", "GET /cats HTTP/1.1\r\n\r\n", "404 Not Found", ""},
		{"admin disabled", "GET /admin HTTP/1.1\r\n\r\n", "404 Not Found", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := roundTrip(t, srv, tt.raw)
			assert.True(t, strings.HasPrefix(out, "HTTP/1.1 "+tt.status+"\r\n"), out)
			assert.Contains(t, out, tt.body)
		})
	}
}

func TestDemo_RequestIDReachesHandler(t *testing.T) {
	srv := newDemoServer(t, appOptions{})

	out := roundTrip(t, srv, "GET /dogs/7 HTTP/1.1\r\nX-Request-ID: abc-123\r\n\r\n")
	assert.Contains(t, out, "X-Request-Id: abc-123\r\n")
	assert.Contains(t, out, `"request_id":"abc-123"`)
}

func TestDemo_EchoLimit(t *testing.T) {
	srv := newDemoServer(t, appOptions{})

	body := strings.Repeat("x", maxEchoBytes+1)
	out := roundTrip(t, srv, "POST /echo HTTP/1.1\r\nContent-Length: "+
		strconv.Itoa(len(body))+"\r\n\r\n"+body)
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 413 "), out)
}

func TestDemo_Admin(t *testing.T) {
	srv := newDemoServer(t, appOptions{adminPassword: "secret"})

	out := roundTrip(t, srv, "GET /admin HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 401 "), out)
	assert.Contains(t, out, `Www-Authenticate: Basic realm="rawhttp"`)

	token := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	out = roundTrip(t, srv, "GET /admin HTTP/1.1\r\nAuthorization: Basic "+token+"\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
	assert.Contains(t, out, `"user":"admin"`)
}

func TestDemo_AdminRejectionsCounted(t *testing.T) {
	rec := metrics.TestingRecorder(t)
	srv := newDemoServer(t, appOptions{metrics: rec, adminPassword: "secret"})

	token := base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
	for range 2 {
		out := roundTrip(t, srv, "GET /admin HTTP/1.1\r\nAuthorization: Basic "+token+"\r\n\r\n")
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 401 "), out)
		assert.Contains(t, out, `Www-Authenticate: Basic realm="rawhttp"`)
		assert.Contains(t, out, `"code":"UNAUTHORIZED"`)
	}

	exposed := metrics.Gathered(t, rec)
	assert.Regexp(t, `basicauth_rejections_total\{[^}]*realm="rawhttp"[^}]*\} 2`, exposed)
}

func TestDemo_Assets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o600))
	srv := newDemoServer(t, appOptions{staticDir: dir})

	out := roundTrip(t, srv, "GET /assets HTTP/1.1\r\n\r\n")
	assert.Contains(t, out, "<h1>home</h1>")

	out = roundTrip(t, srv, "GET /assets/app.css HTTP/1.1\r\n\r\n")
	assert.Contains(t, out, "Content-Type: text/css")
	assert.Contains(t, out, "Cache-Control: public, max-age=300\r\n")
}

func TestRegister_DuplicatePrefix(t *testing.T) {
	srv, err := server.New()
	require.NoError(t, err)

	mounts := demoMounts(appOptions{})
	require.NoError(t, register(srv, mounts))
	err = register(srv, mounts[:1])
	require.ErrorIs(t, err, server.ErrDuplicateMount)
}

func TestFullPath(t *testing.T) {
	assert.Equal(t, "/", fullPath("", "/"))
	assert.Equal(t, "/dogs/:id", fullPath("", "/dogs/:id"))
	assert.Equal(t, "/inner", fullPath("/inner", "/"))
	assert.Equal(t, "/inner/:name", fullPath("/inner", "/:name"))
}

func TestPrintBanner(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	printBanner(&out, bannerInfo{
		addr:     "127.0.0.1:8080",
		settings: config.Defaults(),
		mounts:   newDemoServer(t, appOptions{}).Mounts(),
	})

	text := out.String()
	assert.Contains(t, text, "http://127.0.0.1:8080")
	assert.Contains(t, text, "8 (queue 64)")
	assert.Contains(t, text, "Disabled")
	assert.Contains(t, text, "/inner/:name")
}
