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

package server

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/config"
	httperrors "rivaas.dev/rawhttp/errors"
	"rivaas.dev/rawhttp/logging"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/router"
	"rivaas.dev/rawhttp/session"
	"rivaas.dev/rawhttp/tracing"
)

func send(body string) session.Stage {
	return func(_ *request.Request, res *response.Response) session.Outcome {
		_ = res.Send(body)
		return session.Terminate
	}
}

// roundTrip serves raw on one end of a pipe and returns everything the
// server wrote before closing.
func roundTrip(t *testing.T, s *Server, raw string) string {
	t.Helper()

	client, conn := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ServeConn(conn)
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

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	root := router.MustNew(router.WithName("root"))
	root.GET("/", send("hello"))
	root.GET("/dogs/:id", func(req *request.Request, res *response.Response) session.Outcome {
		_ = res.Send("dog " + req.Param("id"))
		return session.Terminate
	})
	root.POST("/echo", func(req *request.Request, res *response.Response) session.Outcome {
		_ = res.ContentType("text/plain").Send(req.Body)
		return session.Terminate
	})
	root.GET("/silent", func(*request.Request, *response.Response) session.Outcome {
		return session.Continue
	})

	inner := router.MustNew(router.WithName("inner"))
	inner.GET("/:name", func(req *request.Request, res *response.Response) session.Outcome {
		_ = res.Send("inner " + req.Param("name") + " at " + req.Route)
		return session.Terminate
	})

	s := MustNew(opts...)
	require.NoError(t, s.Register("/", root))
	require.NoError(t, s.Register("/inner", inner))
	return s
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{"empty address", WithAddress("")},
		{"zero workers", WithWorkers(0)},
		{"negative queue", WithQueueSize(-1)},
		{"negative timeout", WithReadTimeout(-time.Second)},
		{"zero header limit", WithMaxHeaderBytes(0)},
		{"negative connections", WithMaxConnections(-1)},
		{"nil logger", WithLogger(nil)},
		{"nil formatter", WithErrorFormatter(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.opt)
			require.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustNew(WithWorkers(-1)) })
}

func TestWithConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Server{
		Address:        "0.0.0.0",
		Workers:        3,
		QueueSize:      7,
		ReadTimeout:    time.Second,
		WriteTimeout:   2 * time.Second,
		MaxHeaderBytes: 1024,
		MaxBodyBytes:   2048,
		MaxConnections: 10,
		Errors:         config.Errors{Format: "rfc9457"},
	}
	s := MustNew(WithConfig(cfg))

	assert.Equal(t, "0.0.0.0", s.address)
	assert.Equal(t, 3, s.workers)
	assert.Equal(t, 7, s.queueSize)
	assert.Equal(t, time.Second, s.readTimeout)
	assert.Equal(t, 2*time.Second, s.writeTimeout)
	assert.Equal(t, 1024, s.maxHeaderBytes)
	assert.Equal(t, int64(2048), s.maxBodyBytes)
	assert.Equal(t, 10, s.maxConnections)
	assert.IsType(t, &httperrors.RFC9457{}, s.formatter)

	defaults := MustNew(WithConfig(config.Server{}))
	assert.Equal(t, DefaultAddress, defaults.address, "zero values keep defaults")
	assert.Equal(t, DefaultWorkers, defaults.workers)
	assert.IsType(t, &httperrors.Plain{}, defaults.formatter)
}

func TestServeConn_Responses(t *testing.T) {
	t.Parallel()

	s := newTestServer(t,
		WithMaxBodyBytes(16),
		WithMaxHeaderBytes(128),
	)

	tests := []struct {
		name       string
		raw        string
		wantStatus string
		wantBody   string
		wantHeader string
	}{
		{
			name:       "root",
			raw:        "GET / HTTP/1.1\r\nHost: x\r\n\r\n",
			wantStatus: "HTTP/1.1 200 OK",
			wantBody:   "hello",
			wantHeader: "Content-Length: 5",
		},
		{
			name:       "path parameter",
			raw:        "GET /dogs/42 HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 200 OK",
			wantBody:   "dog 42",
		},
		{
			name:       "mounted router sees the stripped path",
			raw:        "GET /inner/a-mystery HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 200 OK",
			wantBody:   "inner a-mystery at /inner/a-mystery",
		},
		{
			name:       "body with content length",
			raw:        "POST /echo HTTP/1.1\r\nContent-Length: 4\r\n\r\nping",
			wantStatus: "HTTP/1.1 200 OK",
			wantBody:   "ping",
			wantHeader: "Content-Type: text/plain",
		},
		{
			name:       "not found",
			raw:        "GET /cats HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 404 Not Found",
			wantBody:   "Not Found",
		},
		{
			name:       "segment count must match",
			raw:        "GET /dogs/42/extra HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 404 Not Found",
		},
		{
			name:       "method not allowed",
			raw:        "DELETE /dogs/42 HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 405 Method Not Allowed",
			wantHeader: "Allow: GET",
		},
		{
			name:       "malformed request line",
			raw:        "NONSENSE\r\n\r\n",
			wantStatus: "HTTP/1.1 400 Bad Request",
		},
		{
			name:       "malformed header",
			raw:        "GET / HTTP/1.1\r\nno colon here\r\n\r\n",
			wantStatus: "HTTP/1.1 400 Bad Request",
		},
		{
			name:       "unsupported method",
			raw:        "BREW /pot HTTP/1.1\r\n\r\n",
			wantStatus: "HTTP/1.1 501 Not Implemented",
		},
		{
			name:       "body too large",
			raw:        "POST /echo HTTP/1.1\r\nContent-Length: 64\r\n\r\n" + strings.Repeat("x", 64),
			wantStatus: "HTTP/1.1 413 ",
		},
		{
			name:       "headers too large",
			raw:        "GET / HTTP/1.1\r\nX-Filler: " + strings.Repeat("y", 256) + "\r\n\r\n",
			wantStatus: "HTTP/1.1 431 ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := roundTrip(t, s, tt.raw)
			assert.True(t, strings.HasPrefix(out, tt.wantStatus), out)
			assert.Contains(t, out, "Connection: close")
			if tt.wantHeader != "" {
				assert.Contains(t, out, tt.wantHeader+"\r\n")
			}
			if tt.wantBody != "" {
				assert.True(t, strings.HasSuffix(out, "\r\n\r\n"+tt.wantBody), out)
			}
		})
	}
}

// TestServeConn_IncompleteBody half-closes a TCP connection so the server
// sees the stream end before the declared length.
func TestServeConn_IncompleteBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		s.ServeConn(conn)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "POST /echo HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc")
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	<-done
	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 400 Bad Request\r\n"), string(out))
}

func TestServeConn_ClientGoneSilently(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	client, conn := net.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ServeConn(conn)
	}()
	require.NoError(t, client.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ServeConn did not return after the client closed")
	}
}

func TestServeConn_ReadTimeout(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, WithReadTimeout(50*time.Millisecond))
	out := roundTrip(t, s, "GET / HTTP/1.1\r\nHost: slow\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 408 Request Timeout\r\n"), out)
}

func TestServeConn_CompletedSessionWithoutResponse(t *testing.T) {
	t.Parallel()

	logs := logging.NewCapture(t)
	s := newTestServer(t, WithLogger(logs.Logger))

	out := roundTrip(t, s, "GET /silent HTTP/1.1\r\n\r\n")
	assert.Empty(t, out, "nothing is written when no stage sends")
	assert.True(t, logs.Has("session finished without a response"))
}

func TestServeConn_Phases(t *testing.T) {
	t.Parallel()

	var ran []string
	stage := func(name string, outcome session.Outcome) session.Stage {
		return func(_ *request.Request, res *response.Response) session.Outcome {
			ran = append(ran, name)
			if outcome == session.Terminate {
				_ = res.Status(response.StatusUnauthorized).Send("denied")
			}
			return outcome
		}
	}

	r := router.MustNew()
	r.Handle(request.GET, "/private", session.New().
		Before(stage("auth", session.Terminate)).
		Then(stage("handler", session.Continue)).
		After(stage("audit", session.Continue)))

	s := MustNew()
	require.NoError(t, s.Register("/", r))

	out := roundTrip(t, s, "GET /private HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 401 Unauthorized\r\n"), out)
	assert.Equal(t, []string{"auth"}, ran, "terminating stops later phases")
}

func TestServeConn_PanicAnswers500(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	r.GET("/boom", func(*request.Request, *response.Response) session.Outcome {
		panic("kaboom")
	})
	s := MustNew()
	require.NoError(t, s.Register("/", r))

	client, conn := net.Pipe()
	defer client.Close()

	recovered := make(chan any, 1)
	go func() {
		defer func() { recovered <- recover() }()
		s.ServeConn(conn)
	}()
	go func() { _, _ = io.WriteString(client, "GET /boom HTTP/1.1\r\n\r\n") }()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	out, err := io.ReadAll(client)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 500 Internal Server Error\r\n"), string(out))
	assert.Equal(t, "kaboom", <-recovered, "the panic reaches the worker pool")
}

func TestServeConn_PanicValueNotSent(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	r.GET("/boom", func(*request.Request, *response.Response) session.Outcome {
		panic("db password is hunter2")
	})

	for _, f := range []httperrors.Formatter{httperrors.NewPlain(), httperrors.NewSimple(), httperrors.NewRFC9457("")} {
		s := MustNew(WithErrorFormatter(f))
		require.NoError(t, s.Register("/", r))

		client, conn := net.Pipe()
		go func() {
			defer func() { _ = recover() }()
			s.ServeConn(conn)
		}()
		go func() { _, _ = io.WriteString(client, "GET /boom HTTP/1.1\r\n\r\n") }()

		require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
		out, err := io.ReadAll(client)
		require.NoError(t, err)
		_ = client.Close()

		assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 500 "), string(out))
		assert.NotContains(t, string(out), "hunter2")
	}
}

func TestServeConn_ErrorFormatter(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, WithErrorFormatter(httperrors.NewSimple()))
	out := roundTrip(t, s, "GET /cats HTTP/1.1\r\n\r\n")

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"), out)
	assert.Contains(t, out, "Content-Type: application/json; charset=utf-8")
	assert.Contains(t, out, `"code":"NOT_FOUND"`)
}

func TestServeConn_ErrorBodiesFollowConfig(t *testing.T) {
	t.Parallel()

	oversized := "GET / HTTP/1.1\r\nX-Filler: " + strings.Repeat("y", 256) + "\r\n\r\n"

	tests := []struct {
		format   string
		notFound string
		method   string
		tooLarge string
	}{
		{"plain", "\r\n\r\nNot Found", "\r\n\r\nMethod Not Allowed", "\r\n\r\nRequest Header Fields Too Large"},
		{"simple", `"code":"NOT_FOUND"}`, `"code":"METHOD_NOT_ALLOWED"`, `{"error":"request header too large","code":"HEADER_TOO_LARGE"}`},
		{"rfc9457", `"type":"NOT_FOUND","title":"Not Found","status":404`, `"type":"METHOD_NOT_ALLOWED"`, `"type":"HEADER_TOO_LARGE"`},
		{"jsonapi", `"status":"404","code":"NOT_FOUND","title":"Not Found"`, `"status":"405","code":"METHOD_NOT_ALLOWED"`, `"status":"431","code":"HEADER_TOO_LARGE"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			cfg.Errors.Format = tt.format
			cfg.MaxHeaderBytes = 128
			s := newTestServer(t, WithConfig(cfg))

			out := roundTrip(t, s, "GET /cats HTTP/1.1\r\n\r\n")
			assert.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"), out)
			assert.Contains(t, out, tt.notFound)

			out = roundTrip(t, s, "DELETE /dogs/42 HTTP/1.1\r\n\r\n")
			assert.True(t, strings.HasPrefix(out, "HTTP/1.1 405 Method Not Allowed\r\n"), out)
			assert.Contains(t, out, "Allow: GET\r\n")
			assert.Contains(t, out, tt.method)

			out = roundTrip(t, s, oversized)
			assert.True(t, strings.HasPrefix(out, "HTTP/1.1 431 Request Header Fields Too Large\r\n"), out)
			assert.Contains(t, out, tt.tooLarge)
		})
	}
}

func TestServeConn_AccessLog(t *testing.T) {
	t.Parallel()

	logs := logging.NewCapture(t)
	s := newTestServer(t, WithLogger(logs.Logger))

	roundTrip(t, s, "GET /inner/rex?verbose HTTP/1.1\r\nUser-Agent: curl/8\r\n\r\n")
	logs.Expect(t, "INFO", "request served", map[string]any{
		"method":     "GET",
		"route":      "/inner/rex",
		"template":   "/inner/:name",
		"mount":      "/inner",
		"status":     200,
		"query":      "verbose",
		"user_agent": "curl/8",
	})

	logs.Clear()
	roundTrip(t, s, "GET /cats HTTP/1.1\r\n\r\n")
	logs.Expect(t, "WARN", "request served", map[string]any{
		"status":   404,
		"template": "_not_found",
	})

	logs.Clear()
	roundTrip(t, s, "NONSENSE\r\n\r\n")
	logs.Expect(t, "WARN", "request rejected", map[string]any{
		"status": 400,
		"code":   "MALFORMED_INPUT",
	})
}

func TestServeConn_Telemetry(t *testing.T) {
	t.Parallel()

	rec := metrics.TestingRecorder(t)
	tracer, spans := tracing.TestingTracer(t)
	s := newTestServer(t, WithMetrics(rec), WithTracer(tracer))

	roundTrip(t, s, "GET /dogs/7 HTTP/1.1\r\n\r\n")
	roundTrip(t, s, "GET /cats HTTP/1.1\r\n\r\n")
	roundTrip(t, s, "NONSENSE\r\n\r\n")

	text := metrics.Gathered(t, rec)
	assert.Contains(t, text, `http_route="/dogs/:id"`)
	assert.Contains(t, text, `http_route="_not_found"`)
	assert.Contains(t, text, `error_code="MALFORMED_INPUT"`)

	ended := spans.Ended()
	require.Len(t, ended, 2, "rejected requests get no span")
	names := []string{ended[0].Name(), ended[1].Name()}
	assert.Contains(t, names, "GET /dogs/:id")
	assert.Contains(t, names, "GET /cats")
}

func TestServe_Lifecycle(t *testing.T) {
	t.Parallel()

	logs := logging.NewCapture(t)
	rec := metrics.TestingRecorder(t)
	s := newTestServer(t, WithWorkers(2), WithQueueSize(2), WithMaxConnections(4), WithLogger(logs.Logger), WithMetrics(rec))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, s.Serve(ctx, ln), ErrServerRunning)

	for i := range 10 {
		out := dial(t, s.Addr().String(), "GET /dogs/"+string(rune('0'+i))+" HTTP/1.1\r\n\r\n")
		assert.True(t, strings.HasSuffix(out, "dog "+string(rune('0'+i))), out)
	}
	assert.Contains(t, metrics.Gathered(t, rec), "rawhttp_workers")

	cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	assert.Nil(t, s.Addr())
	assert.True(t, logs.Has("server listening"))
	assert.True(t, logs.Has("server stopped"))
}

func TestServe_PanicDoesNotStopServing(t *testing.T) {
	t.Parallel()

	logs := logging.NewCapture(t)
	r := router.MustNew()
	r.GET("/boom", func(*request.Request, *response.Response) session.Outcome { panic("kaboom") })
	r.GET("/ok", send("ok"))

	s := MustNew(WithWorkers(1), WithLogger(logs.Logger))
	require.NoError(t, s.Register("/", r))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx, ln) }()
	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 5*time.Millisecond)

	for range 3 {
		out := dial(t, s.Addr().String(), "GET /boom HTTP/1.1\r\n\r\n")
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 500 "), out)
	}
	out := dial(t, s.Addr().String(), "GET /ok HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nok"), "the only worker survived three panics")

	require.Eventually(t, func() bool { return logs.Count("ERROR") >= 3 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, logs.Has("handler panic recovered"))
}

func TestListen_InvalidPort(t *testing.T) {
	t.Parallel()

	s := MustNew()
	require.Error(t, s.Listen(context.Background(), 70000))
}

func dial(t *testing.T, addr, raw string) string {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = io.WriteString(conn, raw)
	require.NoError(t, err)

	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(out)
}
