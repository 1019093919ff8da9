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

package errors

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		formatter *Plain
		err       error
		wantLine  string
		wantBody  string
	}{
		{
			name:      "untyped error",
			formatter: NewPlain(),
			err:       errors.New("disk on fire"),
			wantLine:  "HTTP/1.1 500 Internal Server Error",
			wantBody:  "Internal Server Error",
		},
		{
			name:      "unmatched route",
			formatter: NewPlain(),
			err:       notFound(),
			wantLine:  "HTTP/1.1 404 Not Found",
			wantBody:  "Not Found",
		},
		{
			name:      "verbose client error",
			formatter: &Plain{Verbose: true},
			err:       notFound(),
			wantLine:  "HTTP/1.1 404 Not Found",
			wantBody:  "Not Found: route not found: GET /cats",
		},
		{
			name:      "verbose server error",
			formatter: &Plain{Verbose: true},
			err:       errors.New("disk on fire"),
			wantLine:  "HTTP/1.1 500 Internal Server Error",
			wantBody:  "Internal Server Error",
		},
		{
			name:      "status without a reason phrase",
			formatter: NewPlain(),
			err:       &fault{msg: "odd", status: 299},
			wantLine:  "HTTP/1.1 500 Internal Server Error",
			wantBody:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := writeError(t, tt.formatter, nil, tt.err)

			assert.True(t, strings.HasPrefix(w.head, tt.wantLine+"\r\n"), w.head)
			assert.Contains(t, w.head, "Content-Type: text/plain; charset=utf-8")
			assert.Equal(t, tt.wantBody, string(w.body))
		})
	}
}

func TestNamed(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Formatter{
		"":        &Plain{},
		"plain":   &Plain{},
		"simple":  &Simple{},
		"rfc9457": &RFC9457{},
		"jsonapi": &JSONAPI{},
	} {
		f, err := Named(name)
		require.NoError(t, err, name)
		assert.IsType(t, want, f, name)
	}

	_, err := Named("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWithStatus(t *testing.T) {
	t.Parallel()

	base := errors.New("gone fishing")
	err := WithStatus(base, response.StatusServiceUnavailable)

	require.ErrorIs(t, err, base)
	assert.Equal(t, "gone fishing", err.Error())

	var typed ErrorType
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, response.StatusServiceUnavailable, typed.HTTPStatus())

	assert.Equal(t, "I'm a teapot", WithStatus(nil, response.StatusTeapot).Error())
}

func allFormatters() map[string]Formatter {
	return map[string]Formatter{
		"plain":   NewPlain(),
		"simple":  NewSimple(),
		"rfc9457": NewRFC9457(""),
		"jsonapi": NewJSONAPI(),
	}
}

func TestFormatters_AllowHeader(t *testing.T) {
	t.Parallel()

	for name, f := range allFormatters() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := writeError(t, f, newTestRequest("/dogs"), notAllowed())

			assert.True(t, strings.HasPrefix(w.head, "HTTP/1.1 405 Method Not Allowed\r\n"), w.head)
			assert.Contains(t, w.head, "\r\nAllow: GET, POST")
		})
	}
}

func TestFormatters_InternalErrorTextStaysOut(t *testing.T) {
	t.Parallel()

	err := errors.New("dial postgres://app:hunter2@db: refused")
	for name, f := range allFormatters() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := writeError(t, f, newTestRequest("/dogs"), err)

			assert.True(t, strings.HasPrefix(w.head, "HTTP/1.1 500 "), w.head)
			assert.NotContains(t, string(w.body), "hunter2")
		})
	}
}

func TestFormatters_BeforeDecode(t *testing.T) {
	t.Parallel()

	_, err := request.Parse([]byte("BREW / HTTP/1.1\r\n\r\n"))
	require.Error(t, err)

	for name, f := range allFormatters() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			w := writeError(t, f, nil, err)
			assert.True(t, strings.HasPrefix(w.head, "HTTP/1.1 501 Not Implemented\r\n"), w.head)
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("nil formatter is plain", func(t *testing.T) {
		t.Parallel()
		w := writeError(t, nil, nil, headerTooLarge(t))
		assert.True(t, strings.HasPrefix(w.head, "HTTP/1.1 431 Request Header Fields Too Large\r\n"), w.head)
		assert.Equal(t, "Request Header Fields Too Large", string(w.body))
	})

	t.Run("body that cannot be encoded", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		res := response.New(&buf)
		f := FormatterFunc(func(*request.Request, error) Response {
			return Response{Status: response.StatusBadRequest, Body: make(chan int)}
		})

		require.Error(t, Write(res, f, nil, errors.New("x")))
		assert.Empty(t, buf.String())
		assert.False(t, res.Sent())
	})

	t.Run("already sent", func(t *testing.T) {
		t.Parallel()
		res := response.New(&bytes.Buffer{})
		require.NoError(t, res.Send("ok"))

		require.ErrorIs(t, Write(res, NewPlain(), nil, errors.New("late")), response.ErrAlreadySent)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		require.ErrorIs(t, Write(nil, NewPlain(), nil, errors.New("x")), response.ErrNilWriter)
	})
}
