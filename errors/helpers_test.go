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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/router"
)

// fault is an error implementing every optional interface. A zero status
// reads as 500.
type fault struct {
	msg     string
	status  int
	code    string
	details any
	headers map[string]string
}

func (f *fault) Error() string { return f.msg }

func (f *fault) HTTPStatus() int {
	if f.status == 0 {
		return response.StatusInternalServerError
	}
	return f.status
}

func (f *fault) Code() string               { return f.code }
func (f *fault) Details() any               { return f.details }
func (f *fault) Headers() map[string]string { return f.headers }

func newTestRequest(route string) *request.Request {
	return &request.Request{Method: request.GET, Route: route}
}

// notFound and notAllowed are the errors the router reports for /dogs.
func notFound() error {
	return &router.MatchError{Method: request.GET, Path: "/cats", Err: router.ErrNotFound}
}

func notAllowed() error {
	return &router.MatchError{
		Method:  request.DELETE,
		Path:    "/dogs",
		Allowed: []request.Method{request.GET, request.POST},
		Err:     router.ErrMethodNotAllowed,
	}
}

// headerTooLarge decodes a request whose header block exceeds 64 bytes.
func headerTooLarge(t *testing.T) error {
	t.Helper()
	raw := "GET / HTTP/1.1\r\nX-Filler: " + strings.Repeat("y", 128) + "\r\n\r\n"
	_, err := request.NewDecoder(request.WithMaxHeaderBytes(64)).Decode(strings.NewReader(raw))
	require.Error(t, err)
	return err
}

// written is an error response as it reached the connection.
type written struct {
	head string
	body []byte
}

func (w written) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.body, &out), string(w.body))
	return out
}

func writeError(t *testing.T, f Formatter, req *request.Request, err error) written {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(response.New(&buf), f, req, err))
	head, body, ok := bytes.Cut(buf.Bytes(), []byte("\r\n\r\n"))
	require.True(t, ok, buf.String())
	return written{head: string(head), body: body}
}
