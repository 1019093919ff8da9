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

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"mime"
	"net/textproto"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	headerContentType   = "Content-Type"
	headerContentLength = "Content-Length"
	headerConnection    = "Connection"
)

// Response accumulates a status and headers, then serializes them with a
// body onto the connection in a single terminal call.
//
// A Response belongs to the worker serving one connection and is not safe for
// concurrent use. Status, ContentType and Header return the receiver so calls
// can be chained:
//
//	res.Status(201).ContentType("application/json").Send(`{"id":1}`)
type Response struct {
	w       io.Writer
	status  int
	headers map[string]string
	sent    bool
	size    int
}

// New creates a Response writing to w with status 200.
func New(w io.Writer) *Response {
	return &Response{
		w:       w,
		status:  StatusOK,
		headers: make(map[string]string),
	}
}

// Status sets the status code.
// Unknown codes are reported by the terminal call, not here.
func (r *Response) Status(code int) *Response {
	r.status = code
	return r
}

// ContentType sets the Content-Type header.
// Accepts a full MIME type or a file extension such as ".json" or "html".
func (r *Response) ContentType(value string) *Response {
	if !strings.Contains(value, "/") {
		ext := value
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if t := mime.TypeByExtension(ext); t != "" {
			value = t
		}
	}
	return r.Header(headerContentType, value)
}

// Header sets a response header, replacing any previous value.
func (r *Response) Header(name, value string) *Response {
	r.headers[textproto.CanonicalMIMEHeaderKey(name)] = value
	return r
}

// GetHeader returns a header previously set on the response.
func (r *Response) GetHeader(name string) string {
	return r.headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// Headers returns a copy of the headers set so far.
func (r *Response) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// StatusCode returns the current status code.
func (r *Response) StatusCode() int {
	return r.status
}

// Sent reports whether a terminal operation has written the response.
func (r *Response) Sent() bool {
	return r.sent
}

// Size returns the number of bytes written to the connection.
func (r *Response) Size() int {
	return r.size
}

// Send writes the status line, headers and body.
func (r *Response) Send(body string) error {
	return r.SendBytes([]byte(body))
}

// SendBytes writes the status line, headers and body.
//
// A header name that is not a token, or a value holding CR, LF or another
// control character, fails with [ErrInvalidHeader] and nothing is written.
// Content-Length is always set from the body. Connection: close is added
// unless the caller set a Connection header.
func (r *Response) SendBytes(body []byte) error {
	if r.sent {
		return ErrAlreadySent
	}
	if r.w == nil {
		return ErrNilWriter
	}
	reason, ok := StatusText(r.status)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, r.status)
	}
	for name, value := range r.headers {
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("%w: %q", ErrInvalidHeader, name)
		}
	}

	r.headers[headerContentLength] = strconv.Itoa(len(body))
	if _, ok := r.headers[headerConnection]; !ok {
		r.headers[headerConnection] = "close"
	}

	var b strings.Builder
	b.Grow(128 + len(body))
	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(r.status))
	b.WriteByte(' ')
	b.WriteString(reason)
	b.WriteString("\r\n")
	for _, name := range slices.Sorted(maps.Keys(r.headers)) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(r.headers[name])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(body)

	r.sent = true
	n, err := io.WriteString(r.w, b.String())
	r.size = n
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// SendFile reads the file at path into memory and sends it as the body.
// No content type is inferred; set one beforehand if needed.
func (r *Response) SendFile(path string) error {
	if r.sent {
		return ErrAlreadySent
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return &FileError{Path: path, Err: err}
	}
	return r.SendBytes(data)
}

// SendJSON encodes v as JSON and sends it with an application/json content type.
// Nothing is written if encoding fails.
func (r *Response) SendJSON(v any) error {
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("JSON encoding failed for type %T: %w", v, err)
	}
	r.Header(headerContentType, "application/json; charset=utf-8")
	return r.Send(buf.String())
}
