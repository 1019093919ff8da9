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

package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// DefaultMaxHeaderBytes bounds the start line plus header block.
	DefaultMaxHeaderBytes = 64 << 10

	// DefaultMaxBodyBytes bounds a Content-Length delimited body.
	DefaultMaxBodyBytes = 4 << 20

	readChunkSize = 4096
)

// Decoder frames requests read from a byte stream.
//
// The header block ends at the first blank line. When a Content-Length header
// is present exactly that many body bytes are read; otherwise the body is
// whatever followed the blank line in the bytes already received. Without a
// blank line the stream is read until EOF.
//
// A Decoder holds no per-request state and is safe for concurrent use.
type Decoder struct {
	maxHeaderBytes int
	maxBodyBytes   int64
}

// DecoderOption configures a [Decoder].
type DecoderOption func(*Decoder)

// WithMaxHeaderBytes bounds the header block. Non-positive values keep the default.
func WithMaxHeaderBytes(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxHeaderBytes = n
		}
	}
}

// WithMaxBodyBytes bounds the request body. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		maxHeaderBytes: DefaultMaxHeaderBytes,
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads one request from r.
//
// It returns [io.EOF] when the stream ends before any byte was read, so a
// client that connects and leaves is not reported as malformed input.
func (d *Decoder) Decode(r io.Reader) (*Request, error) {
	buf, headerEnd, err := d.readHead(r)
	if err != nil {
		return nil, err
	}
	if headerEnd < 0 {
		return Parse(buf)
	}

	buf, err = d.readBody(r, buf, headerEnd)
	if err != nil {
		return nil, err
	}
	return Parse(buf)
}

// readHead reads until the blank line or EOF. headerEnd is the offset just
// past the blank line, or -1 when the stream ended without one.
func (d *Decoder) readHead(r io.Reader) ([]byte, int, error) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	scanned := 0

	for {
		// Resume the search a few bytes back so a separator split across reads is found.
		from := max(scanned-len(blankLine)+1, 0)
		if idx := bytes.Index(buf[from:], []byte(blankLine)); idx >= 0 {
			end := from + idx
			if end > d.maxHeaderBytes {
				return nil, 0, &Error{Err: ErrHeaderTooLarge, Status: 431}
			}
			return buf, end + len(blankLine), nil
		}
		scanned = len(buf)
		if len(buf) > d.maxHeaderBytes {
			return nil, 0, &Error{Err: ErrHeaderTooLarge, Status: 431}
		}

		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("read request: %w", err)
		}
		if len(buf) == 0 {
			return nil, 0, io.EOF
		}
		if idx := bytes.Index(buf, []byte(blankLine)); idx >= 0 {
			return buf, idx + len(blankLine), nil
		}
		if len(buf) > d.maxHeaderBytes {
			return nil, 0, &Error{Err: ErrHeaderTooLarge, Status: 431}
		}
		return buf, -1, nil
	}
}

func (d *Decoder) readBody(r io.Reader, buf []byte, headerEnd int) ([]byte, error) {
	have := int64(len(buf) - headerEnd)

	length, declared, err := declaredLength(string(buf[:headerEnd]))
	if err != nil {
		return nil, err
	}
	if !declared {
		if have > d.maxBodyBytes {
			return nil, &Error{Err: ErrBodyTooLarge, Status: 413}
		}
		return buf, nil
	}
	if length > d.maxBodyBytes {
		return nil, &Error{
			Err:    ErrBodyTooLarge,
			Status: 413,
			Detail: fmt.Sprintf("%d bytes exceeds limit of %d", length, d.maxBodyBytes),
		}
	}

	if have >= length {
		return buf[:headerEnd+int(length)], nil
	}

	rest := make([]byte, length-have)
	if _, err := io.ReadFull(r, rest); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return append(buf, rest...), nil
}

// declaredLength scans the header block for Content-Length.
func declaredLength(head string) (int64, bool, error) {
	_, block, _ := strings.Cut(head, crlf)
	for line := range strings.SplitSeq(block, crlf) {
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), contentLengthKey) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n < 0 {
			return 0, false, malformed("content length %q", strings.TrimSpace(value))
		}
		return n, true, nil
	}
	return 0, false, nil
}
