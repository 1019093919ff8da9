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

package request

import (
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_ContentLength(t *testing.T) {
	t.Parallel()

	raw := "POST /items HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello trailing"
	req, err := NewDecoder().Decode(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "hello", req.Body, "body should be bounded by Content-Length")
	n, ok := req.ContentLength()
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)
}

func TestDecoder_BodyAcrossReads(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 3*readChunkSize)
	raw := "PUT /blob HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

	req, err := NewDecoder().Decode(iotest.HalfReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, body, req.Body)
}

func TestDecoder_SeparatorSplitAcrossReads(t *testing.T) {
	t.Parallel()

	raw := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n"
	req, err := NewDecoder().Decode(iotest.OneByteReader(strings.NewReader(raw)))
	require.NoError(t, err)

	assert.Equal(t, "/a", req.Route)
	assert.True(t, req.HasBody())
}

func TestDecoder_NoContentLengthUsesBufferedBytes(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("POST /x HTTP/1.1\r\n\r\nabc"))
		// Keep the pipe open: the decoder must not block for more body bytes.
	}()
	defer client.Close()

	req, err := NewDecoder().Decode(server)
	require.NoError(t, err)
	assert.Equal(t, "abc", req.Body)
}

func TestDecoder_EOFWithoutBlankLine(t *testing.T) {
	t.Parallel()

	req, err := NewDecoder().Decode(strings.NewReader("GET /legacy HTTP/1.0"))
	require.NoError(t, err)

	assert.Equal(t, "/legacy", req.Route)
	assert.False(t, req.HasBody())
}

func TestDecoder_EmptyStream(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder().Decode(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		decoder    *Decoder
		raw        string
		wantErr    error
		wantStatus int
	}{
		{
			name:       "single token start line",
			decoder:    NewDecoder(),
			raw:        "GET\r\n\r\n",
			wantErr:    ErrMalformedInput,
			wantStatus: 400,
		},
		{
			name:       "header too large",
			decoder:    NewDecoder(WithMaxHeaderBytes(16)),
			raw:        "GET /a HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 64) + "\r\n\r\n",
			wantErr:    ErrHeaderTooLarge,
			wantStatus: 431,
		},
		{
			name:       "unterminated header too large",
			decoder:    NewDecoder(WithMaxHeaderBytes(16)),
			raw:        "GET /" + strings.Repeat("a", 64),
			wantErr:    ErrHeaderTooLarge,
			wantStatus: 431,
		},
		{
			name:       "declared body too large",
			decoder:    NewDecoder(WithMaxBodyBytes(4)),
			raw:        "POST /a HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789",
			wantErr:    ErrBodyTooLarge,
			wantStatus: 413,
		},
		{
			name:       "buffered body too large",
			decoder:    NewDecoder(WithMaxBodyBytes(4)),
			raw:        "POST /a HTTP/1.1\r\n\r\n0123456789",
			wantErr:    ErrBodyTooLarge,
			wantStatus: 413,
		},
		{
			name:       "invalid content length",
			decoder:    NewDecoder(),
			raw:        "POST /a HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
			wantErr:    ErrMalformedInput,
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.decoder.Decode(strings.NewReader(tt.raw))
			require.ErrorIs(t, err, tt.wantErr)

			var reqErr *Error
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.wantStatus, reqErr.HTTPStatus())
			assert.NotEmpty(t, reqErr.Code())
		})
	}
}

func TestDecoder_TruncatedBody(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder().Decode(strings.NewReader("POST /a HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecoder_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := NewDecoder().Decode(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}
