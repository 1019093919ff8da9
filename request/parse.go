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
	"net/textproto"
	"strings"
)

const (
	crlf             = "\r\n"
	blankLine        = "\r\n\r\n"
	contentLengthKey = "Content-Length"
)

// Parse decodes a complete request message.
//
// The message is split at the first blank line into RawHeaders and Body.
// The start line must hold at least a method and a request target; a
// protocol version token is optional. Each following line up to the blank
// line must be a "Name: value" pair.
func Parse(raw []byte) (*Request, error) {
	full := string(raw)
	req := &Request{
		RawFull: full,
		Headers: make(Header),
	}

	head, body, found := strings.Cut(full, blankLine)
	req.RawHeaders = head
	if found {
		req.Body = body
		req.hasBody = true
	}

	startLine, headerBlock, _ := strings.Cut(head, crlf)
	if err := parseStartLine(req, startLine); err != nil {
		return nil, err
	}
	if err := parseHeaders(req.Headers, headerBlock); err != nil {
		return nil, err
	}
	return req, nil
}

func parseStartLine(req *Request, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return malformed("start line %q", line)
	}

	method, err := ParseMethod(fields[0])
	if err != nil {
		return err
	}
	req.Method = method

	target := fields[1]
	if path, rawQuery, ok := strings.Cut(target, "?"); ok {
		req.Route = path
		req.RawQuery = rawQuery
		req.Query = ParseQuery(rawQuery)
	} else {
		req.Route = target
	}

	if len(fields) > 2 {
		req.Version = fields[2]
	}
	return nil
}

func parseHeaders(h Header, block string) error {
	if block == "" {
		return nil
	}
	for line := range strings.SplitSeq(block, crlf) {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return malformed("header line %q", line)
		}
		h[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
	return nil
}
