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

// Package request decodes raw HTTP/1.x messages into [Request] values.
//
// A [Decoder] frames one request from a byte stream: it reads up to the
// first blank line, then reads a body bounded by Content-Length. [Parse]
// turns the framed bytes into a [Request]:
//
//	dec := request.NewDecoder(request.WithMaxBodyBytes(1 << 20))
//	req, err := dec.Decode(conn)
//	if errors.Is(err, request.ErrMalformedInput) {
//	    // answer 400
//	}
//
// Query strings accept both '&' and ';' as separators. A key without '='
// is present with no value:
//
//	q := request.ParseQuery("a=1&b;c=3")
//	q.Has("b")    // true
//	q.Get("b")    // "", false
//	q.Get("c")    // "3", true
package request
