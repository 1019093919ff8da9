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

// Package server accepts TCP connections and dispatches each request to the
// router mounted under its path prefix.
//
// # Mounts
//
// Routers are registered under path prefixes. A request goes to the router
// with the longest prefix that covers whole segments of its path, and the
// router matches what remains:
//
//	srv := server.MustNew()
//	_ = srv.Register("/", site)       // "/about" matches site's "/about"
//	_ = srv.Register("/inner", inner) // "/inner/a" matches inner's "/a"
//
// # Pipeline
//
// Each connection carries exactly one request. A worker reads it, answers
// and closes the connection:
//
//	decode -> resolve mount -> match route -> run session -> close
//
// Failures before the session runs are answered through the configured
// error formatter:
//
//	malformed request line or header    400
//	path outside every mount, no route  404
//	route exists for other methods      405 with Allow
//	slow client                         408
//	declared body over the limit        413
//	headers over the limit              431
//	unsupported method                  501
//
// A panic in a session is answered with 500 when nothing was sent yet, and
// the worker goes on serving other connections.
//
// # Backpressure
//
// Accepted connections wait in a bounded queue. When every worker is busy
// and the queue is full, the accept loop stops accepting until a worker
// frees up. [WithMaxConnections] additionally caps open connections.
package server
