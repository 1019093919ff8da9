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

// Package errors turns Go errors into HTTP error responses.
//
// A [Formatter] maps an error to a status, content type, body and extra
// headers. Four formatters are provided:
//   - Plain: the reason phrase as text/plain (the server default)
//   - Simple: {"error": "...", "code": "...", "details": ...}
//   - RFC9457: RFC 9457 Problem Details (application/problem+json)
//   - JSONAPI: JSON:API error objects (application/vnd.api+json)
//
// Errors steer the result through optional interfaces found anywhere in the
// wrapped chain:
//   - ErrorType: HTTP status code (default 500)
//   - ErrorCode: machine-readable code
//   - ErrorDetails: structured details
//   - ErrorHeaders: response headers, such as Allow on a 405
//
// The request decoder and router errors implement these, so a malformed
// request becomes a 400, an unknown method a 501 and an unmatched route a
// 404 or 405 without further mapping.
//
// A 500 never carries the error text in its body. [Named] maps the
// configuration names plain, simple, rfc9457 and jsonapi to formatters.
//
// # Quick Start
//
//	r.GET("/dogs/:id", func(req *request.Request, res *response.Response) session.Outcome {
//		dog, err := store.Dog(req.Param("id"))
//		if err != nil {
//			_ = errors.Write(res, errors.NewRFC9457("https://example.com/problems"), req, err)
//			return session.Terminate
//		}
//		_ = res.SendJSON(dog)
//		return session.Terminate
//	})
package errors
