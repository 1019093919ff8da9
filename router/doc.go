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

// Package router matches request methods and paths to sessions.
//
// # Templates
//
// Path templates are '/'-separated. A segment starting with ':' captures
// exactly one path segment under that name; every other segment must match
// literally. Leading and trailing slashes are ignored, so "/dogs/" and
// "/dogs" are the same template. A path only matches templates with the same
// number of segments: "/dogs" does not match "/dogs/42".
//
// # Precedence
//
// When a literal and a capture template both match, the literal wins at the
// first segment where they differ:
//
//	r.GET("/users/:id", showUser)
//	r.GET("/users/me", showCurrentUser) // wins for /users/me
//
// Routes registered for a concrete method are tried before routes registered
// with [Router.ALL].
//
// # Quick Start
//
//	r := router.MustNew()
//	r.GET("/dogs/:id", func(req *request.Request, res *response.Response) session.Outcome {
//	    _ = res.Send("dog " + req.Param("id"))
//	    return session.Terminate
//	})
//
//	sess, params, err := r.Match(request.GET, "/dogs/42")
//	// params["id"] == "42"
package router
