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

// Package session runs the middleware pipeline bound to a route.
//
// A [Session] has three phases, before, then and after, each an ordered
// list of [Stage] functions. Every stage returns an [Outcome]: [Continue]
// hands control to the next stage, [Terminate] stops the whole pipeline.
// [Terminate] is the zero value, so a stage cannot forget to decide.
//
//	auth := func(req *request.Request, res *response.Response) session.Outcome {
//	    if req.Headers.Get("Authorization") == "" {
//	        _ = res.Status(401).Send("")
//	        return session.Terminate
//	    }
//	    return session.Continue
//	}
//
//	hello := func(req *request.Request, res *response.Response) session.Outcome {
//	    _ = res.Send("Hello")
//	    return session.Terminate
//	}
//
//	s := session.New().Before(auth).Then(hello)
//
// A bare [Stage] is also [Sessionable]: it behaves as a session whose then
// phase holds only that stage.
package session
