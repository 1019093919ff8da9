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

// Package middleware holds session stages that are useful across routers.
//
// Each subpackage exposes New(opts...) returning a [session.Stage]. Install
// them for every route with router.Use, or per route in a session's before
// phase:
//
//	r := router.MustNew()
//	r.Use(requestid.New())
//	r.Handle(request.POST, "/upload", session.New().
//	    Before(basicauth.New(basicauth.WithUsers(users)), bodylimit.New(bodylimit.WithLimit(1<<20))).
//	    Then(upload))
//
// A stage that rejects a request sends the response itself and returns
// [session.Terminate]; otherwise it returns [session.Continue].
//
// [session.Stage]: rivaas.dev/rawhttp/session.Stage
// [session.Terminate]: rivaas.dev/rawhttp/session.Terminate
// [session.Continue]: rivaas.dev/rawhttp/session.Continue
package middleware
