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


package errors

import (
	"rivaas.dev/rawhttp/request"
)

// Simple answers with a small JSON object:
//
//	{"error":"route not found","code":"NOT_FOUND"}
//
// code and details appear only when the error provides them.
type Simple struct {
	// StatusResolver overrides the status lookup when set.
	StatusResolver func(err error) int
}

// SimpleBody is the body produced by [Simple].
type SimpleBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Format implements [Formatter].
func (f *Simple) Format(_ *request.Request, err error) Response {
	e := inspect(err, f.StatusResolver)
	return Response{
		Status:      e.status,
		ContentType: "application/json; charset=utf-8",
		Body:        SimpleBody{Error: e.detail, Code: e.code, Details: e.details},
		Headers:     e.headers,
	}
}
