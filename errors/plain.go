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

// Plain answers with the reason phrase as text/plain, such as "Not Found".
// It is the server's default formatter.
type Plain struct {
	// StatusResolver overrides the status lookup when set.
	StatusResolver func(err error) int

	// Verbose appends the error text for client errors.
	Verbose bool
}

// Format implements [Formatter].
func (f *Plain) Format(_ *request.Request, err error) Response {
	e := inspect(err, f.StatusResolver)
	body := e.title
	if f.Verbose && e.status < 500 && e.detail != "" {
		body += ": " + e.detail
	}
	return Response{
		Status:      e.status,
		ContentType: "text/plain; charset=utf-8",
		Body:        body,
		Headers:     e.headers,
	}
}
