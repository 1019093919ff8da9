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
	"strings"

	"github.com/google/uuid"

	"rivaas.dev/rawhttp/request"
)

// RFC9457 answers with a Problem Details document (RFC 9457) of type
// application/problem+json. The problem type is BaseURL joined with the
// error code, the bare code without a BaseURL, and "about:blank" for errors
// without a code.
type RFC9457 struct {
	BaseURL string

	// StatusResolver overrides the status lookup when set.
	StatusResolver func(err error) int

	// NewID returns the error_id member. Nil uses a random UUID and a
	// function returning "" leaves the member out.
	NewID func() string
}

// Problem is the body produced by [RFC9457]. Instance is the request route.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	ErrorID  string `json:"error_id,omitempty"`
	Code     string `json:"code,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// Format implements [Formatter].
func (f *RFC9457) Format(req *request.Request, err error) Response {
	e := inspect(err, f.StatusResolver)
	p := Problem{
		Type:    f.problemType(e.code),
		Title:   e.title,
		Status:  e.status,
		Detail:  e.detail,
		ErrorID: f.errorID(),
		Code:    e.code,
		Errors:  e.details,
	}
	if req != nil {
		p.Instance = req.Route
	}
	return Response{
		Status:      e.status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
		Headers:     e.headers,
	}
}

func (f *RFC9457) problemType(code string) string {
	switch {
	case code == "":
		return "about:blank"
	case f.BaseURL == "":
		return code
	}
	return strings.TrimSuffix(f.BaseURL, "/") + "/" + code
}

func (f *RFC9457) errorID() string {
	if f.NewID != nil {
		return f.NewID()
	}
	return newErrorID()
}

func newErrorID() string {
	return "err-" + uuid.NewString()
}
