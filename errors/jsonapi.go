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
	"encoding/json"
	"strconv"
	"strings"

	"rivaas.dev/rawhttp/request"
)

// JSONAPI answers with a JSON:API error document of type
// application/vnd.api+json (https://jsonapi.org/format/#errors).
//
// Details shaped as a list of {"path", "code", "message", "meta"} objects
// become one error object each, with path turned into a source pointer.
// Other details go under meta.details of a single error object.
type JSONAPI struct {
	// StatusResolver overrides the status lookup when set.
	StatusResolver func(err error) int
}

// JSONAPIDocument is the body produced by [JSONAPI].
type JSONAPIDocument struct {
	Errors []JSONAPIError `json:"errors"`
}

// JSONAPIError is one member of [JSONAPIDocument].Errors.
type JSONAPIError struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title"`
	Detail string         `json:"detail,omitempty"`
	Source *JSONAPISource `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// JSONAPISource points at the offending member of the request document.
type JSONAPISource struct {
	Pointer string `json:"pointer"`
}

// fieldDetail is the shape of a per-field detail entry.
type fieldDetail struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

// Format implements [Formatter].
func (f *JSONAPI) Format(_ *request.Request, err error) Response {
	e := inspect(err, f.StatusResolver)
	base := JSONAPIError{
		Status: strconv.Itoa(e.status),
		Code:   e.code,
		Title:  e.title,
		Detail: e.detail,
	}

	var out []JSONAPIError
	if e.details != nil {
		fields, ok := asFieldDetails(e.details)
		for _, fd := range fields {
			item := base
			if fd.Path != "" {
				item.Source = &JSONAPISource{Pointer: "/data/attributes/" + strings.ReplaceAll(fd.Path, ".", "/")}
			}
			if fd.Code != "" {
				item.Code = fd.Code
			}
			if fd.Message != "" {
				item.Detail = fd.Message
			}
			item.Meta = fd.Meta
			out = append(out, item)
		}
		if !ok || len(out) == 0 {
			base.Meta = map[string]any{"details": e.details}
			out = nil
		}
	}
	if len(out) == 0 {
		out = []JSONAPIError{base}
	}
	for i := range out {
		out[i].ID = newErrorID()
	}

	return Response{
		Status:      e.status,
		ContentType: "application/vnd.api+json; charset=utf-8",
		Body:        JSONAPIDocument{Errors: out},
		Headers:     e.headers,
	}
}

// asFieldDetails reads details through JSON so any list of structs with
// matching tags qualifies.
func asFieldDetails(details any) ([]fieldDetail, bool) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, false
	}
	var fields []fieldDetail
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
