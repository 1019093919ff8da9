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
	"fmt"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// Write formats err with f and sends the result on res.
// A nil formatter falls back to [Plain]. req may be nil.
//
// Example:
//
//	if err := load(req); err != nil {
//		_ = errors.Write(res, errors.NewSimple(), req, err)
//		return session.Terminate
//	}
func Write(res *response.Response, f Formatter, req *request.Request, err error) error {
	if res == nil {
		return response.ErrNilWriter
	}
	if f == nil {
		f = NewPlain()
	}
	out := f.Format(req, err)

	body, encErr := encodeBody(out.Body)
	if encErr != nil {
		return encErr
	}

	for name, value := range out.Headers {
		res.Header(name, value)
	}
	if out.ContentType != "" {
		res.ContentType(out.ContentType)
	}
	return res.Status(out.Status).SendBytes(body)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("JSON encoding failed for type %T: %w", body, err)
		}
		return data, nil
	}
}
