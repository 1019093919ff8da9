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

package request

import "strings"

// Method is an HTTP request method from the closed set the server understands.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	PATCH  Method = "PATCH"
	DELETE Method = "DELETE"

	// ALL registers a route for every method. It never appears on a decoded request.
	ALL Method = "*"
)

// Methods lists the concrete methods in a stable order.
var Methods = []Method{GET, POST, PUT, PATCH, DELETE}

// String returns the method token.
func (m Method) String() string {
	return string(m)
}

// Valid reports whether m may be used for route registration.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, PATCH, DELETE, ALL:
		return true
	}
	return false
}

// ParseMethod parses a method token case-insensitively.
// The wildcard is rejected since it is only meaningful at registration.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	if m == ALL || !m.Valid() {
		return "", &Error{Err: ErrUnsupportedMethod, Status: 501, Detail: s}
	}
	return m, nil
}
