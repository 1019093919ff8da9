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

// Query maps query keys to optional values.
// A nil value means the key appeared without "=", as in "?flag".
type Query map[string]*string

// Get returns the value for key and whether a value was given.
func (q Query) Get(key string) (string, bool) {
	v, ok := q[key]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether key appeared in the query, with or without a value.
func (q Query) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// ParseQuery parses a raw query string.
// Tokens are separated by '&' or ';' and split once on '='.
// Values are kept verbatim; no percent-decoding is applied.
func ParseQuery(raw string) Query {
	q := make(Query)
	for token := range strings.FieldsFuncSeq(raw, isQuerySeparator) {
		key, value, found := strings.Cut(token, "=")
		if !found {
			q[key] = nil
			continue
		}
		q[key] = &value
	}
	return q
}

func isQuerySeparator(r rune) bool {
	return r == '&' || r == ';'
}
