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

// Package response serializes HTTP/1.1 responses onto a connection.
//
// The wire format is
//
//	HTTP/1.1 {code} {reason}\r\n
//	{Name}: {value}\r\n ...
//	\r\n
//	{body}
//
// Reasons come from a fixed table. A code missing from the table yields
// [ErrUnknownStatus] and nothing is written.
package response
