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

package response

import "errors"

var (
	// ErrUnknownStatus indicates a status code without an entry in the reason table.
	// Nothing is written to the connection when it is returned.
	ErrUnknownStatus = errors.New("unknown status code")

	// ErrAlreadySent indicates a second terminal operation on the same response.
	ErrAlreadySent = errors.New("response already sent")

	// ErrFileNotFound indicates that SendFile could not find the requested file.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidHeader indicates a header name or value that cannot be put on
	// the wire as is, such as a value containing CR or LF.
	ErrInvalidHeader = errors.New("invalid response header")

	// ErrNilWriter indicates that the response has no connection to write to.
	ErrNilWriter = errors.New("response writer is nil")
)

// FileError reports a SendFile failure and carries the status to answer with.
type FileError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *FileError) Error() string {
	return "send file " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 404 for missing files and 500 otherwise.
func (e *FileError) HTTPStatus() int {
	if errors.Is(e.Err, ErrFileNotFound) {
		return StatusNotFound
	}
	return StatusInternalServerError
}
