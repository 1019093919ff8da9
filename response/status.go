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

// Status codes with a reason phrase in the status table.
const (
	StatusContinue              = 100
	StatusOK                    = 200
	StatusCreated               = 201
	StatusNoContent             = 204
	StatusMovedPermanently      = 301
	StatusFound                 = 302
	StatusNotModified           = 304
	StatusBadRequest            = 400
	StatusUnauthorized          = 401
	StatusForbidden             = 403
	StatusNotFound              = 404
	StatusMethodNotAllowed      = 405
	StatusRequestTimeout        = 408
	StatusRequestEntityTooLarge = 413
	StatusRequestURITooLong     = 414
	StatusTeapot                = 418
	StatusHeaderFieldsTooLarge  = 431
	StatusInternalServerError   = 500
	StatusNotImplemented        = 501
	StatusServiceUnavailable    = 503
)

var statusText = map[int]string{
	StatusContinue:              "Continue",
	StatusOK:                    "OK",
	StatusCreated:               "Created",
	StatusNoContent:             "No Content",
	StatusMovedPermanently:      "Moved Permanently",
	StatusFound:                 "Found",
	StatusNotModified:           "Not Modified",
	StatusBadRequest:            "Bad Request",
	StatusUnauthorized:          "Unauthorized",
	StatusForbidden:             "Forbidden",
	StatusNotFound:              "Not Found",
	StatusMethodNotAllowed:      "Method Not Allowed",
	StatusRequestTimeout:        "Request Timeout",
	StatusRequestEntityTooLarge: "Request Entity Too Large",
	StatusRequestURITooLong:     "Request-URI Too Long",
	StatusTeapot:                "I'm a teapot",
	StatusHeaderFieldsTooLarge:  "Request Header Fields Too Large",
	StatusInternalServerError:   "Internal Server Error",
	StatusNotImplemented:        "Not Implemented",
	StatusServiceUnavailable:    "Service Unavailable",
}

// StatusText returns the reason phrase for code and whether the code is known.
func StatusText(code int) (string, bool) {
	text, ok := statusText[code]
	return text, ok
}
