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

// Package basicauth rejects requests without valid HTTP Basic credentials.
//
//	r.Use(basicauth.New(
//	    basicauth.WithUsers(map[string]string{"admin": "secret"}),
//	    basicauth.WithRealm("rawhttp"),
//	))
//
// Rejected requests get 401 Unauthorized with a WWW-Authenticate challenge
// and the session terminates.
package basicauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

// Option configures the stage.
type Option func(*config)

// unknownUserSecret is compared against when the username is not known.
const unknownUserSecret = "\x00unknown-user"

type config struct {
	users        map[string]string
	realm        string
	validator    func(username, password string) bool
	unauthorized func(req *request.Request, res *response.Response)
	skipPaths    map[string]bool
	compare      func(x, y []byte) int
}

// WithUsers sets the accepted username to password pairs.
func WithUsers(users map[string]string) Option {
	return func(c *config) {
		c.users = users
	}
}

// WithRealm sets the realm of the challenge. The default is "Restricted".
func WithRealm(realm string) Option {
	return func(c *config) {
		c.realm = realm
	}
}

// WithValidator checks credentials with fn instead of the user table.
func WithValidator(fn func(username, password string) bool) Option {
	return func(c *config) {
		c.validator = fn
	}
}

// WithUnauthorizedHandler replaces the default JSON body of a rejection. The
// challenge header is already set when fn runs.
func WithUnauthorizedHandler(fn func(req *request.Request, res *response.Response)) Option {
	return func(c *config) {
		c.unauthorized = fn
	}
}

// WithSkipPaths lets requests for the given full paths through unchecked.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

func defaultUnauthorized(_ *request.Request, res *response.Response) {
	_ = res.Status(response.StatusUnauthorized).SendJSON(map[string]string{
		"error": "Unauthorized",
		"code":  "UNAUTHORIZED",
	})
}

// New returns the stage.
func New(opts ...Option) session.Stage {
	stage, _ := newStage(opts...)
	return stage
}

func newStage(opts ...Option) (session.Stage, *config) {
	cfg := &config{
		users:        map[string]string{},
		realm:        "Restricted",
		unauthorized: defaultUnauthorized,
		skipPaths:    map[string]bool{},
		compare:      subtle.ConstantTimeCompare,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	challenge := `Basic realm="` + cfg.realm + `"`

	return func(req *request.Request, res *response.Response) session.Outcome {
		if cfg.skipPaths[req.Route] {
			return session.Continue
		}

		username, password, ok := Credentials(req)
		if ok && cfg.authenticate(username, password) {
			return session.Continue
		}

		res.Header("WWW-Authenticate", challenge)
		cfg.unauthorized(req, res)
		return session.Terminate
	}, cfg
}

func (c *config) authenticate(username, password string) bool {
	if c.validator != nil {
		return c.validator(username, password)
	}
	expected, ok := c.users[username]
	if !ok {
		expected = unknownUserSecret
	}
	// Known and unknown users take the same path through hashing and compare.
	got := sha256.Sum256([]byte(password))
	want := sha256.Sum256([]byte(expected))
	match := c.compare(got[:], want[:]) == 1
	return ok && match
}

// Credentials decodes the Authorization header of req.
func Credentials(req *request.Request) (username, password string, ok bool) {
	auth := req.Headers.Get("Authorization")
	encoded, found := strings.CutPrefix(auth, "Basic ")
	if !found {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// Username returns the user named in the request's credentials. It does not
// check the password; call it from stages running after the one from [New].
func Username(req *request.Request) string {
	username, _, _ := Credentials(req)
	return username
}
