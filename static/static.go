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

// Package static serves files from a directory as a session stage.
//
// The file name comes from a capture segment of the route template, ":file"
// by default, so one route serves every file at the top of the directory:
//
//	r.GET("/assets/:file", static.Dir("./public"))
//	r.GET("/", static.Dir("./public")) // serves index.html
//
// Names that are not plain relative paths, or that start with a dot, are
// answered with 404 like missing files, so requests cannot escape the
// directory or read hidden files. Content-Type follows the file extension and
// falls back to sniffing the content.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	httperrors "rivaas.dev/rawhttp/errors"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

// ErrNotFound is reported for missing, hidden and rejected names.
var ErrNotFound = errors.New("file not found")

// Option configures the stage.
type Option func(*config)

type config struct {
	param        string
	index        string
	cacheControl string
	formatter    httperrors.Formatter
}

// WithParam names the capture holding the file name. The default is "file".
func WithParam(name string) Option {
	return func(c *config) {
		c.param = name
	}
}

// WithIndex sets the file served when the capture is absent or empty.
// The default is "index.html"; "" disables it.
func WithIndex(name string) Option {
	return func(c *config) {
		c.index = name
	}
}

// WithCacheControl sets a Cache-Control header on every file served.
func WithCacheControl(value string) Option {
	return func(c *config) {
		c.cacheControl = value
	}
}

// WithErrorFormatter renders 404 and 500 answers. The default is plain text.
func WithErrorFormatter(f httperrors.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// Dir serves files from the directory root.
func Dir(root string, opts ...Option) session.Stage {
	return New(os.DirFS(root), opts...)
}

// New serves files from fsys.
func New(fsys fs.FS, opts ...Option) session.Stage {
	cfg := &config{
		param:     "file",
		index:     "index.html",
		formatter: httperrors.NewPlain(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(req *request.Request, res *response.Response) session.Outcome {
		name := req.Param(cfg.param)
		if name == "" {
			name = cfg.index
		}

		data, err := readFile(fsys, name)
		if err != nil {
			status := response.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = response.StatusNotFound
			}
			_ = httperrors.Write(res, cfg.formatter, req, httperrors.WithStatus(err, status))
			return session.Terminate
		}

		res.Header("Content-Type", contentType(name, data))
		if cfg.cacheControl != "" {
			res.Header("Cache-Control", cfg.cacheControl)
		}
		_ = res.SendBytes(data)
		return session.Terminate
	}
}

func readFile(fsys fs.FS, name string) ([]byte, error) {
	if name == "" || !fs.ValidPath(name) || strings.HasPrefix(path.Base(name), ".") {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	info, err := fs.Stat(fsys, name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, name)
}

func contentType(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return mimetype.Detect(data).String()
}
