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

package config

import (
	"context"
	_ "embed"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultEnvPrefix is the environment prefix used by the rawhttp command.
const DefaultEnvPrefix = "RAWHTTP_"

//go:embed server.schema.json
var serverSchema []byte

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("config"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Server is the "server" section of a rawhttp configuration file.
//
//	server:
//	  address: 0.0.0.0
//	  port: 8080
//	  workers: 16
//	  queue_size: 128
//	  read_timeout: 10s
//	  log:
//	    format: json
//	    level: info
//	  errors:
//	    format: rfc9457
//	  metrics:
//	    enabled: true
//	    path: /metrics
type Server struct {
	Address        string        `config:"address" validate:"required,hostname|ip"`
	Port           int           `config:"port" validate:"gte=0,lte=65535"`
	Workers        int           `config:"workers" validate:"gte=1"`
	QueueSize      int           `config:"queue_size" validate:"gte=0"`
	ReadTimeout    time.Duration `config:"read_timeout" validate:"gte=0s"`
	WriteTimeout   time.Duration `config:"write_timeout" validate:"gte=0s"`
	MaxHeaderBytes int           `config:"max_header_bytes" validate:"gte=0"`
	MaxBodyBytes   int64         `config:"max_body_bytes" validate:"gte=0"`
	MaxConnections int           `config:"max_connections" validate:"gte=0"`
	Log            Log           `config:"log"`
	Errors         Errors        `config:"errors"`
	Metrics        Metrics       `config:"metrics"`
	Tracing        Tracing       `config:"tracing"`
}

// Log selects the access log handler.
type Log struct {
	Format   string   `config:"format" validate:"oneof=json text console"`
	Level    string   `config:"level" validate:"oneof=debug info warn error"`
	Sampling Sampling `config:"sampling"`
}

// Sampling thins out records below error level. All zero disables it.
type Sampling struct {
	Initial    int           `config:"initial" validate:"gte=0"`
	Thereafter int           `config:"thereafter" validate:"gte=0"`
	Tick       time.Duration `config:"tick" validate:"gte=0s"`
}

// Enabled reports whether any sampling is configured.
func (s Sampling) Enabled() bool {
	return s.Initial > 0 || s.Thereafter > 0
}

// Errors selects the body format of error responses.
type Errors struct {
	Format string `config:"format" validate:"oneof=plain simple rfc9457 jsonapi"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `config:"enabled"`
	Path    string `config:"path" validate:"startswith=/"`
}

// Tracing controls request spans.
type Tracing struct {
	Enabled    bool    `config:"enabled"`
	Exporter   string  `config:"exporter" validate:"oneof=noop stdout otlp otlp-grpc"`
	Endpoint   string  `config:"endpoint" validate:"required_if=Exporter otlp,required_if=Exporter otlp-grpc"`
	SampleRate float64 `config:"sample_rate" validate:"gte=0,lte=1"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Server {
	return Server{
		Address:        "127.0.0.1",
		Port:           8080,
		Workers:        8,
		QueueSize:      64,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 64 << 10,
		MaxBodyBytes:   4 << 20,
		Log:            Log{Format: "text", Level: "info"},
		Errors:         Errors{Format: "plain"},
		Metrics:        Metrics{Path: "/metrics"},
		Tracing:        Tracing{Exporter: "stdout", SampleRate: 1},
	}
}

// Validate checks field ranges and enumerations. The returned [Error] names
// the first offending key.
func (s Server) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		_, key, _ := strings.Cut(fields[0].Namespace(), ".")
		return NewFieldError("server", key, "validate", err)
	}
	return NewError("server", "validate", err)
}

type document struct {
	Server Server `config:"server"`
}

func (d *document) Validate() error {
	return d.Server.Validate()
}

// LoadServer builds a Config from opts, checks it against the server schema
// and returns [Defaults] overlaid with the "server" section.
func LoadServer(ctx context.Context, opts ...Option) (Server, *Config, error) {
	cfg, err := New(append([]Option{WithJSONSchema(serverSchema)}, opts...)...)
	if err != nil {
		return Server{}, nil, err
	}
	doc := document{Server: Defaults()}
	if err = cfg.Load(ctx, &doc); err != nil {
		return Server{}, nil, err
	}
	return doc.Server, cfg, nil
}
