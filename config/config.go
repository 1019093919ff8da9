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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/rawhttp/config/codec"
	"rivaas.dev/rawhttp/config/source"
)

// Option configures a [Config].
type Option func(c *Config) error

// Validator is implemented by bind targets that check themselves after decoding.
type Validator interface {
	Validate() error
}

// Config merges configuration sources in order and binds the result to structs.
// It is safe for concurrent use; Load replaces the values atomically.
type Config struct {
	mu         sync.RWMutex
	values     map[string]any
	sources    []Source
	tagName    string
	schema     *jsonschema.Schema
	validators []func(map[string]any) error
}

// New creates a Config. Option errors are joined and returned together
// with the partially built Config.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		values:  map[string]any{},
		tagName: "config",
	}

	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return c, errs
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Config {
	c, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("config.MustNew: %v", err))
	}
	return c
}

// WithSource appends a custom source.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile appends a file source. The format follows the extension:
// .yaml, .yml, .json or .toml. Environment variables in path are expanded.
func WithFile(path string) Option {
	return func(c *Config) error {
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}
		return WithFileAs(path, format)(c)
	}
}

// WithFileAs appends a file source decoded with an explicit format.
func WithFileAs(path string, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFile(os.ExpandEnv(path), decoder))
		return nil
	}
}

// WithContent appends an in-memory document.
func WithContent(data []byte, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFileContent(data, decoder))
		return nil
	}
}

// WithEnv appends the environment variables starting with prefix.
// RAWHTTP_SERVER_PORT with prefix "RAWHTTP_" sets server.port and
// RAWHTTP_SERVER_QUEUE__SIZE sets server.queue_size.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, source.NewOSEnvVar(prefix))
		return nil
	}
}

// WithConsul appends a Consul KV source whose format follows the key's
// extension. It is skipped when CONSUL_HTTP_ADDR is unset, so local runs work
// without an agent.
func WithConsul(key string) Option {
	return func(c *Config) error {
		format, err := detectFormat(key)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}
		return WithConsulAs(key, format)(c)
	}
}

// WithConsulAs is like [WithConsul] with an explicit format. Caster formats
// read a single scalar key.
func WithConsulAs(key string, format codec.Type) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("consul-source", "get-decoder", err)
		}
		src, err := source.NewConsul(os.ExpandEnv(key), decoder, nil)
		if err != nil {
			return NewError("consul-source", "create-client", err)
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithTag sets the struct tag used when binding. The default is "config".
func WithTag(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return errors.New("tag name cannot be empty")
		}
		c.tagName = name
		return nil
	}
}

// WithJSONSchema validates the merged values against schema on every Load.
func WithJSONSchema(schema []byte) Option {
	return func(c *Config) error {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return NewError("json-schema", "parse", err)
		}
		compiler := jsonschema.NewCompiler()
		if err = compiler.AddResource("schema.json", doc); err != nil {
			return NewError("json-schema", "compile", err)
		}
		compiled, err := compiler.Compile("schema.json")
		if err != nil {
			return NewError("json-schema", "compile", err)
		}
		c.schema = compiled
		return nil
	}
}

// WithValidator adds a check over the merged values, run after the schema.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		c.validators = append(c.validators, fn)
		return nil
	}
}

// Load reads every source in order, merges them with later sources winning,
// validates the result and decodes it into each target. Targets must be
// pointers; fields absent from the configuration keep their current values,
// so targets can be pre-filled with defaults. A target is left unchanged
// when its decoding or validation fails.
func (c *Config) Load(ctx context.Context, targets ...any) error {
	if ctx == nil {
		return errors.New("context cannot be nil")
	}

	values := make(map[string]any)
	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		layer, err := src.Load(ctx)
		if err != nil {
			return NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if err = mergo.Map(&values, normalizeKeys(layer), mergo.WithOverride); err != nil {
			return NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	if c.schema != nil {
		if err := c.schema.Validate(values); err != nil {
			return NewError("json-schema", "validate", err)
		}
	}
	for i, fn := range c.validators {
		if err := runValidator(fn, values); err != nil {
			return NewError(fmt.Sprintf("validator[%d]", i), "validate", err)
		}
	}

	for _, target := range targets {
		if err := c.bind(values, target); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.values = values
	c.mu.Unlock()
	return nil
}

// MustLoad is like [Config.Load] but panics on error.
func (c *Config) MustLoad(ctx context.Context, targets ...any) {
	if err := c.Load(ctx, targets...); err != nil {
		panic(err)
	}
}

// Values returns a copy of the top level of the merged values.
func (c *Config) Values() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func runValidator(fn func(map[string]any) error, values map[string]any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("validator panic: %v", rec)
		}
	}()
	return fn(values)
}

func (c *Config) bind(values map[string]any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return NewError("binding", "bind", fmt.Errorf("target must be a non-nil pointer, got %T", target))
	}

	// Decode into a copy so a failed validation leaves the target untouched.
	scratch := reflect.New(rv.Elem().Type())
	scratch.Elem().Set(rv.Elem())

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          c.tagName,
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           scratch.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return NewError("binding", "bind", err)
	}
	if err = decoder.Decode(values); err != nil {
		return NewError("binding", "bind", err)
	}

	if v, ok := scratch.Interface().(Validator); ok {
		if err = v.Validate(); err != nil {
			var cfgErr *Error
			if errors.As(err, &cfgErr) {
				return err
			}
			return NewError("binding", "validate", err)
		}
	}

	rv.Elem().Set(scratch.Elem())
	return nil
}

// normalizeKeys lower-cases keys at every level so sources agree on casing.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
