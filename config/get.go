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
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Get returns the value at a dotted, case-insensitive key such as
// "server.log.level", or nil when any segment is missing.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	current := c.values
	segments := strings.Split(strings.ToLower(key), ".")
	for i, segment := range segments {
		value, ok := current[segment]
		if !ok {
			return nil
		}
		if i == len(segments)-1 {
			return value
		}
		if current, ok = value.(map[string]any); !ok {
			return nil
		}
	}
	return nil
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	return c.Get(key) != nil
}

// String returns the value at key converted with cast, or "".
func (c *Config) String(key string) string {
	return cast.ToString(c.Get(key))
}

// Int returns the value at key converted with cast, or 0.
func (c *Config) Int(key string) int {
	return cast.ToInt(c.Get(key))
}

// Int64 returns the value at key converted with cast, or 0.
func (c *Config) Int64(key string) int64 {
	return cast.ToInt64(c.Get(key))
}

// Float64 returns the value at key converted with cast, or 0.
func (c *Config) Float64(key string) float64 {
	return cast.ToFloat64(c.Get(key))
}

// Bool returns the value at key converted with cast, or false.
func (c *Config) Bool(key string) bool {
	return cast.ToBool(c.Get(key))
}

// Duration returns the value at key converted with cast. Strings use
// time.ParseDuration syntax; bare numbers are nanoseconds.
func (c *Config) Duration(key string) time.Duration {
	return cast.ToDuration(c.Get(key))
}

// StringSlice returns the value at key as a slice of strings.
func (c *Config) StringSlice(key string) []string {
	return cast.ToStringSlice(c.Get(key))
}

// StringMap returns the section at key.
func (c *Config) StringMap(key string) map[string]any {
	return cast.ToStringMap(c.Get(key))
}

// StringOr returns the value at key, or def when key is unset.
func (c *Config) StringOr(key, def string) string {
	return or(c, key, def, cast.ToStringE)
}

// IntOr returns the value at key, or def when key is unset or not a number.
func (c *Config) IntOr(key string, def int) int {
	return or(c, key, def, cast.ToIntE)
}

// BoolOr returns the value at key, or def when key is unset or not a bool.
func (c *Config) BoolOr(key string, def bool) bool {
	return or(c, key, def, cast.ToBoolE)
}

// DurationOr returns the value at key, or def when key is unset or not a duration.
func (c *Config) DurationOr(key string, def time.Duration) time.Duration {
	return or(c, key, def, cast.ToDurationE)
}

func or[T any](c *Config, key string, def T, conv func(any) (T, error)) T {
	value := c.Get(key)
	if value == nil {
		return def
	}
	out, err := conv(value)
	if err != nil {
		return def
	}
	return out
}
