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

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// TypeEnvVar decodes newline separated KEY=value pairs.
const TypeEnvVar Type = "env_var"

func init() {
	RegisterEncoder(TypeEnvVar, EnvVarCodec{})
	RegisterDecoder(TypeEnvVar, EnvVarCodec{})
}

// EnvVarCodec decodes environment variable lists into nested maps.
//
// Keys are lower-cased and a single underscore starts a new level, so
// SERVER_PORT=80 becomes {"server": {"port": "80"}}. A double underscore
// stands for a literal underscore inside one key: SERVER_QUEUE__SIZE=4
// becomes {"server": {"queue_size": "4"}}. Values stay strings.
type EnvVarCodec struct{}

// Encode is not supported.
func (EnvVarCodec) Encode(any) ([]byte, error) {
	return nil, errors.New("encoding to environment variables is not supported")
}

// Decode implements [Decoder]. v must be a *map[string]any.
func (EnvVarCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvVarCodec.Decode: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	for _, line := range bytes.Split(data, []byte("\n")) {
		key, value, found := strings.Cut(string(line), "=")
		if !found {
			continue
		}
		parts := SplitEnvKey(strings.TrimSpace(key))
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				// A scalar set by a shorter key gives way to the nested one.
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}

	*ptr = conf
	return nil
}

// SplitEnvKey lower-cases key and splits it into map levels.
func SplitEnvKey(key string) []string {
	var parts []string
	for i, chunk := range strings.Split(strings.ToLower(key), "__") {
		fields := strings.Split(chunk, "_")
		if i > 0 && len(parts) > 0 {
			parts[len(parts)-1] += "_" + fields[0]
			fields = fields[1:]
		}
		parts = append(parts, fields...)
	}

	out := parts[:0]
	for _, part := range parts {
		if part = strings.Trim(part, "_"); part != "" {
			out = append(out, part)
		}
	}
	return out
}
