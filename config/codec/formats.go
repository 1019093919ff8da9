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
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Built-in document formats.
const (
	TypeJSON Type = "json"
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
)

func init() {
	for name, c := range map[Type]interface {
		Encoder
		Decoder
	}{
		TypeJSON: JSONCodec{},
		TypeYAML: YAMLCodec{},
		TypeTOML: TOMLCodec{},
	} {
		RegisterEncoder(name, c)
		RegisterDecoder(name, c)
	}
}

// JSONCodec reads and writes JSON documents.
type JSONCodec struct{}

// Encode implements [Encoder].
func (JSONCodec) Encode(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// Decode implements [Decoder].
func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

// YAMLCodec reads and writes YAML documents.
type YAMLCodec struct{}

// Encode implements [Encoder].
func (YAMLCodec) Encode(v any) ([]byte, error) { return yaml.Marshal(v) }

// Decode implements [Decoder].
func (YAMLCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// TOMLCodec reads and writes TOML documents.
type TOMLCodec struct{}

// Encode implements [Encoder].
func (TOMLCodec) Encode(v any) ([]byte, error) { return toml.Marshal(v) }

// Decode implements [Decoder].
func (TOMLCodec) Decode(data []byte, v any) error { return toml.Unmarshal(data, v) }
