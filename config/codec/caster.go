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
	"fmt"

	"github.com/spf13/cast"
)

// Caster types decode a single scalar instead of a document. They are meant
// for Consul keys that hold one value, such as rawhttp/server/port.
const (
	TypeCasterString   Type = "caster-string"
	TypeCasterBool     Type = "caster-bool"
	TypeCasterInt      Type = "caster-int"
	TypeCasterInt64    Type = "caster-int64"
	TypeCasterFloat64  Type = "caster-float64"
	TypeCasterDuration Type = "caster-duration"
)

var casts = map[Type]func(any) (any, error){
	TypeCasterString:   func(v any) (any, error) { return cast.ToStringE(v) },
	TypeCasterBool:     func(v any) (any, error) { return cast.ToBoolE(v) },
	TypeCasterInt:      func(v any) (any, error) { return cast.ToIntE(v) },
	TypeCasterInt64:    func(v any) (any, error) { return cast.ToInt64E(v) },
	TypeCasterFloat64:  func(v any) (any, error) { return cast.ToFloat64E(v) },
	TypeCasterDuration: func(v any) (any, error) { return cast.ToDurationE(v) },
}

func init() {
	for name := range casts {
		RegisterDecoder(name, NewCaster(name))
	}
}

// CasterCodec converts raw bytes into one typed value.
type CasterCodec struct {
	kind Type
}

// NewCaster returns a caster for one of the TypeCaster* types.
func NewCaster(kind Type) *CasterCodec {
	return &CasterCodec{kind: kind}
}

// Decode implements [Decoder]. v must be a *any.
func (c *CasterCodec) Decode(data []byte, v any) error {
	out, ok := v.(*any)
	if !ok {
		return fmt.Errorf("CasterCodec.Decode: expected *any, got %T", v)
	}
	fn, ok := casts[c.kind]
	if !ok {
		return fmt.Errorf("unknown caster type: %s", c.kind)
	}
	value, err := fn(string(data))
	if err != nil {
		return err
	}
	*out = value
	return nil
}
