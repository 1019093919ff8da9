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

package source

import (
	"context"
	"fmt"
	"path"

	"github.com/hashicorp/consul/api"

	"rivaas.dev/rawhttp/config/codec"
)

// ConsulKV is the part of the Consul KV client the source uses.
type ConsulKV interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// Consul reads one key from the Consul KV store.
//
// Document decoders produce the whole map. A caster decoder produces a single
// entry named after the last key segment, so rawhttp/server/port read with
// [codec.TypeCasterInt] yields {"port": 8080}.
type Consul struct {
	kv        ConsulKV
	key       string
	decoder   codec.Decoder
	lastIndex uint64
}

// NewConsul returns a source for key. When kv is nil a client is built from
// the CONSUL_HTTP_* environment variables.
func NewConsul(key string, decoder codec.Decoder, kv ConsulKV) (*Consul, error) {
	if kv == nil {
		client, err := api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create consul client: %w", err)
		}
		kv = client.KV()
	}
	return &Consul{kv: kv, key: key, decoder: decoder}, nil
}

// LastIndex returns the Consul index observed by the last successful Load.
func (c *Consul) LastIndex() uint64 {
	return c.lastIndex
}

// Load fetches and decodes the key. A missing key yields an empty map.
func (c *Consul) Load(ctx context.Context) (map[string]any, error) {
	pair, meta, err := c.kv.Get(c.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get consul key %q: %w", c.key, err)
	}
	if meta != nil {
		c.lastIndex = meta.LastIndex
	}
	if pair == nil {
		return map[string]any{}, nil
	}

	if caster, ok := c.decoder.(*codec.CasterCodec); ok {
		var value any
		if err := caster.Decode(pair.Value, &value); err != nil {
			return nil, fmt.Errorf("failed to decode consul value: %w", err)
		}
		return map[string]any{path.Base(pair.Key): value}, nil
	}

	var conf map[string]any
	if err := c.decoder.Decode(pair.Value, &conf); err != nil {
		return nil, fmt.Errorf("failed to decode consul value: %w", err)
	}
	return conf, nil
}
