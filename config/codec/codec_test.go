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

//go:build !integration

package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEnvKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want []string
	}{
		{"SERVER_PORT", []string{"server", "port"}},
		{"SERVER_QUEUE__SIZE", []string{"server", "queue_size"}},
		{"SERVER_LOG_LEVEL", []string{"server", "log", "level"}},
		{"SERVER_MAX__HEADER__BYTES", []string{"server", "max_header_bytes"}},
		{"_SERVER__", []string{"server"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			got := SplitEnvKey(tt.key)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvVarCodec_Decode(t *testing.T) {
	t.Parallel()

	data := []byte("SERVER_PORT=8080\nSERVER_QUEUE__SIZE= 16 \nSERVER_LOG_LEVEL=debug\nbroken line\nNAME=a=b")

	var got map[string]any
	require.NoError(t, EnvVarCodec{}.Decode(data, &got))

	assert.Equal(t, map[string]any{
		"server": map[string]any{
			"port":       "8080",
			"queue_size": "16",
			"log":        map[string]any{"level": "debug"},
		},
		"name": "a=b",
	}, got)
}

func TestEnvVarCodec_NestedKeyReplacesScalar(t *testing.T) {
	t.Parallel()

	var got map[string]any
	require.NoError(t, EnvVarCodec{}.Decode([]byte("LOG=on\nLOG_LEVEL=warn"), &got))
	assert.Equal(t, map[string]any{"log": map[string]any{"level": "warn"}}, got)
}

func TestEnvVarCodec_Errors(t *testing.T) {
	t.Parallel()

	var wrong map[string]string
	require.Error(t, EnvVarCodec{}.Decode(nil, &wrong))

	_, err := EnvVarCodec{}.Encode(map[string]any{})
	require.Error(t, err)
}

func TestDocumentCodecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name Type
		data string
	}{
		{TypeJSON, `{"server": {"port": 8080, "address": "0.0.0.0"}}`},
		{TypeYAML, "server:\n  port: 8080\n  address: 0.0.0.0\n"},
		{TypeTOML, "[server]\nport = 8080\naddress = \"0.0.0.0\"\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			t.Parallel()

			dec, err := GetDecoder(tt.name)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, dec.Decode([]byte(tt.data), &got))

			server, ok := got["server"].(map[string]any)
			require.True(t, ok, "server section should decode to a map, got %T", got["server"])
			assert.Equal(t, "0.0.0.0", server["address"])
			assert.EqualValues(t, 8080, server["port"])

			enc, err := GetEncoder(tt.name)
			require.NoError(t, err)
			out, err := enc.Encode(got)
			require.NoError(t, err)
			assert.Contains(t, string(out), "0.0.0.0")
		})
	}
}

func TestRegistry_Unknown(t *testing.T) {
	t.Parallel()

	_, err := GetDecoder("ini")
	require.ErrorContains(t, err, "decoder not found")

	_, err = GetEncoder(TypeCasterInt)
	require.ErrorContains(t, err, "encoder not found")
}

func TestCasterCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Type
		in   string
		want any
	}{
		{TypeCasterString, "hello", "hello"},
		{TypeCasterBool, "true", true},
		{TypeCasterInt, "42", 42},
		{TypeCasterInt64, "42", int64(42)},
		{TypeCasterFloat64, "0.25", 0.25},
		{TypeCasterDuration, "15s", 15 * time.Second},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			dec, err := GetDecoder(tt.kind)
			require.NoError(t, err)

			var got any
			require.NoError(t, dec.Decode([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var got any
	require.Error(t, NewCaster(TypeCasterInt).Decode([]byte("many"), &got))
	require.Error(t, NewCaster(TypeCasterInt).Decode([]byte("1"), &map[string]any{}))
	require.Error(t, NewCaster("caster-complex").Decode([]byte("1"), &got))
}
