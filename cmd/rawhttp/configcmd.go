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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rivaas.dev/rawhttp/config"
	"rivaas.dev/rawhttp/config/codec"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective server configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			encoder, err := codec.GetEncoder(codec.Type(format))
			if err != nil {
				return err
			}
			data, err := encoder.Encode(map[string]any{"server": settingsMap(settings)})
			if err != nil {
				return fmt.Errorf("encode %s: %w", format, err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", string(codec.TypeYAML), "output format: yaml, json or toml")
	return cmd
}

// settingsMap mirrors the layout of a configuration file, so the output can
// be saved and loaded back.
func settingsMap(s config.Server) map[string]any {
	return map[string]any{
		"address":          s.Address,
		"port":             s.Port,
		"workers":          s.Workers,
		"queue_size":       s.QueueSize,
		"read_timeout":     s.ReadTimeout.String(),
		"write_timeout":    s.WriteTimeout.String(),
		"max_header_bytes": s.MaxHeaderBytes,
		"max_body_bytes":   s.MaxBodyBytes,
		"max_connections":  s.MaxConnections,
		"log": map[string]any{
			"format": s.Log.Format,
			"level":  s.Log.Level,
			"sampling": map[string]any{
				"initial":    s.Log.Sampling.Initial,
				"thereafter": s.Log.Sampling.Thereafter,
				"tick":       s.Log.Sampling.Tick.String(),
			},
		},
		"errors": map[string]any{
			"format": s.Errors.Format,
		},
		"metrics": map[string]any{
			"enabled": s.Metrics.Enabled,
			"path":    s.Metrics.Path,
		},
		"tracing": map[string]any{
			"enabled":     s.Tracing.Enabled,
			"exporter":    s.Tracing.Exporter,
			"endpoint":    s.Tracing.Endpoint,
			"sample_rate": s.Tracing.SampleRate,
		},
	}
}
