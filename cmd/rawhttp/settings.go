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
	"context"
	"os"

	"github.com/spf13/cobra"

	"rivaas.dev/rawhttp/config"
	"rivaas.dev/rawhttp/logging"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/tracing"
)

// loadSettings layers the config file, the environment, Consul and the
// flags of cmd, in that order.
func loadSettings(ctx context.Context, cmd *cobra.Command) (config.Server, error) {
	var opts []config.Option
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	opts = append(opts, config.WithEnv(config.DefaultEnvPrefix))
	if key := os.Getenv("RAWHTTP_CONSUL_KEY"); key != "" {
		opts = append(opts, config.WithConsul(key))
	}

	settings, _, err := config.LoadServer(ctx, opts...)
	if err != nil {
		return config.Server{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		settings.Address, _ = flags.GetString("address")
	}
	if flags.Changed("port") {
		settings.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("workers") {
		settings.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("log-level") {
		settings.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics") {
		settings.Metrics.Enabled, _ = flags.GetBool("metrics")
	}
	if flags.Changed("tracing") {
		settings.Tracing.Enabled, _ = flags.GetBool("tracing")
	}
	return settings, settings.Validate()
}

func newLogger(settings config.Server) (*logging.Logger, error) {
	level, err := logging.ParseLevel(settings.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(settings.Log.Format)
	if err != nil {
		return nil, err
	}

	opts := []logging.Option{
		logging.WithFormat(format),
		logging.WithLevel(level),
		logging.WithService("rawhttp", version),
		logging.WithGlobalLogger(),
	}
	if sc := settings.Log.Sampling; sc.Enabled() {
		opts = append(opts, logging.WithSampling(logging.SamplingConfig{
			Initial:    sc.Initial,
			Thereafter: sc.Thereafter,
			Tick:       sc.Tick,
		}))
	}
	return logging.New(opts...)
}

// reloadLogLevel reads the settings again and applies their log level.
// It reports whether the level changed.
func reloadLogLevel(ctx context.Context, cmd *cobra.Command, logger *logging.Logger) (bool, error) {
	settings, err := loadSettings(ctx, cmd)
	if err != nil {
		return false, err
	}
	level, err := logging.ParseLevel(settings.Log.Level)
	if err != nil {
		return false, err
	}
	if level == logger.Level() {
		return false, nil
	}
	logger.SetLevel(level)
	return true, nil
}

// newMetrics returns nil when metrics are disabled.
func newMetrics(settings config.Server, logger *logging.Logger) (*metrics.Recorder, error) {
	if !settings.Metrics.Enabled {
		return nil, nil
	}
	return metrics.New(
		metrics.WithPrometheus(settings.Metrics.Path),
		metrics.WithServiceName("rawhttp"),
		metrics.WithServiceVersion(version),
		metrics.WithLogger(logger.Logger()),
	)
}

// newTracer returns nil when tracing is disabled.
func newTracer(settings config.Server, logger *logging.Logger) (*tracing.Tracer, error) {
	if !settings.Tracing.Enabled {
		return nil, nil
	}
	opts := []tracing.Option{
		tracing.WithServiceName("rawhttp"),
		tracing.WithServiceVersion(version),
		tracing.WithSampleRate(settings.Tracing.SampleRate),
		tracing.WithLogger(logger.Logger()),
	}
	switch settings.Tracing.Exporter {
	case "otlp":
		opts = append(opts, tracing.WithOTLP(settings.Tracing.Endpoint))
	case "otlp-grpc":
		opts = append(opts, tracing.WithOTLPGRPC(settings.Tracing.Endpoint))
	case "noop":
		opts = append(opts, tracing.WithNoop())
	default:
		opts = append(opts, tracing.WithStdout(os.Stderr))
	}
	return tracing.New(opts...)
}
