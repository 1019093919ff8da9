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

// Package config loads rawhttp settings from layered sources.
//
// Sources are read in the order they are given and merged key by key, later
// sources overriding earlier ones. Keys are case-insensitive. A typical
// command line setup layers a file, the environment and Consul:
//
//	srv, cfg, err := config.LoadServer(ctx,
//	    config.WithFile("rawhttp.yaml"),
//	    config.WithEnv(config.DefaultEnvPrefix),
//	    config.WithConsul("${RAWHTTP_ENV}/rawhttp.yaml"),
//	)
//
// With the "RAWHTTP_" prefix, RAWHTTP_SERVER_PORT=9000 sets server.port and
// RAWHTTP_SERVER_QUEUE__SIZE=32 sets server.queue_size: a single underscore
// opens a nested section and a double one is kept as a literal underscore.
//
// # Binding
//
// [Config.Load] decodes the merged values into the targets it is given using
// the "config" struct tag. Strings are converted to numbers, booleans and
// durations, so environment values bind like file values. Targets that
// implement [Validator] are checked before they are updated.
//
// # Errors
//
// Failures are reported as [*Error], naming the source, the operation and,
// for validation, the offending key.
package config
