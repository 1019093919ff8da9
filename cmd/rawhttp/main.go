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

// Command rawhttp runs a demonstration rawhttp server.
//
//	rawhttp serve --config rawhttp.yaml --port 8080
//	rawhttp routes
//	rawhttp config
//	rawhttp version
//
// Settings come from the optional config file, then RAWHTTP_* environment
// variables, then Consul when CONSUL_HTTP_ADDR and RAWHTTP_CONSUL_KEY are
// set, and finally command line flags.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rawhttp",
		Short: "A small HTTP/1.x server on raw TCP connections",
		Long: `rawhttp decodes requests straight from TCP connections, routes them
through mounted routers and runs each route's session of stages.

Every connection carries one request and is closed after the response.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "configuration file (yaml, json or toml)")

	root.AddCommand(
		serveCmd(),
		routesCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rawhttp %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
