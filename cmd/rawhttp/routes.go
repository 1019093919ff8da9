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
	"os"

	"github.com/spf13/cobra"

	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/server"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes the serve command would expose",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			var rec *metrics.Recorder
			if settings.Metrics.Enabled {
				if rec, err = metrics.New(metrics.WithPrometheus(settings.Metrics.Path)); err != nil {
					return err
				}
				defer func() { _ = rec.Shutdown(cmd.Context()) }()
			}

			staticDir, _ := cmd.Flags().GetString("static")
			srv, err := server.New()
			if err != nil {
				return err
			}
			if err = register(srv, demoMounts(appOptions{
				metrics:       rec,
				staticDir:     staticDir,
				adminPassword: os.Getenv("RAWHTTP_ADMIN_PASSWORD"),
			})); err != nil {
				return err
			}

			_, err = fmt.Fprintln(colorWriter(cmd.OutOrStdout()), routesTable(srv.Mounts()))
			return err
		},
	}
	cmd.Flags().String("static", "", "include the /assets mount")
	cmd.Flags().Bool("metrics", false, "include the metrics route")
	return cmd
}
