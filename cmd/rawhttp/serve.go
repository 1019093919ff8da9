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
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rivaas.dev/rawhttp/logging"
	"rivaas.dev/rawhttp/server"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("address", "", "address to bind")
	flags.IntP("port", "p", 0, "port to listen on, 0 picks a free one")
	flags.Int("workers", 0, "number of connection workers")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("metrics", false, "expose Prometheus metrics")
	flags.Bool("tracing", false, "record a span per request")
	flags.String("static", "", "directory served under /assets")
	flags.String("admin-password", os.Getenv("RAWHTTP_ADMIN_PASSWORD"), "enable GET /admin behind basic auth")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	settings, err := loadSettings(ctx, cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(settings)
	if err != nil {
		return err
	}
	// Startup messages wait until the banner is out.
	logger.Hold()

	rec, err := newMetrics(settings, logger)
	if err != nil {
		return err
	}
	tracer, err := newTracer(settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if rec != nil {
			_ = rec.Shutdown(shutdownCtx)
		}
		if tracer != nil {
			_ = tracer.Shutdown(shutdownCtx)
		}
		_ = logger.Shutdown(shutdownCtx)
	}()

	opts := []server.Option{server.WithConfig(settings), server.WithLogger(logger)}
	if rec != nil {
		opts = append(opts, server.WithMetrics(rec))
	}
	if tracer != nil {
		opts = append(opts, server.WithTracer(tracer))
	}
	srv, err := server.New(opts...)
	if err != nil {
		return err
	}

	staticDir, _ := cmd.Flags().GetString("static")
	password, _ := cmd.Flags().GetString("admin-password")
	mounts := demoMounts(appOptions{metrics: rec, staticDir: staticDir, adminPassword: password})
	if err = register(srv, mounts); err != nil {
		return err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(settings.Address, strconv.Itoa(settings.Port)))
	if err != nil {
		return err
	}

	printBanner(cmd.OutOrStdout(), bannerInfo{
		addr:     ln.Addr().String(),
		settings: settings,
		mounts:   srv.Mounts(),
		metrics:  rec,
		tracer:   tracer,
	})
	if err = logger.Release(); err != nil {
		_ = ln.Close()
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, cmd, logger, hup)

	if err = srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchReload applies the configured log level on every signal from hup
// until ctx is done.
func watchReload(ctx context.Context, cmd *cobra.Command, logger *logging.Logger, hup <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			changed, err := reloadLogLevel(ctx, cmd, logger)
			switch {
			case err != nil:
				logger.LogError(err, "settings reload failed")
			case changed:
				logger.Info("log level changed", "level", logger.Level().String())
			}
		}
	}
}
