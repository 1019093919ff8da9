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

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/config"
	"rivaas.dev/rawhttp/logging"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	settings := config.Defaults()
	settings.Log.Level = "warn"
	settings.Log.Format = "json"
	settings.Log.Sampling = config.Sampling{Initial: 10, Thereafter: 5, Tick: time.Second}

	logger, err := newLogger(settings)
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, logger.Level())

	settings.Log.Format = "xml"
	_, err = newLogger(settings)
	require.ErrorIs(t, err, logging.ErrInvalidFormat)
}

func TestReloadLogLevel(t *testing.T) {
	cmd := serveCmd()
	logger := logging.MustNew(logging.WithOutput(io.Discard))

	changed, err := reloadLogLevel(context.Background(), cmd, logger)
	require.NoError(t, err)
	assert.False(t, changed, "defaults match the running level")

	t.Setenv("RAWHTTP_SERVER_LOG_LEVEL", "debug")
	changed, err = reloadLogLevel(context.Background(), cmd, logger)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, logging.LevelDebug, logger.Level())

	require.NoError(t, cmd.Flags().Set("log-level", "error"))
	changed, err = reloadLogLevel(context.Background(), cmd, logger)
	require.NoError(t, err)
	assert.True(t, changed, "flags win over the environment")
	assert.Equal(t, logging.LevelError, logger.Level())

	t.Setenv("RAWHTTP_SERVER_WORKERS", "0")
	_, err = reloadLogLevel(context.Background(), cmd, logger)
	require.Error(t, err)
	assert.Equal(t, logging.LevelError, logger.Level(), "a failed reload keeps the level")
}

func TestWatchReload(t *testing.T) {
	t.Setenv("RAWHTTP_SERVER_LOG_LEVEL", "warn")

	logs := logging.NewCapture(t, logging.WithLevel(logging.LevelInfo))
	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchReload(ctx, serveCmd(), logs.Logger, hup)
	}()

	hup <- os.Interrupt
	require.Eventually(t, func() bool { return logs.Logger.Level() == logging.LevelWarn }, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
