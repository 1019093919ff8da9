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

package metrics

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// TestingRecorder creates a Prometheus-backed [Recorder] for tests and shuts
// it down on cleanup. Read what it recorded with [Gathered].
func TestingRecorder(t testing.TB, opts ...Option) *Recorder {
	t.Helper()

	defaults := []Option{WithServiceName("test-service")}
	recorder, err := New(append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("TestingRecorder: failed to create recorder: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Shutdown(ctx); err != nil {
			t.Logf("TestingRecorder: shutdown warning: %v", err)
		}
	})

	return recorder
}

// Gathered returns the text exposition of recorder, failing t on error.
func Gathered(t testing.TB, recorder *Recorder) string {
	t.Helper()

	var buf bytes.Buffer
	if err := recorder.WriteText(&buf); err != nil {
		t.Fatalf("Gathered: %v", err)
	}
	return buf.String()
}
