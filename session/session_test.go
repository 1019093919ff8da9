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

package session

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// recorder collects the names of stages as they run.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) stage(name string, out Outcome) Stage {
	return func(_ *request.Request, _ *response.Response) Outcome {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
		return out
	}
}

func newRequest(t *testing.T) *request.Request {
	t.Helper()
	req, err := request.Parse([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	return req
}

func TestRun_PhaseOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New().
		After(rec.stage("after1", Continue)).
		Then(rec.stage("then1", Continue), rec.stage("then2", Continue)).
		Before(rec.stage("before1", Continue), rec.stage("before2", Continue))

	result := s.Run(newRequest(t), response.New(&bytes.Buffer{}))

	assert.Equal(t, Completed, result.State)
	assert.Equal(t, 5, result.Stages)
	assert.Equal(t, PhaseAfter, result.Phase)
	assert.Equal(t, []string{"before1", "before2", "then1", "then2", "after1"}, rec.calls)
}

func TestRun_BeforeTerminateSkipsThen(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New().
		Before(rec.stage("S1", Terminate)).
		Then(rec.stage("S2", Continue))

	result := s.Run(newRequest(t), response.New(&bytes.Buffer{}))

	assert.True(t, result.Terminated())
	assert.Equal(t, PhaseBefore, result.Phase)
	assert.Equal(t, []string{"S1"}, rec.calls, "S2 must not run")
}

func TestRun_ContinueThenSend(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &recorder{}
	hello := func(_ *request.Request, res *response.Response) Outcome {
		require.NoError(t, res.Send("Hello"))
		return Terminate
	}
	s := New().Then(rec.stage("S1", Continue), hello).After(rec.stage("after", Continue))

	res := response.New(&buf)
	result := s.Run(newRequest(t), res)

	assert.Equal(t, Terminated, result.State)
	assert.Equal(t, 2, result.Stages)
	assert.Equal(t, 200, res.StatusCode())
	assert.True(t, strings.HasPrefix(buf.String(), "HTTP/1.1 200 OK\r\n"))
	assert.True(t, strings.HasSuffix(buf.String(), "\r\n\r\nHello"))
	assert.Equal(t, []string{"S1"}, rec.calls, "after phase must not run after terminate")
}

func TestRun_NoDecisionTerminates(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	silent := func(_ *request.Request, _ *response.Response) Outcome {
		var out Outcome // stage never decides
		return out
	}
	s := New().Then(silent, rec.stage("next", Continue))

	result := s.Run(newRequest(t), response.New(&bytes.Buffer{}))

	assert.Equal(t, Terminated, result.State)
	assert.Empty(t, rec.calls)
}

func TestRun_UnknownOutcomeTerminates(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New().Then(rec.stage("odd", Outcome(42)), rec.stage("next", Continue))

	result := s.Run(newRequest(t), response.New(&bytes.Buffer{}))

	assert.Equal(t, Terminated, result.State)
	assert.Equal(t, []string{"odd"}, rec.calls)
}

func TestRun_EmptySessionCompletes(t *testing.T) {
	t.Parallel()

	result := New().Run(newRequest(t), response.New(&bytes.Buffer{}))
	assert.Equal(t, Completed, result.State)
	assert.Zero(t, result.Stages)
}

func TestStage_IsSessionable(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	var s Sessionable = rec.stage("only", Continue)

	sess := s.Session()
	assert.Equal(t, 1, sess.Len())
	assert.Len(t, sess.Stages(PhaseThen), 1)
	assert.Empty(t, sess.Stages(PhaseBefore))
	assert.Empty(t, sess.Stages(PhaseAfter))

	result := Run(s, newRequest(t), response.New(&bytes.Buffer{}))
	assert.Equal(t, Completed, result.State)
	assert.Equal(t, []string{"only"}, rec.calls)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	orig := New().Then(rec.stage("a", Continue))
	clone := orig.Clone()
	orig.Then(rec.stage("b", Continue))

	assert.Equal(t, 2, orig.Len())
	assert.Equal(t, 1, clone.Len())
}

func TestSession_Prepend(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	orig := New().Before(rec.stage("own", Continue)).Then(rec.stage("handler", Continue))
	wrapped := orig.Prepend(rec.stage("shared", Continue))

	wrapped.Run(newRequest(t), response.New(&bytes.Buffer{}))

	assert.Equal(t, []string{"shared", "own", "handler"}, rec.calls)
	assert.Equal(t, 2, orig.Len(), "prepend must not modify the original")
}

func TestSession_NilStagePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New().Then(nil) })
}

func TestRun_ConcurrentUse(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s := New().Before(rec.stage("b", Continue)).Then(rec.stage("t", Terminate))

	req := newRequest(t)
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Run(req, response.New(&bytes.Buffer{}))
		}()
	}
	wg.Wait()

	assert.Len(t, rec.calls, 64)
}

func TestOutcomeAndStateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "terminate", Terminate.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "terminated", Terminated.String())
	assert.Equal(t, "then", PhaseThen.String())
}
