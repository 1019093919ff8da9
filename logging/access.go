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


package logging

import (
	"fmt"
	"log/slog"

	"rivaas.dev/rawhttp/request"
)

// LogRequest writes the access log entry for a served request. The entry
// carries method, route and remote, plus user_agent, query and request_id
// when the request has them, followed by extra. An int "status" of 400 or
// more raises the level to warn, 500 or more to error.
//
//	logger.LogRequest(req, "status", 200, "bytes", 42, "duration", time.Since(start))
func (l *Logger) LogRequest(req *request.Request, extra ...any) {
	if req == nil {
		return
	}
	args := []any{
		"method", req.Method.String(),
		"route", req.Route,
		"remote", req.RemoteAddr,
	}
	optional := [...][2]string{
		{"user_agent", req.Headers.Get("User-Agent")},
		{"query", req.RawQuery},
		{"request_id", req.Headers.Get("X-Request-Id")},
	}
	for _, kv := range optional {
		if kv[1] != "" {
			args = append(args, kv[0], kv[1])
		}
	}
	l.log(levelForStatus(extra), "request served", append(args, extra...)...)
}

func levelForStatus(kv []any) slog.Level {
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i] != "status" {
			continue
		}
		status, _ := kv[i+1].(int)
		if status >= 500 {
			return slog.LevelError
		}
		if status >= 400 {
			return slog.LevelWarn
		}
	}
	return slog.LevelInfo
}

// LogError logs msg at error level with err under the "error" key.
func (l *Logger) LogError(err error, msg string, extra ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	l.log(LevelError, msg, append([]any{"error", text}, extra...)...)
}

// LogPanic logs a value recovered from a connection handler with the stack
// captured where it was recovered.
func (l *Logger) LogPanic(recovered any, stack []byte, extra ...any) {
	args := append([]any{"panic", fmt.Sprint(recovered), "stack", string(stack)}, extra...)
	l.log(LevelError, "handler panic recovered", args...)
}
