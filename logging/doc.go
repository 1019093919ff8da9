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


// Package logging is the structured logger of the server and the command
// line, built on log/slog.
//
//	logger := logging.MustNew(logging.WithFormat(logging.FormatConsole))
//	defer logger.Shutdown(context.Background())
//	logger.Info("listening", "port", 8080)
//
// Records are encoded as JSON (the default), logfmt-style text, or the
// console format. The console format colors its output only on a terminal
// and only while NO_COLOR is unset.
//
// The level is held in a [log/slog.LevelVar], so [Logger.SetLevel] takes
// effect on every logger derived from the same Logger, including those
// handed to the metrics and tracing packages.
//
// [Logger.LogRequest] writes the access log. A 4xx status logs at warn
// level and a 5xx at error level.
//
// [WithSampling] keeps the first records of each window and then every
// n-th one. Error records are never dropped.
//
// [Logger.Hold] queues records until [Logger.Release], so startup logs can
// follow the banner. [Logger.ForContext] adds trace_id and span_id of the
// active span.
//
// Keys named password, token, secret, api_key or authorization are logged
// as "***REDACTED***".
package logging
