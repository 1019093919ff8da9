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

package session

import (
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// State is the engine state for one request.
type State int

const (
	// Pending means a stage is about to be invoked.
	Pending State = iota
	// Continuing means the last stage returned [Continue].
	Continuing
	// Terminated means a stage returned [Terminate]; nothing else runs.
	Terminated
	// Completed means every stage returned [Continue].
	Completed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Continuing:
		return "continuing"
	case Terminated:
		return "terminated"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Result describes how a run ended.
type Result struct {
	// State is either Terminated or Completed.
	State State

	// Stages is the number of stages invoked.
	Stages int

	// Phase is the phase of the last invoked stage.
	Phase Phase
}

// Terminated reports whether a stage stopped the pipeline.
func (r Result) Terminated() bool {
	return r.State == Terminated
}

// Run executes the session for one request.
//
// Phases run in the order before, then, after; stages within a phase run in
// registration order. The first stage to return [Terminate] ends the run.
// Panics propagate to the caller.
func (s *Session) Run(req *request.Request, res *response.Response) Result {
	var result Result
	for p := PhaseBefore; p <= PhaseAfter; p++ {
		for _, stage := range s.phases[p] {
			result.Phase = p
			result.Stages++
			if stage(req, res) != Continue {
				result.State = Terminated
				return result
			}
		}
	}
	result.State = Completed
	return result
}

// Run executes a single [Sessionable] for one request.
func Run(s Sessionable, req *request.Request, res *response.Response) Result {
	return s.Session().Run(req, res)
}
