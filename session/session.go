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
	"slices"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// Outcome is the decision a stage returns to the engine.
type Outcome int

const (
	// Terminate stops the pipeline. It is the zero value, so a stage that
	// returns without deciding stops the pipeline.
	Terminate Outcome = iota

	// Continue hands control to the next stage.
	Continue
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == Continue {
		return "continue"
	}
	return "terminate"
}

// Stage is one unit of work in a session phase.
//
// A stage that terminates is responsible for having sent a response; if it
// did not, the connection closes with nothing written.
type Stage func(req *request.Request, res *response.Response) Outcome

// Session implements [Sessionable] for a bare stage: the stage becomes the
// only entry of the then phase.
func (s Stage) Session() *Session {
	return New().Then(s)
}

// Phase names a session phase.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseThen
	PhaseAfter
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseThen:
		return "then"
	case PhaseAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Session is an ordered three-phase pipeline of stages: before, then, after.
//
// Sessions are built once at route registration and shared read-only by
// every connection that matches the route. Builder methods return the
// receiver for chaining:
//
//	s := session.New().
//	    Before(auth).
//	    Then(handler).
//	    After(audit)
type Session struct {
	phases [3][]Stage
}

// Sessionable is anything that can be registered on a route.
// Both [*Session] and [Stage] implement it.
type Sessionable interface {
	Session() *Session
}

// New creates an empty session.
func New() *Session {
	return &Session{}
}

// Session returns s, so a *Session is itself [Sessionable].
func (s *Session) Session() *Session {
	return s
}

// Before appends stages to the before phase.
func (s *Session) Before(stages ...Stage) *Session {
	return s.add(PhaseBefore, stages)
}

// Then appends stages to the then phase.
func (s *Session) Then(stages ...Stage) *Session {
	return s.add(PhaseThen, stages)
}

// After appends stages to the after phase.
func (s *Session) After(stages ...Stage) *Session {
	return s.add(PhaseAfter, stages)
}

func (s *Session) add(p Phase, stages []Stage) *Session {
	for _, st := range stages {
		if st == nil {
			panic("session: nil stage in " + p.String() + " phase")
		}
	}
	s.phases[p] = append(s.phases[p], stages...)
	return s
}

// Stages returns a copy of the stages of one phase.
func (s *Session) Stages(p Phase) []Stage {
	if p < PhaseBefore || p > PhaseAfter {
		return nil
	}
	return slices.Clone(s.phases[p])
}

// Len returns the total number of stages.
func (s *Session) Len() int {
	return len(s.phases[PhaseBefore]) + len(s.phases[PhaseThen]) + len(s.phases[PhaseAfter])
}

// Clone returns a session with copies of the stage lists, so later builder
// calls on either session do not affect the other.
func (s *Session) Clone() *Session {
	c := &Session{}
	for i := range s.phases {
		c.phases[i] = slices.Clone(s.phases[i])
	}
	return c
}

// Prepend returns a clone of s with stages placed at the head of the before
// phase. It is used to apply shared stages to a registered session.
func (s *Session) Prepend(stages ...Stage) *Session {
	c := s.Clone()
	c.phases[PhaseBefore] = append(slices.Clone(stages), c.phases[PhaseBefore]...)
	return c
}
