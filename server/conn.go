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

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"go.opentelemetry.io/otel/trace"

	httperrors "rivaas.dev/rawhttp/errors"
	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
)

// routeNotFound labels requests that matched no template.
const routeNotFound = "_not_found"

// errInternal answers a panicking session. The panic value goes to the log only.
var errInternal = errors.New("internal server error")

// exchange carries one request through the pipeline.
type exchange struct {
	ctx   context.Context
	start time.Time
	req   *request.Request
	res   *response.Response
	span  trace.Span
	rm    *metrics.RequestMetrics
	mount string
	route string
}

// ServeConn serves a single request on conn and closes it.
//
// The request is decoded, resolved to a mount, matched against the mount's
// router and handed to the matched session. Decoding and routing errors are
// answered through the error formatter. A session that completes without
// sending leaves the connection to be closed with no response.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	if s.readTimeout > 0 {
		_ = conn.SetReadDeadline(start.Add(s.readTimeout))
	}
	if s.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(start.Add(s.writeTimeout))
	}

	remote := remoteAddr(conn)
	req, err := s.decoder.Decode(conn)
	if err != nil {
		s.reject(conn, remote, err, start)
		return
	}
	req.RemoteAddr = remote

	s.serve(&exchange{
		ctx:   context.Background(),
		start: start,
		req:   req,
		res:   response.New(conn),
	})
}

// reject answers a request that could not be decoded. A client that went
// away without sending anything gets no answer.
func (s *Server) reject(conn net.Conn, remote string, err error, start time.Time) {
	var (
		reqErr *request.Error
		netErr net.Error
		code   string
	)
	switch {
	case errors.Is(err, io.EOF):
		s.logger.Debug("connection closed before a request arrived", "remote", remote)
		return
	case errors.As(err, &reqErr):
		code = reqErr.Code()
	case errors.Is(err, io.ErrUnexpectedEOF):
		code = "INCOMPLETE_BODY"
		err = httperrors.WithStatus(err, response.StatusBadRequest)
	case errors.As(err, &netErr) && netErr.Timeout():
		code = "TIMEOUT"
		err = httperrors.WithStatus(err, response.StatusRequestTimeout)
	default:
		s.logger.Debug("connection read failed", "remote", remote, "error", err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordDecodeError(context.Background(), code)
	}

	res := response.New(conn)
	if werr := httperrors.Write(res, s.formatter, nil, err); werr != nil {
		s.logger.Debug("error response not written", "remote", remote, "error", werr)
	}
	s.logger.Warn("request rejected",
		"remote", remote,
		"status", res.StatusCode(),
		"code", code,
		"error", err.Error(),
		"duration", time.Since(start),
	)
}

// serve routes a decoded request and runs its session.
func (s *Server) serve(x *exchange) {
	if s.tracer != nil {
		x.ctx, x.span = s.tracer.StartRequest(x.ctx, x.req)
	}
	x.req = x.req.WithContext(x.ctx)
	if s.metrics != nil {
		x.rm = s.metrics.Start(x.ctx)
		s.metrics.RecordRequestSize(x.ctx, x.rm, int64(len(x.req.Body)))
	}

	defer func() {
		if rec := recover(); rec != nil {
			if !x.res.Sent() {
				_ = httperrors.Write(x.res, s.formatter, x.req,
					httperrors.WithStatus(errInternal, response.StatusInternalServerError))
			}
			s.finish(x)
			panic(rec)
		}
		s.finish(x)
	}()

	m, path, err := s.mounts.Resolve(x.req.Route)
	if err != nil {
		s.fail(x, err)
		return
	}
	x.mount = m.Prefix

	matched, err := m.Router.Lookup(x.req.Method, path)
	if err != nil {
		s.fail(x, err)
		return
	}
	x.route = m.Prefix + matched.Template
	x.req.SetParams(matched.Params)
	if s.tracer != nil {
		s.tracer.SetRoute(x.span, x.req.Method, x.route)
	}

	result := matched.Session.Run(x.req, x.res)
	if !x.res.Sent() {
		s.logger.ForContext(x.ctx).Debug("session finished without a response",
			"route", x.route,
			"state", result.State.String(),
			"phase", result.Phase.String(),
			"stages", result.Stages,
		)
	}
}

// fail answers x with err through the error formatter.
func (s *Server) fail(x *exchange, err error) {
	x.route = routeNotFound
	if s.tracer != nil {
		s.tracer.RecordError(x.span, err)
	}
	if werr := httperrors.Write(x.res, s.formatter, x.req, err); werr != nil {
		s.logger.ForContext(x.ctx).Debug("error response not written", "remote", x.req.RemoteAddr, "error", werr)
	}
}

// finish records the access log, metrics and span for x.
func (s *Server) finish(x *exchange) {
	status := 0
	if x.res.Sent() {
		status = x.res.StatusCode()
	}
	route := x.route
	s.logger.LogRequest(x.req,
		"status", status,
		"bytes", x.res.Size(),
		"duration", time.Since(x.start),
		"mount", x.mount,
		"template", route,
	)
	if s.metrics != nil {
		s.metrics.Finish(x.ctx, x.rm, status, int64(x.res.Size()), route)
	}
	if s.tracer != nil {
		s.tracer.FinishRequest(x.span, status, x.res.Size())
	}
}
