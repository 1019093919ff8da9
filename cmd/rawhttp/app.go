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

	"go.opentelemetry.io/otel/attribute"

	"rivaas.dev/rawhttp/metrics"
	"rivaas.dev/rawhttp/middleware/basicauth"
	"rivaas.dev/rawhttp/middleware/bodylimit"
	"rivaas.dev/rawhttp/middleware/requestid"
	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/router"
	"rivaas.dev/rawhttp/server"
	"rivaas.dev/rawhttp/session"
	"rivaas.dev/rawhttp/static"
)

// maxEchoBytes limits the body accepted by POST /echo.
const maxEchoBytes = 64 << 10

const textPlain = "text/plain; charset=utf-8"

const (
	adminRealm = "rawhttp"

	// rejectionsCounter counts /admin requests turned away by basic auth.
	rejectionsCounter = "basicauth_rejections_total"
)

type appOptions struct {
	metrics       *metrics.Recorder
	staticDir     string
	adminPassword string
}

type mount struct {
	prefix string
	router *router.Router
}

// demoMounts builds the routers the serve and routes commands expose.
func demoMounts(opts appOptions) []mount {
	site := router.MustNew(router.WithName("site"))
	site.Use(requestid.New())
	site.GET("/", hello).
		GET("/dogs/:id", showDog).
		Handle(request.POST, "/echo", session.New().
			Before(bodylimit.New(bodylimit.WithLimit(maxEchoBytes))).
			Then(echo))
	if opts.metrics != nil {
		site.GET(opts.metrics.Path(), opts.metrics.Stage())
	}
	if opts.adminPassword != "" {
		auth := []basicauth.Option{
			basicauth.WithUsers(map[string]string{"admin": opts.adminPassword}),
			basicauth.WithRealm(adminRealm),
		}
		if opts.metrics != nil {
			auth = append(auth, basicauth.WithUnauthorizedHandler(countRejection(opts.metrics)))
		}
		site.Handle(request.GET, "/admin", session.New().
			Before(basicauth.New(auth...)).
			Then(admin))
	}

	inner := router.MustNew(router.WithName("inner"))
	inner.Use(requestid.New())
	inner.GET("/:name", greet)

	mounts := []mount{{"/", site}, {"/inner", inner}}

	if opts.staticDir != "" {
		assets := router.MustNew(router.WithName("assets"))
		files := static.Dir(opts.staticDir, static.WithCacheControl("public, max-age=300"))
		assets.GET("/", files).GET("/:file", files)
		mounts = append(mounts, mount{"/assets", assets})
	}
	return mounts
}

func register(srv *server.Server, mounts []mount) error {
	for _, m := range mounts {
		if err := srv.Register(m.prefix, m.router); err != nil {
			return fmt.Errorf("mount %q: %w", m.prefix, err)
		}
	}
	return nil
}

func hello(_ *request.Request, res *response.Response) session.Outcome {
	_ = res.ContentType(textPlain).Send("Hello from rawhttp\n")
	return session.Terminate
}

func showDog(req *request.Request, res *response.Response) session.Outcome {
	id := req.Param("id")
	_ = res.SendJSON(map[string]string{
		"id":         id,
		"name":       "dog " + id,
		"request_id": requestid.Get(req),
	})
	return session.Terminate
}

func echo(req *request.Request, res *response.Response) session.Outcome {
	if ct := req.Headers.Get("Content-Type"); ct != "" {
		res.ContentType(ct)
	}
	_ = res.Send(req.Body)
	return session.Terminate
}

func greet(req *request.Request, res *response.Response) session.Outcome {
	_ = res.ContentType(textPlain).Send("Hello, " + req.Param("name") + "\n")
	return session.Terminate
}

func admin(req *request.Request, res *response.Response) session.Outcome {
	_ = res.SendJSON(map[string]string{"user": basicauth.Username(req)})
	return session.Terminate
}

// countRejection records a basic auth rejection before answering with the
// usual 401 body.
func countRejection(rec *metrics.Recorder) func(*request.Request, *response.Response) {
	return func(req *request.Request, res *response.Response) {
		_ = rec.IncrementCounter(req.Context(), rejectionsCounter, attribute.String("realm", adminRealm))
		_ = res.Status(response.StatusUnauthorized).SendJSON(map[string]string{
			"error": "Unauthorized",
			"code":  "UNAUTHORIZED",
		})
	}
}
