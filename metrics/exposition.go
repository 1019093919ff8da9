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
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"

	"rivaas.dev/rawhttp/request"
	"rivaas.dev/rawhttp/response"
	"rivaas.dev/rawhttp/session"
)

var textFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// WriteText writes every metric in the Prometheus text exposition format.
// It returns [ErrNoExposition] unless the Prometheus provider is in use.
func (r *Recorder) WriteText(w io.Writer) error {
	if r.prometheusRegistry == nil {
		return ErrNoExposition
	}

	families, err := r.prometheusRegistry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, textFormat)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Stage returns a session stage that answers with the text exposition.
// Register it like any route:
//
//	r.GET(rec.Path(), rec.Stage())
//
// Recorders without a Prometheus registry answer 404.
func (r *Recorder) Stage() session.Stage {
	return func(_ *request.Request, res *response.Response) session.Outcome {
		var buf bytes.Buffer
		if err := r.WriteText(&buf); err != nil {
			status := response.StatusInternalServerError
			if errors.Is(err, ErrNoExposition) {
				status = response.StatusNotFound
			}
			text, _ := response.StatusText(status)
			_ = res.Status(status).ContentType("text/plain; charset=utf-8").Send(text)
			return session.Terminate
		}

		_ = res.ContentType(string(textFormat)).SendBytes(buf.Bytes())
		return session.Terminate
	}
}
