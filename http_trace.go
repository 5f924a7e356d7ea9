// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package brokenlinks

import (
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPTrace records connection timings for a single request.
type HTTPTrace struct {
	start, connect    time.Time
	ConnectDuration   time.Duration
	FirstByteDuration time.Duration
	TotalDuration     time.Duration
}

// trace returns a httptrace.ClientTrace that fills in the HTTPTrace.
func (ht *HTTPTrace) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		ConnectStart: func(network, addr string) { ht.connect = time.Now() },
		ConnectDone: func(network, addr string, err error) {
			ht.ConnectDuration = time.Since(ht.connect)
		},
		GetConn: func(hostPort string) { ht.start = time.Now() },
		GotFirstResponseByte: func() {
			ht.FirstByteDuration = time.Since(ht.start)
		},
	}
}

// WithTrace returns the given HTTP Request with this HTTPTrace added to its
// context.
func (ht *HTTPTrace) WithTrace(req *http.Request) *http.Request {
	ht.start = time.Now()
	return req.WithContext(httptrace.WithClientTrace(req.Context(), ht.trace()))
}

func (ht *HTTPTrace) finish() {
	if !ht.start.IsZero() {
		ht.TotalDuration = time.Since(ht.start)
	}
}

// Fields renders the trace for structured log lines.
func (ht *HTTPTrace) Fields() logrus.Fields {
	if ht == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"connect":    ht.ConnectDuration,
		"first_byte": ht.FirstByteDuration,
		"total":      ht.TotalDuration,
	}
}
