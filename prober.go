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
	"context"
	"net/http"
	"strings"
	"time"
)

// ProbeResult is the outcome of probing a single link.
type ProbeResult struct {
	Working    bool
	StatusCode int
	Err        error
	Elapsed    time.Duration
	Trace      *HTTPTrace
}

// Prober checks link destinations with header-only requests.
type Prober struct {
	backend   *httpBackend
	userAgent string
	headers   map[string]string
}

func newProber(backend *httpBackend, cfg *Config) *Prober {
	return &Prober{
		backend:   backend,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
	}
}

func (p *Prober) newRequest(ctx context.Context, u, referer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req, p.userAgent, p.headers)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	return req, nil
}

// Probe sends a HEAD request to u, following redirects. The link is working
// only when the final status is exactly 200. Transport failures are reported
// in the result, never returned.
func (p *Prober) Probe(ctx context.Context, u string) ProbeResult {
	return p.ProbeFrom(ctx, u, "")
}

// ProbeFrom is Probe with the linking page sent as Referer.
func (p *Prober) ProbeFrom(ctx context.Context, u, referer string) ProbeResult {
	start := time.Now()
	req, err := p.newRequest(ctx, u, referer)
	if err != nil {
		return ProbeResult{Err: err, Elapsed: time.Since(start)}
	}
	resp, err := p.backend.Do(req, 0)
	if err != nil {
		return ProbeResult{Err: err, Elapsed: time.Since(start)}
	}
	return ProbeResult{
		Working:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Elapsed:    time.Since(start),
		Trace:      resp.Trace,
	}
}

// IsIndexRedirect reports whether u answers with a redirect whose Location
// ends in /index.html, i.e. u names a directory served without its slash.
func (p *Prober) IsIndexRedirect(ctx context.Context, u string) bool {
	req, err := p.newRequest(ctx, u, "")
	if err != nil {
		return false
	}
	resp, err := p.backend.DoNoRedirect(req)
	if err != nil {
		return false
	}
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return false
	}
	return strings.HasSuffix(resp.Headers.Get("Location"), "/index.html")
}

func applyHeaders(req *http.Request, userAgent string, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
}
