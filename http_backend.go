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
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/time/rate"
)

type httpBackend struct {
	LimitRules []*LimitRule
	Client     *http.Client
	// noRedirect shares Client's transport but hands back the first response.
	noRedirect *http.Client
	trace      bool
	lock       *sync.RWMutex
}

// LimitRule restricts how hard the checker hits matching hosts.
// Both DomainRegexp and DomainGlob can be used to select hosts, but at
// least one is required.
//   - Parallelism: maximum concurrent requests to matching hosts
//   - Delay: minimum interval between requests to matching hosts
type LimitRule struct {
	// DomainRegexp is a regular expression matched against the request host
	DomainRegexp string `yaml:"domain_regexp"`
	// DomainGlob is a glob pattern matched against the request host
	DomainGlob string `yaml:"domain_glob"`
	// Delay is the minimum interval between two requests to matching hosts
	Delay time.Duration `yaml:"delay"`
	// RandomDelay is an extra random pause, up to this duration, after each request
	RandomDelay time.Duration `yaml:"random_delay"`
	// Parallelism is the maximum number of in-flight requests to matching hosts
	Parallelism int `yaml:"parallelism"`

	waitChan       chan struct{}
	limiter        *rate.Limiter
	compiledRegexp *regexp.Regexp
	compiledGlob   glob.Glob
}

// Init compiles the rule's patterns and sets up its throttles.
func (r *LimitRule) Init() error {
	waitChanSize := 1
	if r.Parallelism > 1 {
		waitChanSize = r.Parallelism
	}
	r.waitChan = make(chan struct{}, waitChanSize)
	if r.Delay > 0 {
		r.limiter = rate.NewLimiter(rate.Every(r.Delay), 1)
	}
	hasPattern := false
	if r.DomainRegexp != "" {
		c, err := regexp.Compile(r.DomainRegexp)
		if err != nil {
			return err
		}
		r.compiledRegexp = c
		hasPattern = true
	}
	if r.DomainGlob != "" {
		c, err := glob.Compile(r.DomainGlob)
		if err != nil {
			return err
		}
		r.compiledGlob = c
		hasPattern = true
	}
	if !hasPattern {
		return ErrNoPattern
	}
	return nil
}

// Match checks that the domain parameter triggers the rule
func (r *LimitRule) Match(domain string) bool {
	if r.compiledRegexp != nil && r.compiledRegexp.MatchString(domain) {
		return true
	}
	return r.compiledGlob != nil && r.compiledGlob.Match(domain)
}

// acquire blocks until the rule admits another request or ctx is done.
func (r *LimitRule) acquire(ctx context.Context) error {
	select {
	case r.waitChan <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			<-r.waitChan
			return err
		}
	}
	return nil
}

func (r *LimitRule) release(ctx context.Context) {
	if r.RandomDelay > 0 {
		pause := time.Duration(rand.Int63n(int64(r.RandomDelay)))
		select {
		case <-time.After(pause):
		case <-ctx.Done():
		}
	}
	<-r.waitChan
}

func (h *httpBackend) Init(transport http.RoundTripper, timeout time.Duration, trace bool) {
	h.Client = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	h.noRedirect = &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	h.trace = trace
	h.lock = &sync.RWMutex{}
}

func (h *httpBackend) GetMatchingRule(domain string) *LimitRule {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for _, r := range h.LimitRules {
		if r.Match(domain) {
			return r
		}
	}
	return nil
}

// Do sends request following redirects and reads at most bodySize bytes of
// the final response body. A bodySize of zero reads everything.
func (h *httpBackend) Do(request *http.Request, bodySize int) (*Response, error) {
	return h.do(h.Client, request, bodySize)
}

// DoNoRedirect sends request and returns the first response, redirect or not.
func (h *httpBackend) DoNoRedirect(request *http.Request) (*Response, error) {
	return h.do(h.noRedirect, request, 0)
}

func (h *httpBackend) do(client *http.Client, request *http.Request, bodySize int) (*Response, error) {
	ctx := request.Context()
	if r := h.GetMatchingRule(request.URL.Host); r != nil {
		if err := r.acquire(ctx); err != nil {
			return nil, err
		}
		defer r.release(ctx)
	}

	var trace *HTTPTrace
	if h.trace {
		trace = &HTTPTrace{}
		request = trace.WithTrace(request)
	}

	res, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	finalRequest := request
	if res.Request != nil {
		finalRequest = res.Request
	}

	var body []byte
	if request.Method != http.MethodHead {
		var bodyReader io.Reader = res.Body
		if bodySize > 0 {
			bodyReader = io.LimitReader(bodyReader, int64(bodySize))
		}
		contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
		if !res.Uncompressed && strings.Contains(contentEncoding, "gzip") {
			gz, err := gzip.NewReader(bodyReader)
			if err != nil {
				return nil, fmt.Errorf("gzip body: %w", err)
			}
			defer gz.Close()
			bodyReader = gz
		}
		body, err = io.ReadAll(bodyReader)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
	}
	if trace != nil {
		trace.finish()
	}

	return &Response{
		StatusCode: res.StatusCode,
		Body:       body,
		Headers:    &res.Header,
		Request:    finalRequest,
		Trace:      trace,
	}, nil
}

func (h *httpBackend) Limit(rule *LimitRule) error {
	h.lock.Lock()
	if h.LimitRules == nil {
		h.LimitRules = make([]*LimitRule, 0, 8)
	}
	h.LimitRules = append(h.LimitRules, rule)
	h.lock.Unlock()
	return rule.Init()
}

func (h *httpBackend) Limits(rules []*LimitRule) error {
	for _, r := range rules {
		if err := h.Limit(r); err != nil {
			return err
		}
	}
	return nil
}
