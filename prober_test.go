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
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(t *testing.T, mock *MockTransport, timeout time.Duration) *Prober {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Transport = mock
	cfg.Timeout = timeout
	backend := &httpBackend{}
	backend.Init(cfg.Transport, cfg.Timeout, false)
	return newProber(backend, cfg)
}

func TestProbe(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("http://site.test/ok.html", "<html></html>")
	mock.RegisterStatus("http://site.test/gone.html", http.StatusGone)
	mock.RegisterStatus("http://site.test/error", http.StatusInternalServerError)
	mock.RegisterStatus("http://site.test/created", http.StatusCreated)
	mock.RegisterRedirect("http://site.test/moved", http.StatusMovedPermanently, "/ok.html")
	mock.RegisterRedirect("http://site.test/moved-away", http.StatusFound, "http://site.test/missing")
	mock.RegisterError("http://site.test/refused", errors.New("connection refused"))

	p := newTestProber(t, mock, time.Second)
	ctx := context.Background()

	tests := []struct {
		url     string
		working bool
		status  int
		err     bool
	}{
		{"http://site.test/ok.html", true, 200, false},
		{"http://site.test/gone.html", false, 410, false},
		{"http://site.test/error", false, 500, false},
		{"http://site.test/created", false, 201, false},
		{"http://site.test/moved", true, 200, false},
		{"http://site.test/moved-away", false, 404, false},
		{"http://site.test/refused", false, 0, true},
		{"http://site.test/unregistered", false, 404, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			res := p.Probe(ctx, tt.url)
			assert.Equal(t, tt.working, res.Working)
			assert.Equal(t, tt.status, res.StatusCode)
			if tt.err {
				assert.Error(t, res.Err)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}

	// once directly and once at the end of the /moved redirect
	assert.Equal(t, 2, mock.RequestCount(http.MethodHead, "http://site.test/ok.html"))
	assert.Zero(t, mock.RequestCount(http.MethodGet, "http://site.test/ok.html"))
	assert.Equal(t, 1, mock.RequestCount(http.MethodHead, "http://site.test/moved"))
}

func TestProbeTimeout(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("http://site.test/slow", &MockResponse{Delay: 2 * time.Second})

	p := newTestProber(t, mock, 50*time.Millisecond)
	start := time.Now()
	res := p.Probe(context.Background(), "http://site.test/slow")
	assert.False(t, res.Working)
	assert.Zero(t, res.StatusCode)
	assert.Error(t, res.Err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProbeInvalidURL(t *testing.T) {
	p := newTestProber(t, NewMockTransport(), time.Second)
	res := p.Probe(context.Background(), "http://[::1")
	assert.False(t, res.Working)
	assert.Zero(t, res.StatusCode)
	assert.Error(t, res.Err)
}

func TestProbeSendsUserAgent(t *testing.T) {
	var got string
	mock := NewMockTransport()
	mock.RegisterResponse("http://site.test/", &MockResponse{
		BodyFunc: func(r *http.Request) string {
			got = r.Header.Get("User-Agent")
			return ""
		},
	})
	p := newTestProber(t, mock, time.Second)
	p.userAgent = "brokenlinks-test"
	require.True(t, p.Probe(context.Background(), "http://site.test/").Working)
	assert.Equal(t, "brokenlinks-test", got)
}

func TestProbeFromSendsReferer(t *testing.T) {
	var got []string
	mock := NewMockTransport()
	mock.RegisterResponse("http://site.test/a.html", &MockResponse{
		BodyFunc: func(r *http.Request) string {
			got = append(got, r.Header.Get("Referer"))
			return ""
		},
	})
	p := newTestProber(t, mock, time.Second)
	require.True(t, p.ProbeFrom(context.Background(), "http://site.test/a.html", "http://site.test/").Working)
	require.True(t, p.Probe(context.Background(), "http://site.test/a.html").Working)
	assert.Equal(t, []string{"http://site.test/", ""}, got)
}

func TestIsIndexRedirect(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRedirect("http://site.test/docs/sub", http.StatusFound, "http://site.test/docs/sub/index.html")
	mock.RegisterRedirect("http://site.test/docs/rel", http.StatusMovedPermanently, "/docs/rel/index.html")
	mock.RegisterRedirect("http://site.test/docs/other", http.StatusFound, "http://site.test/docs/other.html")
	mock.RegisterStatus("http://site.test/docs/nolocation", http.StatusFound)
	mock.RegisterHTML("http://site.test/docs/plain", "<html></html>")
	mock.RegisterError("http://site.test/docs/broken", errors.New("connection reset"))
	mock.RegisterHTML("http://site.test/docs/sub/index.html", "<html></html>")

	p := newTestProber(t, mock, time.Second)
	ctx := context.Background()

	assert.True(t, p.IsIndexRedirect(ctx, "http://site.test/docs/sub"))
	assert.True(t, p.IsIndexRedirect(ctx, "http://site.test/docs/rel"))
	assert.False(t, p.IsIndexRedirect(ctx, "http://site.test/docs/other"))
	assert.False(t, p.IsIndexRedirect(ctx, "http://site.test/docs/nolocation"))
	assert.False(t, p.IsIndexRedirect(ctx, "http://site.test/docs/plain"))
	assert.False(t, p.IsIndexRedirect(ctx, "http://site.test/docs/broken"))

	// the redirect itself is inspected, not its target
	assert.Zero(t, mock.RequestCount(http.MethodHead, "http://site.test/docs/sub/index.html"))
}
