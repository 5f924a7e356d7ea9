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
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 200 * time.Millisecond

func TestLimitRuleInit(t *testing.T) {
	assert.ErrorIs(t, (&LimitRule{Parallelism: 2}).Init(), ErrNoPattern)
	assert.Error(t, (&LimitRule{DomainRegexp: "("}).Init())

	r := &LimitRule{DomainGlob: "*.site.test"}
	require.NoError(t, r.Init())
	assert.True(t, r.Match("www.site.test"))
	assert.False(t, r.Match("site.test"))

	r = &LimitRule{DomainRegexp: `^site\.test(:\d+)?$`}
	require.NoError(t, r.Init())
	assert.True(t, r.Match("site.test:8080"))
	assert.False(t, r.Match("other.test"))
}

func TestBackendParallelismLimit(t *testing.T) {
	var running, peak atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
	}))
	defer ts.Close()

	h := &httpBackend{}
	h.Init(ts.Client().Transport, time.Second, false)
	require.NoError(t, h.Limit(&LimitRule{DomainGlob: "*", Parallelism: 2}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodHead, ts.URL, nil)
			_, err := h.Do(req, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBackendDelay(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("http://site.test/", "ok")

	h := &httpBackend{}
	h.Init(mock, time.Second, false)
	require.NoError(t, h.Limits([]*LimitRule{{DomainGlob: "site.test", Delay: 50 * time.Millisecond}}))

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "http://site.test/", nil)
		_, err := h.Do(req, 0)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestBackendDelayHonoursContext(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterHTML("http://site.test/", "ok")

	h := &httpBackend{}
	h.Init(mock, time.Second, false)
	require.NoError(t, h.Limit(&LimitRule{DomainGlob: "site.test", Delay: time.Hour}))

	req, _ := http.NewRequest(http.MethodGet, "http://site.test/", nil)
	_, err := h.Do(req, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, "http://site.test/", nil)
	_, err = h.Do(req, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, mock.RequestCount(http.MethodGet, "http://site.test/"))
}

func TestBackendGzipBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("<html>compressed</html>"))
	require.NoError(t, zw.Close())

	mock := NewMockTransport()
	mock.RegisterResponse("http://site.test/gz", &MockResponse{
		Body:    buf.String(),
		Headers: http.Header{"Content-Encoding": []string{"gzip"}, "Content-Type": []string{"text/html"}},
	})

	h := &httpBackend{}
	h.Init(mock, time.Second, false)
	req, _ := http.NewRequest(http.MethodGet, "http://site.test/gz", nil)
	resp, err := h.Do(req, 0)
	require.NoError(t, err)
	assert.Equal(t, "<html>compressed</html>", string(resp.Body))
}

func TestBackendFinalURL(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterRedirect("http://site.test/old", http.StatusMovedPermanently, "/new")
	mock.RegisterHTML("http://site.test/new", "ok")

	h := &httpBackend{}
	h.Init(mock, time.Second, false)

	req, _ := http.NewRequest(http.MethodHead, "http://site.test/old", nil)
	resp, err := h.Do(req, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "http://site.test/new", resp.URL())
	assert.Empty(t, resp.Body)

	req, _ = http.NewRequest(http.MethodHead, "http://site.test/old", nil)
	resp, err = h.DoNoRedirect(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/new", resp.Headers.Get("Location"))
}

func newTraceTestServer(delay time.Duration) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(200)
	})
	return httptest.NewServer(mux)
}

func TestTraceWithDelay(t *testing.T) {
	ts := newTraceTestServer(testDelay)
	defer ts.Close()

	h := &httpBackend{}
	h.Init(ts.Client().Transport, time.Second, true)
	req, err := http.NewRequest(http.MethodHead, ts.URL, nil)
	require.NoError(t, err)
	resp, err := h.Do(req, 0)
	require.NoError(t, err)
	require.NotNil(t, resp.Trace)

	assert.Less(t, resp.Trace.ConnectDuration, testDelay)
	assert.GreaterOrEqual(t, resp.Trace.FirstByteDuration, testDelay)
	assert.GreaterOrEqual(t, resp.Trace.TotalDuration, resp.Trace.FirstByteDuration)
	assert.Contains(t, resp.Trace.Fields(), "first_byte")
}

func TestTraceDisabled(t *testing.T) {
	ts := newTraceTestServer(0)
	defer ts.Close()

	h := &httpBackend{}
	h.Init(ts.Client().Transport, time.Second, false)
	req, _ := http.NewRequest(http.MethodHead, ts.URL, nil)
	resp, err := h.Do(req, 0)
	require.NoError(t, err)
	assert.Nil(t, resp.Trace)
}
