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
)

func newTestRobotsGate(mock *MockTransport, userAgent string) *robotsGate {
	backend := &httpBackend{}
	backend.Init(mock, time.Second, false)
	return newRobotsGate(backend, userAgent)
}

func TestRobotsGate(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterResponse("http://site.test/robots.txt", &MockResponse{
		Body: "User-agent: brokenlinks\nDisallow: /private/\nDisallow: /search?q=\n\nUser-agent: *\nDisallow: /\n",
	})
	g := newTestRobotsGate(mock, "brokenlinks/1.0")
	ctx := context.Background()

	tests := []struct {
		url     string
		allowed bool
	}{
		{"http://site.test/", true},
		{"http://site.test/docs/a.html", true},
		{"http://site.test/private/a.html", false},
		{"http://site.test/search", true},
		{"http://site.test/search?q=term", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, g.Allowed(ctx, tt.url), tt.url)
	}
	assert.Equal(t, 1, mock.RequestCount(http.MethodGet, "http://site.test/robots.txt"))

	other := newTestRobotsGate(mock, "otherbot")
	assert.False(t, other.Allowed(ctx, "http://site.test/docs/a.html"))
}

func TestRobotsGateAllowsWhenUnavailable(t *testing.T) {
	mock := NewMockTransport()
	mock.RegisterError("http://down.test/robots.txt", errors.New("connection refused"))
	g := newTestRobotsGate(mock, "brokenlinks")
	ctx := context.Background()

	// no robots.txt registered, the mock answers 404
	assert.True(t, g.Allowed(ctx, "http://site.test/anything.html"))
	assert.True(t, g.Allowed(ctx, "http://down.test/anything.html"))
	assert.True(t, g.Allowed(ctx, "not a url"))

	assert.True(t, g.Allowed(ctx, "http://down.test/other.html"))
	assert.Equal(t, 1, mock.RequestCount(http.MethodGet, "http://down.test/robots.txt"))
}
