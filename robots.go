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
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsGate caches robots.txt per host and answers whether a page may be
// fetched by the configured user agent.
type robotsGate struct {
	backend   *httpBackend
	userAgent string
	lock      sync.Mutex
	robots    map[string]*robotstxt.RobotsData
}

func newRobotsGate(backend *httpBackend, userAgent string) *robotsGate {
	return &robotsGate{
		backend:   backend,
		userAgent: userAgent,
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched. Hosts whose robots.txt
// cannot be retrieved or parsed allow everything.
func (g *robotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	robot := g.lookup(ctx, u)
	if robot == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return robot.TestAgent(path, g.userAgent)
}

func (g *robotsGate) lookup(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host
	g.lock.Lock()
	defer g.lock.Unlock()
	if robot, ok := g.robots[key]; ok {
		return robot
	}

	var robot *robotstxt.RobotsData
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err == nil {
		applyHeaders(req, g.userAgent, nil)
		if resp, err := g.backend.Do(req, 0); err == nil {
			robot, err = robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
			if err != nil {
				robot = nil
			}
		}
	}
	g.robots[key] = robot
	return robot
}
