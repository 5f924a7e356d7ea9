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

// Package testutil serves a small fixture site for exercising the link
// checker against a real HTTP server.
package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"
)

// Fixture pages, keyed by path.
var (
	RootHTML = `<!DOCTYPE html>
<html><head><title>Fixture site</title></head>
<body><a href="docs/">Documentation</a></body>
</html>`

	DocsIndexHTML = `<!DOCTYPE html>
<html><head><title>Docs</title></head>
<body>
<a href="./a.html">Page A</a>
<a href="b.html">Missing page</a>
<a href="../outside/">Outside the docs</a>
<a href="sub">Sub directory</a>
<a href="a.html#section">Section of A</a>
</body>
</html>`

	DocsAHTML = `<!DOCTYPE html>
<html><body><a href="./">Back to docs</a></body></html>`

	DocsSubIndexHTML = `<!DOCTYPE html>
<html><body>
<a href="page.html">Nested page</a>
<a href="../a.html">Up to A</a>
</body></html>`

	DocsSubPageHTML = `<!DOCTYPE html>
<html><body><a href="../b.html">Still missing</a></body></html>`

	OutsideHTML = `<!DOCTYPE html>
<html><body><a href="/never-checked.html">Never checked</a></body></html>`
)

// Counters a checker run from <server>/docs/ is expected to produce.
const (
	DocsPages           = 5
	DocsLinks           = 9
	DocsCached          = 2
	DocsInternalWorking = 7
	DocsInternalBroken  = 2
)

func html(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// NewSiteRouter returns the fixture site's router. /docs/sub is a directory
// served without its trailing slash and redirects to its index page;
// /docs/b.html does not exist.
func NewSiteRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", html(RootHTML))
	r.HandleFunc("/docs/", html(DocsIndexHTML))
	r.HandleFunc("/docs/a.html", html(DocsAHTML))
	r.HandleFunc("/docs/sub", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/sub/index.html", http.StatusFound)
	})
	r.HandleFunc("/docs/sub/", html(DocsSubIndexHTML))
	r.HandleFunc("/docs/sub/index.html", html(DocsSubIndexHTML))
	r.HandleFunc("/docs/sub/page.html", html(DocsSubPageHTML))
	r.HandleFunc("/outside/", html(OutsideHTML))
	return r
}

// NewSiteServer starts the fixture site on a local port.
func NewSiteServer() *httptest.Server {
	return httptest.NewServer(NewSiteRouter())
}
