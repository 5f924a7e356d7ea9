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
	"errors"
	"fmt"
	"net/url"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// ErrInvalidBaseURL is returned when the crawl is started from a URL that
// is not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("invalid base URL")

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// ResolveAbsolute resolves href against the URL of the page it was found on.
// The page URL, not the crawl's base URL, must be used here: a page nested in
// a subdirectory gives relative paths a different meaning than the root.
func ResolveAbsolute(pageURL, href string) (string, error) {
	u, err := urlParser.ParseRef(pageURL, href)
	if err != nil {
		return "", err
	}
	return u.Href(false), nil
}

// NormalizeBaseURL parses the crawl's starting URL and returns its
// serialized form. Only absolute http and https URLs are accepted.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidBaseURL)
	}
	u, err := urlParser.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	href := u.Href(false)
	parsed, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidBaseURL, raw)
	}
	return href, nil
}

// RemoveFragment strips the fragment component (including a bare "#") and
// leaves everything else untouched.
func RemoveFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}

// EnsureTrailingSlash appends "/" to the path when its last segment has no
// "." in it and the path does not already end in "/". Query and fragment are
// reattached unchanged.
//
// Examples:
//   - http://example.com/docs        -> http://example.com/docs/
//   - http://example.com/docs?q=1    -> http://example.com/docs/?q=1
//   - http://example.com/page.html   -> http://example.com/page.html
//
// This is a heuristic for telling directories from files; servers are free
// to disagree with it.
func EnsureTrailingSlash(u string) string {
	rest := u
	suffix := ""
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, suffix = rest[:i], rest[i:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, suffix = rest[:i], rest[i:]+suffix
	}

	pathStart := 0
	if i := strings.Index(rest, "://"); i >= 0 {
		authority := i + 3
		if j := strings.IndexByte(rest[authority:], '/'); j >= 0 {
			pathStart = authority + j
		} else {
			pathStart = len(rest)
		}
	}
	path := rest[pathStart:]

	if strings.HasSuffix(path, "/") {
		return u
	}
	lastSegment := path[strings.LastIndexByte(path, '/')+1:]
	if strings.Contains(lastSegment, ".") {
		return u
	}
	return rest + "/" + suffix
}

// Origin returns scheme://host:port for u, filling in the default port of
// http and https. It returns "" for URLs without a host.
func Origin(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ""
	}
	scheme := strings.ToLower(parsed.Scheme)
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	return scheme + "://" + strings.ToLower(parsed.Hostname()) + ":" + port
}

// ScopePrefix returns the directory of the base URL (everything up to and
// including the last "/" of its path). Pages are only crawled below it.
func ScopePrefix(base string) string {
	parsed, err := url.Parse(RemoveFragment(base))
	if err != nil {
		return base
	}
	dir := parsed.EscapedPath()
	if dir == "" {
		dir = "/"
	}
	dir = dir[:strings.LastIndexByte(dir, '/')+1]
	return parsed.Scheme + "://" + parsed.Host + dir
}

// InScope reports whether u lies under the scope prefix.
func InScope(prefix, u string) bool {
	return strings.HasPrefix(u, prefix)
}
