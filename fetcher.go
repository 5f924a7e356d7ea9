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
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"
)

// Page is a fetched document.
type Page struct {
	// URL is the URL the page was requested as
	URL        string
	StatusCode int
	Response   *Response
}

// Anchor is a hyperlink as it appears in a page.
type Anchor struct {
	Href string
	Text string

	// Position is the page region of the anchor, empty for XML documents
	Position string
}

// FetchError is returned when a page could not be retrieved at all.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves pages with full GET requests.
type Fetcher struct {
	backend       *httpBackend
	robots        *robotsGate
	userAgent     string
	headers       map[string]string
	maxBodySize   int
	detectCharset bool
}

func newFetcher(backend *httpBackend, cfg *Config) *Fetcher {
	f := &Fetcher{
		backend:       backend,
		userAgent:     cfg.UserAgent,
		headers:       cfg.Headers,
		maxBodySize:   cfg.MaxBodySize,
		detectCharset: cfg.DetectCharset,
	}
	if cfg.RespectRobots {
		f.robots = newRobotsGate(backend, cfg.UserAgent)
	}
	return f
}

// FetchPage downloads u. Pages disallowed by robots.txt return
// ErrRobotsTxtBlocked; transport failures return a *FetchError. Non-200
// responses are still returned so their links can be inspected.
func (f *Fetcher) FetchPage(ctx context.Context, u string) (*Page, error) {
	if f.robots != nil && !f.robots.Allowed(ctx, u) {
		return nil, ErrRobotsTxtBlocked
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	applyHeaders(req, f.userAgent, f.headers)
	resp, err := f.backend.Do(req, f.maxBodySize)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	if err := resp.fixCharset(f.detectCharset); err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	return &Page{URL: u, StatusCode: resp.StatusCode, Response: resp}, nil
}

// ExtractLinks returns every anchor with an href attribute in document order.
// Only HTML and XML documents carry links.
func ExtractLinks(page *Page) ([]Anchor, error) {
	if page == nil || page.Response == nil {
		return nil, nil
	}
	switch {
	case page.Response.IsHTML():
		return extractHTMLLinks(page.Response.Body)
	case page.Response.IsXML():
		return extractXMLLinks(page.Response.Body)
	}
	return nil, nil
}

func extractHTMLLinks(body []byte) ([]Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, Anchor{
			Href:     strings.TrimSpace(href),
			Text:     strings.TrimSpace(s.Text()),
			Position: LinkPosition(s),
		})
	})
	return anchors, nil
}

func extractXMLLinks(body []byte) ([]Anchor, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var anchors []Anchor
	for _, n := range xmlquery.Find(doc, "//*[local-name()='a'][@href]") {
		anchors = append(anchors, Anchor{
			Href: strings.TrimSpace(n.SelectAttr("href")),
			Text: strings.TrimSpace(n.InnerText()),
		})
	}
	return anchors, nil
}
