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
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Response is the result of a request sent through the backend.
type Response struct {
	// StatusCode is the status code of the final response
	StatusCode int
	// Body is the (possibly truncated) response body, empty for HEAD
	Body []byte
	// Headers contains the response headers
	Headers *http.Header
	// Request is the request that produced this response, after redirects
	Request *http.Request
	// Trace holds connection timings when tracing is enabled
	Trace *HTTPTrace
}

// URL returns the final URL of the response.
func (r *Response) URL() string {
	if r.Request == nil || r.Request.URL == nil {
		return ""
	}
	return r.Request.URL.String()
}

// MediaType returns the lowercased media type of the Content-Type header,
// sniffed from the body when the header is missing.
func (r *Response) MediaType() string {
	var ct string
	if r.Headers != nil {
		ct = r.Headers.Get("Content-Type")
	}
	if ct == "" {
		ct = http.DetectContentType(r.Body)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, _, _ = strings.Cut(ct, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// IsHTML reports whether the body should be parsed as an HTML document.
func (r *Response) IsHTML() bool {
	return r.MediaType() == "text/html"
}

// IsXML reports whether the body should be parsed as XHTML or generic XML.
func (r *Response) IsXML() bool {
	mt := r.MediaType()
	return mt == "application/xhtml+xml" || mt == "application/xml" || mt == "text/xml"
}

// fixCharset converts the body to UTF-8. Without a declared charset the
// encoding is guessed only when detectCharset is set.
func (r *Response) fixCharset(detectCharset bool) error {
	if len(r.Body) == 0 || r.Headers == nil {
		return nil
	}
	contentType := strings.ToLower(r.Headers.Get("Content-Type"))
	if strings.Contains(contentType, "image/") ||
		strings.Contains(contentType, "video/") ||
		strings.Contains(contentType, "audio/") ||
		strings.Contains(contentType, "font/") {
		return nil
	}

	if !strings.Contains(contentType, "charset") {
		if !detectCharset {
			return nil
		}
		d := chardet.NewTextDetector()
		res, err := d.DetectBest(r.Body)
		if err != nil {
			return err
		}
		contentType = "text/plain; charset=" + strings.ToLower(res.Charset)
	}
	if strings.Contains(contentType, "utf-8") || strings.Contains(contentType, "utf8") {
		return nil
	}
	body, err := encodeBytes(r.Body, contentType)
	if err != nil {
		return err
	}
	r.Body = body
	return nil
}

func encodeBytes(b []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(b), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
