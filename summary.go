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
	"time"
)

// LinkRecord describes one anchor found on one page and what became of it.
type LinkRecord struct {
	PageURL    string `json:"page"`
	AnchorText string `json:"anchor"`
	Href       string `json:"href"`
	Position   string `json:"position,omitempty"`
	// URL is Href resolved against PageURL, empty if it could not be resolved
	URL string `json:"url"`
	// CheckKey is URL without its fragment, the link's identity
	CheckKey   string        `json:"-"`
	Ignored    bool          `json:"ignored,omitempty"`
	Cached     bool          `json:"cached,omitempty"`
	Working    bool          `json:"working"`
	StatusCode int           `json:"status"`
	Internal   bool          `json:"internal"`
	Enqueued   bool          `json:"-"`
	Err        error         `json:"-"`
	Elapsed    time.Duration `json:"-"`
}

// Broken reports whether the link counts against the run.
func (r *LinkRecord) Broken() bool {
	return !r.Ignored && !r.Working
}

// ErrorString returns the transport error, if any, as text.
func (r *LinkRecord) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// PageRecord describes one page taken from the frontier.
type PageRecord struct {
	URL        string
	StatusCode int
	Links      int
	Err        error
}

// Summary holds the counters of a finished run.
type Summary struct {
	BaseURL         string    `json:"base_url"`
	PagesAnalyzed   int       `json:"pages_analyzed"`
	LinksAnalyzed   int       `json:"links_analyzed"`
	LinksIgnored    int       `json:"links_ignored"`
	LinksCached     int       `json:"links_cached"`
	InternalWorking int       `json:"internal_working"`
	InternalBroken  int       `json:"internal_broken"`
	ExternalWorking int       `json:"external_working"`
	ExternalBroken  int       `json:"external_broken"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Working returns the number of working links.
func (s *Summary) Working() int {
	return s.InternalWorking + s.ExternalWorking
}

// Broken returns the number of broken links.
func (s *Summary) Broken() int {
	return s.InternalBroken + s.ExternalBroken
}

// Duration returns how long the run took.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// ExitCode is the process status for the run: 1 if any link is broken.
func (s *Summary) ExitCode() int {
	if s.Broken() > 0 {
		return 1
	}
	return 0
}

func (s *Summary) record(rec *LinkRecord) {
	s.LinksAnalyzed++
	switch {
	case rec.Ignored:
		s.LinksIgnored++
		return
	case rec.Cached:
		s.LinksCached++
	}
	switch {
	case rec.Internal && rec.Working:
		s.InternalWorking++
	case rec.Internal:
		s.InternalBroken++
	case rec.Working:
		s.ExternalWorking++
	default:
		s.ExternalBroken++
	}
}
