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

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/agentberlin/brokenlinks"
	"github.com/kennygrant/sanitize"
)

type jsonReport struct {
	lock   sync.Mutex
	broken []*brokenlinks.LinkRecord
}

type reportFile struct {
	Summary *brokenlinks.Summary      `json:"summary"`
	Broken  []*brokenlinks.LinkRecord `json:"broken"`
}

// collectReport records the broken links of the checker's next run.
func collectReport(checker *brokenlinks.Checker) *jsonReport {
	r := &jsonReport{broken: []*brokenlinks.LinkRecord{}}
	next := checker.OnLinkChecked()
	checker.SetOnLinkChecked(func(rec *brokenlinks.LinkRecord) {
		if next != nil {
			next(rec)
		}
		if rec.Broken() {
			r.lock.Lock()
			r.broken = append(r.broken, rec)
			r.lock.Unlock()
		}
	})
	return r
}

func reportFileName(baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return sanitize.BaseName(host) + "-report.json"
}

func (r *jsonReport) write(dir string, summary *brokenlinks.Summary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	r.lock.Lock()
	data, err := json.MarshalIndent(reportFile{Summary: summary, Broken: r.broken}, "", "  ")
	r.lock.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, reportFileName(summary.BaseURL))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
