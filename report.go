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
	"fmt"
	"io"
	"strconv"

	"github.com/rodaine/table"
	"github.com/sirupsen/logrus"
)

// Reporter writes one log line per checked link.
type Reporter struct {
	log        *logrus.Logger
	onlyErrors bool
}

// NewReporter returns a Reporter writing to logger. With onlyErrors set
// only broken links are reported.
func NewReporter(logger *logrus.Logger, onlyErrors bool) *Reporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Reporter{log: logger, onlyErrors: onlyErrors}
}

// LinkChecked reports rec.
func (r *Reporter) LinkChecked(rec *LinkRecord) {
	if r.onlyErrors && !rec.Broken() {
		return
	}
	entry := r.log.WithFields(logrus.Fields{
		"page":   rec.PageURL,
		"anchor": rec.AnchorText,
		"link":   rec.URL,
	})
	if rec.URL == "" {
		entry = entry.WithField("link", rec.Href)
	}
	switch {
	case rec.Ignored:
		entry.WithField("ignored", true).Info("link ignored")
	case rec.Cached:
		entry.WithField("working", true).Info("link previously checked")
	case rec.Working:
		entry.WithFields(logrus.Fields{
			"working": true,
			"status":  rec.StatusCode,
		}).Info("link checked")
	default:
		entry = entry.WithFields(logrus.Fields{
			"working": false,
			"status":  rec.StatusCode,
		})
		if rec.Position != "" {
			entry = entry.WithField("position", rec.Position)
		}
		if rec.Err != nil {
			entry = entry.WithError(rec.Err)
		}
		entry.Error("broken link")
	}
}

// WriteSummary prints the run counters as a table.
func WriteSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "\nSummary for %s\n", s.BaseURL)
	tbl := table.New("", "Internal", "External", "Total").WithWriter(w)
	tbl.AddRow("Working", s.InternalWorking, s.ExternalWorking, s.Working())
	tbl.AddRow("Broken", s.InternalBroken, s.ExternalBroken, s.Broken())
	tbl.Print()

	fmt.Fprintln(w)
	counts := table.New("Pages analyzed", "Links analyzed", "Ignored", "Previously checked", "Duration").WithWriter(w)
	counts.AddRow(
		strconv.Itoa(s.PagesAnalyzed),
		strconv.Itoa(s.LinksAnalyzed),
		strconv.Itoa(s.LinksIgnored),
		strconv.Itoa(s.LinksCached),
		s.Duration().Round(1e6).String(),
	)
	counts.Print()
}
