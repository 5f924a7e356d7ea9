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

package store

import (
	"context"
	"errors"

	"github.com/agentberlin/brokenlinks"
	"github.com/sirupsen/logrus"
)

// Recorder persists the links of a single run as the checker reports them.
type Recorder struct {
	store *Store
	run   *Run
	log   *logrus.Logger
}

// StartRun creates a run for baseURL and hooks the recorder into c.
// Ignored links are not stored.
func (s *Store) StartRun(c *brokenlinks.Checker, baseURL string, log *logrus.Logger) (*Recorder, error) {
	run, err := s.CreateRun(baseURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Recorder{store: s, run: run, log: log}
	c.SetOnLinkChecked(r.linkChecked)
	return r, nil
}

// Run returns the run being recorded
func (r *Recorder) Run() *Run {
	return r.run
}

func (r *Recorder) linkChecked(rec *brokenlinks.LinkRecord) {
	if rec.Ignored {
		return
	}
	if err := r.store.SaveLinkResult(r.run.ID, NewLinkResult(rec)); err != nil {
		r.log.WithError(err).Warn("failed to record link")
	}
}

// Finish stores the outcome of the run. runErr is the error returned by
// Checker.Run; a nil summary marks the run as failed.
func (r *Recorder) Finish(summary *brokenlinks.Summary, runErr error) error {
	status := StatusCompleted
	switch {
	case summary == nil:
		summary = &brokenlinks.Summary{}
		status = StatusFailed
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = StatusCancelled
	case runErr != nil:
		status = StatusFailed
	}
	if err := r.store.FinishRun(r.run.ID, summary, status); err != nil {
		return err
	}
	run, err := r.store.GetRun(r.run.ID)
	if err != nil {
		return err
	}
	r.run = run
	return nil
}
