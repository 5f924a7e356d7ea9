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
	"fmt"
	"time"

	"github.com/agentberlin/brokenlinks"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// hashURL maps u to the signed form sqlite can store
func hashURL(u string) int64 {
	return int64(xxhash.Sum64String(u))
}

// CreateRun records the start of a run against baseURL
func (s *Store) CreateRun(baseURL string) (*Run, error) {
	run := Run{
		UUID:      uuid.NewString(),
		BaseURL:   baseURL,
		Status:    StatusRunning,
		StartedAt: time.Now().Unix(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %v", err)
	}
	return &run, nil
}

// SaveLinkResult stores a checked link of run runID
func (s *Store) SaveLinkResult(runID uint, link *LinkResult) error {
	link.RunID = runID
	link.URLHash = hashURL(link.URL)
	if err := s.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to save link result: %v", err)
	}
	return nil
}

// FinishRun stores the final counters and status of a run
func (s *Store) FinishRun(runID uint, summary *brokenlinks.Summary, status string) error {
	finishedAt := time.Now().Unix()
	if !summary.FinishedAt.IsZero() {
		finishedAt = summary.FinishedAt.Unix()
	}
	result := s.db.Model(&Run{}).Where("id = ?", runID).Updates(map[string]interface{}{
		"status":           status,
		"finished_at":      finishedAt,
		"pages_analyzed":   summary.PagesAnalyzed,
		"links_analyzed":   summary.LinksAnalyzed,
		"links_ignored":    summary.LinksIgnored,
		"links_cached":     summary.LinksCached,
		"internal_working": summary.InternalWorking,
		"internal_broken":  summary.InternalBroken,
		"external_working": summary.ExternalWorking,
		"external_broken":  summary.ExternalBroken,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run with ID %d not found", runID)
	}
	return nil
}

// GetRun returns a run without its links
func (s *Store) GetRun(id uint) (*Run, error) {
	var run Run
	if err := s.db.First(&run, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return &run, nil
}

// GetRunByUUID returns a run without its links
func (s *Store) GetRunByUUID(id string) (*Run, error) {
	var run Run
	if err := s.db.Where("uuid = ?", id).First(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	q := s.db.Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	return runs, nil
}

// BrokenLinks returns the broken links of a run in the order they were found
func (s *Store) BrokenLinks(runID uint) ([]LinkResult, error) {
	var links []LinkResult
	err := s.db.Where("run_id = ? AND working = ?", runID, false).Order("id").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get broken links: %v", err)
	}
	return links, nil
}

// FindLinkByURL returns every stored result for u, newest first
func (s *Store) FindLinkByURL(u string) ([]LinkResult, error) {
	var links []LinkResult
	err := s.db.Where("url_hash = ? AND url = ?", hashURL(u), u).Order("id DESC").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %v", err)
	}
	return links, nil
}

// DeleteRun removes a run and its links
func (s *Store) DeleteRun(id uint) error {
	if err := s.db.Where("run_id = ?", id).Delete(&LinkResult{}).Error; err != nil {
		return fmt.Errorf("failed to delete run links: %v", err)
	}
	result := s.db.Delete(&Run{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete run: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run with ID %d not found", id)
	}
	return nil
}

// NewLinkResult converts a checker record for storage
func NewLinkResult(rec *brokenlinks.LinkRecord) *LinkResult {
	u := rec.URL
	if u == "" {
		u = rec.Href
	}
	return &LinkResult{
		PageURL:    rec.PageURL,
		AnchorText: rec.AnchorText,
		Position:   rec.Position,
		URL:        u,
		StatusCode: rec.StatusCode,
		Working:    rec.Working,
		Internal:   rec.Internal,
		Cached:     rec.Cached,
		Error:      rec.ErrorString(),
		ElapsedMs:  rec.Elapsed.Milliseconds(),
	}
}
