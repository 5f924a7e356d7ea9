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

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Run is one invocation of the link checker
type Run struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	UUID            string       `gorm:"uniqueIndex;not null" json:"uuid"`
	BaseURL         string       `gorm:"not null;index" json:"baseUrl"`
	Status          string       `gorm:"not null;default:'running'" json:"status"`
	StartedAt       int64        `gorm:"not null;index" json:"startedAt"`
	FinishedAt      int64        `json:"finishedAt"`
	PagesAnalyzed   int          `json:"pagesAnalyzed"`
	LinksAnalyzed   int          `json:"linksAnalyzed"`
	LinksIgnored    int          `json:"linksIgnored"`
	LinksCached     int          `json:"linksCached"`
	InternalWorking int          `json:"internalWorking"`
	InternalBroken  int          `json:"internalBroken"`
	ExternalWorking int          `json:"externalWorking"`
	ExternalBroken  int          `json:"externalBroken"`
	Links           []LinkResult `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"links,omitempty"`
	CreatedAt       int64        `gorm:"autoCreateTime" json:"createdAt"`
}

// Broken returns the number of broken links of the run
func (r *Run) Broken() int {
	return r.InternalBroken + r.ExternalBroken
}

// LinkResult is one checked (non-ignored) link of a run
type LinkResult struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	RunID      uint   `gorm:"not null;index" json:"runId"`
	PageURL    string `gorm:"type:text;not null" json:"pageUrl"`
	AnchorText string `gorm:"type:text" json:"anchorText"`
	Position   string `json:"position,omitempty"`
	URL        string `gorm:"type:text;not null" json:"url"`
	// URLHash indexes URL, which is too long to index directly
	URLHash    int64  `gorm:"not null;index" json:"-"`
	StatusCode int    `json:"statusCode"`
	Working    bool   `gorm:"index" json:"working"`
	Internal   bool   `json:"internal"`
	Cached     bool   `json:"cached"`
	Error      string `gorm:"type:text" json:"error,omitempty"`
	ElapsedMs  int64  `json:"elapsedMs"`
	CreatedAt  int64  `gorm:"autoCreateTime" json:"createdAt"`
}
