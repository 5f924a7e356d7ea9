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

package storage

import (
	"sync"
)

// Storage holds the checker's crawl state: the set of pages already
// fetched and the cache of links already confirmed working.
// Keys are fragment-stripped URLs compared as exact strings.
type Storage interface {
	// Init initializes the storage
	Init() error
	// Visited marks a page URL as fetched
	Visited(u string) error
	// IsVisited returns true if the page URL was marked as fetched
	IsVisited(u string) (bool, error)
	// VisitIfNotVisited atomically checks if a page URL has been visited,
	// and if not, marks it as visited. Returns true if it was already visited.
	VisitIfNotVisited(u string) (bool, error)
	// MarkChecked records a link URL as confirmed working
	MarkChecked(u string) error
	// IsChecked returns true if the link URL was confirmed working before
	IsChecked(u string) (bool, error)
	// Counts returns the number of visited pages and cached links
	Counts() (visited int, checked int)
}

// InMemoryStorage is the default Storage. Nothing is persisted between runs.
type InMemoryStorage struct {
	visitedURLs map[string]struct{}
	checkedURLs map[string]struct{}
	lock        *sync.RWMutex
}

// Init initializes InMemoryStorage
func (s *InMemoryStorage) Init() error {
	if s.visitedURLs == nil {
		s.visitedURLs = make(map[string]struct{})
	}
	if s.checkedURLs == nil {
		s.checkedURLs = make(map[string]struct{})
	}
	if s.lock == nil {
		s.lock = &sync.RWMutex{}
	}
	return nil
}

// Visited implements Storage.Visited()
func (s *InMemoryStorage) Visited(u string) error {
	s.lock.Lock()
	s.visitedURLs[u] = struct{}{}
	s.lock.Unlock()
	return nil
}

// IsVisited implements Storage.IsVisited()
func (s *InMemoryStorage) IsVisited(u string) (bool, error) {
	s.lock.RLock()
	_, visited := s.visitedURLs[u]
	s.lock.RUnlock()
	return visited, nil
}

// VisitIfNotVisited implements Storage.VisitIfNotVisited()
func (s *InMemoryStorage) VisitIfNotVisited(u string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.visitedURLs[u]; ok {
		return true, nil
	}
	s.visitedURLs[u] = struct{}{}
	return false, nil
}

// MarkChecked implements Storage.MarkChecked()
func (s *InMemoryStorage) MarkChecked(u string) error {
	s.lock.Lock()
	s.checkedURLs[u] = struct{}{}
	s.lock.Unlock()
	return nil
}

// IsChecked implements Storage.IsChecked()
func (s *InMemoryStorage) IsChecked(u string) (bool, error) {
	s.lock.RLock()
	_, checked := s.checkedURLs[u]
	s.lock.RUnlock()
	return checked, nil
}

// Counts implements Storage.Counts()
func (s *InMemoryStorage) Counts() (int, int) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.visitedURLs), len(s.checkedURLs)
}
