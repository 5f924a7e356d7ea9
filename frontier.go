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

// Frontier is the worklist of page URLs waiting to be fetched. It pops the
// most recently pushed URL first and accepts each URL at most once.
type Frontier struct {
	stack  []string
	queued map[string]struct{}
}

// NewFrontier returns a frontier seeded with the given URLs.
func NewFrontier(seeds ...string) *Frontier {
	f := &Frontier{queued: make(map[string]struct{})}
	for _, s := range seeds {
		f.Push(s)
	}
	return f
}

// Push adds u unless it was pushed before. It reports whether u was added.
func (f *Frontier) Push(u string) bool {
	if _, ok := f.queued[u]; ok {
		return false
	}
	f.queued[u] = struct{}{}
	f.stack = append(f.stack, u)
	return true
}

// Pop removes and returns the most recently pushed URL.
func (f *Frontier) Pop() (string, bool) {
	if len(f.stack) == 0 {
		return "", false
	}
	last := len(f.stack) - 1
	u := f.stack[last]
	f.stack[last] = ""
	f.stack = f.stack[:last]
	return u, true
}

// Queued reports whether u was ever pushed.
func (f *Frontier) Queued(u string) bool {
	_, ok := f.queued[u]
	return ok
}

// Len returns the number of URLs still waiting.
func (f *Frontier) Len() int {
	return len(f.stack)
}
