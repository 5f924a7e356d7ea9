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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnoreFile is the ignore file looked up when none is given.
const DefaultIgnoreFile = "./check-ignore"

// ErrIgnoreFileInvalid is returned when an explicitly requested ignore file
// does not exist or contains no patterns.
var ErrIgnoreFileInvalid = errors.New("ignore file does not exist or is empty")

// IgnoreMatcher decides whether a link is exempt from checking.
// Patterns use shell glob semantics matched against the whole resolved URL;
// "*" also crosses "/" boundaries.
type IgnoreMatcher struct {
	patterns []string
	globs    []glob.Glob
}

// NewIgnoreMatcher compiles patterns once. A nil or empty list yields a
// matcher that ignores nothing.
func NewIgnoreMatcher(patterns []string) (*IgnoreMatcher, error) {
	m := &IgnoreMatcher{
		patterns: make([]string, 0, len(patterns)),
		globs:    make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether u matches any pattern.
func (m *IgnoreMatcher) Match(u string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(u) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns the matcher was built from.
func (m *IgnoreMatcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// ShouldIgnore is a one-shot form of IgnoreMatcher.Match. Patterns that do
// not compile never match.
func ShouldIgnore(u string, patterns []string) bool {
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		if g.Match(u) {
			return true
		}
	}
	return false
}

// ParseIgnorePatterns reads one pattern per line. Text after the first "#"
// on a line is a comment; lines left blank are skipped.
func ParseIgnorePatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// LoadIgnoreFile loads patterns from path. A missing file is an empty pattern
// set unless explicit is true, in which case a missing or empty file is a
// configuration error.
func LoadIgnoreFile(path string, explicit bool) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrIgnoreFileInvalid, path)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer file.Close()

	patterns, err := ParseIgnorePatterns(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}
	if explicit && len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrIgnoreFileInvalid, path)
	}
	return patterns, nil
}
