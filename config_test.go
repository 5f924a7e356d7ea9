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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.Parallelism)
	assert.Equal(t, 10*1024*1024, cfg.MaxBodySize)
	assert.Contains(t, cfg.UserAgent, "brokenlinks/")
	assert.False(t, cfg.OnlyErrors)
	assert.False(t, cfg.RespectRobots)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brokenlinks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
only_errors: true
timeout: 2s
parallelism: 4
user_agent: docs-bot
headers:
  Accept-Language: en
ignore:
  - "https://*.example.com*"
limits:
  - domain_glob: "*.site.test"
    parallelism: 2
    delay: 100ms
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, LoadConfigFile(cfg, path))
	assert.True(t, cfg.OnlyErrors)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "docs-bot", cfg.UserAgent)
	assert.Equal(t, map[string]string{"Accept-Language": "en"}, cfg.Headers)
	assert.Equal(t, []string{"https://*.example.com*"}, cfg.IgnorePatterns)
	require.Len(t, cfg.LimitRules, 1)
	assert.Equal(t, "*.site.test", cfg.LimitRules[0].DomainGlob)
	assert.Equal(t, 100*time.Millisecond, cfg.LimitRules[0].Delay)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)
	assert.Equal(t, 10*1024*1024, cfg.MaxBodySize)
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()

	assert.Error(t, LoadConfigFile(cfg, filepath.Join(dir, "missing.yaml")))

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("no_such_option: 1\n"), 0o644))
	assert.Error(t, LoadConfigFile(cfg, unknown))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.NoError(t, LoadConfigFile(cfg, empty))
}

func TestApplyEnv(t *testing.T) {
	cfg := NewDefaultConfig()
	unknown := cfg.ApplyEnv([]string{
		"PATH=/usr/bin",
		"BROKENLINKS_ONLY_ERRORS=yes",
		"BROKENLINKS_PARALLELISM=3",
		"BROKENLINKS_TIMEOUT=750ms",
		"BROKENLINKS_USER_AGENT=env-agent",
		"BROKENLINKS_MAX_BODY_SIZE=not-a-number",
		"BROKENLINKS_BOGUS=1",
	})
	assert.True(t, cfg.OnlyErrors)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.Equal(t, 10*1024*1024, cfg.MaxBodySize)
	assert.Equal(t, []string{"BOGUS"}, unknown)
}

func TestWithDefaults(t *testing.T) {
	cfg := (&Config{Parallelism: 2}).withDefaults()
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)
	assert.NotNil(t, cfg.Transport)
	assert.NotNil(t, cfg.logger())
}
