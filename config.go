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
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentberlin/brokenlinks/internal/version"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config controls a Checker. Zero values are replaced by the defaults of
// NewDefaultConfig when the Checker is created.
type Config struct {
	// OnlyErrors suppresses report lines for working and ignored links and
	// forces every link to be probed even if it was confirmed before
	OnlyErrors bool `yaml:"only_errors"`
	// IgnoreFile is the path of the ignore pattern file
	IgnoreFile string `yaml:"ignore_file"`
	// IgnorePatterns are used in addition to the patterns of IgnoreFile
	IgnorePatterns []string `yaml:"ignore"`
	// Timeout bounds every single request
	Timeout time.Duration `yaml:"timeout"`
	// Parallelism is the number of links probed concurrently
	Parallelism int `yaml:"parallelism"`
	// WorkQueueSize is the buffer of pending probes
	WorkQueueSize int `yaml:"work_queue_size"`
	// UserAgent is sent with every request
	UserAgent string `yaml:"user_agent"`
	// Headers are extra request headers
	Headers map[string]string `yaml:"headers"`
	// MaxBodySize limits the bytes read from a page, 0 means unlimited
	MaxBodySize int `yaml:"max_body_size"`
	// DetectCharset guesses the encoding of pages without a declared charset
	DetectCharset bool `yaml:"detect_charset"`
	// RespectRobots skips fetching pages disallowed by robots.txt
	RespectRobots bool `yaml:"respect_robots"`
	// TraceHTTP records connection timings for every probe
	TraceHTTP bool `yaml:"trace_http"`
	// LimitRules throttle requests per host
	LimitRules []*LimitRule `yaml:"limits"`

	// Transport replaces the default HTTP transport, mainly in tests
	Transport http.RoundTripper `yaml:"-"`
	// Logger receives report lines and diagnostics
	Logger *logrus.Logger `yaml:"-"`
}

// NewDefaultConfig returns a Config with the defaults of the command-line tool.
func NewDefaultConfig() *Config {
	return &Config{
		IgnoreFile:    DefaultIgnoreFile,
		Timeout:       5 * time.Second,
		Parallelism:   10,
		WorkQueueSize: 100,
		UserAgent:     "brokenlinks/" + version.CurrentVersion,
		MaxBodySize:   10 * 1024 * 1024,
	}
}

// LoadConfigFile merges the YAML file at path into cfg. Unknown keys are errors.
func LoadConfigFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

const envPrefix = "BROKENLINKS_"

var envMap = map[string]func(*Config, string){
	"DETECT_CHARSET": func(c *Config, val string) {
		c.DetectCharset = isYesString(val)
	},
	"IGNORE_FILE": func(c *Config, val string) {
		c.IgnoreFile = val
	},
	"MAX_BODY_SIZE": func(c *Config, val string) {
		size, err := strconv.Atoi(val)
		if err == nil {
			c.MaxBodySize = size
		}
	},
	"ONLY_ERRORS": func(c *Config, val string) {
		c.OnlyErrors = isYesString(val)
	},
	"PARALLELISM": func(c *Config, val string) {
		n, err := strconv.Atoi(val)
		if err == nil && n > 0 {
			c.Parallelism = n
		}
	},
	"RESPECT_ROBOTS": func(c *Config, val string) {
		c.RespectRobots = isYesString(val)
	},
	"TIMEOUT": func(c *Config, val string) {
		d, err := time.ParseDuration(val)
		if err == nil && d > 0 {
			c.Timeout = d
		}
	},
	"TRACE_HTTP": func(c *Config, val string) {
		c.TraceHTTP = isYesString(val)
	},
	"USER_AGENT": func(c *Config, val string) {
		c.UserAgent = val
	},
}

// ApplyEnv applies BROKENLINKS_* variables from environ (os.Environ format).
// It returns the names of variables it did not recognize.
func (c *Config) ApplyEnv(environ []string) []string {
	var unknown []string
	for _, e := range environ {
		if !strings.HasPrefix(e, envPrefix) {
			continue
		}
		key, val, _ := strings.Cut(e[len(envPrefix):], "=")
		if f, ok := envMap[key]; ok {
			f(c, val)
		} else {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func (c *Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	def := NewDefaultConfig()
	cfg := *c
	if cfg.IgnoreFile == "" {
		cfg.IgnoreFile = def.IgnoreFile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.WorkQueueSize <= 0 {
		cfg.WorkQueueSize = def.WorkQueueSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &cfg
}

func isYesString(s string) bool {
	switch strings.ToLower(s) {
	case "1", "yes", "true", "y":
		return true
	}
	return false
}
