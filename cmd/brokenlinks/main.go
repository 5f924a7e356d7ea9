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

// brokenlinks crawls a site from a base URL and reports every broken link.
//
// Usage:
//
//	brokenlinks [flags] [url]
//
// Flags may appear before or after the URL. The process exits with status 1
// when a broken link is found or the configuration is invalid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/brokenlinks"
	"github.com/agentberlin/brokenlinks/internal/store"
	"github.com/agentberlin/brokenlinks/internal/version"
	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "http://localhost:4444/"

type options struct {
	onlyErrors    bool
	ignoreFile    string
	configFile    string
	parallelism   int
	timeout       time.Duration
	userAgent     string
	respectRobots bool
	dbPath        string
	reportDir     string
	logLevel      string
	showVersion   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("brokenlinks", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&opts.onlyErrors, "only-error", false, "Only report broken links")
	fs.BoolVar(&opts.onlyErrors, "o", false, "Only report broken links (shorthand)")
	fs.StringVar(&opts.ignoreFile, "ignore-file", brokenlinks.DefaultIgnoreFile, "File with URL patterns to ignore")
	fs.StringVar(&opts.ignoreFile, "i", brokenlinks.DefaultIgnoreFile, "File with URL patterns to ignore (shorthand)")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.configFile, "c", "", "YAML configuration file (shorthand)")
	fs.IntVar(&opts.parallelism, "parallelism", 0, "Number of links probed concurrently")
	fs.IntVar(&opts.parallelism, "p", 0, "Number of links probed concurrently (shorthand)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Timeout of a single request")
	fs.StringVar(&opts.userAgent, "user-agent", "", "Custom User-Agent string")
	fs.StringVar(&opts.userAgent, "A", "", "Custom User-Agent string (shorthand)")
	fs.BoolVar(&opts.respectRobots, "respect-robots", false, "Do not fetch pages disallowed by robots.txt")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite file to record the run in")
	fs.StringVar(&opts.reportDir, "report-dir", "", "Directory to write a JSON report to")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: brokenlinks [flags] [url]\n\nChecks every link reachable from url (default %s).\n\nFlags:\n", defaultBaseURL)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses flags that may be interleaved with positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// buildConfig layers defaults, the config file, the environment and the
// flags that were set explicitly.
func buildConfig(fs *flag.FlagSet, opts *options, environ []string, logger *log.Logger) (*brokenlinks.Config, error) {
	cfg := brokenlinks.NewDefaultConfig()
	if opts.configFile != "" {
		if err := brokenlinks.LoadConfigFile(cfg, opts.configFile); err != nil {
			return nil, err
		}
	}
	for _, key := range cfg.ApplyEnv(environ) {
		logger.WithField("variable", "BROKENLINKS_"+key).Warn("unknown environment variable")
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "only-error", "o":
			cfg.OnlyErrors = opts.onlyErrors
		case "ignore-file", "i":
			cfg.IgnoreFile = opts.ignoreFile
		case "parallelism", "p":
			cfg.Parallelism = opts.parallelism
		case "timeout":
			cfg.Timeout = opts.timeout
		case "user-agent", "A":
			cfg.UserAgent = opts.userAgent
		case "respect-robots":
			cfg.RespectRobots = opts.respectRobots
		}
	})
	cfg.Logger = logger
	return cfg, nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "brokenlinks %s\n", version.CurrentVersion)
		return 0
	}
	if len(positional) > 1 {
		fmt.Fprintf(stderr, "Error: expected at most one URL, got %d\n", len(positional))
		return 1
	}
	baseURL := defaultBaseURL
	if len(positional) == 1 {
		baseURL = positional[0]
	}

	logger, err := newLogger(stdout, opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := buildConfig(fs, &opts, environ, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	checker, err := brokenlinks.NewChecker(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var recorder *store.Recorder
	if opts.dbPath != "" {
		st, err := store.NewStore(opts.dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer st.Close()
		recorder, err = st.StartRun(checker, baseURL, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	var report *jsonReport
	if opts.reportDir != "" {
		report = collectReport(checker)
	}

	summary, runErr := checker.Run(ctx, baseURL)
	if recorder != nil {
		if err := recorder.Finish(summary, runErr); err != nil {
			logger.WithError(err).Warn("failed to record run")
		}
	}
	if summary == nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}
	if runErr != nil {
		logger.WithError(runErr).Warn("link check stopped early")
	}

	brokenlinks.WriteSummary(stdout, summary)
	if report != nil {
		path, err := report.write(opts.reportDir, summary)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		logger.WithField("path", path).Info("report written")
	}
	if runErr != nil {
		return 1
	}
	return summary.ExitCode()
}
