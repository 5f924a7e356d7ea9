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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentberlin/brokenlinks/storage"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoPattern is the error returned by LimitRule.Init when neither a
	// domain glob nor a domain regexp is set
	ErrNoPattern = errors.New("no pattern defined in LimitRule")
	// ErrRobotsTxtBlocked is the error returned when robots.txt disallows a page
	ErrRobotsTxtBlocked = errors.New("URL blocked by robots.txt")
)

// Checker crawls a site and verifies every link found on its pages.
type Checker struct {
	config   *Config
	backend  *httpBackend
	prober   *Prober
	fetcher  *Fetcher
	ignore   *IgnoreMatcher
	reporter *Reporter
	log      *logrus.Logger

	lock          sync.RWMutex
	onLinkChecked func(*LinkRecord)
	onPageVisited func(*PageRecord)
}

// NewChecker validates cfg, loads the ignore patterns and prepares the HTTP
// backend. A nil cfg uses NewDefaultConfig.
func NewChecker(cfg *Config) (*Checker, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	cfg = cfg.withDefaults()

	patterns, err := LoadIgnoreFile(cfg.IgnoreFile, cfg.IgnoreFile != DefaultIgnoreFile)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, cfg.IgnorePatterns...)
	matcher, err := NewIgnoreMatcher(patterns)
	if err != nil {
		return nil, err
	}

	// Rules carry their own throttle state, so every checker gets copies.
	rules := make([]*LimitRule, len(cfg.LimitRules))
	for i, rule := range cfg.LimitRules {
		rc := *rule
		rules[i] = &rc
	}
	backend := &httpBackend{}
	backend.Init(cfg.Transport, cfg.Timeout, cfg.TraceHTTP)
	if err := backend.Limits(rules); err != nil {
		return nil, fmt.Errorf("invalid limit rule: %w", err)
	}

	return &Checker{
		config:   cfg,
		backend:  backend,
		prober:   newProber(backend, cfg),
		fetcher:  newFetcher(backend, cfg),
		ignore:   matcher,
		reporter: NewReporter(cfg.logger(), cfg.OnlyErrors),
		log:      cfg.logger(),
	}, nil
}

// SetOnLinkChecked registers a function called for every link after it was
// classified. It is called from the goroutine running Run.
func (c *Checker) SetOnLinkChecked(f func(*LinkRecord)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onLinkChecked = f
}

// SetOnPageVisited registers a function called for every page taken from
// the frontier, after its links were checked.
func (c *Checker) SetOnPageVisited(f func(*PageRecord)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onPageVisited = f
}

// OnLinkChecked returns the function registered with SetOnLinkChecked.
func (c *Checker) OnLinkChecked() func(*LinkRecord) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.onLinkChecked
}

// OnPageVisited returns the function registered with SetOnPageVisited.
func (c *Checker) OnPageVisited() func(*PageRecord) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.onPageVisited
}

// IgnorePatterns returns the patterns in effect.
func (c *Checker) IgnorePatterns() []string {
	return c.ignore.Patterns()
}

// run is the state of a single crawl.
type run struct {
	ctx      context.Context
	base     string
	origin   string
	scope    string
	frontier *Frontier
	store    storage.Storage
	pool     *WorkerPool
	summary  *Summary
	// slashed memoizes the page URL chosen for a directory-like link
	slashed map[string]string
}

// Run crawls the site below baseURL until no page is left to visit. The
// returned Summary is valid even when an error is returned for a cancelled
// context.
func (c *Checker) Run(ctx context.Context, baseURL string) (*Summary, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	base := EnsureTrailingSlash(RemoveFragment(normalized))

	store := &storage.InMemoryStorage{}
	if err := store.Init(); err != nil {
		return nil, err
	}
	r := &run{
		ctx:      ctx,
		base:     base,
		origin:   Origin(base),
		scope:    ScopePrefix(base),
		frontier: NewFrontier(base),
		store:    store,
		pool:     NewWorkerPool(ctx, c.config.Parallelism, c.config.WorkQueueSize),
		summary:  &Summary{BaseURL: base, StartedAt: time.Now()},
		slashed:  make(map[string]string),
	}
	defer r.pool.Close()

	c.log.WithField("base", base).Info("starting link check")
	for {
		if err := ctx.Err(); err != nil {
			r.summary.FinishedAt = time.Now()
			return r.summary, err
		}
		pageURL, ok := r.frontier.Pop()
		if !ok {
			break
		}
		visited, err := store.VisitIfNotVisited(pageURL)
		if err != nil {
			return nil, err
		}
		if visited {
			continue
		}
		r.summary.PagesAnalyzed++
		c.visitPage(r, pageURL)
	}
	r.summary.FinishedAt = time.Now()
	return r.summary, nil
}

func (c *Checker) visitPage(r *run, pageURL string) {
	rec := &PageRecord{URL: pageURL}
	defer func() {
		if f := c.OnPageVisited(); f != nil {
			f(rec)
		}
	}()

	c.log.WithField("page", pageURL).Debug("fetching page")
	page, err := c.fetcher.FetchPage(r.ctx, pageURL)
	if err != nil {
		rec.Err = err
		var fetchErr *FetchError
		switch {
		case errors.Is(err, ErrRobotsTxtBlocked):
			c.log.WithField("page", pageURL).Info("page disallowed by robots.txt")
		case errors.As(err, &fetchErr):
			c.log.WithField("page", pageURL).WithError(fetchErr.Err).Error("failed to fetch page")
		default:
			c.log.WithField("page", pageURL).WithError(err).Error("failed to fetch page")
		}
		return
	}
	rec.StatusCode = page.StatusCode
	if page.StatusCode != 200 {
		c.log.WithFields(logrus.Fields{
			"page":   pageURL,
			"status": page.StatusCode,
		}).Warn("page returned non-200 status")
	}

	anchors, err := ExtractLinks(page)
	if err != nil {
		rec.Err = err
		c.log.WithField("page", pageURL).WithError(err).Warn("failed to parse page")
		return
	}
	rec.Links = len(anchors)
	c.checkLinks(r, pageURL, anchors)
}

// checkLinks classifies the anchors of one page. Links needing a probe are
// probed concurrently; results are applied in document order.
func (c *Checker) checkLinks(r *run, pageURL string, anchors []Anchor) {
	records := make([]*LinkRecord, len(anchors))
	pending := make(map[string]struct{})
	var keys []string
	for i, a := range anchors {
		rec := &LinkRecord{PageURL: pageURL, AnchorText: a.Text, Href: a.Href, Position: a.Position}
		records[i] = rec
		resolved, err := ResolveAbsolute(pageURL, a.Href)
		if err != nil {
			rec.Err = err
			continue
		}
		rec.URL = resolved
		if c.ignore.Match(resolved) {
			rec.Ignored = true
			continue
		}
		rec.CheckKey = RemoveFragment(resolved)
		if c.skipProbe(r, rec.CheckKey) {
			continue
		}
		if _, ok := pending[rec.CheckKey]; !ok {
			pending[rec.CheckKey] = struct{}{}
			keys = append(keys, rec.CheckKey)
		}
	}

	results := c.probeAll(r, pageURL, keys)

	onLinkChecked := c.OnLinkChecked()
	for _, rec := range records {
		if rec.URL != "" && !rec.Ignored {
			c.applyResult(r, rec, results)
		}
		r.summary.record(rec)
		c.reporter.LinkChecked(rec)
		if onLinkChecked != nil {
			onLinkChecked(rec)
		}
	}
}

func (c *Checker) skipProbe(r *run, key string) bool {
	if c.config.OnlyErrors {
		return false
	}
	checked, err := r.store.IsChecked(key)
	return err == nil && checked
}

func (c *Checker) probeAll(r *run, pageURL string, keys []string) map[string]ProbeResult {
	results := make(map[string]ProbeResult, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			res := c.prober.ProbeFrom(r.ctx, key, pageURL)
			mu.Lock()
			results[key] = res
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			results[key] = ProbeResult{Err: err}
			mu.Unlock()
		}
	}
	wg.Wait()
	return results
}

func (c *Checker) applyResult(r *run, rec *LinkRecord, results map[string]ProbeResult) {
	rec.Internal = Origin(rec.CheckKey) == r.origin
	if c.skipProbe(r, rec.CheckKey) {
		rec.Cached = true
		rec.Working = true
		rec.StatusCode = 200
	} else {
		res := results[rec.CheckKey]
		rec.Working = res.Working
		rec.StatusCode = res.StatusCode
		rec.Err = res.Err
		rec.Elapsed = res.Elapsed
		if res.Trace != nil {
			c.log.WithField("link", rec.CheckKey).WithFields(res.Trace.Fields()).Debug("probe timings")
		}
		if res.Working {
			if err := r.store.MarkChecked(rec.CheckKey); err != nil {
				c.log.WithError(err).Warn("failed to cache checked link")
			}
		}
	}
	if rec.Internal && InScope(r.scope, rec.CheckKey) {
		rec.Enqueued = c.enqueue(r, rec.CheckKey)
	}
}

// enqueue pushes the page behind key onto the frontier. A directory link
// without its trailing slash that redirects to an index page is enqueued in
// slash-terminated form so relative links on it resolve correctly.
func (c *Checker) enqueue(r *run, key string) bool {
	if r.frontier.Queued(key) || c.isVisited(r, key) {
		return false
	}
	target, ok := r.slashed[key]
	if !ok {
		target = key
		if slashed := EnsureTrailingSlash(key); slashed != key && c.prober.IsIndexRedirect(r.ctx, key) {
			target = slashed
		}
		r.slashed[key] = target
	}
	if c.isVisited(r, target) {
		return false
	}
	if !r.frontier.Push(target) {
		return false
	}
	c.log.WithField("page", target).Debug("page enqueued")
	return true
}

func (c *Checker) isVisited(r *run, u string) bool {
	visited, err := r.store.IsVisited(u)
	return err == nil && visited
}
