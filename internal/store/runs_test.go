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
	"path/filepath"
	"testing"
	"time"

	"github.com/agentberlin/brokenlinks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := newStoreWithPath(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	assert.FileExists(t, path)
}

func TestNewStoreWithPathMissingDir(t *testing.T) {
	_, err := newStoreWithPath(filepath.Join(t.TempDir(), "missing", "test.db"))
	assert.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run, err := store.CreateRun("http://site.test/docs/")
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Len(t, run.UUID, 36)
	assert.Equal(t, StatusRunning, run.Status)

	require.NoError(t, store.SaveLinkResult(run.ID, &LinkResult{
		PageURL: "http://site.test/docs/", URL: "http://site.test/docs/a.html", StatusCode: 200, Working: true, Internal: true,
	}))
	require.NoError(t, store.SaveLinkResult(run.ID, &LinkResult{
		PageURL: "http://site.test/docs/", URL: "http://site.test/docs/b.html", StatusCode: 404, Internal: true,
	}))

	summary := &brokenlinks.Summary{
		PagesAnalyzed:   2,
		LinksAnalyzed:   2,
		InternalWorking: 1,
		InternalBroken:  1,
		FinishedAt:      time.Now(),
	}
	require.NoError(t, store.FinishRun(run.ID, summary, StatusCompleted))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 2, got.PagesAnalyzed)
	assert.Equal(t, 1, got.Broken())
	assert.NotZero(t, got.FinishedAt)

	byUUID, err := store.GetRunByUUID(run.UUID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, byUUID.ID)

	broken, err := store.BrokenLinks(run.ID)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "http://site.test/docs/b.html", broken[0].URL)
	assert.Equal(t, 404, broken[0].StatusCode)

	found, err := store.FindLinkByURL("http://site.test/docs/a.html")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Working)

	found, err = store.FindLinkByURL("http://site.test/docs/c.html")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFinishUnknownRun(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.FinishRun(42, &brokenlinks.Summary{}, StatusCompleted))
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	for _, u := range []string{"http://a.test/", "http://b.test/", "http://c.test/"} {
		_, err := store.CreateRun(u)
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "http://c.test/", runs[0].BaseURL)

	runs, err = store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestDeleteRun(t *testing.T) {
	store := newTestStore(t)
	run, err := store.CreateRun("http://site.test/")
	require.NoError(t, err)
	require.NoError(t, store.SaveLinkResult(run.ID, &LinkResult{PageURL: "p", URL: "http://site.test/x"}))

	require.NoError(t, store.DeleteRun(run.ID))
	_, err = store.GetRun(run.ID)
	assert.Error(t, err)
	links, err := store.FindLinkByURL("http://site.test/x")
	require.NoError(t, err)
	assert.Empty(t, links)

	assert.Error(t, store.DeleteRun(run.ID))
}

func TestRecorder(t *testing.T) {
	store := newTestStore(t)

	mock := brokenlinks.NewMockTransport()
	mock.RegisterHTML("http://site.test/", `<a href="a.html">A</a><a href="gone.html">Gone</a><a href="skip.html">Skip</a>`)
	mock.RegisterHTML("http://site.test/a.html", `nothing`)

	cfg := brokenlinks.NewDefaultConfig()
	cfg.Transport = mock
	cfg.IgnorePatterns = []string{"*/skip.html"}
	checker, err := brokenlinks.NewChecker(cfg)
	require.NoError(t, err)

	rec, err := store.StartRun(checker, "http://site.test/", nil)
	require.NoError(t, err)
	summary, runErr := checker.Run(context.Background(), "http://site.test/")
	require.NoError(t, runErr)
	require.NoError(t, rec.Finish(summary, runErr))

	run := rec.Run()
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 3, run.LinksAnalyzed)
	assert.Equal(t, 1, run.LinksIgnored)
	assert.Equal(t, 1, run.InternalBroken)

	var stored int64
	require.NoError(t, store.DB().Model(&LinkResult{}).Where("run_id = ?", run.ID).Count(&stored).Error)
	assert.EqualValues(t, 2, stored)

	broken, err := store.BrokenLinks(run.ID)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "http://site.test/gone.html", broken[0].URL)
	assert.Equal(t, "Gone", broken[0].AnchorText)
}

func TestRecorderCancelled(t *testing.T) {
	store := newTestStore(t)
	checker, err := brokenlinks.NewChecker(&brokenlinks.Config{Transport: brokenlinks.NewMockTransport()})
	require.NoError(t, err)

	rec, err := store.StartRun(checker, "http://site.test/", nil)
	require.NoError(t, err)
	require.NoError(t, rec.Finish(&brokenlinks.Summary{}, context.Canceled))
	assert.Equal(t, StatusCancelled, rec.Run().Status)

	rec, err = store.StartRun(checker, "http://site.test/", nil)
	require.NoError(t, err)
	require.NoError(t, rec.Finish(nil, errors.New("boom")))
	assert.Equal(t, StatusFailed, rec.Run().Status)
}
