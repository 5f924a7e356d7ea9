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

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentberlin/brokenlinks"
	"github.com/agentberlin/brokenlinks/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errNoHistory = errors.New("run history is not enabled on this server")

func (s *MCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_links",
		Description: "Crawls a site from the given base URL, probes every link and returns the summary and the broken links",
	}, s.checkLinks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "Lists recorded link check runs, most recent first",
	}, s.listRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run",
		Description: "Returns the counters and broken links of a recorded run",
	}, s.getRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_link",
		Description: "Returns every recorded check of a link URL, newest first",
	}, s.findLink)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_run",
		Description: "Deletes a recorded run and its links",
	}, s.deleteRun)
}

func textResult(format string, v any, args ...any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...) + "\n" + string(data)},
		},
	}
}

// CheckLinksArgs defines the input schema for check_links tool
type CheckLinksArgs struct {
	URL            string   `json:"url"`
	OnlyErrors     bool     `json:"onlyErrors,omitempty"`
	IgnorePatterns []string `json:"ignore,omitempty"`
	Parallelism    int      `json:"parallelism,omitempty"`
}

// CheckLinksResult defines the output schema for check_links tool
type CheckLinksResult struct {
	RunID   string                    `json:"runId,omitempty"`
	Summary *brokenlinks.Summary      `json:"summary"`
	Broken  []*brokenlinks.LinkRecord `json:"broken"`
}

func (s *MCPServer) checkLinks(ctx context.Context, req *mcp.CallToolRequest, args CheckLinksArgs) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("url", args.URL).Info("tool called: check_links")

	cfg := *s.config
	cfg.OnlyErrors = cfg.OnlyErrors || args.OnlyErrors
	cfg.IgnorePatterns = append(append([]string(nil), cfg.IgnorePatterns...), args.IgnorePatterns...)
	if args.Parallelism > 0 {
		cfg.Parallelism = args.Parallelism
	}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}

	checker, err := brokenlinks.NewChecker(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var recorder *store.Recorder
	if s.store != nil {
		recorder, err = s.store.StartRun(checker, args.URL, s.logger)
		if err != nil {
			return nil, nil, err
		}
	}

	var broken []*brokenlinks.LinkRecord
	linkChecked := checker.OnLinkChecked()
	checker.SetOnLinkChecked(func(rec *brokenlinks.LinkRecord) {
		if linkChecked != nil {
			linkChecked(rec)
		}
		if rec.Broken() {
			broken = append(broken, rec)
		}
	})

	summary, runErr := checker.Run(ctx, args.URL)
	if recorder != nil {
		if err := recorder.Finish(summary, runErr); err != nil {
			s.logger.WithError(err).Warn("failed to record run")
		}
	}
	if summary == nil {
		return nil, nil, runErr
	}

	result := CheckLinksResult{Summary: summary, Broken: broken}
	if result.Broken == nil {
		result.Broken = []*brokenlinks.LinkRecord{}
	}
	if recorder != nil {
		result.RunID = recorder.Run().UUID
	}
	status := "completed"
	if runErr != nil {
		status = "stopped: " + runErr.Error()
	}
	return textResult("Link check of %s %s: %d working, %d broken",
		result, summary.BaseURL, status, summary.Working(), summary.Broken()), result, nil
}

// ListRunsArgs defines the input schema for list_runs tool
type ListRunsArgs struct {
	Limit int `json:"limit,omitempty"`
}

// ListRunsResult defines the output schema for list_runs tool
type ListRunsResult struct {
	Runs []store.Run `json:"runs"`
}

func (s *MCPServer) listRuns(ctx context.Context, req *mcp.CallToolRequest, args ListRunsArgs) (*mcp.CallToolResult, any, error) {
	s.logger.Info("tool called: list_runs")
	if s.store == nil {
		return nil, nil, errNoHistory
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		return nil, nil, err
	}
	if runs == nil {
		runs = []store.Run{}
	}
	result := ListRunsResult{Runs: runs}
	return textResult("Found %d runs:", result, len(runs)), result, nil
}

// RunArgs identifies a recorded run
type RunArgs struct {
	ID uint `json:"id"`
}

// GetRunResult defines the output schema for get_run tool
type GetRunResult struct {
	Run    *store.Run         `json:"run"`
	Broken []store.LinkResult `json:"broken"`
}

func (s *MCPServer) getRun(ctx context.Context, req *mcp.CallToolRequest, args RunArgs) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("id", args.ID).Info("tool called: get_run")
	if s.store == nil {
		return nil, nil, errNoHistory
	}
	run, err := s.store.GetRun(args.ID)
	if err != nil {
		return nil, nil, err
	}
	broken, err := s.store.BrokenLinks(run.ID)
	if err != nil {
		return nil, nil, err
	}
	if broken == nil {
		broken = []store.LinkResult{}
	}
	result := GetRunResult{Run: run, Broken: broken}
	return textResult("Run %d of %s (%s):", result, run.ID, run.BaseURL, run.Status), result, nil
}

// FindLinkArgs defines the input schema for find_link tool
type FindLinkArgs struct {
	URL string `json:"url"`
}

// FindLinkResult defines the output schema for find_link tool
type FindLinkResult struct {
	Checks []store.LinkResult `json:"checks"`
}

func (s *MCPServer) findLink(ctx context.Context, req *mcp.CallToolRequest, args FindLinkArgs) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("url", args.URL).Info("tool called: find_link")
	if s.store == nil {
		return nil, nil, errNoHistory
	}
	checks, err := s.store.FindLinkByURL(args.URL)
	if err != nil {
		return nil, nil, err
	}
	if checks == nil {
		checks = []store.LinkResult{}
	}
	result := FindLinkResult{Checks: checks}
	return textResult("Found %d checks of %s:", result, len(checks), args.URL), result, nil
}

// DeleteRunResult defines the output schema for delete_run tool
type DeleteRunResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *MCPServer) deleteRun(ctx context.Context, req *mcp.CallToolRequest, args RunArgs) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("id", args.ID).Info("tool called: delete_run")
	if s.store == nil {
		return nil, nil, errNoHistory
	}
	if err := s.store.DeleteRun(args.ID); err != nil {
		return nil, DeleteRunResult{Success: false, Message: err.Error()}, nil
	}
	result := DeleteRunResult{Success: true, Message: fmt.Sprintf("Run %d deleted", args.ID)}
	return textResult("%s", result, result.Message), result, nil
}
