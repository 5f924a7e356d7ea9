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

// Package mcp exposes the link checker and its run history as MCP tools.
package mcp

import (
	"context"
	"net/http"

	"github.com/agentberlin/brokenlinks"
	"github.com/agentberlin/brokenlinks/internal/store"
	"github.com/agentberlin/brokenlinks/internal/version"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

const ServerName = "brokenlinks"

// MCPServer serves the check_links tool and the run history over MCP
type MCPServer struct {
	server *mcp.Server
	store  *store.Store
	config *brokenlinks.Config
	ctx    context.Context
	logger *logrus.Logger
}

// NewMCPServer creates a server whose crawls start from a copy of config.
// st may be nil, in which case runs are not recorded and the history tools
// report an error.
func NewMCPServer(ctx context.Context, st *store.Store, config *brokenlinks.Config, logger *logrus.Logger) *MCPServer {
	if config == nil {
		config = brokenlinks.NewDefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &MCPServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version.CurrentVersion,
		}, nil),
		store:  st,
		config: config,
		ctx:    ctx,
		logger: logger,
	}
	s.registerTools()
	logger.Info("MCP server initialized")
	return s
}

// GetServer returns the internal MCP server instance
func (s *MCPServer) GetServer() *mcp.Server {
	return s.server
}

// Handler returns the streamable HTTP handler for the server
func (s *MCPServer) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return s.server
		},
		nil,
	)
}

// RunHTTP starts serving on addr in the background
func (s *MCPServer) RunHTTP(addr string) (*http.Server, error) {
	s.logger.WithField("addr", addr).Info("starting MCP HTTP server")
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("MCP HTTP server failed")
		}
	}()
	return httpServer, nil
}

// Close releases the run history store
func (s *MCPServer) Close() error {
	s.logger.Info("shutting down MCP server")
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
