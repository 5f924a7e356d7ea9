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

// brokenlinks-mcp serves the link checker as MCP tools over streamable HTTP.
//
// Usage:
//
//	brokenlinks-mcp [flags]
//
// Flags:
//
//	-addr string    Address to listen on (default "localhost:8090")
//	-db string      Run history database (default ~/.brokenlinks/history.db)
//	-no-history     Do not record runs
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/brokenlinks"
	"github.com/agentberlin/brokenlinks/internal/mcp"
	"github.com/agentberlin/brokenlinks/internal/store"
	"github.com/agentberlin/brokenlinks/internal/version"
	log "github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", "localhost:8090", "Address to listen on")
	dbPath := flag.String("db", "", "Run history database")
	noHistory := flag.Bool("no-history", false, "Do not record runs")
	configFile := flag.String("config", "", "YAML configuration file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("brokenlinks-mcp %s\n", version.CurrentVersion)
		os.Exit(0)
	}

	logger := log.New()
	cfg := brokenlinks.NewDefaultConfig()
	if *configFile != "" {
		if err := brokenlinks.LoadConfigFile(cfg, *configFile); err != nil {
			logger.WithError(err).Fatal("invalid configuration")
		}
	}
	for _, key := range cfg.ApplyEnv(os.Environ()) {
		logger.WithField("variable", "BROKENLINKS_"+key).Warn("unknown environment variable")
	}
	cfg.Logger = logger

	var st *store.Store
	if !*noHistory {
		path := *dbPath
		if path == "" {
			var err error
			if path, err = store.DefaultPath(); err != nil {
				logger.WithError(err).Fatal("failed to locate run history")
			}
		}
		var err error
		if st, err = store.NewStore(path); err != nil {
			logger.WithError(err).Fatal("failed to open run history")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewMCPServer(ctx, st, cfg, logger)
	httpServer, err := server.RunHTTP(*addr)
	if err != nil {
		logger.WithError(err).Fatal("failed to start MCP server")
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := server.Close(); err != nil {
		logger.WithError(err).Error("failed to close run history")
	}
}
