// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the MCPify CLI, which inspects a Python project and
// describes the tools an MCP server generated from it should expose.
//
// Usage:
//
//	mcpify init                         Create .mcpify.yaml configuration
//	mcpify detect <path>                Detect tools and write the server config
//	mcpify inventory <path> [--json]    List the project's Python functions
//	mcpify match <path> <request>       Generate tools for a natural-language request
//	mcpify view <config>                Pretty-print a server config
//	mcpify probe -- <cmd> [args]        Ask a running server for its tools
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags are the options accepted before the command name.
type GlobalFlags struct {
	ConfigPath  string
	JSON        bool
	Quiet       bool
	NoColor     bool
	Verbose     int
	Debug       bool
	MetricsAddr string
}

const usage = `MCPify - turn Python projects into MCP servers

MCPify inspects a Python project, finds the operations it exposes
(CLI flags, HTTP routes, public functions) and writes the server
configuration an MCP server generator consumes.

Usage:
  mcpify [global options] <command> [options]

Commands:
  init          Create .mcpify.yaml configuration
  detect        Detect tools and write the server config
  inventory     List the project's Python functions
  match         Generate tools for a natural-language request
  view          Pretty-print a server config
  probe         Ask a running MCP server for its tools
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
`

const usageFooter = `
Examples:
  mcpify init -y                             Write defaults to .mcpify.yaml
  mcpify detect ./my-project                 Write my-project.json
  mcpify detect ./cli --strategy heuristic   Detect without an LLM
  mcpify inventory ./lib --json              Function inventory as JSON
  mcpify match ./lib "resize an image"       Tools for one request
  mcpify view my-project.json                Show a server config
  mcpify probe -- python3 server.py          Check a server answers tools/list

Environment Variables:
  OPENAI_API_KEY             OpenAI key for LLM detection and embeddings
  ANTHROPIC_API_KEY          Anthropic key for LLM detection
  GEMINI_API_KEY             Gemini key for embeddings
  MCPIFY_STRATEGY            Overrides detection.strategy
  MCPIFY_LLM_PROVIDER        Overrides llm.provider
  MCPIFY_EMBEDDING_PROVIDER  Overrides embedding.provider

Variables in ./.env are loaded without overriding the environment.

For detailed command help: mcpify <command> --help
`

func main() {
	var globals GlobalFlags
	showVersion := false

	fs := flag.NewFlagSet("mcpify", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVarP(&globals.ConfigPath, "config", "c", "", "Path to .mcpify.yaml (default: ./.mcpify.yaml)")
	fs.BoolVar(&globals.JSON, "json", false, "Machine-readable JSON output")
	fs.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress and informational output")
	fs.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	fs.CountVarP(&globals.Verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	fs.BoolVar(&globals.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&globals.MetricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	fs.BoolVar(&showVersion, "version", false, "Show version and exit")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
		fmt.Fprint(os.Stderr, usageFooter)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("mcpify version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	if globals.JSON {
		globals.Quiet = true
	}
	ui.InitColors(globals.NoColor)
	logger := setupLogger(globals)
	loadDotEnv()
	startMetrics(globals.MetricsAddr, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs, globals)
	case "detect":
		runDetect(ctx, cmdArgs, globals, logger)
	case "inventory":
		runInventory(ctx, cmdArgs, globals, logger)
	case "match":
		runMatch(ctx, cmdArgs, globals, logger)
	case "view":
		runView(cmdArgs, globals)
	case "probe":
		runProbe(ctx, cmdArgs, globals, logger)
	case "completion":
		runCompletion(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		fs.Usage()
		os.Exit(1)
	}
}

// setupLogger installs a text handler on stderr. Commands log warnings by
// default so that stdout stays clean for JSON and YAML output.
func setupLogger(globals GlobalFlags) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(globals),
	}))
	slog.SetDefault(logger)
	return logger
}

func logLevel(globals GlobalFlags) slog.Level {
	switch {
	case globals.Debug || globals.Verbose >= 2:
		return slog.LevelDebug
	case globals.Verbose == 1:
		return slog.LevelInfo
	case globals.Quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// startMetrics serves /metrics on addr in the background. An empty addr
// disables it.
func startMetrics(addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
}

// parseFlags parses a command's flag set, exiting on --help or bad input.
func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commandUsage builds a FlagSet.Usage func from a heredoc header.
func commandUsage(fs *flag.FlagSet, header string) func() {
	return func() {
		fmt.Fprint(os.Stderr, strings.TrimLeft(header, "\n"))
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
}
