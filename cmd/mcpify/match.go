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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/output"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"
	"github.com/kraklabs/mcpify/pkg/semantic"
)

// MatchReport is the --json shape of the match command.
type MatchReport struct {
	Request    string        `json:"request"`
	Mode       semantic.Mode `json:"mode"`
	Functions  int           `json:"functions"`
	Considered int           `json:"considered"`
	Tools      []MatchedTool `json:"tools"`
}

// MatchedTool pairs a tool's MCP schema with the code that implements it.
type MatchedTool struct {
	Schema         model.ToolSchema           `json:"schema"`
	Implementation model.ImplementationConfig `json:"implementation"`
}

// runMatch executes the 'match' command: it inventories the project, ranks
// its functions against a natural-language request and asks the LLM which
// of the best candidates should become tools.
func runMatch(ctx context.Context, args []string, globals GlobalFlags, logger *slog.Logger) {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	exclude := fs.StringSlice("exclude", nil, "Glob patterns to skip while parsing")
	includePrivate := fs.Bool("include-private", false, "Consider _private functions")
	embeddingProvider := fs.String("embedding-provider", "", "Embedding provider for ranking (empty: keyword ranking)")
	maxCandidates := fs.Int("max-candidates", 0, "Ranked functions sent to the LLM (default from config: 50)")
	outPath := fs.StringP("output", "o", "", "Also write the tools as a server config (json|yaml by extension)")
	fs.Usage = commandUsage(fs, `
Usage: mcpify match <path> <request> [options]

Finds the functions of a Python project that serve a natural-language
request and describes an MCP tool for each.

Functions are filtered by the matching criteria in .mcpify.yaml, ranked
by embedding similarity (or keyword overlap when no embedding provider
is configured or it fails), and the best candidates are sent to the LLM.

Examples:
  mcpify match ./imaging "resize and crop images"
  mcpify match . "add two numbers" --embedding-provider ollama
  mcpify match . "export reports" -o reports.yaml
`)
	parseFlags(fs, args)

	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	root, request := fs.Arg(0), fs.Arg(1)

	cfg := mustLoadConfig(globals)
	criteria := cfg.Matching.Criteria
	if fs.Changed("include-private") {
		criteria.IncludePrivate = *includePrivate
	}
	matchCfg := cfg.Matching.Config
	if *maxCandidates > 0 {
		matchCfg.MaxCandidates = *maxCandidates
	}
	if !globals.Quiet {
		matchCfg.OnWarning = ui.Warning
	}
	if *embeddingProvider != "" {
		cfg.Embedding.Provider = *embeddingProvider
	}

	info, err := project.NewInspector(logger).Inspect(root)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	pc := cfg.LLM
	pc.Logger = logger
	proposer, err := detect.NewLLM(detect.LLMConfig{ProviderConfig: pc}, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	embedder, err := newEmbedder(cfg.Embedding, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	progress := NewProgressConfig(globals)
	inv, err := buildInventory(ctx, root, *exclude, criteria.IncludePrivate, progress, logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	matcher := semantic.NewMatcher(matchCfg, proposer, embedder, logger)
	var (
		result   *semantic.MatchResult
		matchErr error
	)
	spin(progress, phaseDescription("generating"), func() {
		result, matchErr = matcher.Match(ctx, request, inv.Functions, criteria)
	})
	if matchErr != nil {
		errors.FatalError(matchErr, globals.JSON)
	}

	report := newMatchReport(request, len(inv.Functions), result)
	if *outPath != "" {
		if err := writeMatchConfig(*outPath, root, info, result.Tools); err != nil {
			errors.FatalError(errors.NewPermissionError(
				"Cannot write server config",
				err.Error(),
				"Choose another destination with --output",
				err,
			), globals.JSON)
		}
	}

	if globals.JSON {
		if err := output.JSON(report); err != nil {
			errors.FatalError(err, true)
		}
		return
	}
	printMatch(report, result)
	if *outPath != "" && !globals.Quiet {
		ui.Successf("Server config written to %s", *outPath)
	}
}

// newEmbedder builds the configured embedding provider behind an LRU cache.
// An empty provider returns nil, which selects keyword ranking.
func newEmbedder(cfg EmbeddingConfig, logger *slog.Logger) (embedding.Provider, error) {
	if cfg.Provider == "" {
		return nil, nil
	}
	p, err := embedding.CreateProvider(cfg.Provider, logger)
	if err != nil {
		return nil, err
	}
	cached, err := embedding.NewCached(p, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func newMatchReport(request string, functions int, result *semantic.MatchResult) MatchReport {
	tools := make([]MatchedTool, 0, len(result.Tools))
	for _, t := range result.Tools {
		tools = append(tools, MatchedTool{
			Schema:         t.ToMCPSchema(),
			Implementation: t.ToImplementationConfig(),
		})
	}
	return MatchReport{
		Request:    request,
		Mode:       result.Mode,
		Functions:  functions,
		Considered: result.Considered,
		Tools:      tools,
	}
}

// writeMatchConfig writes matched tools as a python-backend server config.
func writeMatchConfig(path, root string, info *model.ProjectInfo, tools []model.MCPTool) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	specs := make([]model.ToolSpec, 0, len(tools))
	for _, t := range tools {
		specs = append(specs, t.ToolSpec())
	}
	doc := model.OutputConfig{
		Name:        info.Name,
		Description: info.Description,
		Backend: model.BackendConfig{
			Type:   model.BackendPython,
			Config: map[string]any{"root": abs},
		},
		Tools: specs,
	}
	return output.WriteFile(path, output.FormatForPath(path, output.FormatJSON), doc)
}

func printMatch(r MatchReport, result *semantic.MatchResult) {
	w := os.Stdout
	ui.Header(w, fmt.Sprintf("Tools for %q", r.Request))
	fmt.Fprintf(w, "  %s %s of %s functions (%s ranking)\n", ui.Label("Considered:"),
		ui.CountText(r.Considered), ui.CountText(r.Functions), r.Mode)

	if len(result.Ranked) > 0 {
		ui.SubHeader(w, "Top candidates")
		for i, s := range result.Ranked {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "  %s %s\n", ui.ScoreText(s.Score), s.Function.QualifiedName())
		}
	}

	ui.SubHeader(w, "Generated tools")
	if len(r.Tools) == 0 {
		ui.Warning("No tools matched the request")
		return
	}
	for _, t := range r.Tools {
		impl := t.Implementation
		fmt.Fprintf(w, "  %s %s\n", ui.Label(t.Schema.Name), ui.DimText(fmt.Sprintf("(%s:%d)", impl.FilePath, impl.LineNumber)))
		fmt.Fprintf(w, "    %s\n", t.Schema.Description)
		for _, name := range slices.Sorted(maps.Keys(t.Schema.InputSchema.Properties)) {
			prop := t.Schema.InputSchema.Properties[name]
			req := ""
			if slices.Contains(t.Schema.InputSchema.Required, name) {
				req = " required"
			}
			fmt.Fprintf(w, "    - %s (%s%s): %s\n", name, prop.Type, req, prop.Description)
		}
	}
}
