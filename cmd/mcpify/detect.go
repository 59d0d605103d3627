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
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/output"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/model"
)

// runDetect executes the 'detect' command. It inspects the project, runs the
// configured detection strategy and writes the server config to
// <project-name>.json, --output, or stdout.
//
// Flags:
//   - --strategy: auto, llm, heuristic, composite or local-only
//   - --format: json (default) or yaml
//   - --output: destination file; its extension picks the format unless --format is given
//   - --exclude: extra globs skipped by project-wide heuristic rules
//   - --stdout: print instead of writing a file (implied by --json)
//   - --enhance: let the LLM rewrite tool descriptions and parameter details
func runDetect(ctx context.Context, args []string, globals GlobalFlags, logger *slog.Logger) {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	strategy := fs.StringP("strategy", "s", "", "Detection strategy (default from config: auto)")
	format := fs.StringP("format", "f", "json", "Output format (json|yaml)")
	outPath := fs.StringP("output", "o", "", "Output file (default: <project-name>.<format>)")
	exclude := fs.StringSlice("exclude", nil, "Additional exclude globs for project-wide rules")
	toStdout := fs.Bool("stdout", false, "Print the config instead of writing a file")
	enhance := fs.Bool("enhance", false, "Improve detected tools with the LLM (default from config)")
	fs.Usage = commandUsage(fs, `
Usage: mcpify detect [path] [options]

Detects the tools a Python project exposes and writes the MCP server
configuration. The path defaults to the current directory.

Strategies:
  auto        LLM when a provider is configured, otherwise heuristic
  llm         LLM only
  heuristic   Source patterns only (argparse, routes, functions, commands)
  composite   LLM and heuristic merged, first writer wins on names
  local-only  Like auto, but never calls a networked provider

Examples:
  mcpify detect ./my-project
  mcpify detect . --strategy heuristic --format yaml
  mcpify detect . -o server.yaml
  mcpify detect . --strategy heuristic --enhance
`)
	parseFlags(fs, args)

	path := "."
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	cfg := mustLoadConfig(globals)
	kindName := cfg.Detection.Strategy
	if *strategy != "" {
		kindName = *strategy
	}
	kind, err := detect.ParseKind(kindName)
	if err != nil {
		errors.FatalError(errors.NewInputError("Invalid detection strategy", err.Error(), strategyFix), globals.JSON)
	}

	f, err := output.ParseFormat(*format)
	if err != nil {
		errors.FatalError(errors.NewInputError("Invalid output format", err.Error(), "Use --format json or --format yaml"), globals.JSON)
	}
	if *outPath != "" && !fs.Changed("format") {
		f = output.FormatForPath(*outPath, f)
	}

	excludes := append(append([]string{}, cfg.Detection.Exclude...), *exclude...)
	fc := factoryConfig(cfg, excludes, logger)
	if fs.Changed("enhance") {
		fc.Enhance = *enhance
	}
	detector, err := detect.New(kind, fc)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	var (
		result    *model.DetectionResult
		detectErr error
	)
	spin(NewProgressConfig(globals), phaseDescription("detecting"), func() {
		result, detectErr = detector.Detect(ctx, path)
	})
	if detectErr != nil {
		errors.FatalError(detectErr, globals.JSON)
	}

	doc := result.OutputConfig()
	if *toStdout || globals.JSON {
		if globals.JSON {
			f = output.FormatJSON
		}
		if err := output.Write(os.Stdout, f, doc); err != nil {
			errors.FatalError(err, globals.JSON)
		}
		return
	}

	dest := *outPath
	if dest == "" {
		dest = result.ProjectInfo.Name + f.Ext()
	}
	if err := output.WriteFile(dest, f, doc); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot write server config",
			err.Error(),
			"Choose another destination with --output",
			err,
		), globals.JSON)
	}

	if !globals.Quiet {
		ui.Successf("API specification extracted to %s", dest)
		printDetectionSummary(result, detector.Strategy().Name())
	}
}

// factoryConfig maps the configuration onto the detector factory.
func factoryConfig(cfg *Config, excludes []string, logger *slog.Logger) detect.FactoryConfig {
	pc := cfg.LLM
	pc.Logger = logger
	return detect.FactoryConfig{
		LLM:       detect.LLMConfig{ProviderConfig: pc},
		Heuristic: []detect.HeuristicOption{detect.WithExclude(excludes)},
		Enhance:   cfg.Detection.Enhance,
		Logger:    logger,
	}
}

func printDetectionSummary(result *model.DetectionResult, strategy string) {
	w := os.Stdout
	fmt.Fprintf(w, "  %s %s (%s)\n", ui.Label("Project:"), result.ProjectInfo.Name, result.ProjectInfo.ProjectType)
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Strategy:"), strategy)
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Backend:"), result.BackendConfig.Type)
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Confidence:"), ui.ScoreText(result.ConfidenceScore))
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Tools:"), ui.CountText(len(result.Tools)))
	for _, t := range result.Tools {
		fmt.Fprintf(w, "    - %s %s\n", t.Name, ui.DimText(t.Description))
	}
}
