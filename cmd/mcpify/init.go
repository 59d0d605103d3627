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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/detect"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive bool
	strategy              string
	llmProvider, llmModel string
	embeddingProvider     string
}

// runInit executes the 'init' command, writing .mcpify.yaml in the current
// directory (or at --config).
//
// Examples:
//
//	mcpify init                                  Interactive setup
//	mcpify init -y                               Use all defaults
//	mcpify init -y --strategy heuristic          Never call an LLM
//	mcpify init -y --embedding-provider ollama   Rank with local embeddings
func runInit(args []string, globals GlobalFlags) {
	flags := parseInitFlags(args)

	path := globals.ConfigPath
	if path == "" {
		path = ConfigFileName
	}
	if _, err := os.Stat(path); err == nil && !flags.force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s is present", path),
			"Use --force to overwrite it",
		), globals.JSON)
	}

	cfg, err := createInitConfig(flags)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if !flags.nonInteractive && !globals.JSON {
		runInteractiveConfig(bufio.NewReader(os.Stdin), os.Stdout, cfg)
		if _, err := detect.ParseKind(cfg.Detection.Strategy); err != nil {
			errors.FatalError(errors.NewInputError("Invalid detection strategy", err.Error(), strategyFix), globals.JSON)
		}
	}

	if err := SaveConfig(cfg, path); err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot write configuration",
			err.Error(),
			"Check write permissions for the current directory",
			err,
		), globals.JSON)
	}
	if !globals.Quiet {
		ui.Successf("Created %s", path)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  mcpify detect .        Detect tools in this project")
		fmt.Println("  mcpify inventory .     List the functions found")
	}
}

const strategyFix = "Use one of: auto, llm, heuristic, composite, local-only"

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVarP(&f.nonInteractive, "yes", "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.strategy, "strategy", "", "Detection strategy (auto, llm, heuristic, composite, local-only)")
	fs.StringVar(&f.llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, mock)")
	fs.StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	fs.StringVar(&f.embeddingProvider, "embedding-provider", "", "Embedding provider (openai, ollama, nomic, gemini, mock)")
	fs.Usage = commandUsage(fs, `
Usage: mcpify init [options]

Creates the .mcpify.yaml configuration file.

Examples:
  mcpify init -y                               # Non-interactive with defaults
  mcpify init -y --strategy heuristic          # Never call an LLM
  mcpify init --llm-provider ollama --llm-model llama3
`)
	parseFlags(fs, args)
	return f
}

func createInitConfig(f initFlags) (*Config, error) {
	cfg := DefaultConfig()
	if f.strategy != "" {
		kind, err := detect.ParseKind(f.strategy)
		if err != nil {
			return nil, errors.NewInputError("Invalid detection strategy", err.Error(), strategyFix)
		}
		cfg.Detection.Strategy = string(kind)
	}
	if f.llmProvider != "" {
		cfg.LLM.Type = f.llmProvider
	}
	if f.llmModel != "" {
		cfg.LLM.DefaultModel = f.llmModel
	}
	if f.embeddingProvider != "" {
		cfg.Embedding.Provider = f.embeddingProvider
	}
	return cfg, nil
}

// runInteractiveConfig prompts for the settings most users change. An empty
// answer keeps the current value.
func runInteractiveConfig(r *bufio.Reader, w io.Writer, cfg *Config) {
	cfg.Detection.Strategy = prompt(r, w, "Detection strategy", cfg.Detection.Strategy)
	cfg.LLM.Type = prompt(r, w, "LLM provider", cfg.LLM.Type)
	cfg.LLM.DefaultModel = prompt(r, w, "LLM model (empty for provider default)", cfg.LLM.DefaultModel)
	cfg.Embedding.Provider = prompt(r, w, "Embedding provider (empty for keyword ranking)", cfg.Embedding.Provider)
}

func prompt(r *bufio.Reader, w io.Writer, label, def string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, def)
	line, _ := r.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return def
	}
	return line
}
