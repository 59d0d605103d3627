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
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/output"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"
)

// InventoryReport is the --json shape of the inventory command.
type InventoryReport struct {
	Root      string               `json:"root"`
	Files     int                  `json:"files"`
	Skipped   map[string]int       `json:"skipped,omitempty"`
	Summary   inventory.Summary    `json:"summary"`
	Functions []model.FunctionInfo `json:"functions,omitempty"`
}

func runInventory(ctx context.Context, args []string, globals GlobalFlags, logger *slog.Logger) {
	fs := flag.NewFlagSet("inventory", flag.ContinueOnError)
	exclude := fs.StringSlice("exclude", nil, "Glob patterns to skip (repeatable)")
	includePrivate := fs.Bool("include-private", false, "Keep _private functions")
	summaryOnly := fs.Bool("summary", false, "Print only the summary")
	fs.Usage = commandUsage(fs, `
Usage: mcpify inventory [path] [options]

Parses every Python file under path and lists the functions found,
with their signatures and docstrings.

Examples:
  mcpify inventory ./my-project
  mcpify inventory . --exclude 'tests/**' --include-private
  mcpify --json inventory . > functions.json
`)
	parseFlags(fs, args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		errors.FatalError(&project.PathNotFoundError{Path: root}, globals.JSON)
	}

	report, err := buildInventory(ctx, root, *exclude, *includePrivate, NewProgressConfig(globals), logger)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		if *summaryOnly {
			report.Functions = nil
		}
		if err := output.JSON(report); err != nil {
			errors.FatalError(err, true)
		}
		return
	}
	printInventory(report, *summaryOnly)
}

func buildInventory(ctx context.Context, root string, exclude []string, includePrivate bool, progress ProgressConfig, logger *slog.Logger) (*InventoryReport, error) {
	parser := inventory.NewParser(inventory.Options{IncludePrivate: includePrivate}, logger)
	update, finish := fileProgress(progress, phaseDescription("parsing"))
	parser.OnProgress(update)
	inv, err := parser.ParseProject(ctx, root, exclude)
	finish()
	if err != nil {
		return nil, err
	}
	return &InventoryReport{
		Root:      root,
		Files:     inv.Files,
		Skipped:   inv.Skipped,
		Summary:   inventory.Summarize(inv.Functions),
		Functions: inv.Functions,
	}, nil
}

func printInventory(r *InventoryReport, summaryOnly bool) {
	w := os.Stdout
	if !summaryOnly {
		byFile := make(map[string][]model.FunctionInfo)
		for _, fn := range r.Functions {
			byFile[fn.FilePath] = append(byFile[fn.FilePath], fn)
		}
		files := make([]string, 0, len(byFile))
		for f := range byFile {
			files = append(files, f)
		}
		sort.Strings(files)

		for _, f := range files {
			ui.SubHeader(w, f)
			for _, fn := range byFile[f] {
				name := fn.Signature()
				if fn.ClassName != "" {
					name += " " + ui.DimText("in class "+fn.ClassName)
				}
				fmt.Fprintf(w, "  %s %s\n", ui.DimText(fmt.Sprintf("%4d", fn.LineNumber)), name)
				if fn.Docstring != "" {
					fmt.Fprintf(w, "       %s\n", ui.DimText(firstLine(fn.Docstring)))
				}
			}
		}
		fmt.Fprintln(w)
	}

	s := r.Summary
	ui.Header(w, "Inventory Summary")
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Files:"), ui.CountText(r.Files))
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Functions:"), ui.CountText(s.Total))
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Methods:"), ui.CountText(s.Methods))
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Async:"), ui.CountText(s.AsyncFunctions))
	fmt.Fprintf(w, "  %s %s\n", ui.Label("Documented:"), ui.CountText(s.WithDocstring))
	if s.Total > 0 {
		fmt.Fprintf(w, "  %s min %d, max %d, avg %.1f\n", ui.Label("Parameters:"),
			s.ParameterStats.Min, s.ParameterStats.Max, s.ParameterStats.Avg)
	}
	for reason, n := range r.Skipped {
		fmt.Fprintf(w, "  %s %d (%s)\n", ui.Label("Skipped:"), n, reason)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
