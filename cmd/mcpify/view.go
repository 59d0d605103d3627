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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/output"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/model"
)

// runView executes the 'view' command, pretty-printing a server config
// written by 'mcpify detect'.
func runView(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	validate := fs.Bool("validate", false, "Exit with an input error if any tool is invalid")
	fs.Usage = commandUsage(fs, `
Usage: mcpify view <config> [options]

Prints the name, backend and tools of a server config (.json or .yaml).

Examples:
  mcpify view my-project.json
  mcpify view server.yaml --validate
`)
	parseFlags(fs, args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	path := fs.Arg(0)

	doc, err := loadOutputConfig(path)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	problems := validateTools(doc.Tools)
	if globals.JSON {
		if err := output.JSON(doc); err != nil {
			errors.FatalError(err, true)
		}
	} else {
		printOutputConfig(os.Stdout, doc)
		for _, p := range problems {
			ui.Warning(p)
		}
	}

	if *validate && len(problems) > 0 {
		errors.FatalError(errors.NewInputError(
			"Server config has invalid tools",
			strings.Join(problems, "; "),
			"Fix the tools or regenerate the config with 'mcpify detect'",
		), globals.JSON)
	}
}

// loadOutputConfig reads a server config, decoding YAML or JSON by extension.
func loadOutputConfig(path string) (*model.OutputConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(
				"Config file not found",
				fmt.Sprintf("%s does not exist", path),
				"Run 'mcpify detect <path>' to create one",
			)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc model.OutputConfig
	if output.FormatForPath(path, output.FormatJSON) == output.FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.NewInputError(
			"Invalid config file",
			fmt.Sprintf("%s: %v", path, err),
			"Check the file syntax or regenerate it with 'mcpify detect'",
		)
	}
	return &doc, nil
}

func validateTools(tools []model.ToolSpec) []string {
	var problems []string
	for i, t := range tools {
		if err := t.Validate(); err != nil {
			name := t.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			problems = append(problems, fmt.Sprintf("tool %s: %v", name, err))
		}
	}
	return problems
}

func printOutputConfig(w io.Writer, doc *model.OutputConfig) {
	name := doc.Name
	if name == "" {
		name = "Unknown"
	}
	desc := doc.Description
	if desc == "" {
		desc = "No description"
	}

	ui.Header(w, "API Specification: "+name)
	fmt.Fprintf(w, "%s %s\n", ui.Label("Description:"), desc)
	if doc.Backend.Type != "" {
		fmt.Fprintf(w, "%s %s\n", ui.Label("Backend:"), doc.Backend.Type)
	}

	fmt.Fprintf(w, "\n%s %s\n", ui.Label("Tools:"), ui.CountText(len(doc.Tools)))
	for _, t := range doc.Tools {
		fmt.Fprintf(w, "  - %s\n", t.Name)
		fmt.Fprintf(w, "    Description: %s\n", t.Description)
		fmt.Fprintf(w, "    Args: %s\n", ui.DimText(fmt.Sprintf("%q", t.Args)))
		if len(t.Parameters) > 0 {
			fmt.Fprintln(w, "    Parameters:")
			for _, p := range t.Parameters {
				req := ""
				if p.Required {
					req = ", required"
				}
				fmt.Fprintf(w, "      - %s (%s%s): %s\n", p.Name, p.Type, req, p.Description)
			}
		}
		fmt.Fprintln(w)
	}
}
