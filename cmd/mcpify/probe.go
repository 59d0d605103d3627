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
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/internal/output"
	"github.com/kraklabs/mcpify/internal/ui"
	"github.com/kraklabs/mcpify/pkg/probe"
)

// runProbe executes the 'probe' command. It starts an MCP server process,
// sends one tools/list request over stdin and reports the tools it answers
// with. A server that fails to answer exits with ExitProvider.
func runProbe(ctx context.Context, args []string, globals GlobalFlags, logger *slog.Logger) {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	timeout := fs.Duration("timeout", probe.DefaultTimeout, "Time allowed for the server to answer")
	dir := fs.String("dir", "", "Working directory of the server process")
	env := fs.StringArray("env", nil, "Extra KEY=VALUE environment for the server (repeatable)")
	fs.Usage = commandUsage(fs, `
Usage: mcpify probe [options] -- <command> [args...]

Starts an MCP server, asks it for its tools over stdio and stops it.

Examples:
  mcpify probe -- python3 server.py
  mcpify probe --timeout 30s --dir ./generated -- ./run-server.sh
`)
	parseFlags(fs, args)

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(errors.ExitInput)
	}
	cmd := probe.Command{Path: fs.Arg(0), Args: fs.Args()[1:], Dir: *dir, Env: *env}

	var (
		res      *probe.Result
		probeErr error
	)
	spin(NewProgressConfig(globals), "Waiting for "+cmd.Path, func() {
		res, probeErr = probe.ProbeWithLogger(ctx, cmd, *timeout, logger)
	})
	if probeErr != nil && ctx.Err() != nil {
		errors.FatalError(probeErr, globals.JSON)
	}
	if probeErr != nil {
		errors.FatalError(errors.NewInputError(
			"Cannot start server",
			probeErr.Error(),
			"Check the command after '--' and its working directory",
		), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(res); err != nil {
			errors.FatalError(err, true)
		}
	} else if res.OK {
		ui.Successf("%s answered in %s with %d tools", cmd, res.Elapsed.Round(time.Millisecond), len(res.Tools))
		for _, t := range res.Tools {
			name, _ := t["name"].(string)
			desc, _ := t["description"].(string)
			fmt.Printf("  - %s %s\n", ui.Label(name), ui.DimText(desc))
		}
	}

	if !res.OK {
		errors.FatalError(errors.NewProviderError(
			"Server did not list its tools",
			res.Error,
			"Run the command by hand and check it speaks MCP over stdio",
			nil,
		), globals.JSON)
	}
}
