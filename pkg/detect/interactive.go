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

package detect

import (
	"regexp"

	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

var (
	commandEqualsRe = regexp.MustCompile(`(?:if|elif)\s+[^\n]*?\.lower\(\)\s*==\s*['"](\w+)['"]`)
	commandPrefixRe = regexp.MustCompile(`(?:if|elif)\s+[^\n]*?\.lower\(\)\.startswith\(\s*['"](\w+)\s`)
)

// extractInteractive finds commands dispatched from an input loop. A command
// matched by prefix takes a message and replaces a bare one of the same name.
func extractInteractive(src SourceFile, _ *inventory.Parser) ([]model.ToolSpec, error) {
	content := string(src.Content)

	var order []string
	byName := make(map[string]model.ToolSpec)
	put := func(spec model.ToolSpec) {
		if _, ok := byName[spec.Name]; !ok {
			order = append(order, spec.Name)
		}
		byName[spec.Name] = spec
	}

	for _, m := range commandEqualsRe.FindAllStringSubmatch(content, -1) {
		cmd := m[1]
		if isExitCommand(cmd) {
			continue
		}
		put(model.ToolSpec{
			Name:        cmd,
			Description: "Execute " + cmd + " command",
			Args:        []string{cmd},
			Parameters:  []model.ParamSpec{},
		})
	}
	for _, m := range commandPrefixRe.FindAllStringSubmatch(content, -1) {
		cmd := m[1]
		if isExitCommand(cmd) {
			continue
		}
		put(model.ToolSpec{
			Name:        cmd,
			Description: "Execute " + cmd + " command with message",
			Args:        []string{cmd, "{message}"},
			Parameters: []model.ParamSpec{{
				Name:        "message",
				Type:        model.TypeString,
				Description: "Message for " + cmd + " command",
				Required:    true,
			}},
		})
	}

	tools := make([]model.ToolSpec, 0, len(order))
	for _, name := range order {
		tools = append(tools, byName[name])
	}
	return tools, nil
}

func isExitCommand(cmd string) bool { return cmd == "quit" || cmd == "exit" }
