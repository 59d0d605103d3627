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
	"strings"

	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

// extractGeneric exposes every public module-level function as a tool whose
// parameters are all strings. Any leading underscore, dunders included,
// makes a function non-public here.
func extractGeneric(src SourceFile, parser *inventory.Parser) ([]model.ToolSpec, error) {
	functions, err := parser.ParseSource(src.Content, src.Path)
	if err != nil {
		return nil, err
	}

	var tools []model.ToolSpec
	for _, fn := range functions {
		if fn.IsMethod || fn.IsNested || strings.HasPrefix(fn.Name, "_") {
			continue
		}
		spec := model.ToolSpec{
			Name:        fn.Name,
			Description: "Call function " + fn.Name,
			Args:        []string{fn.Name},
			Parameters:  make([]model.ParamSpec, 0, len(fn.Parameters)),
		}
		for _, p := range fn.Parameters {
			spec.Parameters = append(spec.Parameters, model.ParamSpec{
				Name:        p.Name,
				Type:        model.TypeString,
				Description: "Parameter " + p.Name,
				Required:    p.Required,
			})
			spec.Args = append(spec.Args, "{"+p.Name+"}")
		}
		tools = append(tools, spec)
	}
	return tools, nil
}
