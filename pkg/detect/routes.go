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
	"strings"

	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

var (
	flaskRouteRe   = regexp.MustCompile(`@\w+\.route\(\s*["']([^"']+)["']([^\n]*)\)\s*(?:async\s+)?def\s+(\w+)`)
	fastapiRouteRe = regexp.MustCompile(`@\w+\.(get|post|put|delete|patch)\(\s*["']([^"']+)["'][^\n]*\)\s*(?:async\s+)?def\s+(\w+)`)
	flaskMethodsRe = regexp.MustCompile(`methods\s*=\s*\[\s*["'](\w+)["']`)
	flaskParamRe   = regexp.MustCompile(`<(?:(\w+):)?(\w+)>`)
	braceParamRe   = regexp.MustCompile(`\{(\w+)\}`)
	queryArgsRe    = regexp.MustCompile(`request\.args\.get\(\s*["'](\w+)["']`)
	queryDependRe  = regexp.MustCompile(`(\w+)\s*:\s*Optional\[\w+\]\s*=\s*Query\(`)
	topLevelRe     = regexp.MustCompile(`(?m)^(?:@|def\s|async\s+def\s|class\s)`)
)

var flaskConverters = map[string]model.ParamType{
	"int":    model.TypeInteger,
	"float":  model.TypeNumber,
	"string": model.TypeString,
	"path":   model.TypeString,
	"uuid":   model.TypeString,
}

// route is one decorated handler found in a file.
type route struct {
	method  string
	path    string
	handler string
	// defEnd is the offset just past the handler name.
	defEnd int
}

// extractRoutes turns Flask and FastAPI style route decorators into tools.
func extractRoutes(src SourceFile, _ *inventory.Parser) ([]model.ToolSpec, error) {
	content := string(src.Content)

	var routes []route
	for _, m := range flaskRouteRe.FindAllStringSubmatchIndex(content, -1) {
		method := "GET"
		if mm := flaskMethodsRe.FindStringSubmatch(content[m[4]:m[5]]); mm != nil {
			method = strings.ToUpper(mm[1])
		}
		routes = append(routes, route{
			method:  method,
			path:    content[m[2]:m[3]],
			handler: content[m[6]:m[7]],
			defEnd:  m[7],
		})
	}
	for _, m := range fastapiRouteRe.FindAllStringSubmatchIndex(content, -1) {
		routes = append(routes, route{
			method:  strings.ToUpper(content[m[2]:m[3]]),
			path:    content[m[4]:m[5]],
			handler: content[m[6]:m[7]],
			defEnd:  m[7],
		})
	}

	tools := make([]model.ToolSpec, 0, len(routes))
	for _, r := range routes {
		tools = append(tools, r.toolSpec(handlerBody(content, r.defEnd)))
	}
	return tools, nil
}

// handlerBody returns the text from the handler signature up to the next
// top-level definition or decorator.
func handlerBody(content string, from int) string {
	rest := content[from:]
	if loc := topLevelRe.FindStringIndex(rest); loc != nil {
		return rest[:loc[0]]
	}
	return rest
}

func (r route) toolSpec(body string) model.ToolSpec {
	var params []model.ParamSpec
	seen := make(map[string]bool)
	add := func(p model.ParamSpec) {
		if seen[p.Name] {
			return
		}
		seen[p.Name] = true
		params = append(params, p)
	}

	processed := flaskParamRe.ReplaceAllStringFunc(r.path, func(m string) string {
		sub := flaskParamRe.FindStringSubmatch(m)
		typ, ok := flaskConverters[sub[1]]
		if !ok {
			typ = model.TypeString
		}
		add(model.ParamSpec{Name: sub[2], Type: typ, Description: "The " + sub[2] + " parameter", Required: true})
		return "{" + sub[2] + "}"
	})
	for _, sub := range braceParamRe.FindAllStringSubmatch(processed, -1) {
		add(model.ParamSpec{Name: sub[1], Type: model.TypeInteger, Description: "The " + sub[1] + " parameter", Required: true})
	}

	var query []string
	for _, re := range []*regexp.Regexp{queryArgsRe, queryDependRe} {
		for _, sub := range re.FindAllStringSubmatch(body, -1) {
			if seen[sub[1]] {
				continue
			}
			add(model.ParamSpec{Name: sub[1], Type: model.TypeString, Description: "Query parameter " + sub[1]})
			query = append(query, sub[1]+"={"+sub[1]+"}")
		}
	}

	token := processed
	if len(query) > 0 {
		token += "?" + strings.Join(query, "&")
	}
	if params == nil {
		params = []model.ParamSpec{}
	}
	return model.ToolSpec{
		Name:        r.handler,
		Description: r.method + " " + r.path + " endpoint",
		Args:        []string{token},
		Parameters:  params,
	}
}
