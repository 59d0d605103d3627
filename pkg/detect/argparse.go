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
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

// pythonTypes maps the type= callables argparse accepts to parameter types.
var pythonTypes = map[string]model.ParamType{
	"str":   model.TypeString,
	"int":   model.TypeInteger,
	"float": model.TypeNumber,
	"bool":  model.TypeBoolean,
	"list":  model.TypeArray,
}

func pythonType(name string) model.ParamType {
	if t, ok := pythonTypes[name]; ok {
		return t
	}
	return model.TypeString
}

// argument is one add_argument call reduced to the keywords the rule reads.
type argument struct {
	flag     string
	help     string
	typ      string
	action   string
	nargs    string
	required bool
}

// extractArgparse turns every long option registered with add_argument into
// a tool.
func extractArgparse(src SourceFile, parser *inventory.Parser) ([]model.ToolSpec, error) {
	tree, err := parser.SyntaxTree(src.Content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var tools []model.ToolSpec
	visitCalls(tree.RootNode(), func(call *sitter.Node) {
		arg, ok := parseAddArgument(call, src.Content)
		if !ok {
			return
		}
		tools = append(tools, arg.toolSpec())
	})
	return tools, nil
}

func visitCalls(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.Type() == "call" {
		fn(node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		visitCalls(node.NamedChild(i), fn)
	}
}

func parseAddArgument(call *sitter.Node, content []byte) (argument, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return argument{}, false
	}
	if attr := fn.ChildByFieldName("attribute"); attr == nil || attr.Content(content) != "add_argument" {
		return argument{}, false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return argument{}, false
	}

	var a argument
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case "string":
			if a.flag == "" {
				if s := inventory.CleanStringLiteral(child.Content(content)); strings.HasPrefix(s, "--") {
					a.flag = s
				}
			}
		case "keyword_argument":
			key := child.ChildByFieldName("name")
			val := child.ChildByFieldName("value")
			if key == nil || val == nil {
				continue
			}
			text := val.Content(content)
			switch key.Content(content) {
			case "help":
				if val.Type() == "string" {
					a.help = inventory.CleanStringLiteral(text)
				}
			case "type":
				if val.Type() == "identifier" {
					a.typ = text
				}
			case "action":
				a.action = inventory.CleanStringLiteral(text)
			case "nargs":
				a.nargs = inventory.CleanStringLiteral(text)
			case "required":
				a.required = text == "True"
			}
		}
	}
	if a.flag == "" {
		return argument{}, false
	}
	return a, true
}

func (a argument) toolSpec() model.ToolSpec {
	name := strings.ReplaceAll(strings.TrimPrefix(a.flag, "--"), "-", "_")
	desc := a.help
	if desc == "" {
		desc = "Execute " + name
	}
	spec := model.ToolSpec{
		Name:        name,
		Description: desc,
		Args:        []string{a.flag},
		Parameters:  []model.ParamSpec{},
	}

	typ := pythonType(a.typ)
	switch {
	case a.action == "store_true" || a.action == "store_false":
	case a.nargs == "2":
		for i, ord := range []string{"First", "Second"} {
			p := fmt.Sprintf("%s%d", name, i+1)
			spec.Parameters = append(spec.Parameters, model.ParamSpec{
				Name:        p,
				Type:        typ,
				Description: fmt.Sprintf("%s %s value", ord, name),
				Required:    a.required,
			})
			spec.Args = append(spec.Args, "{"+p+"}")
		}
	default:
		spec.Parameters = append(spec.Parameters, model.ParamSpec{
			Name:        name,
			Type:        typ,
			Description: fmt.Sprintf("The %s value", name),
			Required:    a.required,
		})
		spec.Args = append(spec.Args, "{"+name+"}")
	}
	return spec
}
