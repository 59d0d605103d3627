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

package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/mcpify/pkg/model"
)

// Options configures what the parser keeps.
type Options struct {
	// IncludePrivate keeps functions whose name starts with a single
	// underscore. Dunder names are always kept.
	IncludePrivate bool
}

// Parser extracts FunctionInfo records from Python source using Tree-sitter.
//
// A Parser is not safe for concurrent use; the underlying Tree-sitter parser
// keeps state between calls.
type Parser struct {
	ts       *sitter.Parser
	opts     Options
	logger   *slog.Logger
	progress func(done, total int)
}

// NewParser creates a Python parser. A nil logger uses slog.Default().
func NewParser(opts Options, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	ts := sitter.NewParser()
	ts.SetLanguage(python.GetLanguage())
	return &Parser{ts: ts, opts: opts, logger: logger}
}

// ParseFile reads and parses one Python file. display is the path recorded in
// each FunctionInfo (typically relative to the project root).
//
// A file that cannot be read or parsed yields no records and a logged
// warning; the returned error is always nil so callers can keep going.
func (p *Parser) ParseFile(path, display string) ([]model.FunctionInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		recordParseFailure()
		p.logger.Warn("inventory.parse.failed", "path", display, "err", err)
		return nil, nil
	}
	return p.ParseSource(content, display)
}

// ParseSource parses Python source held in memory.
func (p *Parser) ParseSource(content []byte, display string) ([]model.FunctionInfo, error) {
	start := time.Now()
	tree, err := p.ts.ParseCtx(context.Background(), nil, content)
	if err != nil {
		recordParseFailure()
		p.logger.Warn("inventory.parse.failed", "path", display, "err", err)
		return nil, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Warn("inventory.parse.syntax_errors",
			"path", display,
			"error_count", countErrors(root),
		)
	}

	w := &walker{content: content, file: display, opts: p.opts}
	w.walk(root, "")

	recordFileParsed(len(w.functions), time.Since(start))
	return w.functions, nil
}

// SyntaxTree parses content and returns the tree. Callers must Close it.
func (p *Parser) SyntaxTree(content []byte) (*sitter.Tree, error) {
	tree, err := p.ts.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return tree, nil
}

type walker struct {
	content   []byte
	file      string
	opts      Options
	functions []model.FunctionInfo
	depth     int // enclosing function bodies
}

// walk visits node recursively. className is the nearest enclosing class,
// reset when entering a function body so nested helpers are not methods.
func (w *walker) walk(node *sitter.Node, className string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "class_definition":
		name := w.text(node.ChildByFieldName("name"))
		w.walkChildren(node.ChildByFieldName("body"), name)
		return
	case "function_definition":
		if fn, ok := w.function(node, className); ok {
			w.functions = append(w.functions, fn)
		}
		w.depth++
		w.walkChildren(node.ChildByFieldName("body"), "")
		w.depth--
		return
	}

	w.walkChildren(node, className)
}

func (w *walker) walkChildren(node *sitter.Node, className string) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), className)
	}
}

func (w *walker) function(node *sitter.Node, className string) (model.FunctionInfo, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return model.FunctionInfo{}, false
	}
	name := w.text(nameNode)
	if !w.opts.IncludePrivate && model.IsPrivate(name) {
		return model.FunctionInfo{}, false
	}

	fn := model.FunctionInfo{
		Name:       name,
		FilePath:   w.file,
		LineNumber: int(node.StartPoint().Row) + 1,
		Parameters: w.parameters(node.ChildByFieldName("parameters")),
		Docstring:  w.docstring(node.ChildByFieldName("body")),
		IsMethod:   className != "",
		ClassName:  className,
		IsNested:   w.depth > 0,
		Decorators: w.decorators(node),
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		fn.ReturnType = strings.TrimSpace(strings.TrimPrefix(w.text(rt), "->"))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			fn.IsAsync = true
			break
		}
	}
	return fn, true
}

func (w *walker) parameters(params *sitter.Node) []model.Parameter {
	out := []model.Parameter{}
	if params == nil {
		return out
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		var p model.Parameter

		switch child.Type() {
		case "identifier":
			p = model.Parameter{Name: w.text(child), Required: true}
		case "typed_parameter":
			inner := child.NamedChild(0)
			p = model.Parameter{
				Name:           strings.TrimLeft(w.text(inner), "*"),
				TypeAnnotation: w.text(child.ChildByFieldName("type")),
				Required:       true,
			}
			if inner != nil && (inner.Type() == "list_splat_pattern" || inner.Type() == "dictionary_splat_pattern") {
				p.Required = false
			}
		case "default_parameter":
			p = model.Parameter{
				Name:         w.text(child.ChildByFieldName("name")),
				DefaultValue: w.text(child.ChildByFieldName("value")),
			}
		case "typed_default_parameter":
			p = model.Parameter{
				Name:           w.text(child.ChildByFieldName("name")),
				TypeAnnotation: w.text(child.ChildByFieldName("type")),
				DefaultValue:   w.text(child.ChildByFieldName("value")),
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			p = model.Parameter{Name: strings.TrimLeft(w.text(child), "*")}
		default:
			continue
		}

		if p.Name == "" || p.Name == "self" || p.Name == "cls" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// docstring returns the leading string literal of a function body.
func (w *walker) docstring(body *sitter.Node) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	var first *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if c := body.NamedChild(i); c.Type() != "comment" {
			first = c
			break
		}
	}
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	expr := first.NamedChild(0)
	if expr.Type() != "string" {
		return ""
	}
	return CleanStringLiteral(w.text(expr))
}

func (w *walker) decorators(fn *sitter.Node) []string {
	parent := fn.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		c := parent.NamedChild(i)
		if c.Type() == "decorator" {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(w.text(c), "@")))
		}
	}
	return out
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.content)
}

// CleanStringLiteral strips the prefix and quotes of a Python string literal
// and trims surrounding whitespace.
func CleanStringLiteral(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return strings.TrimSpace(s)
}

func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	n := 0
	if node.IsError() || node.IsMissing() {
		n++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		n += countErrors(node.Child(i))
	}
	return n
}
