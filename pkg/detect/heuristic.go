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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

// HeuristicConfidence is the confidence reported by the heuristic strategy.
const HeuristicConfidence = 0.6

// DefaultHeuristicExclude keeps test modules and packaging scripts out of
// the project-wide rules.
var DefaultHeuristicExclude = []string{"tests", "test_*.py", "*_test.py", "conftest.py", "setup.py"}

// Scope selects the files a rule reads.
type Scope int

const (
	// ScopeMainFiles covers the top-level .py files found by the inspector.
	ScopeMainFiles Scope = iota
	// ScopeProject covers every .py file under the root not excluded.
	ScopeProject
)

// SourceFile is one file handed to a rule.
type SourceFile struct {
	// Path is slash-separated and relative to the project root.
	Path    string
	Content []byte
}

// Rule is one entry of the heuristic rule table.
type Rule struct {
	Name    string
	Scope   Scope
	Applies func(info *model.ProjectInfo) bool
	Extract func(src SourceFile, parser *inventory.Parser) ([]model.ToolSpec, error)
}

// DefaultRules returns the built-in rule table. Argparse flags, route
// decorators and interactive command loops are read in every project.
// Module functions become tools only in libraries, where nothing more
// specific exists.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "argparse", Scope: ScopeMainFiles, Applies: anyProject, Extract: extractArgparse},
		{Name: "routes", Scope: ScopeProject, Applies: anyProject, Extract: extractRoutes},
		{Name: "generic", Scope: ScopeProject, Applies: projectIs(model.ProjectLibrary), Extract: extractGeneric},
		{Name: "interactive", Scope: ScopeMainFiles, Applies: anyProject, Extract: extractInteractive},
	}
}

func projectIs(t model.ProjectType) func(*model.ProjectInfo) bool {
	return func(info *model.ProjectInfo) bool { return info.ProjectType == t }
}

func anyProject(*model.ProjectInfo) bool { return true }

// Heuristic is the deterministic, offline detection strategy.
type Heuristic struct {
	rules   []Rule
	exclude []string
	logger  *slog.Logger
}

// HeuristicOption customizes a Heuristic.
type HeuristicOption func(*Heuristic)

// WithRules appends rules after the defaults.
func WithRules(rules ...Rule) HeuristicOption {
	return func(h *Heuristic) { h.rules = append(h.rules, rules...) }
}

// WithExclude replaces the globs skipped by project-wide rules.
func WithExclude(globs []string) HeuristicOption {
	return func(h *Heuristic) { h.exclude = globs }
}

// NewHeuristic creates the heuristic strategy. A nil logger uses slog.Default().
func NewHeuristic(logger *slog.Logger, opts ...HeuristicOption) *Heuristic {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Heuristic{
		rules:   DefaultRules(),
		exclude: DefaultHeuristicExclude,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Confidence() float64 { return HeuristicConfidence }

// DetectTools runs every applicable rule over its files. Outputs are
// concatenated in rule order without deduplication. A failing rule or file
// is logged and skipped.
func (h *Heuristic) DetectTools(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, error) {
	parser := inventory.NewParser(inventory.Options{}, h.logger)

	var projectFiles []string
	tools := []model.ToolSpec{}
	for _, rule := range h.rules {
		if rule.Applies != nil && !rule.Applies(info) {
			continue
		}

		files := info.MainFiles
		if rule.Scope == ScopeProject {
			if projectFiles == nil {
				listed, _, err := parser.ListFiles(root, h.exclude)
				if err != nil {
					h.logger.Warn("detect.heuristic.list_failed", "root", root, "err", err)
				}
				projectFiles = append([]string{}, listed...)
			}
			files = projectFiles
		}

		found := 0
		for _, rel := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				h.logger.Warn("detect.heuristic.read_failed", "path", rel, "err", err)
				continue
			}
			out, err := h.runRule(rule, SourceFile{Path: rel, Content: content}, parser)
			if err != nil {
				recordRuleFailure(rule.Name)
				h.logger.Warn("detect.heuristic.rule_failed", "rule", rule.Name, "path", rel, "err", err)
				continue
			}
			tools = append(tools, out...)
			found += len(out)
		}
		h.logger.Debug("detect.heuristic.rule_done", "rule", rule.Name, "files", len(files), "tools", found)
	}
	return tools, nil
}

// runRule converts a panic inside a rule into an error.
func (h *Heuristic) runRule(rule Rule, src SourceFile, parser *inventory.Parser) (tools []model.ToolSpec, err error) {
	defer func() {
		if r := recover(); r != nil {
			tools = nil
			err = fmt.Errorf("rule %s panicked: %v", rule.Name, r)
		}
	}()
	return rule.Extract(src, parser)
}
