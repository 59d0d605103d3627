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

package semantic

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/inventory"
	"github.com/kraklabs/mcpify/pkg/model"
)

const (
	DefaultSimilarityFloor = -0.1
	DefaultMaxCandidates   = 50
)

// ErrNoProposer is returned by GenerateTools when the matcher has no Proposer.
var ErrNoProposer = errors.New("no tool proposer configured")

// Proposer picks the functions that serve a request and describes a tool
// for each.
type Proposer interface {
	AnalyzeRequest(ctx context.Context, request string, functions []model.FunctionInfo) []detect.ToolProposal
}

// Config tunes ranking and candidate selection.
type Config struct {
	// MinKeywordScore drops keyword-ranked functions scoring below it.
	MinKeywordScore float64 `json:"min_keyword_score" yaml:"min_keyword_score"`
	// SimilarityFloor drops embedding-ranked functions below it.
	SimilarityFloor float64 `json:"similarity_floor" yaml:"similarity_floor"`
	// MaxCandidates bounds the ranked functions sent to the Proposer.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`

	// OnWarning receives user-facing warnings, such as an embedding
	// fallback. Optional.
	OnWarning func(msg string) `json:"-" yaml:"-"`
}

// DefaultConfig returns the matcher defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityFloor: DefaultSimilarityFloor,
		MaxCandidates:   DefaultMaxCandidates,
	}
}

// Matcher ranks functions against a request and generates tools.
type Matcher struct {
	cfg      Config
	proposer Proposer
	embedder embedding.Provider
	logger   *slog.Logger
}

// NewMatcher creates a matcher. A nil embedder selects keyword ranking and a
// nil logger uses slog.Default().
func NewMatcher(cfg Config, proposer Proposer, embedder embedding.Provider, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &Matcher{cfg: cfg, proposer: proposer, embedder: embedder, logger: logger}
}

func (m *Matcher) warn(msg string) {
	if m.cfg.OnWarning != nil {
		m.cfg.OnWarning(msg)
	}
}

// MatchResult reports one Match run.
type MatchResult struct {
	Mode       Mode            `json:"mode"`
	Considered int             `json:"considered"`
	Ranked     []Scored        `json:"ranked"`
	Tools      []model.MCPTool `json:"tools"`
}

// Match filters functions with c, ranks them against request, keeps the top
// MaxCandidates and generates tools from those.
func (m *Matcher) Match(ctx context.Context, request string, functions []model.FunctionInfo, c Criteria) (*MatchResult, error) {
	eligible := Filter(functions, c)
	ranked, mode := m.rank(ctx, eligible, request)
	if len(ranked) > m.cfg.MaxCandidates {
		ranked = ranked[:m.cfg.MaxCandidates]
	}

	candidates := make([]model.FunctionInfo, 0, len(ranked))
	for _, s := range ranked {
		candidates = append(candidates, s.Function)
	}
	tools, err := m.GenerateTools(ctx, request, candidates)
	if err != nil {
		return nil, err
	}

	m.logger.Info("semantic.match.done",
		"mode", mode,
		"functions", len(functions),
		"considered", len(eligible),
		"candidates", len(candidates),
		"tools", len(tools),
	)
	return &MatchResult{Mode: mode, Considered: len(eligible), Ranked: ranked, Tools: tools}, nil
}

// GenerateTools asks the Proposer for tools and binds each proposal to the
// function it names. Proposals naming unknown functions are dropped.
func (m *Matcher) GenerateTools(ctx context.Context, request string, functions []model.FunctionInfo) ([]model.MCPTool, error) {
	if len(functions) == 0 {
		return []model.MCPTool{}, nil
	}
	if m.proposer == nil {
		return nil, ErrNoProposer
	}

	proposals := m.proposer.AnalyzeRequest(ctx, request, functions)
	byQualified := make(map[string]int, len(functions))
	for i, fn := range functions {
		if _, ok := byQualified[fn.QualifiedName()]; !ok {
			byQualified[fn.QualifiedName()] = i
		}
	}

	tools := make([]model.MCPTool, 0, len(proposals))
	for _, p := range proposals {
		idx, ok := resolve(functions, byQualified, p.FunctionName)
		if !ok {
			recordUnresolved()
			m.logger.Warn("semantic.generate.unresolved", "function", p.FunctionName, "tool", p.ToolName)
			continue
		}
		params := make([]model.MCPToolParameter, 0, len(p.Parameters))
		for _, ps := range p.Parameters {
			params = append(params, model.MCPToolParameter{
				Name:        ps.Name,
				Type:        ps.Type,
				Description: ps.Description,
				Required:    ps.Required,
			})
		}
		tools = append(tools, model.MCPTool{
			Name:               p.ToolName,
			Description:        p.Description,
			Function:           &functions[idx],
			Parameters:         params,
			ImplementationType: model.ImplPythonFunction,
		})
	}
	recordToolsGenerated(len(tools))
	return tools, nil
}

func resolve(functions []model.FunctionInfo, byQualified map[string]int, name string) (int, bool) {
	if i, ok := byQualified[name]; ok {
		return i, true
	}
	for i, fn := range functions {
		if fn.Name == name || strings.HasSuffix(fn.QualifiedName(), "."+name) {
			return i, true
		}
	}
	return 0, false
}

// FunctionSummary aggregates counts over functions.
func FunctionSummary(functions []model.FunctionInfo) inventory.Summary {
	return inventory.Summarize(functions)
}
