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

	"github.com/kraklabs/mcpify/pkg/model"
)

// Composite runs strategies in order and merges their tools. The first tool
// seen for a name wins. Failing strategies are logged and skipped.
type Composite struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewComposite creates a composite over strategies. A nil logger uses
// slog.Default().
func NewComposite(logger *slog.Logger, strategies ...Strategy) *Composite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composite{strategies: strategies, logger: logger}
}

func (c *Composite) Name() string { return "composite" }

// Strategies returns the wrapped strategies in run order.
func (c *Composite) Strategies() []Strategy { return c.strategies }

// DetectTools implements Strategy. It never returns an error for a failing
// member; only context cancellation is surfaced.
func (c *Composite) DetectTools(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, error) {
	tools, _, err := c.DetectToolsScored(ctx, root, info)
	return tools, err
}

// DetectToolsScored returns the merged tools and the highest confidence
// among strategies that contributed at least one tool, or
// DefaultConfidence when none did.
func (c *Composite) DetectToolsScored(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, float64, error) {
	merged := []model.ToolSpec{}
	seen := make(map[string]bool)
	confidence := 0.0
	contributed := false

	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		tools, err := runStrategy(ctx, s, root, info)
		if err != nil {
			recordStrategyFailure(s.Name())
			c.logger.Warn("detect.composite.strategy_failed", "strategy", s.Name(), "err", err)
			continue
		}

		added := 0
		for _, t := range tools {
			if seen[t.Name] {
				c.logger.Debug("detect.composite.duplicate", "tool", t.Name, "strategy", s.Name())
				continue
			}
			seen[t.Name] = true
			merged = append(merged, t)
			added++
		}
		if len(tools) > 0 {
			contributed = true
			confidence = max(confidence, Confidence(s))
		}
		c.logger.Debug("detect.composite.strategy_done", "strategy", s.Name(), "tools", len(tools), "added", added)
	}

	if !contributed {
		confidence = DefaultConfidence
	}
	return merged, confidence, nil
}

// runStrategy converts a panic inside s into an error.
func runStrategy(ctx context.Context, s Strategy, root string, info *model.ProjectInfo) (tools []model.ToolSpec, err error) {
	defer func() {
		if r := recover(); r != nil {
			tools = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.DetectTools(ctx, root, info)
}
