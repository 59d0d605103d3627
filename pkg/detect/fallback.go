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
	"log/slog"

	"github.com/kraklabs/mcpify/pkg/model"
)

// Fallback runs a primary strategy and switches to a secondary one when the
// primary fails or finds nothing. Context cancellation is returned as is.
type Fallback struct {
	primary   Strategy
	secondary Strategy
	logger    *slog.Logger
}

// NewFallback creates a fallback from primary to secondary. A nil logger
// uses slog.Default().
func NewFallback(logger *slog.Logger, primary, secondary Strategy) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Name reports the primary strategy.
func (f *Fallback) Name() string { return f.primary.Name() }

func (f *Fallback) Primary() Strategy   { return f.primary }
func (f *Fallback) Secondary() Strategy { return f.secondary }

// DetectTools implements Strategy.
func (f *Fallback) DetectTools(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, error) {
	tools, _, err := f.DetectToolsScored(ctx, root, info)
	return tools, err
}

// DetectToolsScored reports the confidence of whichever strategy produced
// the tools.
func (f *Fallback) DetectToolsScored(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, float64, error) {
	tools, err := runStrategy(ctx, f.primary, root, info)
	if err == nil && len(tools) > 0 {
		return tools, Confidence(f.primary), nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, 0, cerr
	}
	if err != nil {
		recordStrategyFailure(f.primary.Name())
		f.logger.Warn("detect.fallback.primary_failed",
			"strategy", f.primary.Name(),
			"fallback", f.secondary.Name(),
			"err", err,
		)
	} else {
		f.logger.Info("detect.fallback.primary_empty", "strategy", f.primary.Name(), "fallback", f.secondary.Name())
	}

	tools, err = runStrategy(ctx, f.secondary, root, info)
	if err != nil {
		return nil, 0, err
	}
	return tools, Confidence(f.secondary), nil
}
