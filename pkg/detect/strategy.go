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
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"
)

// DefaultConfidence is reported by strategies that declare no confidence.
const DefaultConfidence = 0.5

// Strategy extracts candidate tools from a project. Implementations hold no
// per-run state and may be invoked repeatedly.
type Strategy interface {
	Name() string
	DetectTools(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, error)
}

// Confident is implemented by strategies with a fixed confidence score.
type Confident interface {
	Confidence() float64
}

// ScoredStrategy is implemented by strategies whose confidence depends on
// the run, such as Composite.
type ScoredStrategy interface {
	Strategy
	DetectToolsScored(ctx context.Context, root string, info *model.ProjectInfo) ([]model.ToolSpec, float64, error)
}

// Confidence returns s's declared confidence or DefaultConfidence.
func Confidence(s Strategy) float64 {
	if c, ok := s.(Confident); ok {
		return c.Confidence()
	}
	return DefaultConfidence
}

// BackendConfigurer overrides the backend descriptor derived for a project.
type BackendConfigurer interface {
	BackendConfig(root string, info *model.ProjectInfo) model.BackendConfig
}

// BackendConfigFunc adapts a function to BackendConfigurer.
type BackendConfigFunc func(root string, info *model.ProjectInfo) model.BackendConfig

// BackendConfig implements BackendConfigurer.
func (f BackendConfigFunc) BackendConfig(root string, info *model.ProjectInfo) model.BackendConfig {
	return f(root, info)
}

// Enhancer improves one detected tool. It returns the input unchanged when
// it cannot improve it.
type Enhancer interface {
	EnhanceTool(ctx context.Context, spec model.ToolSpec) model.ToolSpec
}

// Detector runs one strategy through the detection pipeline.
type Detector struct {
	strategy  Strategy
	backend   BackendConfigurer
	enhancer  Enhancer
	inspector *project.Inspector
	logger    *slog.Logger
}

// DetectorOption customizes a Detector.
type DetectorOption func(*Detector)

// WithBackendConfigurer replaces the default backend descriptor policy.
func WithBackendConfigurer(b BackendConfigurer) DetectorOption {
	return func(d *Detector) {
		if b != nil {
			d.backend = b
		}
	}
}

// WithEnhancer passes every valid tool through e before the result is built.
func WithEnhancer(e Enhancer) DetectorOption {
	return func(d *Detector) { d.enhancer = e }
}

// NewDetector wraps s. A nil logger uses slog.Default().
func NewDetector(s Strategy, logger *slog.Logger, opts ...DetectorOption) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{
		strategy:  s,
		backend:   BackendConfigFunc(project.BackendConfigFor),
		inspector: project.NewInspector(logger),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Strategy returns the wrapped strategy.
func (d *Detector) Strategy() Strategy { return d.strategy }

// Detect inspects the project at path, runs the strategy and assembles a
// validated result. Tools that fail validation are dropped with a warning.
//
// A failing strategy yields an empty result, not an error. Only a missing
// path, an invalid result and context cancellation are returned.
func (d *Detector) Detect(ctx context.Context, path string) (*model.DetectionResult, error) {
	runID := uuid.NewString()
	logger := d.logger.With("run_id", runID, "strategy", d.strategy.Name())
	start := time.Now()

	info, err := d.inspector.Inspect(path)
	if err != nil {
		return nil, err
	}

	var (
		tools      []model.ToolSpec
		confidence float64
	)
	if ss, ok := d.strategy.(ScoredStrategy); ok {
		tools, confidence, err = ss.DetectToolsScored(ctx, path, info)
	} else {
		tools, err = runStrategy(ctx, d.strategy, path, info)
		confidence = Confidence(d.strategy)
	}
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("%s detection: %w", d.strategy.Name(), cerr)
		}
		recordStrategyFailure(d.strategy.Name())
		logger.Warn("detect.strategy.failed", "err", err)
		tools, confidence = nil, DefaultConfidence
	}

	valid := make([]model.ToolSpec, 0, len(tools))
	for _, t := range tools {
		if verr := t.Validate(); verr != nil {
			logger.Warn("detect.tool.invalid", "tool", t.Name, "err", verr)
			continue
		}
		valid = append(valid, t)
	}

	if d.enhancer != nil && len(valid) > 0 {
		if valid, err = d.enhance(ctx, logger, valid); err != nil {
			return nil, err
		}
	}

	backend := d.backend.BackendConfig(path, info)
	result, err := model.NewDetectionResult(*info, valid, backend, confidence)
	if err != nil {
		return nil, err
	}

	recordDetection(d.strategy.Name(), len(valid), time.Since(start))
	logger.Info("detect.done",
		"project", info.Name,
		"type", info.ProjectType,
		"tools", len(valid),
		"dropped", len(tools)-len(valid),
		"confidence", confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (d *Detector) enhance(ctx context.Context, logger *slog.Logger, tools []model.ToolSpec) ([]model.ToolSpec, error) {
	out := make([]model.ToolSpec, 0, len(tools))
	changed := 0
	for _, t := range tools {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enhance tools: %w", err)
		}
		e := d.enhancer.EnhanceTool(ctx, t)
		if e.Name != t.Name || e.Validate() != nil {
			logger.Debug("detect.enhance.rejected", "tool", t.Name)
			e = t
		}
		if e.Description != t.Description {
			changed++
		}
		out = append(out, e)
	}
	logger.Info("detect.enhance.done", "tools", len(out), "changed", changed)
	return out, nil
}
