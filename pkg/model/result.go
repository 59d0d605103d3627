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

package model

import (
	"fmt"
	"math"
)

// ValidationError reports a domain object that violates an invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DetectionResult is the output of one detection run.
type DetectionResult struct {
	ProjectInfo     ProjectInfo   `json:"project_info"`
	Tools           []ToolSpec    `json:"tools"`
	BackendConfig   BackendConfig `json:"backend_config"`
	ConfidenceScore float64       `json:"confidence_score"`
}

// NewDetectionResult validates its inputs and builds a DetectionResult.
// Confidence must lie in [0,1] and every tool must pass ToolSpec.Validate.
func NewDetectionResult(info ProjectInfo, tools []ToolSpec, backend BackendConfig, confidence float64) (*DetectionResult, error) {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, &ValidationError{
			Field:  "confidence_score",
			Reason: fmt.Sprintf("%v is outside [0,1]", confidence),
		}
	}
	for _, t := range tools {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	if tools == nil {
		tools = []ToolSpec{}
	}
	return &DetectionResult{
		ProjectInfo:     info,
		Tools:           tools,
		BackendConfig:   backend,
		ConfidenceScore: confidence,
	}, nil
}

// OutputConfig is the configuration document consumed by the server generator.
type OutputConfig struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Backend     BackendConfig `json:"backend" yaml:"backend"`
	Tools       []ToolSpec    `json:"tools" yaml:"tools"`
}

// OutputConfig converts the result into the generator's config schema.
func (r *DetectionResult) OutputConfig() OutputConfig {
	return OutputConfig{
		Name:        r.ProjectInfo.Name,
		Description: r.ProjectInfo.Description,
		Backend:     r.BackendConfig,
		Tools:       r.Tools,
	}
}
