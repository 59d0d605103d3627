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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/mcpify/pkg/model"
)

// Criteria selects which functions are eligible for matching.
type Criteria struct {
	IncludePrivate     bool     `json:"include_private" yaml:"include_private"`
	MinDocstringLength int      `json:"min_docstring_length" yaml:"min_docstring_length"`
	MaxParameters      int      `json:"max_parameters" yaml:"max_parameters"`
	IncludeFiles       []string `json:"include_files" yaml:"include_files"`
	ExcludeFiles       []string `json:"exclude_files" yaml:"exclude_files"`
}

// DefaultCriteria returns the criteria used when none are configured.
func DefaultCriteria() Criteria {
	return Criteria{
		MinDocstringLength: 10,
		MaxParameters:      10,
		IncludeFiles:       []string{},
		ExcludeFiles:       []string{"test", "__pycache__", ".git"},
	}
}

// LoadCriteria decodes YAML criteria over DefaultCriteria, so keys absent
// from data keep their defaults.
func LoadCriteria(data []byte) (Criteria, error) {
	c := DefaultCriteria()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Criteria{}, fmt.Errorf("parse matching criteria: %w", err)
	}
	return c, nil
}

// Filter returns the functions meeting c, in input order. A
// MinDocstringLength or MaxParameters of zero or less disables that check.
func Filter(functions []model.FunctionInfo, c Criteria) []model.FunctionInfo {
	out := make([]model.FunctionInfo, 0, len(functions))
	for _, fn := range functions {
		if !c.IncludePrivate && model.IsPrivate(fn.Name) {
			continue
		}
		if c.MinDocstringLength > 0 && len(strings.TrimSpace(fn.Docstring)) < c.MinDocstringLength {
			continue
		}
		if c.MaxParameters > 0 && len(fn.Parameters) > c.MaxParameters {
			continue
		}
		if len(c.IncludeFiles) > 0 && !containsAny(fn.FilePath, c.IncludeFiles) {
			continue
		}
		if containsAny(fn.FilePath, c.ExcludeFiles) {
			continue
		}
		out = append(out, fn)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
