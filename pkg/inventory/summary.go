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

import "github.com/kraklabs/mcpify/pkg/model"

// ModuleLevel is the ByClass key for functions outside any class.
const ModuleLevel = "module_level"

// ParameterStats summarizes parameter counts across functions.
type ParameterStats struct {
	Min int     `json:"min"`
	Max int     `json:"max"`
	Avg float64 `json:"avg"`
}

// Summary aggregates an inventory.
type Summary struct {
	Total          int            `json:"total_functions"`
	ByFile         map[string]int `json:"by_file"`
	ByClass        map[string]int `json:"by_class"`
	WithDocstring  int            `json:"with_docstring"`
	AsyncFunctions int            `json:"async_functions"`
	Methods        int            `json:"methods"`
	ParameterStats ParameterStats `json:"parameter_stats"`
}

// Summarize computes counts over functions. An empty input yields zero stats.
func Summarize(functions []model.FunctionInfo) Summary {
	s := Summary{
		Total:   len(functions),
		ByFile:  make(map[string]int),
		ByClass: make(map[string]int),
	}
	if len(functions) == 0 {
		return s
	}

	total := 0
	s.ParameterStats.Min = len(functions[0].Parameters)
	for _, fn := range functions {
		s.ByFile[fn.FilePath]++
		class := fn.ClassName
		if class == "" {
			class = ModuleLevel
		}
		s.ByClass[class]++
		if fn.Docstring != "" {
			s.WithDocstring++
		}
		if fn.IsAsync {
			s.AsyncFunctions++
		}
		if fn.IsMethod {
			s.Methods++
		}

		n := len(fn.Parameters)
		total += n
		s.ParameterStats.Min = min(s.ParameterStats.Min, n)
		s.ParameterStats.Max = max(s.ParameterStats.Max, n)
	}
	s.ParameterStats.Avg = float64(total) / float64(len(functions))
	return s
}
