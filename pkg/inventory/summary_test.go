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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/mcpify/pkg/model"
)

func TestSummarize(t *testing.T) {
	fns := []model.FunctionInfo{
		{Name: "add", FilePath: "ops.py", Docstring: "Add.", Parameters: []model.Parameter{{Name: "a"}, {Name: "b"}}},
		{Name: "fetch", FilePath: "net.py", IsAsync: true, Parameters: []model.Parameter{{Name: "url"}}},
		{Name: "run", FilePath: "ops.py", ClassName: "Job", IsMethod: true, Docstring: "Run."},
	}

	s := Summarize(fns)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, map[string]int{"ops.py": 2, "net.py": 1}, s.ByFile)
	assert.Equal(t, map[string]int{ModuleLevel: 2, "Job": 1}, s.ByClass)
	assert.Equal(t, 2, s.WithDocstring)
	assert.Equal(t, 1, s.AsyncFunctions)
	assert.Equal(t, 1, s.Methods)
	assert.Equal(t, ParameterStats{Min: 0, Max: 2, Avg: 1}, s.ParameterStats)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.Total)
	assert.Equal(t, ParameterStats{}, s.ParameterStats)
	assert.NotNil(t, s.ByFile)
}
