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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpifytest "github.com/kraklabs/mcpify/internal/testing"
)

func TestParseProject_LibraryProject(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.LibraryProject())
	p := NewParser(Options{}, nil)

	var calls int
	p.OnProgress(func(done, total int) { calls++ })

	inv, err := p.ParseProject(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, inv.Files)
	assert.Equal(t, 3, calls)
	assert.ElementsMatch(t,
		[]string{"add", "Calculator.__init__", "Calculator.multiply", "test_add"},
		names(inv.Functions))

	add := findFunction(inv.Functions, "add")
	require.NotNil(t, add)
	assert.Equal(t, "mathlib/ops.py", add.FilePath)
}

func TestParseProject_Excludes(t *testing.T) {
	files := mcpifytest.LibraryProject()
	files[".venv/lib/site.py"] = "def site_hook():\n    pass\n"
	files["pkg/__pycache__/x.py"] = "def cached():\n    pass\n"
	files["pkg/test_things.py"] = "def test_thing():\n    pass\n"
	root := mcpifytest.WriteProject(t, files)

	tests := []struct {
		name  string
		globs []string
		want  []string
	}{
		{
			name:  "default dirs only",
			globs: nil,
			want:  []string{"add", "Calculator.__init__", "Calculator.multiply", "test_add", "test_thing"},
		},
		{
			name:  "directory glob",
			globs: []string{"tests/**"},
			want:  []string{"add", "Calculator.__init__", "Calculator.multiply", "test_thing"},
		},
		{
			name:  "basename glob at any depth",
			globs: []string{"test_*.py", "tests"},
			want:  []string{"add", "Calculator.__init__", "Calculator.multiply"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := NewParser(Options{}, nil).ParseProject(context.Background(), root, tt.globs)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(inv.Functions))
			assert.Positive(t, inv.Skipped["excluded_dir"])
		})
	}
}

func TestParseProject_Cancelled(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.LibraryProject())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(Options{}, nil).ParseProject(ctx, root, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		rel   string
		globs []string
		want  bool
	}{
		{"tests/test_ops.py", []string{"tests/**"}, true},
		{"a/tests/test_ops.py", []string{"**/tests/**"}, true},
		{"pkg/test_x.py", []string{"test_*.py"}, true},
		{"pkg/ops.py", []string{"test_*.py"}, false},
		{"pkg/migrations", []string{"migrations"}, true},
		{"pkg/ops.py", []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesAny(tt.rel, tt.globs))
		})
	}
}
