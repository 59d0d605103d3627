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

package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpifytest "github.com/kraklabs/mcpify/internal/testing"
	"github.com/kraklabs/mcpify/pkg/model"
)

func TestInspect_PathNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Inspect(missing)

	var pnf *PathNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, missing, pnf.Path)
}

func TestInspect_CLIProject(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.CLIProject())

	info, err := Inspect(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), info.Name)
	assert.Equal(t, model.ProjectCLI, info.ProjectType)
	assert.Equal(t, []string{"cli.py"}, info.MainFiles)
	assert.Equal(t, "A tiny command line tool that greets users by name and counts.", info.Description)
	assert.Contains(t, info.ReadmeContent, "# greeter")
	assert.Equal(t, []string{"requests", "rich"}, info.Dependencies)
}

func TestInspect_WebProjects(t *testing.T) {
	flask, err := Inspect(mcpifytest.WriteProject(t, mcpifytest.FlaskProject()))
	require.NoError(t, err)
	assert.Equal(t, model.ProjectWeb, flask.ProjectType)
	assert.Equal(t, "API for "+flask.Name, flask.Description)
	assert.Equal(t, []string{"flask"}, flask.Dependencies)

	fastapi, err := Inspect(mcpifytest.WriteProject(t, mcpifytest.FastAPIProject()))
	require.NoError(t, err)
	assert.Equal(t, "inventory-api", fastapi.Name)
	assert.Equal(t, model.ProjectWeb, fastapi.ProjectType)
	assert.Equal(t, []string{"fastapi", "uvicorn"}, fastapi.Dependencies)
}

func TestInspect_LibraryProject(t *testing.T) {
	files := mcpifytest.LibraryProject()
	files["setup.py"] = `from setuptools import setup
setup(name="mathlib", version="0.1")
`
	info, err := Inspect(mcpifytest.WriteProject(t, files))
	require.NoError(t, err)

	assert.Equal(t, "mathlib", info.Name)
	assert.Equal(t, model.ProjectLibrary, info.ProjectType)
	assert.Equal(t, []string{"setup.py"}, info.MainFiles)
	assert.Empty(t, info.Dependencies)
	assert.NotNil(t, info.Dependencies)
}

func TestDescriptionFromReadme(t *testing.T) {
	tests := []struct {
		name   string
		readme string
		want   string
	}{
		{
			name:   "no heading",
			readme: "Just some text that is long enough to count.\n",
			want:   "",
		},
		{
			name:   "skips badges, links and short lines",
			readme: "# Tool\n\n[![ci](x)](y)\nhttps://example.com/docs\nShort line\nThis is the first real sentence of the README.\n",
			want:   "This is the first real sentence of the README.",
		},
		{
			name:   "joins a paragraph",
			readme: "# Tool\n\nFirst line of the description is here.\nSecond line continues the same paragraph.\n\nAnother paragraph is ignored entirely.\n",
			want:   "First line of the description is here. Second line continues the same paragraph.",
		},
		{
			name:   "stops past one hundred characters",
			readme: "# Tool\n\n" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\nbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n",
			want:   "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		},
		{
			name:   "subheading after text ends the paragraph",
			readme: "# Tool\n\nA description that is clearly long enough.\n## Install\nrun pip install tool with these steps\n",
			want:   "A description that is clearly long enough.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescriptionFromReadme(tt.readme))
		})
	}
}

func TestRequirementName(t *testing.T) {
	tests := map[string]string{
		"requests>=2.31":                 "requests",
		"rich[jupyter]==13.0 ; python>3": "rich",
		"numpy~=1.26":                    "numpy",
		"pkg @ https://x/y.whl":          "pkg",
		"# comment":                      "",
		"-r dev.txt":                     "",
		"git+https://github.com/x/y.git": "",
		"https://example.com/pkg.tar.gz": "",
		"file:../local":                  "",
		"":                               "",
		"Django":                         "Django",
	}
	for line, want := range tests {
		assert.Equal(t, want, RequirementName(line), line)
	}
}

func TestBackendConfigFor(t *testing.T) {
	root := "/srv/app"

	cli := BackendConfigFor(root, &model.ProjectInfo{ProjectType: model.ProjectCLI, MainFiles: []string{"helpers.py", "tool_cli.py"}})
	assert.Equal(t, model.BackendCommandLine, cli.Type)
	assert.Equal(t, "python3", cli.Config["command"])
	assert.Equal(t, []string{filepath.Join(root, "tool_cli.py")}, cli.Config["args"])

	noEntry := BackendConfigFor(root, &model.ProjectInfo{ProjectType: model.ProjectCLI})
	assert.Equal(t, []string{root}, noEntry.Config["args"], "no scripts falls back to the project root")

	web := BackendConfigFor(root, &model.ProjectInfo{ProjectType: model.ProjectWeb})
	assert.Equal(t, model.BackendHTTP, web.Type)
	assert.Equal(t, "http://localhost:8000", web.Config["base_url"])
	assert.Equal(t, 30, web.Config["timeout"])

	lib := BackendConfigFor(root, &model.ProjectInfo{ProjectType: model.ProjectLibrary})
	assert.Equal(t, model.BackendCommandLine, lib.Type)
	assert.Equal(t, []string{root}, lib.Config["args"])
}

func TestInspect_PoetryProject(t *testing.T) {
	root := mcpifytest.WriteProject(t, map[string]string{
		"pyproject.toml": `[tool.poetry]
name = "weather-cli"

[tool.poetry.dependencies]
python = "^3.11"
click = "^8.1"
httpx = { version = "^0.27", extras = ["http2"] }
`,
		"main.py": "import click\n",
	})

	info, err := Inspect(root)
	require.NoError(t, err)
	assert.Equal(t, "weather-cli", info.Name)
	assert.Equal(t, []string{"click", "httpx"}, info.Dependencies)
}

func TestInspect_MalformedPyprojectFallsBack(t *testing.T) {
	root := mcpifytest.WriteProject(t, map[string]string{
		"pyproject.toml": "[project\nname = ",
		"main.py":        "print('hi')\n",
	})

	info, err := Inspect(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), info.Name)
}
