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

// Package project reads a project tree once and extracts the metadata the
// detectors need: name, description, README, entry files, declared
// dependencies and a cli/web/library classification. It also maps that
// classification to the backend descriptor used by the server generator.
package project

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kraklabs/mcpify/pkg/model"
)

// PathNotFoundError is returned when the project path does not exist.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("project path does not exist: %s", e.Path)
}

var (
	// cliMarkers are substrings that identify argument parsing or a direct
	// execution guard in a top-level file.
	cliMarkers = []string{
		"argparse",
		"import click",
		"from click",
		"@click.",
		"import typer",
		"from typer",
		"ArgumentParser",
		"add_argument",
		`if __name__ == "__main__"`,
		`if __name__ == '__main__'`,
	}

	webEntryFiles = []string{
		"app.py", "main.py", "server.py", "wsgi.py", "asgi.py",
		"requirements.txt", "Pipfile", "pyproject.toml",
	}

	webFrameworks = []string{
		"flask", "django", "fastapi", "tornado", "bottle", "aiohttp", "sanic", "quart",
	}

	setupNameRe       = regexp.MustCompile(`name\s*=\s*["']([^"']+)["']`)
	requirementNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)
)

// pyproject holds the pyproject.toml keys the inspector reads. Poetry
// projects keep name and dependencies under [tool.poetry].
type pyproject struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string         `toml:"name"`
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Inspector extracts ProjectInfo from a directory.
type Inspector struct {
	logger *slog.Logger
}

// NewInspector creates an inspector. A nil logger uses slog.Default().
func NewInspector(logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{logger: logger}
}

// Inspect is a convenience wrapper around NewInspector(nil).Inspect.
func Inspect(path string) (*model.ProjectInfo, error) {
	return NewInspector(nil).Inspect(path)
}

// Inspect reads the project at root and returns its metadata.
func (in *Inspector) Inspect(root string) (*model.ProjectInfo, error) {
	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		return nil, &PathNotFoundError{Path: root}
	}

	name := in.projectName(root)
	info := &model.ProjectInfo{
		Name:         name,
		Description:  "API for " + name,
		MainFiles:    []string{},
		Dependencies: []string{},
	}

	if readme, ok := in.readme(root); ok {
		info.ReadmeContent = readme
		if desc := DescriptionFromReadme(readme); desc != "" {
			info.Description = desc
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".py") {
			info.MainFiles = append(info.MainFiles, e.Name())
		}
	}
	sort.Strings(info.MainFiles)

	info.ProjectType = in.classify(root, info.MainFiles)
	info.Dependencies = in.dependencies(root)

	in.logger.Debug("project.inspect.done",
		"name", info.Name,
		"type", info.ProjectType,
		"main_files", len(info.MainFiles),
		"dependencies", len(info.Dependencies),
	)
	return info, nil
}

func (in *Inspector) projectName(root string) string {
	if pp, ok := in.pyproject(root); ok {
		if pp.Project.Name != "" {
			return pp.Project.Name
		}
		if pp.Tool.Poetry.Name != "" {
			return pp.Tool.Poetry.Name
		}
	}
	if data, ok := in.readFile(filepath.Join(root, "setup.py")); ok {
		if m := setupNameRe.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

func (in *Inspector) readme(root string) (string, bool) {
	var candidates []string
	for _, pattern := range []string{"README*", "readme*"} {
		matches, _ := filepath.Glob(filepath.Join(root, pattern))
		candidates = append(candidates, matches...)
	}
	for _, path := range candidates {
		if data, ok := in.readFile(path); ok {
			return string(data), true
		}
	}
	return "", false
}

// DescriptionFromReadme returns the first substantial paragraph following
// the first heading of a README, or "" if there is none.
func DescriptionFromReadme(content string) string {
	var (
		seenTitle bool
		parts     []string
	)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !seenTitle {
			if strings.HasPrefix(line, "#") {
				seenTitle = true
			}
			continue
		}
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "[![") || strings.HasPrefix(line, "http") {
			continue
		}
		if len(line) <= 20 {
			continue
		}
		parts = append(parts, line)
		if len(strings.Join(parts, " ")) > 100 {
			break
		}
	}
	return strings.Join(parts, " ")
}

func (in *Inspector) classify(root string, mainFiles []string) model.ProjectType {
	for _, f := range mainFiles {
		data, ok := in.readFile(filepath.Join(root, f))
		if !ok {
			continue
		}
		for _, marker := range cliMarkers {
			if bytes.Contains(data, []byte(marker)) {
				return model.ProjectCLI
			}
		}
	}

	for _, f := range webEntryFiles {
		data, ok := in.readFile(filepath.Join(root, f))
		if !ok {
			continue
		}
		lower := bytes.ToLower(data)
		for _, fw := range webFrameworks {
			if bytes.Contains(lower, []byte(fw)) {
				return model.ProjectWeb
			}
		}
	}

	return model.ProjectLibrary
}

func (in *Inspector) dependencies(root string) []string {
	set := make(map[string]struct{})

	if data, ok := in.readFile(filepath.Join(root, "requirements.txt")); ok {
		for _, line := range strings.Split(string(data), "\n") {
			if name := RequirementName(line); name != "" {
				set[name] = struct{}{}
			}
		}
	}

	if pp, ok := in.pyproject(root); ok {
		for _, req := range pp.Project.Dependencies {
			if name := RequirementName(req); name != "" {
				set[name] = struct{}{}
			}
		}
		for name := range pp.Tool.Poetry.Dependencies {
			if name != "python" {
				set[name] = struct{}{}
			}
		}
	}

	deps := make([]string, 0, len(set))
	for name := range set {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

// RequirementName extracts the bare package name from a requirement line.
// Comments, option lines and VCS/URL/file specs yield "".
func RequirementName(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, "#"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" || strings.HasPrefix(line, "-") {
		return ""
	}
	lower := strings.ToLower(line)
	for _, prefix := range []string{"git+", "hg+", "svn+", "bzr+", "http://", "https://", "file:", "./", "../", "/"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}
	if strings.Contains(line, "://") || strings.Contains(line, " @ ") {
		line = strings.TrimSpace(strings.SplitN(line, "@", 2)[0])
	}
	return requirementNameRe.FindString(line)
}

func (in *Inspector) pyproject(root string) (*pyproject, bool) {
	data, ok := in.readFile(filepath.Join(root, "pyproject.toml"))
	if !ok {
		return nil, false
	}
	var pp pyproject
	if err := toml.Unmarshal(data, &pp); err != nil {
		in.logger.Debug("project.pyproject.invalid", "root", root, "err", err)
		return nil, false
	}
	return &pp, true
}

func (in *Inspector) readFile(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			in.logger.Debug("project.read.failed", "path", path, "err", err)
		}
		return nil, false
	}
	return data, true
}
