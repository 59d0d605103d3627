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
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar"

	"github.com/kraklabs/mcpify/pkg/model"
)

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{
	".git", "__pycache__", ".venv", "venv", "node_modules", ".tox", "build", "dist",
}

// ProjectInventory is the result of parsing every Python file in a project.
type ProjectInventory struct {
	Functions []model.FunctionInfo `json:"functions"`
	Files     int                  `json:"files"`
	Skipped   map[string]int       `json:"skipped,omitempty"`
}

// ListFiles returns the project's Python files as slash-separated paths
// relative to root, sorted. Directories in DefaultExcludeDirs and paths
// matching any of excludeGlobs are skipped; skip reasons are counted.
func (p *Parser) ListFiles(root string, excludeGlobs []string) ([]string, map[string]int, error) {
	var files []string
	skipped := make(map[string]int)

	err := filepath.WalkDir(root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			p.logger.Warn("inventory.walk.error", "path", full, "err", err)
			return nil
		}
		rel, relErr := filepath.Rel(root, full)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if isDefaultExcluded(d.Name()) || matchesAny(rel, excludeGlobs) {
				skipped["excluded_dir"]++
				recordSkipped("excluded_dir")
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(rel, ".py") {
			return nil
		}
		if matchesAny(rel, excludeGlobs) {
			skipped["excluded"]++
			recordSkipped("excluded")
			return nil
		}
		files = append(files, rel)
		return nil
	})

	sort.Strings(files)
	return files, skipped, err
}

// ParseProject walks root and parses every Python file sequentially.
// FunctionInfo.FilePath is relative to root. The context is checked
// between files.
func (p *Parser) ParseProject(ctx context.Context, root string, excludeGlobs []string) (*ProjectInventory, error) {
	start := time.Now()
	defer func() { recordWalk(time.Since(start)) }()

	files, skipped, err := p.ListFiles(root, excludeGlobs)
	if err != nil {
		return nil, err
	}

	inv := &ProjectInventory{Functions: []model.FunctionInfo{}, Skipped: skipped}
	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fns, _ := p.ParseFile(filepath.Join(root, filepath.FromSlash(rel)), rel)
		inv.Functions = append(inv.Functions, fns...)
		inv.Files++
		if p.progress != nil {
			p.progress(i+1, len(files))
		}
	}

	p.logger.Info("inventory.walk.done",
		"root", root,
		"files", inv.Files,
		"functions", len(inv.Functions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}

// OnProgress registers a callback invoked after each file of ParseProject.
func (p *Parser) OnProgress(fn func(done, total int)) {
	p.progress = fn
}

func isDefaultExcluded(name string) bool {
	for _, d := range DefaultExcludeDirs {
		if name == d {
			return true
		}
	}
	return false
}

// matchesAny reports whether rel matches one of the globs. Patterns without
// a slash are also tried against every path component, so "tests" or
// "test_*.py" exclude at any depth.
func matchesAny(rel string, globs []string) bool {
	for _, g := range globs {
		g = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(g)), "/")
		if g == "" {
			continue
		}
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if strings.HasSuffix(g, "/**") {
			prefix := strings.TrimSuffix(g, "/**")
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
		}
		if !strings.Contains(g, "/") {
			for _, part := range strings.Split(rel, "/") {
				if ok, _ := path.Match(g, part); ok {
					return true
				}
			}
		}
	}
	return false
}
