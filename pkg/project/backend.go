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
	"strings"

	"github.com/kraklabs/mcpify/pkg/model"
)

const (
	defaultHTTPBaseURL = "http://localhost:8000"
	defaultHTTPTimeout = 30
)

// BackendConfigFor maps the project classification to a backend descriptor.
//
//   - cli projects run their entry script with python3, or the project root
//     when there are no top-level scripts
//   - web projects are called over HTTP on localhost
//   - anything else runs python3 against the project root
func BackendConfigFor(root string, info *model.ProjectInfo) model.BackendConfig {
	switch info.ProjectType {
	case model.ProjectCLI:
		target := root
		if entry := entryFile(info.MainFiles); entry != "" {
			target = filepath.Join(root, entry)
		}
		return model.BackendConfig{
			Type: model.BackendCommandLine,
			Config: map[string]any{
				"command": "python3",
				"args":    []string{target},
				"cwd":     ".",
			},
		}
	case model.ProjectWeb:
		return model.BackendConfig{
			Type: model.BackendHTTP,
			Config: map[string]any{
				"base_url": defaultHTTPBaseURL,
				"timeout":  defaultHTTPTimeout,
			},
		}
	default:
		return model.BackendConfig{
			Type: model.BackendCommandLine,
			Config: map[string]any{
				"command": "python3",
				"args":    []string{root},
				"cwd":     ".",
			},
		}
	}
}

func entryFile(mainFiles []string) string {
	for _, f := range mainFiles {
		base := strings.ToLower(filepath.Base(f))
		if strings.Contains(base, "main") || strings.Contains(base, "cli") {
			return f
		}
	}
	if len(mainFiles) > 0 {
		return mainFiles[0]
	}
	return ""
}
