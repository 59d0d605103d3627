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

// Package testing provides fixture helpers for tests that need a Python
// project on disk.
//
// # Quick Start
//
// Build a project tree inside t.TempDir():
//
//	func TestDetect(t *testing.T) {
//	    root := mcpifytest.WriteProject(t, map[string]string{
//	        "cli.py":           "import argparse\n...",
//	        "requirements.txt": "requests>=2\n",
//	    })
//	    info, err := project.Inspect(root)
//	    ...
//	}
//
// Import with an alias to avoid clashing with the standard library:
//
//	import mcpifytest "github.com/kraklabs/mcpify/internal/testing"
//
// # Canned Projects
//
// CLIProject, FlaskProject, FastAPIProject and LibraryProject return file
// maps for the common project shapes. They can be extended before being
// passed to WriteProject.
package testing
