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

// ProjectType classifies how a project is meant to be invoked.
type ProjectType string

const (
	ProjectCLI     ProjectType = "cli"
	ProjectWeb     ProjectType = "web"
	ProjectLibrary ProjectType = "library"
)

// ProjectInfo is the metadata extracted from a project tree.
type ProjectInfo struct {
	Name          string      `json:"name" yaml:"name"`
	Description   string      `json:"description" yaml:"description"`
	MainFiles     []string    `json:"main_files" yaml:"main_files"`
	ReadmeContent string      `json:"readme_content,omitempty" yaml:"readme_content,omitempty"`
	ProjectType   ProjectType `json:"project_type" yaml:"project_type"`
	Dependencies  []string    `json:"dependencies" yaml:"dependencies"`
}

// BackendType names the execution backend of a generated server.
type BackendType string

const (
	BackendCommandLine BackendType = "commandline"
	BackendHTTP        BackendType = "http"
	BackendPython      BackendType = "python"
)

// BackendConfig tells the server generator how to invoke the project.
type BackendConfig struct {
	Type   BackendType    `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}
