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

// Package detect turns a project directory into a validated list of tool
// specifications.
//
// A [Strategy] produces candidate tools. [Heuristic] extracts them offline
// from argument parsers, route decorators, module functions and interactive
// command loops. [LLMStrategy] asks a language model. [Composite] runs
// several strategies, contains their failures and keeps the first tool seen
// for each name.
//
// A [Detector] wraps one strategy in a fixed pipeline: inspect the project,
// detect tools, derive the backend config, and validate the result.
//
//	det, err := detect.New(detect.KindAuto, detect.FactoryConfig{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	result, err := det.Detect(ctx, "./myproject")
//
// [New] falls back from the LLM strategy to the heuristic one when no
// credentials are configured.
package detect
