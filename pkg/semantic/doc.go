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

// Package semantic matches a natural-language request against a function
// inventory and turns the best candidates into MCP tools.
//
// The pipeline is Filter, Rank, GenerateTools. Ranking uses embeddings when
// an embedding provider is configured and falls back to keyword scoring when
// none is set or encoding fails. Tool generation asks a [Proposer], usually
// the LLM detection strategy, which functions serve the request.
package semantic
