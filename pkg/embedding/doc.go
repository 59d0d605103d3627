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

// Package embedding turns text into vectors for semantic ranking.
//
// Providers implement [Provider]; those that can encode many texts in one
// call also implement [BatchProvider]. [EncodeAll] picks the batch path when
// it exists. [CreateProvider] builds a provider by name from environment
// variables and wraps networked providers with classified retries.
//
// [Cached] memoizes vectors by text in an in-process LRU. It lives for one
// process; nothing is persisted.
package embedding
