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

// Package inventory extracts a structured record for every Python function
// and method in a project.
//
// Parsing uses Tree-sitter, so files with syntax errors still yield the
// functions the parser could recover. Files that cannot be read are logged
// and skipped; they never abort a project walk.
//
// # Usage
//
//	p := inventory.NewParser(inventory.Options{}, logger)
//	inv, err := p.ParseProject(ctx, "./myproject", []string{"tests/**"})
//	if err != nil {
//	    return err
//	}
//	for _, fn := range inv.Functions {
//	    fmt.Println(fn.QualifiedName(), fn.Signature())
//	}
//
// Private functions (a single leading underscore) are dropped unless
// Options.IncludePrivate is set. Dunder methods such as __init__ are kept.
package inventory
