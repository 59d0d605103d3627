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

import (
	"fmt"
	"strings"
)

// Parameter is one declared parameter of a Python function.
type Parameter struct {
	Name           string `json:"name" yaml:"name"`
	TypeAnnotation string `json:"type,omitempty" yaml:"type,omitempty"`
	DefaultValue   string `json:"default,omitempty" yaml:"default,omitempty"`
	Required       bool   `json:"required" yaml:"required"`
}

// FunctionInfo is a function or method discovered in a source file.
//
// The receiver parameters self and cls are never part of Parameters.
// IsNested marks functions defined inside another function's body, such as
// decorator wrappers and local helpers.
type FunctionInfo struct {
	Name       string      `json:"name" yaml:"name"`
	FilePath   string      `json:"file_path" yaml:"file_path"`
	LineNumber int         `json:"line_number" yaml:"line_number"`
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
	ReturnType string      `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Docstring  string      `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	IsAsync    bool        `json:"is_async" yaml:"is_async"`
	IsMethod   bool        `json:"is_method" yaml:"is_method"`
	ClassName  string      `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	IsNested   bool        `json:"is_nested,omitempty" yaml:"is_nested,omitempty"`
	Decorators []string    `json:"decorators,omitempty" yaml:"decorators,omitempty"`
}

// QualifiedName returns "Class.name" for methods and "name" otherwise.
func (f FunctionInfo) QualifiedName() string {
	if f.ClassName != "" {
		return f.ClassName + "." + f.Name
	}
	return f.Name
}

// Signature renders the function the way it would be declared in Python.
func (f FunctionInfo) Signature() string {
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		s := p.Name
		if p.TypeAnnotation != "" {
			s += ": " + p.TypeAnnotation
		}
		if p.DefaultValue != "" {
			s += " = " + p.DefaultValue
		}
		params = append(params, s)
	}

	var b strings.Builder
	if f.IsAsync {
		b.WriteString("async ")
	}
	fmt.Fprintf(&b, "def %s(%s)", f.Name, strings.Join(params, ", "))
	if f.ReturnType != "" {
		b.WriteString(" -> " + f.ReturnType)
	}
	return b.String()
}

// IsPrivate reports whether the name starts with exactly one underscore.
// Dunder names such as __init__ are not private.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}
