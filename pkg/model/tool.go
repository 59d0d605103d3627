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
	"path"
	"strings"
)

// ParamType is the JSON-Schema type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Valid reports whether t is one of the six allowed parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// ParseParamType returns the ParamType for s, or false if s is not allowed.
func ParseParamType(s string) (ParamType, bool) {
	t := ParamType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// ParamSpec describes one parameter of a ToolSpec.
type ParamSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Type        ParamType `json:"type" yaml:"type"`
	Description string    `json:"description" yaml:"description"`
	Required    bool      `json:"required" yaml:"required"`
}

// ToolSpec is the unit every detector emits.
//
// Args holds template tokens; "{param}" tokens are substituted with the
// parameter value by the generated server.
type ToolSpec struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Args        []string    `json:"args" yaml:"args"`
	Parameters  []ParamSpec `json:"parameters" yaml:"parameters"`
}

// Validate checks the structural invariants of the spec.
func (t ToolSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "tool.name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "tool." + t.Name + ".description", Reason: "must not be empty"}
	}
	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		field := "tool." + t.Name + ".parameters." + p.Name
		if strings.TrimSpace(p.Name) == "" {
			return &ValidationError{Field: "tool." + t.Name + ".parameters", Reason: "parameter name must not be empty"}
		}
		if !p.Type.Valid() {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid type %q", p.Type)}
		}
		if seen[p.Name] {
			return &ValidationError{Field: field, Reason: "duplicate parameter"}
		}
		seen[p.Name] = true
	}
	return nil
}

// ImplementationType says how a generated server calls the underlying code.
type ImplementationType string

const (
	ImplPythonFunction ImplementationType = "python_function"
	ImplSubprocess     ImplementationType = "subprocess"
	ImplAPICall        ImplementationType = "api_call"
)

// MCPToolParameter is a parameter of an MCPTool.
type MCPToolParameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
}

// MCPTool is a ToolSpec bound to the function it was generated from.
// Function is borrowed from the inventory and must not be modified.
type MCPTool struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Function           *FunctionInfo      `json:"-"`
	Parameters         []MCPToolParameter `json:"parameters"`
	ImplementationType ImplementationType `json:"implementation_type"`
}

// InputSchema is the JSON-Schema object describing tool arguments.
type InputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema describes a single argument inside an InputSchema.
type PropertySchema struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Default     any       `json:"default,omitempty"`
}

// ToolSchema is the MCP wire form of a tool.
type ToolSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ToMCPSchema converts the tool into its wire schema. Required lists exactly
// the parameters flagged as required and is never nil.
func (t MCPTool) ToMCPSchema() ToolSchema {
	props := make(map[string]PropertySchema, len(t.Parameters))
	required := make([]string, 0, len(t.Parameters))
	for _, p := range t.Parameters {
		props[p.Name] = PropertySchema{
			Type:        p.Type,
			Description: p.Description,
			Default:     p.Default,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return ToolSchema{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: InputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// ImplementationConfig tells the server runtime where the tool's code lives.
type ImplementationConfig struct {
	Type       ImplementationType `json:"type"`
	Module     string             `json:"module"`
	Function   string             `json:"function"`
	Class      string             `json:"class,omitempty"`
	FilePath   string             `json:"file_path"`
	LineNumber int                `json:"line_number"`
}

// ToImplementationConfig derives the import location of the bound function.
// A tool without a bound function yields only the implementation type.
func (t MCPTool) ToImplementationConfig() ImplementationConfig {
	cfg := ImplementationConfig{Type: t.ImplementationType}
	if t.Function == nil {
		return cfg
	}
	file := strings.ReplaceAll(t.Function.FilePath, "\\", "/")
	module := strings.TrimSuffix(file, path.Ext(file))
	cfg.Module = strings.ReplaceAll(module, "/", ".")
	cfg.Function = t.Function.Name
	cfg.Class = t.Function.ClassName
	cfg.FilePath = t.Function.FilePath
	cfg.LineNumber = t.Function.LineNumber
	return cfg
}

// ToolSpec converts the tool back into a detector-level spec.
func (t MCPTool) ToolSpec() ToolSpec {
	params := make([]ParamSpec, 0, len(t.Parameters))
	args := []string{t.Name}
	if t.Function != nil {
		args[0] = t.Function.QualifiedName()
	}
	for _, p := range t.Parameters {
		params = append(params, ParamSpec{
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
		})
		args = append(args, "{"+p.Name+"}")
	}
	return ToolSpec{Name: t.Name, Description: t.Description, Args: args, Parameters: params}
}
