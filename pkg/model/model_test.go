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
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionInfo_QualifiedNameAndSignature(t *testing.T) {
	fn := FunctionInfo{
		Name:      "fetch",
		ClassName: "Client",
		IsAsync:   true,
		Parameters: []Parameter{
			{Name: "url", TypeAnnotation: "str", Required: true},
			{Name: "retries", TypeAnnotation: "int", DefaultValue: "3"},
		},
		ReturnType: "bytes",
	}

	assert.Equal(t, "Client.fetch", fn.QualifiedName())
	assert.Equal(t, "async def fetch(url: str, retries: int = 3) -> bytes", fn.Signature())

	plain := FunctionInfo{Name: "add", Parameters: []Parameter{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, "add", plain.QualifiedName())
	assert.Equal(t, "def add(a, b)", plain.Signature())
}

func TestIsPrivate(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"_helper", true},
		{"__init__", false},
		{"__call__", false},
		{"public", false},
		{"_", true},
		{"__mangled", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrivate(tt.name))
		})
	}
}

func TestParseParamType(t *testing.T) {
	for _, s := range []string{"string", "integer", "number", "boolean", "array", "object", " Integer "} {
		_, ok := ParseParamType(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"", "int", "str", "float", "null"} {
		_, ok := ParseParamType(s)
		assert.False(t, ok, s)
	}
}

func TestToolSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    ToolSpec
		wantErr bool
	}{
		{
			name: "valid",
			spec: ToolSpec{Name: "greet", Description: "Greet", Parameters: []ParamSpec{{Name: "name", Type: TypeString}}},
		},
		{name: "missing name", spec: ToolSpec{Description: "x"}, wantErr: true},
		{name: "missing description", spec: ToolSpec{Name: "x"}, wantErr: true},
		{
			name:    "bad parameter type",
			spec:    ToolSpec{Name: "x", Description: "x", Parameters: []ParamSpec{{Name: "a", Type: "int"}}},
			wantErr: true,
		},
		{
			name: "duplicate parameter",
			spec: ToolSpec{Name: "x", Description: "x", Parameters: []ParamSpec{
				{Name: "a", Type: TypeString}, {Name: "a", Type: TypeString},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMCPTool_ToMCPSchemaRequired(t *testing.T) {
	tool := MCPTool{
		Name:        "add-numbers",
		Description: "Add two numbers",
		Parameters: []MCPToolParameter{
			{Name: "a", Type: TypeNumber, Description: "first", Required: true},
			{Name: "b", Type: TypeNumber, Description: "second", Required: true},
			{Name: "round", Type: TypeBoolean, Description: "round result", Default: false},
		},
	}

	schema := tool.ToMCPSchema()

	assert.Equal(t, "object", schema.InputSchema.Type)
	assert.ElementsMatch(t, []string{"a", "b"}, schema.InputSchema.Required)
	require.Contains(t, schema.InputSchema.Properties, "round")
	assert.Equal(t, false, schema.InputSchema.Properties["round"].Default)

	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"inputSchema"`)

	empty := MCPTool{Name: "ping", Description: "Ping"}.ToMCPSchema()
	raw, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"required":[]`)
}

func TestMCPTool_ToImplementationConfig(t *testing.T) {
	fn := &FunctionInfo{Name: "resize", ClassName: "Image", FilePath: "pkg/images/ops.py", LineNumber: 12}
	tool := MCPTool{Name: "resize-image", Function: fn, ImplementationType: ImplPythonFunction}

	cfg := tool.ToImplementationConfig()

	assert.Equal(t, ImplPythonFunction, cfg.Type)
	assert.Equal(t, "pkg.images.ops", cfg.Module)
	assert.Equal(t, "resize", cfg.Function)
	assert.Equal(t, "Image", cfg.Class)
	assert.Equal(t, 12, cfg.LineNumber)
}

func TestNewDetectionResult(t *testing.T) {
	info := ProjectInfo{Name: "demo", Description: "API for demo"}
	backend := BackendConfig{Type: BackendHTTP}

	for _, c := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := NewDetectionResult(info, nil, backend, c)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "confidence %v", c)
	}

	_, err := NewDetectionResult(info, []ToolSpec{{Name: "x"}}, backend, 0.5)
	assert.Error(t, err)

	res, err := NewDetectionResult(info, nil, backend, 1)
	require.NoError(t, err)
	assert.NotNil(t, res.Tools)

	out := res.OutputConfig()
	assert.Equal(t, "demo", out.Name)
	assert.Equal(t, BackendHTTP, out.Backend.Type)
}
