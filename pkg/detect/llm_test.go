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

package detect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"

	mcpifytest "github.com/kraklabs/mcpify/internal/testing"
)

const validReply = `Here are the tools I found:
[
  {
    "function_name": "add",
    "tool_name": "AddNumbers",
    "description": "Add two numbers",
    "parameters": [
      {"name": "a", "type": "number", "description": "first", "required": true},
      {"name": "b", "type": "number", "description": "second", "required": true}
    ]
  },
  {
    "function_name": "broken",
    "tool_name": "broken",
    "description": "bad type",
    "parameters": [{"name": "x", "type": "float", "description": "x", "required": true}]
  },
  {
    "function_name": "greet",
    "tool_name": "greet-user",
    "description": "Greet someone",
    "args": ["--greet", "{name}"],
    "parameters": [{"name": "name", "type": "string", "description": "who", "required": false}]
  },
  {"tool_name": "orphan", "description": "no function", "parameters": []}
]
Hope this helps.`

func TestParseToolSpecs(t *testing.T) {
	tools := ParseToolSpecs(validReply, nil)
	require.Len(t, tools, 2)

	assert.Equal(t, "add_numbers", tools[0].Name)
	assert.Equal(t, []string{"add", "{a}", "{b}"}, tools[0].Args)
	assert.Equal(t, model.TypeNumber, tools[0].Parameters[0].Type)

	assert.Equal(t, "greet_user", tools[1].Name)
	assert.Equal(t, []string{"--greet", "{name}"}, tools[1].Args)
	assert.False(t, tools[1].Parameters[0].Required)
}

func TestParseToolSpecs_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing closing bracket", `[{"function_name": "a", "tool_name": "a", "description": "d", "parameters": []}`},
		{"no array", `I could not find any tools.`},
		{"invalid json", `[{"function_name": }]`},
		{"not objects", `["a", "b"]`},
		{"empty array", `[]`},
		{"parameter missing required", `[{"function_name": "a", "tool_name": "a", "description": "d", "parameters": [{"name": "x", "type": "string", "description": "x"}]}]`},
		{"parameters not a list", `[{"function_name": "a", "tool_name": "a", "description": "d", "parameters": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := ParseToolSpecs(tt.content, nil)
			assert.NotNil(t, tools)
			assert.Empty(t, tools)
		})
	}

	_, err := ParseProposals("no json here", nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"AddNumbers":    "add_numbers",
		"greet-user":    "greet_user",
		"already_snake": "already_snake",
		"HTTP Get":      "http_get",
		"  spaced out ": "spaced_out",
		"v2Upload":      "v2_upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestNewLLM_MissingCredentialsMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	for _, provider := range []string{"openai", "anthropic"} {
		_, err := NewLLM(LLMConfig{ProviderConfig: llm.ProviderConfig{Type: provider, BaseURL: srv.URL}}, nil)
		var credErr *llm.CredentialError
		require.ErrorAs(t, err, &credErr, provider)
	}
	assert.Zero(t, hits.Load())
}

func TestLLMStrategy_DetectTools(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.CLIProject())
	info, err := project.Inspect(root)
	require.NoError(t, err)

	mock := llm.NewMockProvider(validReply)
	s, err := NewLLM(LLMConfig{Provider: mock}, nil)
	require.NoError(t, err)
	assert.Equal(t, LLMConfidence, Confidence(s))

	tools, err := s.DetectTools(context.Background(), root, info)
	require.NoError(t, err)
	assert.Len(t, tools, 2)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, "system", reqs[0].Messages[0].Role)
	user := reqs[0].Messages[1].Content
	assert.Contains(t, user, "Project Name: ")
	assert.Contains(t, user, "Project Type: cli")
	assert.Contains(t, user, "=== cli.py ===")
	assert.Contains(t, user, "Dependencies: requests, rich")
}

func TestLLMStrategy_ProviderFailure(t *testing.T) {
	mock := &llm.MockProvider{ChatFunc: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("upstream down")
	}}
	s, err := NewLLM(LLMConfig{Provider: mock}, nil)
	require.NoError(t, err)

	tools, err := s.DetectTools(context.Background(), t.TempDir(), &model.ProjectInfo{Name: "x"})
	assert.Error(t, err)
	assert.Nil(t, tools)
}

func TestProjectContext_IsBounded(t *testing.T) {
	files := map[string]string{
		"README.md": "# big\n\nA project with a very long readme body.\n\n" + strings.Repeat("r", 5000),
		"a.py":      strings.Repeat("a", 5000),
	}
	for i := 0; i < 150; i++ {
		files["pkg/mod"+strings.Repeat("x", i%7)+string(rune('a'+i%26))+".py"] = ""
	}
	for _, name := range []string{"b.py", "c.py", "d.py", "e.py", "f.py"} {
		files[name] = "x = 1\n"
	}
	files[".hidden/secret.py"] = ""
	root := mcpifytest.WriteProject(t, files)

	info, err := project.Inspect(root)
	require.NoError(t, err)
	ctx := ProjectContext(root, info)

	assert.NotContains(t, ctx, strings.Repeat("r", readmeLimit+1))
	assert.NotContains(t, ctx, strings.Repeat("a", fileLimit+1))
	assert.NotContains(t, ctx, ".hidden")
	assert.NotContains(t, ctx, "=== f.py ===")
	assert.Contains(t, ctx, "=== e.py ===")
	assert.Contains(t, ctx, "├── pkg/")
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "h"},
		{"日本語", 4, "日"},
		{"日本語", 6, "日本"},
		{"日本語", 1, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncate(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestLLMStrategy_EnhanceTool(t *testing.T) {
	orig := model.ToolSpec{
		Name:        "greet",
		Description: "Greet",
		Args:        []string{"greet", "{name}"},
		Parameters:  []model.ParamSpec{{Name: "name", Type: model.TypeString, Description: "n", Required: true}},
	}

	t.Run("improved", func(t *testing.T) {
		s, err := NewLLM(LLMConfig{Provider: llm.NewMockProvider(`{"description": "Greet a user by name", "parameters": [{"name": "name", "type": "string", "description": "User name", "required": true}]}`)}, nil)
		require.NoError(t, err)
		got := s.EnhanceTool(context.Background(), orig)
		assert.Equal(t, "greet", got.Name)
		assert.Equal(t, "Greet a user by name", got.Description)
		assert.Equal(t, "User name", got.Parameters[0].Description)
		assert.Equal(t, orig.Args, got.Args)
	})

	for name, reply := range map[string]string{
		"no object":    "sorry",
		"invalid type": `{"description": "x", "parameters": [{"name": "name", "type": "str", "description": "d", "required": true}]}`,
		"bad json":     `{"description": }`,
	} {
		t.Run(name, func(t *testing.T) {
			s, err := NewLLM(LLMConfig{Provider: llm.NewMockProvider(reply)}, nil)
			require.NoError(t, err)
			assert.Equal(t, orig, s.EnhanceTool(context.Background(), orig))
		})
	}
}

func TestLLMStrategy_AnalyzeRequest(t *testing.T) {
	functions := make([]model.FunctionInfo, 60)
	for i := range functions {
		functions[i] = model.FunctionInfo{Name: "fn" + string(rune('a'+i%26)), FilePath: "ops.py", LineNumber: i + 1}
	}
	functions[0] = model.FunctionInfo{Name: "add", Docstring: "Add two numbers.", FilePath: "ops.py", LineNumber: 1,
		Parameters: []model.Parameter{{Name: "a"}, {Name: "b"}}}

	mock := llm.NewMockProvider(`[{"function_name": "add", "tool_name": "add-numbers", "description": "Add two numbers", "parameters": []}]`)
	s, err := NewLLM(LLMConfig{Provider: mock}, nil)
	require.NoError(t, err)

	proposals := s.AnalyzeRequest(context.Background(), "add two numbers", functions)
	require.Len(t, proposals, 1)
	assert.Equal(t, "add", proposals[0].FunctionName)
	assert.Equal(t, "add-numbers", proposals[0].ToolName)

	req := mock.Requests()[0]
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	assert.Equal(t, 2000, req.MaxTokens)
	prompt := req.Messages[1].Content
	assert.Contains(t, prompt, "def add(a, b)")
	assert.Contains(t, prompt, "ops.py:1")
	assert.Contains(t, prompt, "No documentation")
	assert.Contains(t, prompt, "... and 10 more")
	assert.NotContains(t, prompt, "\n51. ")

	assert.Nil(t, s.AnalyzeRequest(context.Background(), "x", nil))
}
