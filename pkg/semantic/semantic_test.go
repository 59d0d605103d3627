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

package semantic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/model"
)

func sampleFunctions() []model.FunctionInfo {
	return []model.FunctionInfo{
		{
			Name:       "greet",
			FilePath:   "app/greetings.py",
			LineNumber: 3,
			Docstring:  "Return a greeting for the given name.",
			Parameters: []model.Parameter{{Name: "name", Required: true}},
		},
		{
			Name:       "multiply",
			ClassName:  "Calculator",
			IsMethod:   true,
			FilePath:   "mathlib/ops.py",
			LineNumber: 20,
			Docstring:  "Multiply the current value by factor.",
			Parameters: []model.Parameter{{Name: "factor", Required: true}},
		},
		{
			Name:       "add",
			FilePath:   "mathlib/ops.py",
			LineNumber: 1,
			Docstring:  "Add two numbers and return the sum.",
			Parameters: []model.Parameter{{Name: "a", Required: true}, {Name: "b", Required: true}},
		},
	}
}

func TestFilter(t *testing.T) {
	functions := []model.FunctionInfo{
		{Name: "public_fn", FilePath: "lib/core.py", Docstring: "Documented well enough."},
		{Name: "_private", FilePath: "lib/core.py", Docstring: "Documented well enough."},
		{Name: "short_doc", FilePath: "lib/core.py", Docstring: "Short."},
		{Name: "no_doc", FilePath: "lib/core.py"},
		{Name: "wide", FilePath: "lib/core.py", Docstring: "Documented well enough.", Parameters: make([]model.Parameter, 11)},
		{Name: "tested", FilePath: "tests/test_core.py", Docstring: "Documented well enough."},
		{Name: "__init__", FilePath: "lib/other.py", Docstring: "Documented well enough."},
	}

	names := func(fns []model.FunctionInfo) []string {
		out := make([]string, 0, len(fns))
		for _, f := range fns {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"public_fn", "__init__"}, names(Filter(functions, DefaultCriteria())))

	c := DefaultCriteria()
	c.IncludePrivate = true
	c.MinDocstringLength = 0
	c.MaxParameters = 0
	c.ExcludeFiles = nil
	assert.Len(t, Filter(functions, c), len(functions))

	c = DefaultCriteria()
	c.IncludeFiles = []string{"other"}
	assert.Equal(t, []string{"__init__"}, names(Filter(functions, c)))
}

func TestLoadCriteria(t *testing.T) {
	c, err := LoadCriteria([]byte("include_private: true\nmax_parameters: 3\n"))
	require.NoError(t, err)
	assert.True(t, c.IncludePrivate)
	assert.Equal(t, 3, c.MaxParameters)
	assert.Equal(t, 10, c.MinDocstringLength)
	assert.Equal(t, []string{"test", "__pycache__", ".git"}, c.ExcludeFiles)

	_, err = LoadCriteria([]byte("max_parameters: [oops"))
	assert.Error(t, err)
}

func TestRank_KeywordAddTwoNumbers(t *testing.T) {
	m := NewMatcher(DefaultConfig(), nil, nil, nil)
	ranked := m.Rank(context.Background(), sampleFunctions(), "add two numbers")

	require.Len(t, ranked, 3)
	assert.Equal(t, "add", ranked[0].Function.Name)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestKeywordScore_Monotonic(t *testing.T) {
	fn := sampleFunctions()[2]
	base := KeywordScore(fn, wordSet("add"))
	more := KeywordScore(fn, wordSet("add numbers"))
	most := KeywordScore(fn, wordSet("add numbers mathlib"))
	assert.Greater(t, more, base)
	assert.Greater(t, most, more)

	// name 3 + docstring 2 + parameter bonus 0.5
	assert.InDelta(t, 5.5, base, 1e-9)
}

func TestRank_KeywordThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinKeywordScore = 3
	m := NewMatcher(cfg, nil, nil, nil)
	ranked := m.Rank(context.Background(), sampleFunctions(), "add")
	require.Len(t, ranked, 1)
	assert.Equal(t, "add", ranked[0].Function.Name)
}

func TestCompositeText(t *testing.T) {
	fn := model.FunctionInfo{
		Name:       "resize_image",
		ClassName:  "Image_Tools",
		FilePath:   "pkg/image_ops.py",
		Docstring:  "Resize an image.\n\n  Keeps aspect ratio.\nUses Lanczos.\nIgnored line.",
		Parameters: []model.Parameter{{Name: "width"}, {Name: "height"}},
	}
	want := strings.Join([]string{
		"resize image",
		"class Image Tools",
		"parameters: width height",
		"Resize an image. Keeps aspect ratio. Uses Lanczos.",
		"image ops",
	}, "\n")
	assert.Equal(t, want, CompositeText(fn))

	fn.FilePath = "pkg/utils.py"
	assert.NotContains(t, CompositeText(fn), "utils")
}

// vocabEmbedder embeds texts as counts of a few vocabulary stems.
type vocabEmbedder struct {
	batches int
}

var vocab = []string{"add", "multipl", "greet"}

func (v *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := make([]float32, len(vocab)+1)
	for i, w := range vocab {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(vocab)] = 0.01
	return vec, nil
}

func (v *vocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	v.batches++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = v.Embed(ctx, text)
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func TestRank_Embedding(t *testing.T) {
	emb := &vocabEmbedder{}
	m := NewMatcher(DefaultConfig(), nil, emb, nil)

	ranked, mode := m.rank(context.Background(), sampleFunctions(), "please multiply this")
	assert.Equal(t, ModeEmbedding, mode)
	assert.Equal(t, 1, emb.batches)
	require.Len(t, ranked, 3)
	assert.Equal(t, "multiply", ranked[0].Function.Name)
	assert.Greater(t, ranked[0].Score, 0.9)
}

func TestRank_EmbeddingFailureFallsBack(t *testing.T) {
	var warnings []string
	cfg := DefaultConfig()
	cfg.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	m := NewMatcher(cfg, nil, failingEmbedder{}, nil)
	ranked, mode := m.rank(context.Background(), sampleFunctions(), "add two numbers")

	assert.Equal(t, ModeKeyword, mode)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "add", ranked[0].Function.Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "embedding service unavailable")
}

func TestRank_MockEmbedderIsDeterministic(t *testing.T) {
	m := NewMatcher(DefaultConfig(), nil, embedding.NewMockProvider(64), nil)
	first := m.Rank(context.Background(), sampleFunctions(), "add two numbers")
	second := m.Rank(context.Background(), sampleFunctions(), "add two numbers")
	assert.Equal(t, first, second)
}

type stubProposer struct {
	proposals []detect.ToolProposal
	seen      []model.FunctionInfo
}

func (s *stubProposer) AnalyzeRequest(_ context.Context, _ string, functions []model.FunctionInfo) []detect.ToolProposal {
	s.seen = functions
	return s.proposals
}

func TestGenerateTools(t *testing.T) {
	functions := sampleFunctions()
	proposer := &stubProposer{proposals: []detect.ToolProposal{
		{
			FunctionName: "add",
			ToolName:     "add-numbers",
			Description:  "Add two numbers",
			Parameters: []model.ParamSpec{
				{Name: "a", Type: model.TypeNumber, Description: "first", Required: true},
				{Name: "b", Type: model.TypeNumber, Description: "second", Required: true},
			},
		},
		{FunctionName: "Calculator.multiply", ToolName: "multiply", Description: "Multiply", Parameters: []model.ParamSpec{}},
		{FunctionName: "Other.multiply", ToolName: "other", Description: "Suffix match on method name"},
		{FunctionName: "missing", ToolName: "missing", Description: "Nope"},
	}}
	m := NewMatcher(DefaultConfig(), proposer, nil, nil)

	tools, err := m.GenerateTools(context.Background(), "add two numbers", functions)
	require.NoError(t, err)
	require.Len(t, tools, 2)

	assert.Equal(t, "add-numbers", tools[0].Name)
	assert.Equal(t, model.ImplPythonFunction, tools[0].ImplementationType)
	require.NotNil(t, tools[0].Function)
	assert.Equal(t, "add", tools[0].Function.Name)
	assert.ElementsMatch(t, []string{"a", "b"}, tools[0].ToMCPSchema().InputSchema.Required)

	assert.Equal(t, "Calculator", tools[1].Function.ClassName)

	empty, err := m.GenerateTools(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = NewMatcher(DefaultConfig(), nil, nil, nil).GenerateTools(context.Background(), "x", functions)
	assert.ErrorIs(t, err, ErrNoProposer)
}

func TestGenerateTools_ResolvesSimpleNameOfMethod(t *testing.T) {
	proposer := &stubProposer{proposals: []detect.ToolProposal{
		{FunctionName: "multiply", ToolName: "multiply", Description: "Multiply"},
	}}
	m := NewMatcher(DefaultConfig(), proposer, nil, nil)
	tools, err := m.GenerateTools(context.Background(), "multiply", sampleFunctions())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "Calculator.multiply", tools[0].Function.QualifiedName())
}

func TestMatch_WithLLMProposer(t *testing.T) {
	mock := llm.NewMockProvider(`[{"function_name": "add", "tool_name": "add-numbers", "description": "Add two numbers",
	  "parameters": [{"name": "a", "type": "number", "description": "first", "required": true},
	                 {"name": "b", "type": "number", "description": "second", "required": true}]}]`)
	proposer, err := detect.NewLLM(detect.LLMConfig{Provider: mock}, nil)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxCandidates = 2
	m := NewMatcher(cfg, proposer, nil, nil)

	functions := append(sampleFunctions(), model.FunctionInfo{Name: "_hidden", FilePath: "x.py", Docstring: "Add numbers secretly."})
	result, err := m.Match(context.Background(), "add two numbers", functions, DefaultCriteria())
	require.NoError(t, err)

	assert.Equal(t, ModeKeyword, result.Mode)
	assert.Equal(t, 3, result.Considered)
	assert.Len(t, result.Ranked, 2)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "add-numbers", result.Tools[0].Name)

	prompt := mock.Requests()[0].Messages[1].Content
	assert.NotContains(t, prompt, "_hidden")
}

func TestFunctionSummary(t *testing.T) {
	s := FunctionSummary(sampleFunctions())
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Methods)
	assert.Equal(t, 2, s.ByFile["mathlib/ops.py"])
}
