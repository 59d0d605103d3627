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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/model"
	"github.com/kraklabs/mcpify/pkg/project"

	mcpifytest "github.com/kraklabs/mcpify/internal/testing"
)

type plainStrategy struct {
	tools []model.ToolSpec
	err   error
}

func (plainStrategy) Name() string { return "plain" }

func (s plainStrategy) DetectTools(context.Context, string, *model.ProjectInfo) ([]model.ToolSpec, error) {
	return s.tools, s.err
}

func TestDetector_Detect(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.FlaskProject())

	d := NewDetector(NewHeuristic(nil), nil)
	result, err := d.Detect(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, model.ProjectWeb, result.ProjectInfo.ProjectType)
	assert.InDelta(t, HeuristicConfidence, result.ConfidenceScore, 1e-9)
	assert.Equal(t, model.BackendHTTP, result.BackendConfig.Type)
	assert.Len(t, result.Tools, 2)
}

func TestDetector_MissingPath(t *testing.T) {
	d := NewDetector(NewHeuristic(nil), nil)
	_, err := d.Detect(context.Background(), "/definitely/not/here")
	var pnf *project.PathNotFoundError
	assert.ErrorAs(t, err, &pnf)
}

func TestDetector_DropsInvalidTools(t *testing.T) {
	root := t.TempDir()
	s := plainStrategy{tools: []model.ToolSpec{
		{Name: "ok", Description: "fine"},
		{Name: "", Description: "nameless"},
		{Name: "bad", Description: "bad", Parameters: []model.ParamSpec{{Name: "x", Type: "int"}}},
	}}

	result, err := NewDetector(s, nil).Detect(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "ok", result.Tools[0].Name)
	assert.InDelta(t, DefaultConfidence, result.ConfidenceScore, 1e-9)
}

func TestDetector_StrategyErrorYieldsEmptyResult(t *testing.T) {
	result, err := NewDetector(plainStrategy{err: errors.New("boom")}, nil).Detect(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Tools)
	assert.InDelta(t, DefaultConfidence, result.ConfidenceScore, 1e-9)
}

func TestDetector_StrategyPanicIsContained(t *testing.T) {
	s := &stubStrategy{name: "boom", confidence: 0.9, panics: true}
	result, err := NewDetector(s, nil).Detect(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Tools)
}

func TestDetector_CancellationIsReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector(plainStrategy{err: errors.New("request aborted")}, nil).Detect(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetector_LLMFailureDoesNotAbort(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.CLIProject())
	failing, err := NewLLM(LLMConfig{Provider: &llm.MockProvider{ChatFunc: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("401 unauthorized")
	}}}, nil)
	require.NoError(t, err)

	result, err := NewDetector(failing, nil).Detect(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Tools)
	assert.Equal(t, model.ProjectCLI, result.ProjectInfo.ProjectType)
}

func TestDetector_Enhancer(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.CLIProject())

	t.Run("improves every tool", func(t *testing.T) {
		mock := llm.NewMockProvider(`{"description": "Improved by the model"}`)
		enhancer, err := NewLLM(LLMConfig{Provider: mock}, nil)
		require.NoError(t, err)

		result, err := NewDetector(NewHeuristic(nil), nil, WithEnhancer(enhancer)).Detect(context.Background(), root)
		require.NoError(t, err)
		require.Len(t, result.Tools, 4)
		for _, tl := range result.Tools {
			assert.Equal(t, "Improved by the model", tl.Description, tl.Name)
		}
		assert.Len(t, mock.Requests(), 4)
		assert.InDelta(t, HeuristicConfidence, result.ConfidenceScore, 1e-9)
	})

	t.Run("failures keep the original tools", func(t *testing.T) {
		plain, err := NewDetector(NewHeuristic(nil), nil).Detect(context.Background(), root)
		require.NoError(t, err)

		enhancer, err := NewLLM(LLMConfig{Provider: &llm.MockProvider{ChatFunc: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("timeout")
		}}}, nil)
		require.NoError(t, err)

		result, err := NewDetector(NewHeuristic(nil), nil, WithEnhancer(enhancer)).Detect(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, plain.Tools, result.Tools)
	})
}

func TestDetector_CompositeContainsLLMFailure(t *testing.T) {
	root := mcpifytest.WriteProject(t, mcpifytest.CLIProject())
	failing, err := NewLLM(LLMConfig{Provider: &llm.MockProvider{ChatFunc: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("rate limited")
	}}}, nil)
	require.NoError(t, err)

	d := NewDetector(NewComposite(nil, failing, NewHeuristic(nil)), nil)
	result, err := d.Detect(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, result.Tools, 4)
	assert.InDelta(t, HeuristicConfidence, result.ConfidenceScore, 1e-9)
}

func TestDetector_BackendOverride(t *testing.T) {
	custom := BackendConfigFunc(func(string, *model.ProjectInfo) model.BackendConfig {
		return model.BackendConfig{Type: model.BackendHTTP, Config: map[string]any{"base_url": "http://api:9000"}}
	})
	d := NewDetector(plainStrategy{}, nil, WithBackendConfigurer(custom))
	result, err := d.Detect(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://api:9000", result.BackendConfig.Config["base_url"])
}
