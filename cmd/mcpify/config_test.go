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

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/semantic"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "auto", cfg.Detection.Strategy)
	assert.Equal(t, detect.DefaultHeuristicExclude, cfg.Detection.Exclude)
	assert.Equal(t, "openai", cfg.LLM.Type)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Empty(t, cfg.Embedding.Provider)
	assert.Equal(t, 1024, cfg.Embedding.CacheSize)
	assert.Equal(t, semantic.DefaultCriteria(), cfg.Matching.Criteria)
	assert.Equal(t, semantic.DefaultSimilarityFloor, cfg.Matching.SimilarityFloor)
	assert.Equal(t, semantic.DefaultMaxCandidates, cfg.Matching.MaxCandidates)

	// The exclude list is a copy; editing it must not touch the package default.
	cfg.Detection.Exclude[0] = "changed"
	assert.NotEqual(t, "changed", detect.DefaultHeuristicExclude[0])
}

func TestLoadConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
detection:
  strategy: heuristic
llm:
  provider: ollama
  timeout: 30s
embedding:
  provider: mock
matching:
  max_parameters: 3
  similarity_floor: 0.2
  include_private: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "heuristic", cfg.Detection.Strategy)
	assert.Equal(t, "ollama", cfg.LLM.Type)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, "mock", cfg.Embedding.Provider)
	assert.Equal(t, 1024, cfg.Embedding.CacheSize)
	assert.Equal(t, 3, cfg.Matching.MaxParameters)
	assert.Equal(t, 10, cfg.Matching.MinDocstringLength)
	assert.True(t, cfg.Matching.IncludePrivate)
	assert.InDelta(t, 0.2, cfg.Matching.SimilarityFloor, 1e-9)
	assert.Equal(t, 50, cfg.Matching.MaxCandidates)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("detection: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCPIFY_STRATEGY", "local-only")
	t.Setenv("MCPIFY_LLM_PROVIDER", "anthropic")
	t.Setenv("MCPIFY_EMBEDDING_PROVIDER", "ollama")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "local-only", cfg.Detection.Strategy)
	assert.Equal(t, "anthropic", cfg.LLM.Type)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := DefaultConfig()
	cfg.Detection.Strategy = "composite"
	cfg.LLM.DefaultModel = "gpt-4o-mini"
	cfg.Matching.ExcludeFiles = []string{"vendor"}

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "strategy: composite")
	assert.Contains(t, string(data), "provider: openai")
	assert.NotContains(t, string(data), "onwarning")
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("proj", ".mcpify.yaml"), ConfigPath("proj"))
}
