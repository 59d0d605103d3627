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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/mcpify/internal/errors"
	"github.com/kraklabs/mcpify/pkg/detect"
	"github.com/kraklabs/mcpify/pkg/embedding"
	"github.com/kraklabs/mcpify/pkg/llm"
	"github.com/kraklabs/mcpify/pkg/semantic"
)

const (
	// ConfigFileName is the per-project configuration file.
	ConfigFileName = ".mcpify.yaml"

	configVersion        = "1"
	defaultLLMTimeout    = 120 * time.Second
	defaultLLMMaxRetries = 2
	envStrategy          = "MCPIFY_STRATEGY"
	envLLMProvider       = "MCPIFY_LLM_PROVIDER"
	envEmbeddingProvider = "MCPIFY_EMBEDDING_PROVIDER"
)

// Config is the content of .mcpify.yaml.
type Config struct {
	Version   string             `yaml:"version"`
	Detection DetectionConfig    `yaml:"detection"`
	LLM       llm.ProviderConfig `yaml:"llm"`
	Embedding EmbeddingConfig    `yaml:"embedding"`
	Matching  MatchingConfig     `yaml:"matching"`
}

// DetectionConfig selects the detection strategy and extra exclusions for
// the heuristic rules and the inventory walk. Enhance asks the LLM to
// improve every detected tool.
type DetectionConfig struct {
	Strategy string   `yaml:"strategy"`
	Exclude  []string `yaml:"exclude"`
	Enhance  bool     `yaml:"enhance"`
}

// EmbeddingConfig selects the embedding provider used by match. An empty
// provider means keyword ranking.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	CacheSize int    `yaml:"cache_size"`
}

// MatchingConfig is the function filter plus the ranking knobs.
type MatchingConfig struct {
	semantic.Criteria `yaml:",inline"`
	semantic.Config   `yaml:",inline"`
}

// DefaultConfig returns the configuration written by 'mcpify init'.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Detection: DetectionConfig{
			Strategy: string(detect.KindAuto),
			Exclude:  append([]string{}, detect.DefaultHeuristicExclude...),
		},
		LLM: llm.ProviderConfig{
			Type:       "openai",
			Timeout:    defaultLLMTimeout,
			MaxRetries: defaultLLMMaxRetries,
		},
		Embedding: EmbeddingConfig{CacheSize: embedding.DefaultCacheSize},
		Matching: MatchingConfig{
			Criteria: semantic.DefaultCriteria(),
			Config:   semantic.DefaultConfig(),
		},
	}
}

// ConfigPath returns the default configuration path inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// LoadConfig reads the configuration at path, or ./.mcpify.yaml when path
// is empty. A missing default file yields DefaultConfig; a missing explicit
// file is an error. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envStrategy); v != "" {
		c.Detection.Strategy = v
	}
	if v := os.Getenv(envLLMProvider); v != "" {
		c.LLM.Type = v
	}
	if v := os.Getenv(envEmbeddingProvider); v != "" {
		c.Embedding.Provider = v
	}
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# MCPify configuration. See 'mcpify init --help'.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// loadDotEnv loads .env from the working directory. Variables already set
// in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// mustLoadConfig loads the configuration named by the global flags, exiting
// with a config error when it cannot be read.
func mustLoadConfig(globals GlobalFlags) *Config {
	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load configuration",
			err.Error(),
			"Fix the file or recreate it with 'mcpify init --force'",
			err,
		), globals.JSON)
	}
	return cfg
}
