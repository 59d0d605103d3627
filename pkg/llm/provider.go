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

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 2
)

// Provider is a chat completion backend.
type Provider interface {
	// Chat sends the conversation and returns the assistant reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier.
	Name() string
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// ChatResponse is the assistant reply plus usage accounting.
type ChatResponse struct {
	Message      Message       `json:"message"`
	Model        string        `json:"model"`
	PromptTokens int           `json:"prompt_tokens,omitempty"`
	OutputTokens int           `json:"output_tokens,omitempty"`
	TotalTokens  int           `json:"total_tokens,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Done         bool          `json:"done"`
}

// ProviderConfig holds configuration for creating providers.
type ProviderConfig struct {
	// Type is one of "openai", "anthropic", "ollama", "mock".
	Type string `json:"type" yaml:"provider"`

	// BaseURL overrides the API endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url"`

	// APIKey for authenticated providers. Falls back to the provider's
	// environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key"`

	// DefaultModel is used when a request names no model.
	DefaultModel string `json:"default_model,omitempty" yaml:"model"`

	// Timeout bounds each HTTP request. Default 120s.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout"`

	// MaxRetries for transient failures. Default 2; negative disables.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retries. Default 500ms.
	RetryBackoff time.Duration `json:"-" yaml:"-"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

// NewProvider creates a Provider based on configuration.
//
// Networked providers that need a key return *CredentialError when none is
// configured. No network call is made during construction.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	switch strings.ToLower(cfg.Type) {
	case "openai", "openai-compatible", "":
		return newOpenAIProvider(cfg)
	case "anthropic", "claude":
		return newAnthropicProvider(cfg)
	case "ollama", "local":
		return newOllamaProvider(cfg)
	case "mock", "test":
		return &MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s (supported: openai, anthropic, ollama, mock)", cfg.Type)
	}
}

// Networked reports whether the provider type talks to a remote service.
func Networked(providerType string) bool {
	switch strings.ToLower(providerType) {
	case "mock", "test":
		return false
	}
	return true
}

// BuildMessages returns a system message followed by a user message.
func BuildMessages(system, user string) []Message {
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// firstSet returns the first non-empty value, used to layer config fields,
// environment variables and built-in defaults.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
