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
	"os"
	"strings"
	"time"
)

const (
	anthropicVersion        = "2023-06-01"
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-3-5-sonnet-20241022"
	anthropicMaxTokens      = 4096
)

// anthropicProvider talks to the Messages API. System prompts travel in the
// top-level system field rather than as messages.
type anthropicProvider struct {
	baseURL      string
	apiKey       string
	defaultModel string
	http         transport
}

type anthropicRequest struct {
	Model         string    `json:"model"`
	System        string    `json:"system,omitempty"`
	Messages      []Message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func newAnthropicProvider(cfg ProviderConfig) (*anthropicProvider, error) {
	apiKey := firstSet(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, &CredentialError{Provider: "anthropic", EnvVar: "ANTHROPIC_API_KEY"}
	}
	return &anthropicProvider{
		baseURL:      strings.TrimSuffix(firstSet(cfg.BaseURL, anthropicDefaultBaseURL), "/"),
		apiKey:       apiKey,
		defaultModel: firstSet(cfg.DefaultModel, os.Getenv("ANTHROPIC_MODEL"), anthropicDefaultModel),
		http:         newTransport("anthropic", cfg),
	}, nil
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body := anthropicRequest{
		Model:         firstSet(req.Model, p.defaultModel),
		Messages:      make([]Message, 0, len(req.Messages)),
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		StopSequences: req.Stop,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = anthropicMaxTokens
	}
	var system []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
		} else {
			body.Messages = append(body.Messages, m)
		}
	}
	body.System = strings.Join(system, "\n\n")

	start := time.Now()
	var out anthropicResponse
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := p.http.postJSON(ctx, p.baseURL+"/messages", headers, body, &out); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &ChatResponse{
		Message:      Message{Role: "assistant", Content: text.String()},
		Model:        out.Model,
		PromptTokens: out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		TotalTokens:  out.Usage.InputTokens + out.Usage.OutputTokens,
		Duration:     time.Since(start),
		Done:         out.StopReason == "end_turn",
	}, nil
}
