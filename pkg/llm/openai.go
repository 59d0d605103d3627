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
	"errors"
	"os"
	"strings"
	"time"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiDefaultModel   = "gpt-4o-mini"
)

// openaiProvider talks to the chat completions endpoint of OpenAI or any
// API that mirrors it (OPENAI_BASE_URL).
type openaiProvider struct {
	baseURL      string
	apiKey       string
	defaultModel string
	http         transport
}

type openaiChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type openaiChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

var errNoChoices = errors.New("openai returned no choices")

func newOpenAIProvider(cfg ProviderConfig) (*openaiProvider, error) {
	apiKey := firstSet(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, &CredentialError{Provider: "openai", EnvVar: "OPENAI_API_KEY"}
	}
	return &openaiProvider{
		baseURL:      strings.TrimSuffix(firstSet(cfg.BaseURL, os.Getenv("OPENAI_BASE_URL"), openaiDefaultBaseURL), "/"),
		apiKey:       apiKey,
		defaultModel: firstSet(cfg.DefaultModel, os.Getenv("OPENAI_MODEL"), openaiDefaultModel),
		http:         newTransport("openai", cfg),
	}, nil
}

func (p *openaiProvider) Name() string { return "openai" }

func (p *openaiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body := openaiChatRequest{
		Model:       firstSet(req.Model, p.defaultModel),
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stop:        req.Stop,
	}

	start := time.Now()
	var out openaiChatResponse
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	if err := p.http.postJSON(ctx, p.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errNoChoices
	}

	choice := out.Choices[0]
	return &ChatResponse{
		Message:      choice.Message,
		Model:        out.Model,
		PromptTokens: out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		TotalTokens:  out.Usage.TotalTokens,
		Duration:     time.Since(start),
		Done:         choice.FinishReason == "stop",
	}, nil
}
