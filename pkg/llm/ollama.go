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

const ollamaDefaultBaseURL = "http://localhost:11434"

// ErrNoModel is returned by Ollama when neither the request nor the
// configuration names a model. Ollama has no server-side default.
var ErrNoModel = errors.New("ollama: model not specified (set OLLAMA_MODEL or llm.model)")

// ollamaProvider talks to a local Ollama server. It needs no credentials.
type ollamaProvider struct {
	baseURL      string
	defaultModel string
	http         transport
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaChatResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func newOllamaProvider(cfg ProviderConfig) (*ollamaProvider, error) {
	baseURL := firstSet(cfg.BaseURL, os.Getenv("OLLAMA_HOST"), os.Getenv("OLLAMA_BASE_URL"), ollamaDefaultBaseURL)
	return &ollamaProvider{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		defaultModel: firstSet(cfg.DefaultModel, os.Getenv("OLLAMA_MODEL")),
		http:         newTransport("ollama", cfg),
	}, nil
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := firstSet(req.Model, p.defaultModel)
	if model == "" {
		return nil, ErrNoModel
	}

	body := ollamaChatRequest{Model: model, Messages: req.Messages}
	if req.MaxTokens > 0 || req.Temperature > 0 || len(req.Stop) > 0 {
		body.Options = &ollamaOptions{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
			Stop:        req.Stop,
		}
	}

	start := time.Now()
	var out ollamaChatResponse
	if err := p.http.postJSON(ctx, p.baseURL+"/api/chat", nil, body, &out); err != nil {
		return nil, err
	}
	return &ChatResponse{
		Message:      out.Message,
		Model:        out.Model,
		PromptTokens: out.PromptEvalCount,
		OutputTokens: out.EvalCount,
		TotalTokens:  out.PromptEvalCount + out.EvalCount,
		Duration:     time.Since(start),
		Done:         out.Done,
	}, nil
}
